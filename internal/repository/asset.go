package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pixelshelf/internal/cache"
	"pixelshelf/internal/model"
)

type assetRepository struct {
	db *sqlx.DB
}

func NewAssetRepository(db *sqlx.DB) AssetRepository {
	return &assetRepository{db: db}
}

// assetRow is the flat scan target for asset queries with the author joined.
type assetRow struct {
	ID                int64          `db:"id"`
	UserID            int64          `db:"user_id"`
	ProjectID         *int64         `db:"project_id"`
	Title             string         `db:"title"`
	Description       *string        `db:"description"`
	FileURL           string         `db:"file_url"`
	FileKey           string         `db:"file_key"`
	ThumbnailURL      *string        `db:"thumbnail_url"`
	ThumbnailKey      *string        `db:"thumbnail_key"`
	FileType          string         `db:"file_type"`
	FileSize          int64          `db:"file_size"`
	Tags              pq.StringArray `db:"tags"`
	IsPublic          bool           `db:"is_public"`
	LikeCount         int            `db:"like_count"`
	CommentCount      int            `db:"comment_count"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	AuthorID          int64          `db:"author_id"`
	AuthorUsername    string         `db:"author_username"`
	AuthorDisplayName *string        `db:"author_display_name"`
	AuthorAvatarURL   *string        `db:"author_avatar_url"`
}

const assetSelectColumns = `
	a.id, a.user_id, a.project_id, a.title, a.description,
	a.file_url, a.file_key, a.thumbnail_url, a.thumbnail_key,
	a.file_type, a.file_size, a.tags, a.is_public,
	a.like_count, a.comment_count, a.created_at, a.updated_at,
	u.id AS author_id, u.username AS author_username,
	u.display_name AS author_display_name, u.avatar_url AS author_avatar_url`

func (row assetRow) toModel() model.Asset {
	return model.Asset{
		ID:           row.ID,
		UserID:       row.UserID,
		ProjectID:    row.ProjectID,
		Title:        row.Title,
		Description:  row.Description,
		FileURL:      row.FileURL,
		FileKey:      row.FileKey,
		ThumbnailURL: row.ThumbnailURL,
		ThumbnailKey: row.ThumbnailKey,
		FileType:     row.FileType,
		FileSize:     row.FileSize,
		Tags:         row.Tags,
		IsPublic:     row.IsPublic,
		LikeCount:    row.LikeCount,
		CommentCount: row.CommentCount,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Author: &model.UserSummary{
			ID:          row.AuthorID,
			Username:    row.AuthorUsername,
			DisplayName: row.AuthorDisplayName,
			AvatarURL:   row.AuthorAvatarURL,
		},
	}
}

func (r *assetRepository) Create(ctx context.Context, tx *sqlx.Tx, asset *model.Asset) error {
	query := `
		INSERT INTO assets (user_id, project_id, title, description, file_url, file_key,
		                    thumbnail_url, thumbnail_key, file_type, file_size, tags, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRowxContext(ctx, query,
		asset.UserID, asset.ProjectID, asset.Title, asset.Description,
		asset.FileURL, asset.FileKey, asset.ThumbnailURL, asset.ThumbnailKey,
		asset.FileType, asset.FileSize, asset.Tags, asset.IsPublic,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, assetID int64) (*model.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM assets a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`, assetSelectColumns)

	var row assetRow
	err := r.db.GetContext(ctx, &row, query, assetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}

	asset := row.toModel()
	return &asset, nil
}

// GetByIDs fetches assets in bulk for feed hydration. Results come back in
// arbitrary order; callers reorder against their id list.
func (r *assetRepository) GetByIDs(ctx context.Context, assetIDs []int64) ([]model.Asset, error) {
	if len(assetIDs) == 0 {
		return []model.Asset{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM assets a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = ANY($1)
	`, assetSelectColumns)

	var rows []assetRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(assetIDs))
	if err != nil {
		return nil, fmt.Errorf("get assets by ids: %w", err)
	}

	assets := make([]model.Asset, len(rows))
	for i, row := range rows {
		assets[i] = row.toModel()
	}
	return assets, nil
}

func (r *assetRepository) GetOwnerID(ctx context.Context, assetID int64) (int64, error) {
	var ownerID int64
	err := r.db.GetContext(ctx, &ownerID, `SELECT user_id FROM assets WHERE id = $1`, assetID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrAssetNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get asset owner: %w", err)
	}
	return ownerID, nil
}

func (r *assetRepository) Exists(ctx context.Context, assetID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM assets WHERE id = $1)`, assetID)
	if err != nil {
		return false, fmt.Errorf("check asset exists: %w", err)
	}
	return exists, nil
}

// Update builds the SET clause from the provided fields only.
func (r *assetRepository) Update(ctx context.Context, assetID int64, req model.UpdateAssetRequest) (*model.Asset, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	arg := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, arg))
		args = append(args, value)
		arg++
	}

	if req.Title != nil {
		addSet("title", *req.Title)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.ProjectID != nil {
		addSet("project_id", *req.ProjectID)
	}
	if req.Tags != nil {
		addSet("tags", pq.StringArray(req.Tags))
	}
	if req.IsPublic != nil {
		addSet("is_public", *req.IsPublic)
	}

	query := fmt.Sprintf(`UPDATE assets SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), arg)
	args = append(args, assetID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, model.ErrAssetNotFound
	}

	return r.GetByID(ctx, assetID)
}

func (r *assetRepository) Delete(ctx context.Context, tx *sqlx.Tx, assetID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrAssetNotFound
	}
	return nil
}

func (r *assetRepository) ListByUser(ctx context.Context, userID int64, publicOnly bool, offset, limit int) ([]model.Asset, int, error) {
	where := `a.user_id = $1`
	if publicOnly {
		where += ` AND a.is_public = TRUE`
	}
	return r.list(ctx, where, []interface{}{userID}, offset, limit)
}

func (r *assetRepository) ListByProject(ctx context.Context, projectID int64, offset, limit int) ([]model.Asset, int, error) {
	return r.list(ctx, `a.project_id = $1`, []interface{}{projectID}, offset, limit)
}

// Search matches title, description and tags on public assets.
func (r *assetRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.Asset, int, error) {
	pattern := "%" + query + "%"
	where := `a.is_public = TRUE AND (a.title ILIKE $1 OR a.description ILIKE $1 OR $2 = ANY(a.tags))`
	return r.list(ctx, where, []interface{}{pattern, strings.ToLower(query)}, offset, limit)
}

// list runs a count + page query pair for the given WHERE clause.
// Page placeholders continue after the caller's args.
func (r *assetRepository) list(ctx context.Context, where string, args []interface{}, offset, limit int) ([]model.Asset, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM assets a WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM assets a
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.created_at DESC
		OFFSET $%d LIMIT $%d
	`, assetSelectColumns, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	var rows []assetRow
	if err := r.db.SelectContext(ctx, &rows, pageQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}

	assets := make([]model.Asset, len(rows))
	for i, row := range rows {
		assets[i] = row.toModel()
	}
	return assets, total, nil
}

// Like inserts the like edge; rows-affected distinguishes a fresh like from
// a duplicate, same pattern as follows.
func (r *assetRepository) Like(ctx context.Context, tx *sqlx.Tx, assetID, userID int64) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO asset_likes (asset_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (asset_id, user_id) DO NOTHING
	`, assetID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *assetRepository) Unlike(ctx context.Context, tx *sqlx.Tx, assetID, userID int64) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM asset_likes WHERE asset_id = $1 AND user_id = $2`, assetID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

// CheckLikes batch-checks which assets the user has liked. One query, not N+1.
func (r *assetRepository) CheckLikes(ctx context.Context, userID int64, assetIDs []int64) (map[int64]bool, error) {
	if len(assetIDs) == 0 {
		return make(map[int64]bool), nil
	}

	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs,
		`SELECT asset_id FROM asset_likes WHERE user_id = $1 AND asset_id = ANY($2)`,
		userID, pq.Array(assetIDs))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool, len(assetIDs))
	for _, id := range assetIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}

func (r *assetRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, assetID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE assets SET like_count = like_count + $1 WHERE id = $2`, delta, assetID)
	if err != nil {
		return fmt.Errorf("increment like count: %w", err)
	}
	return nil
}

func (r *assetRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, assetID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE assets SET comment_count = comment_count + $1 WHERE id = $2`, delta, assetID)
	if err != nil {
		return fmt.Errorf("increment comment count: %w", err)
	}
	return nil
}

// GetRecentByUser returns a user's newest public assets as (id, timestamp)
// pairs for backfilling a follower's feed cache.
func (r *assetRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.AssetScore, error) {
	type scoreRow struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}

	var rows []scoreRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, created_at FROM assets
		WHERE user_id = $1 AND is_public = TRUE
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent assets: %w", err)
	}

	scores := make([]cache.AssetScore, len(rows))
	for i, row := range rows {
		scores[i] = cache.AssetScore{AssetID: row.ID, Timestamp: row.CreatedAt.Unix()}
	}
	return scores, nil
}

// GetFeedAssetIDs rebuilds a full feed from the database: the newest public
// assets across everyone the user follows. Used to warm a cold feed cache.
func (r *assetRepository) GetFeedAssetIDs(ctx context.Context, followingIDs []int64, limit int) ([]cache.AssetScore, error) {
	if len(followingIDs) == 0 {
		return []cache.AssetScore{}, nil
	}

	type scoreRow struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}

	var rows []scoreRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, created_at FROM assets
		WHERE user_id = ANY($1) AND is_public = TRUE
		ORDER BY created_at DESC
		LIMIT $2
	`, pq.Array(followingIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("get feed asset ids: %w", err)
	}

	scores := make([]cache.AssetScore, len(rows))
	for i, row := range rows {
		scores[i] = cache.AssetScore{AssetID: row.ID, Timestamp: row.CreatedAt.Unix()}
	}
	return scores, nil
}
