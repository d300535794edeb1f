package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/model"
)

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

type projectRow struct {
	ID                int64     `db:"id"`
	UserID            int64     `db:"user_id"`
	Title             string    `db:"title"`
	Description       *string   `db:"description"`
	ThumbnailURL      *string   `db:"thumbnail_url"`
	IsPublic          bool      `db:"is_public"`
	AssetCount        int       `db:"asset_count"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
	AuthorID          int64     `db:"author_id"`
	AuthorUsername    string    `db:"author_username"`
	AuthorDisplayName *string   `db:"author_display_name"`
	AuthorAvatarURL   *string   `db:"author_avatar_url"`
}

const projectSelectColumns = `
	p.id, p.user_id, p.title, p.description, p.thumbnail_url, p.is_public,
	p.asset_count, p.created_at, p.updated_at,
	u.id AS author_id, u.username AS author_username,
	u.display_name AS author_display_name, u.avatar_url AS author_avatar_url`

func (row projectRow) toModel() model.Project {
	return model.Project{
		ID:           row.ID,
		UserID:       row.UserID,
		Title:        row.Title,
		Description:  row.Description,
		ThumbnailURL: row.ThumbnailURL,
		IsPublic:     row.IsPublic,
		AssetCount:   row.AssetCount,
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

func (r *projectRepository) Create(ctx context.Context, tx *sqlx.Tx, project *model.Project) error {
	query := `
		INSERT INTO projects (user_id, title, description, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRowxContext(ctx, query,
		project.UserID, project.Title, project.Description, project.IsPublic,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, projectID int64) (*model.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, projectSelectColumns)

	var row projectRow
	err := r.db.GetContext(ctx, &row, query, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	project := row.toModel()
	return &project, nil
}

func (r *projectRepository) GetOwnerID(ctx context.Context, projectID int64) (int64, error) {
	var ownerID int64
	err := r.db.GetContext(ctx, &ownerID, `SELECT user_id FROM projects WHERE id = $1`, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrProjectNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get project owner: %w", err)
	}
	return ownerID, nil
}

func (r *projectRepository) Update(ctx context.Context, projectID int64, req model.UpdateProjectRequest) (*model.Project, error) {
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
	if req.IsPublic != nil {
		addSet("is_public", *req.IsPublic)
	}

	query := fmt.Sprintf(`UPDATE projects SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), arg)
	args = append(args, projectID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, model.ErrProjectNotFound
	}

	return r.GetByID(ctx, projectID)
}

func (r *projectRepository) Delete(ctx context.Context, tx *sqlx.Tx, projectID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) ListByUser(ctx context.Context, userID int64, publicOnly bool, offset, limit int) ([]model.Project, int, error) {
	where := `p.user_id = $1`
	if publicOnly {
		where += ` AND p.is_public = TRUE`
	}
	return r.list(ctx, where, []interface{}{userID}, offset, limit)
}

func (r *projectRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.Project, int, error) {
	pattern := "%" + query + "%"
	where := `p.is_public = TRUE AND (p.title ILIKE $1 OR p.description ILIKE $1)`
	return r.list(ctx, where, []interface{}{pattern}, offset, limit)
}

func (r *projectRepository) list(ctx context.Context, where string, args []interface{}, offset, limit int) ([]model.Project, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM projects p WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM projects p
		JOIN users u ON u.id = p.user_id
		WHERE %s
		ORDER BY p.created_at DESC
		OFFSET $%d LIMIT $%d
	`, projectSelectColumns, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	var rows []projectRow
	if err := r.db.SelectContext(ctx, &rows, pageQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]model.Project, len(rows))
	for i, row := range rows {
		projects[i] = row.toModel()
	}
	return projects, total, nil
}

func (r *projectRepository) IncrementAssetCount(ctx context.Context, tx *sqlx.Tx, projectID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE projects SET asset_count = asset_count + $1 WHERE id = $2`, delta, projectID)
	if err != nil {
		return fmt.Errorf("increment project asset count: %w", err)
	}
	return nil
}
