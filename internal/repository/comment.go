package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, assetID, userID int64, content string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (asset_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, asset_id, user_id, content, created_at, updated_at
	`
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, assetID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment,
		`SELECT id, asset_id, user_id, content, created_at, updated_at FROM comments WHERE id = $1`,
		commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
	query := `
		UPDATE comments SET content = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, asset_id, user_id, content, created_at, updated_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, content, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

// ListByAsset returns a page of comments with authors joined, oldest first
// (conversation order).
func (r *commentRepository) ListByAsset(ctx context.Context, assetID int64, offset, limit int) ([]model.Comment, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE asset_id = $1`, assetID)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := `
		SELECT c.id, c.asset_id, c.user_id, c.content, c.created_at, c.updated_at,
		       u.id AS author_id, u.username AS author_username,
		       u.display_name AS author_display_name, u.avatar_url AS author_avatar_url
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.asset_id = $1
		ORDER BY c.created_at ASC
		OFFSET $2 LIMIT $3
	`

	type commentRow struct {
		ID                int64     `db:"id"`
		AssetID           int64     `db:"asset_id"`
		UserID            int64     `db:"user_id"`
		Content           string    `db:"content"`
		CreatedAt         time.Time `db:"created_at"`
		UpdatedAt         time.Time `db:"updated_at"`
		AuthorID          int64     `db:"author_id"`
		AuthorUsername    string    `db:"author_username"`
		AuthorDisplayName *string   `db:"author_display_name"`
		AuthorAvatarURL   *string   `db:"author_avatar_url"`
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, assetID, offset, limit); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:        row.ID,
			AssetID:   row.AssetID,
			UserID:    row.UserID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			Author: &model.UserSummary{
				ID:          row.AuthorID,
				Username:    row.AuthorUsername,
				DisplayName: row.AuthorDisplayName,
				AvatarURL:   row.AuthorAvatarURL,
			},
		}
	}

	return comments, total, nil
}
