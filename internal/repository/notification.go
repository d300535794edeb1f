package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pixelshelf/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (user_id, actor_id, type, asset_id, comment_id, content, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		n.UserID, n.ActorID, n.Type, n.AssetID, n.CommentID, n.Content, n.Link,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List returns a page of the user's notifications, newest first, with the
// actor joined for display. By default archived notifications are hidden;
// ArchivedOnly flips to showing only them, UnreadOnly narrows to unread.
func (r *notificationRepository) List(ctx context.Context, userID int64, filter model.NotificationFilter, offset, limit int) ([]model.Notification, int, error) {
	where := `n.user_id = $1`
	if filter.ArchivedOnly {
		where += ` AND n.is_archived = TRUE`
	} else {
		where += ` AND n.is_archived = FALSE`
	}
	if filter.UnreadOnly {
		where += ` AND n.is_read = FALSE`
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM notifications n WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT n.id, n.user_id, n.actor_id, n.type, n.asset_id, n.comment_id,
		       n.content, n.link, n.is_read, n.is_archived, n.created_at,
		       u.id AS actor_join_id, u.username AS actor_username,
		       u.display_name AS actor_display_name, u.avatar_url AS actor_avatar_url
		FROM notifications n
		LEFT JOIN users u ON u.id = n.actor_id
		WHERE %s
		ORDER BY n.created_at DESC
		OFFSET $2 LIMIT $3
	`, where)

	type notifRow struct {
		ID               int64     `db:"id"`
		UserID           int64     `db:"user_id"`
		ActorID          *int64    `db:"actor_id"`
		Type             string    `db:"type"`
		AssetID          *int64    `db:"asset_id"`
		CommentID        *int64    `db:"comment_id"`
		Content          string    `db:"content"`
		Link             string    `db:"link"`
		IsRead           bool      `db:"is_read"`
		IsArchived       bool      `db:"is_archived"`
		CreatedAt        time.Time `db:"created_at"`
		ActorJoinID      *int64    `db:"actor_join_id"`
		ActorUsername    *string   `db:"actor_username"`
		ActorDisplayName *string   `db:"actor_display_name"`
		ActorAvatarURL   *string   `db:"actor_avatar_url"`
	}

	var rows []notifRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, offset, limit); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]model.Notification, len(rows))
	for i, row := range rows {
		n := model.Notification{
			ID:         row.ID,
			UserID:     row.UserID,
			ActorID:    row.ActorID,
			Type:       row.Type,
			AssetID:    row.AssetID,
			CommentID:  row.CommentID,
			Content:    row.Content,
			Link:       row.Link,
			IsRead:     row.IsRead,
			IsArchived: row.IsArchived,
			CreatedAt:  row.CreatedAt,
		}
		if row.ActorJoinID != nil && row.ActorUsername != nil {
			n.Actor = &model.UserSummary{
				ID:          *row.ActorJoinID,
				Username:    *row.ActorUsername,
				DisplayName: row.ActorDisplayName,
				AvatarURL:   row.ActorAvatarURL,
			}
		}
		notifications[i] = n
	}

	return notifications, total, nil
}

// MarkRead flips is_read on the given notifications. The user_id guard keeps
// one user from marking another user's notifications.
func (r *notificationRepository) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Archive also marks read: an archived notification no longer counts
// against the unread badge.
func (r *notificationRepository) Archive(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_archived = TRUE, is_read = TRUE WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("archive notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) ArchiveAll(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_archived = TRUE, is_read = TRUE WHERE user_id = $1 AND is_archived = FALSE`,
		userID)
	if err != nil {
		return fmt.Errorf("archive all notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE AND is_archived = FALSE`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
