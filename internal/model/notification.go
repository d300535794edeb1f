package model

import (
	"errors"
	"time"
)

// Notification types
const (
	NotificationTypeFollow  = "follow"
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeSystem  = "system"
)

// Notification is a persisted event record surfaced to a receiving user.
// After creation only is_read and is_archived ever change.
type Notification struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"-"` // recipient
	ActorID    *int64    `db:"actor_id" json:"actorId,omitempty"`
	Type       string    `db:"type" json:"type"`
	AssetID    *int64    `db:"asset_id" json:"assetId,omitempty"`
	CommentID  *int64    `db:"comment_id" json:"commentId,omitempty"`
	Content    string    `db:"content" json:"content"`
	Link       string    `db:"link" json:"link"`
	IsRead     bool      `db:"is_read" json:"isRead"`
	IsArchived bool      `db:"is_archived" json:"isArchived"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`

	// Joined actor info for display
	Actor *UserSummary `json:"actor,omitempty"`
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	UnreadOnly   bool
	ArchivedOnly bool
}

// MarkNotificationsRequest is the PATCH /api/notifications body.
// Either ids or all must be set. When archive is true the matched
// notifications are archived instead of marked read.
type MarkNotificationsRequest struct {
	IDs     []int64 `json:"ids"`
	All     bool    `json:"all"`
	Archive bool    `json:"archive"`
}

// NotificationListResponse is the paginated notification list response.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
	Pagination    Pagination     `json:"pagination"`
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNothingToMark        = errors.New("either ids or all must be provided")
)
