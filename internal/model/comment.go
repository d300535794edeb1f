package model

import (
	"errors"
	"time"
)

// Comment belongs to an asset and a user.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	AssetID   int64        `db:"asset_id" json:"assetId"`
	UserID    int64        `db:"user_id" json:"-"`
	Content   string       `db:"content" json:"content"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest is the request body for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CommentListResponse is the paginated comment list response.
type CommentListResponse struct {
	Comments   []Comment  `json:"comments"`
	Pagination Pagination `json:"pagination"`
}

// Comment constraints
const (
	MaxCommentLength = 500
)

// Comment errors
var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotCommentAuthor = errors.New("not the author of this comment")
	ErrCannotDelComment = errors.New("only the comment author or asset owner can delete this comment")
	ErrContentRequired  = errors.New("comment content is required")
	ErrContentTooLong   = errors.New("comment content too long")
)
