package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Asset file types
const (
	FileTypeImage    = "image"
	FileTypeModel3D  = "model3d"
	FileTypeAudio    = "audio"
	FileTypeDocument = "document"
	FileTypeOther    = "other"
)

// Asset is a content unit uploaded by a user, optionally grouped in a project.
type Asset struct {
	ID           int64          `db:"id" json:"id"`
	UserID       int64          `db:"user_id" json:"userId"`
	ProjectID    *int64         `db:"project_id" json:"projectId,omitempty"`
	Title        string         `db:"title" json:"title"`
	Description  *string        `db:"description" json:"description"`
	FileURL      string         `db:"file_url" json:"fileUrl"`
	FileKey      string         `db:"file_key" json:"-"`
	ThumbnailURL *string        `db:"thumbnail_url" json:"thumbnailUrl"`
	ThumbnailKey *string        `db:"thumbnail_key" json:"-"`
	FileType     string         `db:"file_type" json:"fileType"`
	FileSize     int64          `db:"file_size" json:"fileSize"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	IsPublic     bool           `db:"is_public" json:"isPublic"`
	LikeCount    int            `db:"like_count" json:"likeCount"`
	CommentCount int            `db:"comment_count" json:"commentCount"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`

	// Joined/derived fields
	Author  *UserSummary `json:"author,omitempty"`
	IsLiked bool         `json:"isLiked"`
}

// CreateAssetRequest holds the metadata fields of the multipart upload form.
type CreateAssetRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	ProjectID   *int64   `json:"projectId"`
	Tags        []string `json:"tags" validate:"max=10,dive,min=1,max=30"`
	IsPublic    *bool    `json:"isPublic"`
}

// UpdateAssetRequest is the PATCH /api/assets/{id} body.
type UpdateAssetRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	ProjectID   *int64   `json:"projectId"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	IsPublic    *bool    `json:"isPublic"`
}

// AssetListResponse is the paginated asset list response.
type AssetListResponse struct {
	Assets     []Asset    `json:"assets"`
	Pagination Pagination `json:"pagination"`
}

var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrNotAssetOwner  = errors.New("not the owner of this asset")
	ErrAlreadyLiked   = errors.New("asset already liked")
	ErrNotLiked       = errors.New("asset not liked")
	ErrInvalidFileTag = errors.New("invalid tag")
)
