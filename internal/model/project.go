package model

import (
	"errors"
	"time"
)

// Project groups a user's assets.
type Project struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"userId"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnailUrl"`
	IsPublic     bool      `db:"is_public" json:"isPublic"`
	AssetCount   int       `db:"asset_count" json:"assetCount"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	Author *UserSummary `json:"author,omitempty"`
}

// CreateProjectRequest is the POST /api/projects body.
type CreateProjectRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"isPublic"`
}

// UpdateProjectRequest is the PATCH /api/projects/{id} body.
type UpdateProjectRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"isPublic"`
}

// ProjectListResponse is the paginated project list response.
type ProjectListResponse struct {
	Projects   []Project  `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotProjectOwner = errors.New("not the owner of this project")
)
