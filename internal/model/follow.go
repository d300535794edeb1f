package model

import (
	"errors"
	"time"
)

type Follow struct {
	FollowerID  int64     `db:"follower_id" json:"followerId"`
	FollowingID int64     `db:"following_id" json:"followingId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// UserSummary is the compact user shape embedded in lists and joins.
type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	DisplayName *string `db:"display_name" json:"displayName"`
	AvatarURL   *string `db:"avatar_url" json:"avatarUrl"`
	IsFollowing bool    `json:"isFollowing"`
}

// FollowRequest is the body of POST/DELETE /api/follow.
type FollowRequest struct {
	TargetUserID int64 `json:"targetUserId" validate:"required"`
}

// FollowListResponse is the paginated followers/following response.
type FollowListResponse struct {
	Users      []UserSummary `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
