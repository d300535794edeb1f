package model

import (
	"errors"
	"time"
)

// Subscription tiers
const (
	TierFree = "free"
	TierPro  = "pro"
)

// User represents a PixelShelf account.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"-"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	DisplayName    *string   `db:"display_name" json:"displayName"`
	Bio            *string   `db:"bio" json:"bio"`
	Location       *string   `db:"location" json:"location"`
	AvatarURL      *string   `db:"avatar_url" json:"avatarUrl"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	BannerURL      *string   `db:"banner_url" json:"bannerUrl"`
	BannerKey      *string   `db:"banner_key" json:"-"`
	Website        *string   `db:"website" json:"website"`
	GithubURL      *string   `db:"github_url" json:"githubUrl"`
	TwitterURL     *string   `db:"twitter_url" json:"twitterUrl"`
	Tier           string    `db:"tier" json:"tier"`
	FollowerCount  int       `db:"follower_count" json:"followerCount"`
	FollowingCount int       `db:"following_count" json:"followingCount"`
	AssetCount     int       `db:"asset_count" json:"assetCount"`
	ProjectCount   int       `db:"project_count" json:"projectCount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile is a user as seen by a viewer (adds follow state).
type Profile struct {
	User
	IsFollowing bool `json:"isFollowing"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"max=50"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the PATCH /api/users/profile payload.
// Pointer fields distinguish "not provided" from "set to empty".
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=50"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	Website     *string `json:"website" validate:"omitempty,url,max=200"`
	GithubURL   *string `json:"githubUrl" validate:"omitempty,url,max=200"`
	TwitterURL  *string `json:"twitterUrl" validate:"omitempty,url,max=200"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// IsEmpty reports whether the request contains no updatable fields.
func (r UpdateProfileRequest) IsEmpty() bool {
	return r.DisplayName == nil && r.Bio == nil && r.Location == nil &&
		r.Website == nil && r.GithubURL == nil && r.TwitterURL == nil
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
