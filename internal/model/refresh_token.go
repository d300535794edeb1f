package model

import (
	"errors"
	"time"
)

// RefreshToken is a stored, hashed refresh token. Raw values are never persisted.
type RefreshToken struct {
	ID         string     `db:"id"`
	UserID     int64      `db:"user_id"`
	TokenHash  string     `db:"token_hash"`
	ExpiresAt  time.Time  `db:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
	ReplacedBy *string    `db:"replaced_by"`
	DeviceInfo *string    `db:"device_info"`
	IPAddress  *string    `db:"ip_address"`
	CreatedAt  time.Time  `db:"created_at"`
}

// IsExpired reports whether the token is past its expiry.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsRevoked reports whether the token has been revoked.
// A revoked token presented again indicates reuse (possible theft).
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// TokenPair is the response to login/register/refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// RefreshRequest is the POST /api/auth/refresh body.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest is the POST /api/auth/logout body.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Error codes attached to 401 responses so clients can distinguish
// an expired access token from an invalid one.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenReused   = errors.New("refresh token reuse detected")
)
