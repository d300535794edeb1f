package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/model"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hashed, display_name, tier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.PasswordHashed, user.DisplayName, user.Tier,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// UpdateProfile builds the SET clause from the provided fields only, so a
// PATCH with a subset of fields leaves the rest untouched.
func (r *userRepository) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	arg := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, arg))
		args = append(args, value)
		arg++
	}

	if req.DisplayName != nil {
		addSet("display_name", *req.DisplayName)
	}
	if req.Bio != nil {
		addSet("bio", *req.Bio)
	}
	if req.Location != nil {
		addSet("location", *req.Location)
	}
	if req.Website != nil {
		addSet("website", *req.Website)
	}
	if req.GithubURL != nil {
		addSet("github_url", *req.GithubURL)
	}
	if req.TwitterURL != nil {
		addSet("twitter_url", *req.TwitterURL)
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING *`,
		strings.Join(sets, ", "), arg)
	args = append(args, userID)

	var user model.User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, userID int64, url, key string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET avatar_url = $1, avatar_key = $2, updated_at = now() WHERE id = $3`,
		url, key, userID)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetTier(ctx context.Context, userID int64, tier string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET tier = $1, updated_at = now() WHERE id = $2`, tier, userID)
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Search matches username and display name by prefix/substring, most
// followed first so well-known creators surface on short queries.
func (r *userRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error) {
	pattern := "%" + query + "%"

	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM users
		WHERE username ILIKE $1 OR display_name ILIKE $1
	`, pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("count user search: %w", err)
	}

	var users []model.UserSummary
	err = r.db.SelectContext(ctx, &users, `
		SELECT id, username, display_name, avatar_url
		FROM users
		WHERE username ILIKE $1 OR display_name ILIKE $1
		ORDER BY follower_count DESC, id
		OFFSET $2 LIMIT $3
	`, pattern, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("search users: %w", err)
	}

	return users, total, nil
}

func (r *userRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET follower_count = follower_count + $1 WHERE id = $2`, delta, userID)
	if err != nil {
		return fmt.Errorf("increment follower count: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET following_count = following_count + $1 WHERE id = $2`, delta, userID)
	if err != nil {
		return fmt.Errorf("increment following count: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementAssetCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET asset_count = asset_count + $1 WHERE id = $2`, delta, userID)
	if err != nil {
		return fmt.Errorf("increment asset count: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementProjectCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET project_count = project_count + $1 WHERE id = $2`, delta, userID)
	if err != nil {
		return fmt.Errorf("increment project count: %w", err)
	}
	return nil
}
