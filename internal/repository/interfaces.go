package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/cache"
	"pixelshelf/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID int64, url, key string) error
	SetTier(ctx context.Context, userID int64, tier string) error
	Search(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error)
	IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementAssetCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementProjectCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) error
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error)
	GetFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error)
	CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID int64, filter model.NotificationFilter, offset, limit int) ([]model.Notification, int, error)
	MarkRead(ctx context.Context, userID int64, ids []int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Archive(ctx context.Context, userID int64, ids []int64) error
	ArchiveAll(ctx context.Context, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, assetID, userID int64, content string) (*model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	Update(ctx context.Context, commentID int64, content string) (*model.Comment, error)
	Delete(ctx context.Context, tx *sqlx.Tx, commentID int64) error
	ListByAsset(ctx context.Context, assetID int64, offset, limit int) ([]model.Comment, int, error)
}

type AssetRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, asset *model.Asset) error
	GetByID(ctx context.Context, assetID int64) (*model.Asset, error)
	GetByIDs(ctx context.Context, assetIDs []int64) ([]model.Asset, error)
	GetOwnerID(ctx context.Context, assetID int64) (int64, error)
	Exists(ctx context.Context, assetID int64) (bool, error)
	Update(ctx context.Context, assetID int64, req model.UpdateAssetRequest) (*model.Asset, error)
	Delete(ctx context.Context, tx *sqlx.Tx, assetID int64) error
	ListByUser(ctx context.Context, userID int64, publicOnly bool, offset, limit int) ([]model.Asset, int, error)
	ListByProject(ctx context.Context, projectID int64, offset, limit int) ([]model.Asset, int, error)
	Search(ctx context.Context, query string, offset, limit int) ([]model.Asset, int, error)
	Like(ctx context.Context, tx *sqlx.Tx, assetID, userID int64) (bool, error)
	Unlike(ctx context.Context, tx *sqlx.Tx, assetID, userID int64) error
	CheckLikes(ctx context.Context, userID int64, assetIDs []int64) (map[int64]bool, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, assetID int64, delta int) error
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, assetID int64, delta int) error
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.AssetScore, error)
	GetFeedAssetIDs(ctx context.Context, followingIDs []int64, limit int) ([]cache.AssetScore, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, project *model.Project) error
	GetByID(ctx context.Context, projectID int64) (*model.Project, error)
	GetOwnerID(ctx context.Context, projectID int64) (int64, error)
	Update(ctx context.Context, projectID int64, req model.UpdateProjectRequest) (*model.Project, error)
	Delete(ctx context.Context, tx *sqlx.Tx, projectID int64) error
	ListByUser(ctx context.Context, userID int64, publicOnly bool, offset, limit int) ([]model.Project, int, error)
	Search(ctx context.Context, query string, offset, limit int) ([]model.Project, int, error)
	IncrementAssetCount(ctx context.Context, tx *sqlx.Tx, projectID int64, delta int) error
}

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Subscription, error)
	Upsert(ctx context.Context, sub *model.Subscription) error
}
