package service

// Shared mock repositories for service tests. Each mock implements the
// repository interface with function fields so individual tests can define
// exactly the behavior they need; unset fields fall back to benign defaults.

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/cache"
	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
)

// -----------------------------------------------------------------------------
// Transaction runner fake
// -----------------------------------------------------------------------------

// fakeTxRunner satisfies database.TxRunner without a database: the
// transactional function runs with a nil tx handle, which the repository
// mocks ignore.
type fakeTxRunner struct {
	beginErr error
}

func (f *fakeTxRunner) RunTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

// -----------------------------------------------------------------------------
// Publisher mock
// -----------------------------------------------------------------------------

type mockPublisher struct {
	published []queue.ActivityEvent
	publishFn func(ctx context.Context, stream string, event queue.ActivityEvent) (string, error)
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

// -----------------------------------------------------------------------------
// UserRepository mock
// -----------------------------------------------------------------------------

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	updateProfileFn    func(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error)
	searchFn           func(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error)
	setTierFn          func(ctx context.Context, userID int64, tier string) error

	createCalls  int
	setTierCalls []setTierCall

	followerCountCalls  []countCall
	followingCountCalls []countCall
}

type setTierCall struct {
	UserID int64
	Tier   string
}

// countCall records a counter adjustment for one row.
type countCall struct {
	ID    int64
	Delta int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, req)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) UpdateAvatar(ctx context.Context, userID int64, url, key string) error {
	return nil
}

func (m *mockUserRepository) SetTier(ctx context.Context, userID int64, tier string) error {
	m.setTierCalls = append(m.setTierCalls, setTierCall{UserID: userID, Tier: tier})
	if m.setTierFn != nil {
		return m.setTierFn(ctx, userID, tier)
	}
	return nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockUserRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	m.followerCountCalls = append(m.followerCountCalls, countCall{ID: userID, Delta: delta})
	return nil
}

func (m *mockUserRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	m.followingCountCalls = append(m.followingCountCalls, countCall{ID: userID, Delta: delta})
	return nil
}

func (m *mockUserRepository) IncrementAssetCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return nil
}

func (m *mockUserRepository) IncrementProjectCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return nil
}

// -----------------------------------------------------------------------------
// FollowRepository mock
// -----------------------------------------------------------------------------

type mockFollowRepository struct {
	createFn       func(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) (bool, error)
	existsFn       func(ctx context.Context, followerID, followingID int64) (bool, error)
	getFollowersFn func(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error)
	getFollowingFn func(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error)
	checkFollowsFn func(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, followerID, followingID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) error {
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followingIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}

func (m *mockFollowRepository) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}

// -----------------------------------------------------------------------------
// NotificationRepository mock
// -----------------------------------------------------------------------------

type mockNotificationRepository struct {
	createFn      func(ctx context.Context, n *model.Notification) error
	listFn        func(ctx context.Context, userID int64, filter model.NotificationFilter, offset, limit int) ([]model.Notification, int, error)
	unreadCountFn func(ctx context.Context, userID int64) (int, error)

	createdNotifications []*model.Notification

	markReadCalls    [][]int64
	markAllReadCalls int
	archiveCalls     [][]int64
	archiveAllCalls  int
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	m.createdNotifications = append(m.createdNotifications, n)
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	n.ID = int64(len(m.createdNotifications))
	n.CreatedAt = time.Now()
	return nil
}

func (m *mockNotificationRepository) List(ctx context.Context, userID int64, filter model.NotificationFilter, offset, limit int) ([]model.Notification, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, filter, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	m.markReadCalls = append(m.markReadCalls, ids)
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	m.markAllReadCalls++
	return nil
}

func (m *mockNotificationRepository) Archive(ctx context.Context, userID int64, ids []int64) error {
	m.archiveCalls = append(m.archiveCalls, ids)
	return nil
}

func (m *mockNotificationRepository) ArchiveAll(ctx context.Context, userID int64) error {
	m.archiveAllCalls++
	return nil
}

func (m *mockNotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if m.unreadCountFn != nil {
		return m.unreadCountFn(ctx, userID)
	}
	return 0, nil
}

// -----------------------------------------------------------------------------
// AssetRepository mock
// -----------------------------------------------------------------------------

type mockAssetRepository struct {
	getByIDFn    func(ctx context.Context, assetID int64) (*model.Asset, error)
	getByIDsFn   func(ctx context.Context, assetIDs []int64) ([]model.Asset, error)
	getOwnerIDFn func(ctx context.Context, assetID int64) (int64, error)
	searchFn     func(ctx context.Context, query string, offset, limit int) ([]model.Asset, int, error)
	checkLikesFn func(ctx context.Context, userID int64, assetIDs []int64) (map[int64]bool, error)

	commentCountCalls []countCall
}

func (m *mockAssetRepository) Create(ctx context.Context, tx *sqlx.Tx, asset *model.Asset) error {
	return nil
}

func (m *mockAssetRepository) GetByID(ctx context.Context, assetID int64) (*model.Asset, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, assetID)
	}
	return nil, model.ErrAssetNotFound
}

func (m *mockAssetRepository) GetByIDs(ctx context.Context, assetIDs []int64) ([]model.Asset, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, assetIDs)
	}
	return nil, nil
}

func (m *mockAssetRepository) GetOwnerID(ctx context.Context, assetID int64) (int64, error) {
	if m.getOwnerIDFn != nil {
		return m.getOwnerIDFn(ctx, assetID)
	}
	return 0, model.ErrAssetNotFound
}

func (m *mockAssetRepository) Exists(ctx context.Context, assetID int64) (bool, error) {
	return false, nil
}

func (m *mockAssetRepository) Update(ctx context.Context, assetID int64, req model.UpdateAssetRequest) (*model.Asset, error) {
	return nil, model.ErrAssetNotFound
}

func (m *mockAssetRepository) Delete(ctx context.Context, tx *sqlx.Tx, assetID int64) error {
	return nil
}

func (m *mockAssetRepository) ListByUser(ctx context.Context, userID int64, publicOnly bool, offset, limit int) ([]model.Asset, int, error) {
	return nil, 0, nil
}

func (m *mockAssetRepository) ListByProject(ctx context.Context, projectID int64, offset, limit int) ([]model.Asset, int, error) {
	return nil, 0, nil
}

func (m *mockAssetRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.Asset, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockAssetRepository) Like(ctx context.Context, tx *sqlx.Tx, assetID, userID int64) (bool, error) {
	return true, nil
}

func (m *mockAssetRepository) Unlike(ctx context.Context, tx *sqlx.Tx, assetID, userID int64) error {
	return nil
}

func (m *mockAssetRepository) CheckLikes(ctx context.Context, userID int64, assetIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, assetIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockAssetRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, assetID int64, delta int) error {
	return nil
}

func (m *mockAssetRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, assetID int64, delta int) error {
	m.commentCountCalls = append(m.commentCountCalls, countCall{ID: assetID, Delta: delta})
	return nil
}

func (m *mockAssetRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.AssetScore, error) {
	return nil, nil
}

func (m *mockAssetRepository) GetFeedAssetIDs(ctx context.Context, followingIDs []int64, limit int) ([]cache.AssetScore, error) {
	return nil, nil
}

// -----------------------------------------------------------------------------
// ProjectRepository mock
// -----------------------------------------------------------------------------

type mockProjectRepository struct {
	getByIDFn func(ctx context.Context, projectID int64) (*model.Project, error)
	searchFn  func(ctx context.Context, query string, offset, limit int) ([]model.Project, int, error)
}

func (m *mockProjectRepository) Create(ctx context.Context, tx *sqlx.Tx, project *model.Project) error {
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, projectID int64) (*model.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, projectID)
	}
	return nil, model.ErrProjectNotFound
}

func (m *mockProjectRepository) GetOwnerID(ctx context.Context, projectID int64) (int64, error) {
	return 0, model.ErrProjectNotFound
}

func (m *mockProjectRepository) Update(ctx context.Context, projectID int64, req model.UpdateProjectRequest) (*model.Project, error) {
	return nil, model.ErrProjectNotFound
}

func (m *mockProjectRepository) Delete(ctx context.Context, tx *sqlx.Tx, projectID int64) error {
	return nil
}

func (m *mockProjectRepository) ListByUser(ctx context.Context, userID int64, publicOnly bool, offset, limit int) ([]model.Project, int, error) {
	return nil, 0, nil
}

func (m *mockProjectRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.Project, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockProjectRepository) IncrementAssetCount(ctx context.Context, tx *sqlx.Tx, projectID int64, delta int) error {
	return nil
}

// -----------------------------------------------------------------------------
// SubscriptionRepository mock
// -----------------------------------------------------------------------------

type mockSubscriptionRepository struct {
	getByUserIDFn func(ctx context.Context, userID int64) (*model.Subscription, error)
	upsertFn      func(ctx context.Context, sub *model.Subscription) error

	upserted []*model.Subscription
}

func (m *mockSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*model.Subscription, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, model.ErrSubscriptionNotFound
}

func (m *mockSubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) error {
	m.upserted = append(m.upserted, sub)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, sub)
	}
	return nil
}
