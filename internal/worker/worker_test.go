package worker_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"pixelshelf/internal/cache"
	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
	"pixelshelf/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

// MockFollowerProvider simulates the follow graph.
type MockFollowerProvider struct {
	// followers maps userID -> list of follower IDs
	followers map[int64][]int64
}

func NewMockFollowerProvider() *MockFollowerProvider {
	return &MockFollowerProvider{followers: make(map[int64][]int64)}
}

func (m *MockFollowerProvider) AddFollower(userID, followerID int64) {
	m.followers[userID] = append(m.followers[userID], followerID)
}

func (m *MockFollowerProvider) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.followers[userID], nil
}

// MockAssetsProvider simulates recent-asset lookups for backfill/removal.
type MockAssetsProvider struct {
	// assets maps ownerID -> list of (assetID, timestamp)
	assets map[int64][]cache.AssetScore
}

func NewMockAssetsProvider() *MockAssetsProvider {
	return &MockAssetsProvider{assets: make(map[int64][]cache.AssetScore)}
}

func (m *MockAssetsProvider) AddAsset(ownerID, assetID int64, timestamp int64) {
	m.assets[ownerID] = append(m.assets[ownerID], cache.AssetScore{
		AssetID:   assetID,
		Timestamp: timestamp,
	})
}

func (m *MockAssetsProvider) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.AssetScore, error) {
	assets := m.assets[userID]
	if len(assets) > limit {
		return assets[:limit], nil
	}
	return assets, nil
}

// MockAssetResolver resolves asset rows for notification content.
type MockAssetResolver struct {
	assets map[int64]*model.Asset
}

func NewMockAssetResolver() *MockAssetResolver {
	return &MockAssetResolver{assets: make(map[int64]*model.Asset)}
}

func (m *MockAssetResolver) Put(asset *model.Asset) {
	m.assets[asset.ID] = asset
}

func (m *MockAssetResolver) GetByID(ctx context.Context, assetID int64) (*model.Asset, error) {
	if a, ok := m.assets[assetID]; ok {
		return a, nil
	}
	return nil, model.ErrAssetNotFound
}

// MockNotificationCreator records notification creation calls.
type MockNotificationCreator struct {
	followCalls  []followNotification
	likeCalls    []likeNotification
	commentCalls []commentNotification
}

type followNotification struct {
	UserID  int64
	ActorID int64
}

type likeNotification struct {
	UserID  int64
	ActorID int64
	AssetID int64
	Title   string
}

type commentNotification struct {
	UserID    int64
	ActorID   int64
	AssetID   int64
	CommentID int64
	Title     string
}

func (m *MockNotificationCreator) CreateFollowNotification(ctx context.Context, userID, actorID int64) error {
	m.followCalls = append(m.followCalls, followNotification{UserID: userID, ActorID: actorID})
	return nil
}

func (m *MockNotificationCreator) CreateLikeNotification(ctx context.Context, userID, actorID, assetID int64, assetTitle string) error {
	m.likeCalls = append(m.likeCalls, likeNotification{UserID: userID, ActorID: actorID, AssetID: assetID, Title: assetTitle})
	return nil
}

func (m *MockNotificationCreator) CreateCommentNotification(ctx context.Context, userID, actorID, assetID, commentID int64, assetTitle string) error {
	m.commentCalls = append(m.commentCalls, commentNotification{UserID: userID, ActorID: actorID, AssetID: assetID, CommentID: commentID, Title: assetTitle})
	return nil
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx := context.Background()
	client.FlushDB(ctx)
	client.Close()
}

func feedContains(t *testing.T, feedCache cache.FeedCache, userID, assetID int64) bool {
	t.Helper()
	size, err := feedCache.Size(context.Background(), userID)
	if err != nil {
		t.Fatalf("Size failed for user %d: %v", userID, err)
	}
	ids, err := feedCache.GetPage(context.Background(), userID, 0, int(size))
	if err != nil {
		t.Fatalf("GetPage failed for user %d: %v", userID, err)
	}
	for _, id := range ids {
		if id == assetID {
			return true
		}
	}
	return false
}

// =============================================================================
// Integration Tests
// =============================================================================

// TestAssetUploadedFanout verifies that a new asset lands in every
// follower's feed cache plus the owner's own.
func TestAssetUploadedFanout(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)
	followers := NewMockFollowerProvider()
	assets := NewMockAssetsProvider()
	resolver := NewMockAssetResolver()
	handler := worker.NewHandler(feedCache, followers, assets, resolver)

	// Owner (1) has followers 2, 3 and 4
	ownerID := int64(1)
	followers.AddFollower(ownerID, 2)
	followers.AddFollower(ownerID, 3)
	followers.AddFollower(ownerID, 4)

	assetID := int64(100)
	event := queue.ActivityEvent{
		Type:      queue.EventAssetUploaded,
		AssetID:   assetID,
		OwnerID:   ownerID,
		Timestamp: time.Now().Unix(),
	}

	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	for _, userID := range []int64{1, 2, 3, 4} {
		if !feedContains(t, feedCache, userID, assetID) {
			t.Errorf("Asset %d not found in user %d's feed", assetID, userID)
		}
		size, _ := feedCache.Size(ctx, userID)
		if size != 1 {
			t.Errorf("User %d's feed size: got %d, want 1", userID, size)
		}
	}
}

// TestAssetDeletedRemoval verifies that a deleted asset is removed from
// every follower's feed cache.
func TestAssetDeletedRemoval(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)
	followers := NewMockFollowerProvider()
	handler := worker.NewHandler(feedCache, followers, NewMockAssetsProvider(), NewMockAssetResolver())

	ownerID := int64(1)
	followers.AddFollower(ownerID, 2)
	followers.AddFollower(ownerID, 3)

	assetID := int64(100)
	now := time.Now().Unix()
	for _, userID := range []int64{1, 2, 3} {
		feedCache.AddAsset(ctx, userID, assetID, now)
	}

	event := queue.ActivityEvent{
		Type:      queue.EventAssetDeleted,
		AssetID:   assetID,
		OwnerID:   ownerID,
		Timestamp: now,
	}

	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	for _, userID := range []int64{1, 2, 3} {
		if feedContains(t, feedCache, userID, assetID) {
			t.Errorf("Asset %d should have been removed from user %d's feed", assetID, userID)
		}
	}
}

// TestUserFollowedBackfill verifies that following a user backfills their
// recent assets into the follower's feed and notifies the followed user.
func TestUserFollowedBackfill(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)
	assets := NewMockAssetsProvider()
	notifications := &MockNotificationCreator{}
	handler := worker.NewHandler(feedCache, NewMockFollowerProvider(), assets, NewMockAssetResolver())
	handler.SetNotificationCreator(notifications)

	followerID := int64(2)
	followedID := int64(1)

	now := time.Now().Unix()
	assets.AddAsset(followedID, 101, now-3600)
	assets.AddAsset(followedID, 102, now-1800)
	assets.AddAsset(followedID, 103, now-600)

	event := queue.ActivityEvent{
		Type:        queue.EventUserFollowed,
		FollowerID:  followerID,
		FollowingID: followedID,
		Timestamp:   now,
	}

	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	size, _ := feedCache.Size(ctx, followerID)
	if size != 3 {
		t.Errorf("Follower's feed size: got %d, want 3", size)
	}
	for _, assetID := range []int64{101, 102, 103} {
		if !feedContains(t, feedCache, followerID, assetID) {
			t.Errorf("Asset %d not found in follower's feed after follow", assetID)
		}
	}

	if len(notifications.followCalls) != 1 {
		t.Fatalf("Expected 1 follow notification, got %d", len(notifications.followCalls))
	}
	call := notifications.followCalls[0]
	if call.UserID != followedID || call.ActorID != followerID {
		t.Errorf("Follow notification = %+v, want recipient %d actor %d", call, followedID, followerID)
	}
}

// TestUserUnfollowedRemoval verifies that unfollowing removes the unfollowed
// user's assets from the follower's feed while leaving others' intact.
func TestUserUnfollowedRemoval(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)
	assets := NewMockAssetsProvider()
	handler := worker.NewHandler(feedCache, NewMockFollowerProvider(), assets, NewMockAssetResolver())

	followerID := int64(2)
	unfollowedID := int64(1)
	otherUserID := int64(3)

	now := time.Now().Unix()

	// Unfollowed user's assets (to be removed)
	assets.AddAsset(unfollowedID, 101, now-3600)
	assets.AddAsset(unfollowedID, 102, now-1800)

	// Someone else's assets (should remain)
	assets.AddAsset(otherUserID, 301, now-2400)
	assets.AddAsset(otherUserID, 302, now-1200)

	feedCache.AddAsset(ctx, followerID, 101, now-3600)
	feedCache.AddAsset(ctx, followerID, 102, now-1800)
	feedCache.AddAsset(ctx, followerID, 301, now-2400)
	feedCache.AddAsset(ctx, followerID, 302, now-1200)

	event := queue.ActivityEvent{
		Type:        queue.EventUserUnfollowed,
		FollowerID:  followerID,
		FollowingID: unfollowedID,
		Timestamp:   now,
	}

	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	for _, assetID := range []int64{101, 102} {
		if feedContains(t, feedCache, followerID, assetID) {
			t.Errorf("Asset %d should have been removed from feed", assetID)
		}
	}
	for _, assetID := range []int64{301, 302} {
		if !feedContains(t, feedCache, followerID, assetID) {
			t.Errorf("Asset %d should still be in feed", assetID)
		}
	}

	size, _ := feedCache.Size(ctx, followerID)
	if size != 2 {
		t.Errorf("Feed size after unfollow: got %d, want 2", size)
	}
}

// TestLikeAndCommentNotifications verifies notification creation for likes
// and comments, including the self-action and deleted-asset cases.
func TestLikeAndCommentNotifications(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)
	resolver := NewMockAssetResolver()
	notifications := &MockNotificationCreator{}
	handler := worker.NewHandler(feedCache, NewMockFollowerProvider(), NewMockAssetsProvider(), resolver)
	handler.SetNotificationCreator(notifications)

	resolver.Put(&model.Asset{ID: 100, UserID: 1, Title: "Sprite Pack"})

	// A like from another user creates a notification with the asset title
	err := handler.HandleEvent(ctx, queue.ActivityEvent{
		Type:    queue.EventAssetLiked,
		AssetID: 100,
		OwnerID: 1,
		ActorID: 2,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(notifications.likeCalls) != 1 {
		t.Fatalf("Expected 1 like notification, got %d", len(notifications.likeCalls))
	}
	if notifications.likeCalls[0].Title != "Sprite Pack" {
		t.Errorf("Notification title = %q, want Sprite Pack", notifications.likeCalls[0].Title)
	}

	// Liking your own asset creates nothing
	handler.HandleEvent(ctx, queue.ActivityEvent{
		Type:    queue.EventAssetLiked,
		AssetID: 100,
		OwnerID: 1,
		ActorID: 1,
	})
	if len(notifications.likeCalls) != 1 {
		t.Error("Self-like should not create a notification")
	}

	// A like on a deleted asset is dropped without error
	err = handler.HandleEvent(ctx, queue.ActivityEvent{
		Type:    queue.EventAssetLiked,
		AssetID: 999,
		OwnerID: 1,
		ActorID: 2,
	})
	if err != nil {
		t.Errorf("Like on deleted asset should not fail: %v", err)
	}
	if len(notifications.likeCalls) != 1 {
		t.Error("Like on deleted asset should not create a notification")
	}

	// A comment notification carries the comment id
	err = handler.HandleEvent(ctx, queue.ActivityEvent{
		Type:      queue.EventAssetCommented,
		AssetID:   100,
		CommentID: 55,
		OwnerID:   1,
		ActorID:   2,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(notifications.commentCalls) != 1 {
		t.Fatalf("Expected 1 comment notification, got %d", len(notifications.commentCalls))
	}
	if notifications.commentCalls[0].CommentID != 55 {
		t.Errorf("CommentID = %d, want 55", notifications.commentCalls[0].CommentID)
	}
}

// =============================================================================
// Stream + Worker Integration Test
// =============================================================================

// TestStreamToWorkerIntegration tests the complete flow:
// Publisher -> Stream -> Consumer -> Handler -> Cache
func TestStreamToWorkerIntegration(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()

	feedCache := cache.NewFeedCache(client)
	publisher := queue.NewPublisher(client)
	consumer := queue.NewConsumer(client)
	followers := NewMockFollowerProvider()
	handler := worker.NewHandler(feedCache, followers, NewMockAssetsProvider(), NewMockAssetResolver())

	ownerID := int64(1)
	followers.AddFollower(ownerID, 2)
	followers.AddFollower(ownerID, 3)

	if err := consumer.EnsureGroup(ctx, queue.StreamActivity, queue.ConsumerGroupActivity); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}

	assetID := int64(100)
	event := queue.NewAssetUploadedEvent(assetID, ownerID)
	if _, err := publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	messages, err := consumer.Read(ctx, queue.StreamActivity, queue.ConsumerGroupActivity, "test-worker", 10, time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}

	msg := messages[0]
	if err := handler.HandleEvent(ctx, msg.Event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if err := consumer.Ack(ctx, queue.StreamActivity, queue.ConsumerGroupActivity, msg.ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	for _, userID := range []int64{1, 2, 3} {
		if !feedContains(t, feedCache, userID, assetID) {
			t.Errorf("Asset not found in user %d's feed", userID)
		}
	}

	pending, _ := consumer.Pending(ctx, queue.StreamActivity, queue.ConsumerGroupActivity)
	if pending != 0 {
		t.Errorf("Expected 0 pending messages, got %d", pending)
	}
}
