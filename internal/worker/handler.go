package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"pixelshelf/internal/cache"
	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
)

// FollowerProvider abstracts the follow graph so workers don't depend on
// the repository package directly.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RecentAssetsProvider fetches a user's recent assets as (id, timestamp)
// pairs for feed backfill and removal.
type RecentAssetsProvider interface {
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.AssetScore, error)
}

// AssetProvider resolves asset rows for notification content.
type AssetProvider interface {
	GetByID(ctx context.Context, assetID int64) (*model.Asset, error)
}

// NotificationCreator lets the worker create notifications without a
// direct dependency on the service layer.
type NotificationCreator interface {
	CreateFollowNotification(ctx context.Context, userID, actorID int64) error
	CreateLikeNotification(ctx context.Context, userID, actorID, assetID int64, assetTitle string) error
	CreateCommentNotification(ctx context.Context, userID, actorID, assetID, commentID int64, assetTitle string) error
}

// Handler applies activity events: feed fan-out and notification creation.
type Handler struct {
	feedCache     cache.FeedCache
	followers     FollowerProvider
	assets        RecentAssetsProvider
	assetResolver AssetProvider
	notifications NotificationCreator // nil when notifications are not wired
}

func NewHandler(
	feedCache cache.FeedCache,
	followers FollowerProvider,
	assets RecentAssetsProvider,
	assetResolver AssetProvider,
) *Handler {
	return &Handler{
		feedCache:     feedCache,
		followers:     followers,
		assets:        assets,
		assetResolver: assetResolver,
	}
}

// SetNotificationCreator wires notification creation (optional).
func (h *Handler) SetNotificationCreator(nc NotificationCreator) {
	h.notifications = nc
}

// HandleEvent routes an event to its handler.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventAssetUploaded:
		err = h.handleAssetUploaded(ctx, event)
	case queue.EventAssetDeleted:
		err = h.handleAssetDeleted(ctx, event)
	case queue.EventUserFollowed:
		err = h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		err = h.handleUserUnfollowed(ctx, event)
	case queue.EventAssetLiked:
		err = h.handleAssetLiked(ctx, event)
	case queue.EventAssetCommented:
		err = h.handleAssetCommented(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleAssetUploaded fans a new asset out to every follower's feed cache,
// plus the owner's own feed.
func (h *Handler) handleAssetUploaded(ctx context.Context, event queue.ActivityEvent) error {
	followers, err := h.followers.GetFollowerIDs(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.AddAsset(ctx, followerID, event.AssetID, event.Timestamp); err != nil {
			log.Printf("[Worker] AssetUploaded: failed to add to user=%d err=%v", followerID, err)
			failCount++
			// Keep going; one follower's cache failure shouldn't stop the fan-out
		}
	}

	if err := h.feedCache.AddAsset(ctx, event.OwnerID, event.AssetID, event.Timestamp); err != nil {
		log.Printf("[Worker] AssetUploaded: failed to add to owner's own feed err=%v", err)
	}

	log.Printf("[Worker] AssetUploaded DONE: asset=%d fanout=%d failed=%d",
		event.AssetID, len(followers)+1, failCount)
	return nil
}

// handleAssetDeleted removes the asset from every follower's feed cache.
func (h *Handler) handleAssetDeleted(ctx context.Context, event queue.ActivityEvent) error {
	followers, err := h.followers.GetFollowerIDs(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.RemoveAsset(ctx, followerID, event.AssetID); err != nil {
			log.Printf("[Worker] AssetDeleted: failed to remove from user=%d err=%v", followerID, err)
			failCount++
		}
	}

	if err := h.feedCache.RemoveAsset(ctx, event.OwnerID, event.AssetID); err != nil {
		log.Printf("[Worker] AssetDeleted: failed to remove from owner's own feed err=%v", err)
	}

	log.Printf("[Worker] AssetDeleted DONE: asset=%d fanout=%d failed=%d",
		event.AssetID, len(followers)+1, failCount)
	return nil
}

// handleUserFollowed backfills the follower's feed with the followed user's
// recent assets and notifies the followed user.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.ActivityEvent) error {
	const backfillLimit = 20
	assets, err := h.assets.GetRecentByUser(ctx, event.FollowingID, backfillLimit)
	if err != nil {
		return fmt.Errorf("get recent assets: %w", err)
	}

	var failCount int
	for _, a := range assets {
		if err := h.feedCache.AddAsset(ctx, event.FollowerID, a.AssetID, a.Timestamp); err != nil {
			log.Printf("[Worker] UserFollowed: failed to add asset=%d err=%v", a.AssetID, err)
			failCount++
		}
	}

	log.Printf("[Worker] UserFollowed DONE: follower=%d backfilled=%d failed=%d",
		event.FollowerID, len(assets), failCount)

	if h.notifications != nil {
		if err := h.notifications.CreateFollowNotification(ctx, event.FollowingID, event.FollowerID); err != nil {
			log.Printf("[Worker] UserFollowed: failed to create notification: %v", err)
		}
	}

	return nil
}

// handleUserUnfollowed removes the unfollowed user's assets from the
// follower's feed cache.
func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.ActivityEvent) error {
	// Higher limit than backfill: anything of theirs still cached should go
	const removeLimit = 100
	assets, err := h.assets.GetRecentByUser(ctx, event.FollowingID, removeLimit)
	if err != nil {
		return fmt.Errorf("get assets to remove: %w", err)
	}

	if len(assets) == 0 {
		return nil
	}

	assetIDs := make([]int64, len(assets))
	for i, a := range assets {
		assetIDs[i] = a.AssetID
	}

	if err := h.feedCache.RemoveAssets(ctx, event.FollowerID, assetIDs); err != nil {
		return fmt.Errorf("remove assets from feed: %w", err)
	}

	log.Printf("[Worker] UserUnfollowed DONE: follower=%d removed=%d", event.FollowerID, len(assets))
	return nil
}

// handleAssetLiked notifies the asset owner of a like.
func (h *Handler) handleAssetLiked(ctx context.Context, event queue.ActivityEvent) error {
	if h.notifications == nil || event.ActorID == event.OwnerID {
		return nil
	}

	asset, err := h.assetResolver.GetByID(ctx, event.AssetID)
	if err != nil {
		// Asset deleted between like and processing; nothing to notify about
		log.Printf("[Worker] AssetLiked: asset %d gone: %v", event.AssetID, err)
		return nil
	}

	if err := h.notifications.CreateLikeNotification(ctx, event.OwnerID, event.ActorID, event.AssetID, asset.Title); err != nil {
		return fmt.Errorf("create like notification: %w", err)
	}
	return nil
}

// handleAssetCommented notifies the asset owner of a comment.
func (h *Handler) handleAssetCommented(ctx context.Context, event queue.ActivityEvent) error {
	if h.notifications == nil || event.ActorID == event.OwnerID {
		return nil
	}

	asset, err := h.assetResolver.GetByID(ctx, event.AssetID)
	if err != nil {
		log.Printf("[Worker] AssetCommented: asset %d gone: %v", event.AssetID, err)
		return nil
	}

	if err := h.notifications.CreateCommentNotification(ctx, event.OwnerID, event.ActorID, event.AssetID, event.CommentID, asset.Title); err != nil {
		return fmt.Errorf("create comment notification: %w", err)
	}
	return nil
}
