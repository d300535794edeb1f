package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventAssetUploaded  = "asset_uploaded"
	EventAssetDeleted   = "asset_deleted"
	EventAssetLiked     = "asset_liked"
	EventAssetCommented = "asset_commented"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
)

// Stream and consumer group names
const (
	StreamActivity        = "stream:activity"
	ConsumerGroupActivity = "activity_workers"
)

// ActivityEvent is the envelope for every event on the activity stream.
// Workers fan assets out to follower feeds and create notifications from it.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when the event occurred

	// Asset events
	AssetID int64 `json:"assetId,omitempty"`
	OwnerID int64 `json:"ownerId,omitempty"` // asset owner / notification recipient

	// Actor of likes, comments and follows
	ActorID int64 `json:"actorId,omitempty"`

	// Comment events
	CommentID int64 `json:"commentId,omitempty"`

	// Follow events
	FollowerID  int64 `json:"followerId,omitempty"`
	FollowingID int64 `json:"followingId,omitempty"`
}

// NewAssetUploadedEvent is published after an asset upload commits.
// Workers fan the asset out to every follower's feed cache.
func NewAssetUploadedEvent(assetID, ownerID int64) ActivityEvent {
	return ActivityEvent{
		Type:      EventAssetUploaded,
		Timestamp: time.Now().Unix(),
		AssetID:   assetID,
		OwnerID:   ownerID,
	}
}

// NewAssetDeletedEvent is published after an asset delete commits.
// Workers remove the asset from every follower's feed cache.
func NewAssetDeletedEvent(assetID, ownerID int64) ActivityEvent {
	return ActivityEvent{
		Type:      EventAssetDeleted,
		Timestamp: time.Now().Unix(),
		AssetID:   assetID,
		OwnerID:   ownerID,
	}
}

// NewAssetLikedEvent notifies the asset owner of a like.
func NewAssetLikedEvent(assetID, ownerID, actorID int64) ActivityEvent {
	return ActivityEvent{
		Type:      EventAssetLiked,
		Timestamp: time.Now().Unix(),
		AssetID:   assetID,
		OwnerID:   ownerID,
		ActorID:   actorID,
	}
}

// NewAssetCommentedEvent notifies the asset owner of a comment.
func NewAssetCommentedEvent(assetID, commentID, ownerID, actorID int64) ActivityEvent {
	return ActivityEvent{
		Type:      EventAssetCommented,
		Timestamp: time.Now().Unix(),
		AssetID:   assetID,
		CommentID: commentID,
		OwnerID:   ownerID,
		ActorID:   actorID,
	}
}

// NewUserFollowedEvent backfills the follower's feed with the followed
// user's recent assets and notifies the followed user.
func NewUserFollowedEvent(followerID, followingID int64) ActivityEvent {
	return ActivityEvent{
		Type:        EventUserFollowed,
		Timestamp:   time.Now().Unix(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
}

// NewUserUnfollowedEvent removes the unfollowed user's assets from the
// follower's feed cache.
func NewUserUnfollowedEvent(followerID, followingID int64) ActivityEvent {
	return ActivityEvent{
		Type:        EventUserUnfollowed,
		Timestamp:   time.Now().Unix(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
}

// ToMap serializes the event for Redis XADD. Streams store field-value
// pairs, so the event rides in a JSON "data" field next to its type.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
