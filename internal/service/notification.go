package service

import (
	"context"
	"fmt"
	"log"

	"pixelshelf/internal/model"
	"pixelshelf/internal/realtime"
	"pixelshelf/internal/repository"
)

// NotificationService lists, marks and creates notifications. Creation is
// normally driven by the activity workers; the HTTP layer only reads and
// marks.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	hub              *realtime.Hub // nil when the websocket stream is disabled
}

func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, hub *realtime.Hub) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
	}
}

// List returns a page of the user's notifications newest first, along with
// the current unread count.
func (s *NotificationService) List(ctx context.Context, userID int64, filter model.NotificationFilter, page, limit int) (*model.NotificationListResponse, error) {
	pagination := model.NewPagination(page, limit, 0)

	notifications, total, err := s.notificationRepo.List(ctx, userID, filter, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.notificationRepo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		Pagination:    model.NewPagination(page, limit, total),
	}, nil
}

// Mark applies the requested state change: read by default, archived when
// req.Archive is set, scoped to req.IDs or to everything with req.All.
func (s *NotificationService) Mark(ctx context.Context, userID int64, req model.MarkNotificationsRequest) error {
	if !req.All && len(req.IDs) == 0 {
		return model.ErrNothingToMark
	}

	switch {
	case req.Archive && req.All:
		return s.notificationRepo.ArchiveAll(ctx, userID)
	case req.Archive:
		return s.notificationRepo.Archive(ctx, userID, req.IDs)
	case req.All:
		return s.notificationRepo.MarkAllRead(ctx, userID)
	default:
		return s.notificationRepo.MarkRead(ctx, userID, req.IDs)
	}
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}

// CreateFollowNotification records that actor started following userID.
func (s *NotificationService) CreateFollowNotification(ctx context.Context, userID, actorID int64) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	n := &model.Notification{
		UserID:  userID,
		ActorID: &actorID,
		Type:    model.NotificationTypeFollow,
		Content: fmt.Sprintf("%s started following you", actor.Username),
		Link:    fmt.Sprintf("/u/%s", actor.Username),
	}
	return s.create(ctx, n, actor)
}

// CreateLikeNotification records that actor liked the user's asset.
func (s *NotificationService) CreateLikeNotification(ctx context.Context, userID, actorID, assetID int64, assetTitle string) error {
	if userID == actorID {
		return nil
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	n := &model.Notification{
		UserID:  userID,
		ActorID: &actorID,
		Type:    model.NotificationTypeLike,
		AssetID: &assetID,
		Content: fmt.Sprintf("%s liked your asset %q", actor.Username, assetTitle),
		Link:    fmt.Sprintf("/assets/%d", assetID),
	}
	return s.create(ctx, n, actor)
}

// CreateCommentNotification records that actor commented on the user's asset.
func (s *NotificationService) CreateCommentNotification(ctx context.Context, userID, actorID, assetID, commentID int64, assetTitle string) error {
	if userID == actorID {
		return nil
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	n := &model.Notification{
		UserID:    userID,
		ActorID:   &actorID,
		Type:      model.NotificationTypeComment,
		AssetID:   &assetID,
		CommentID: &commentID,
		Content:   fmt.Sprintf("%s commented on your asset %q", actor.Username, assetTitle),
		Link:      fmt.Sprintf("/assets/%d", assetID),
	}
	return s.create(ctx, n, actor)
}

// CreateSystemNotification records a platform-originated message (billing
// state changes, announcements). No actor.
func (s *NotificationService) CreateSystemNotification(ctx context.Context, userID int64, content, link string) error {
	n := &model.Notification{
		UserID:  userID,
		Type:    model.NotificationTypeSystem,
		Content: content,
		Link:    link,
	}
	return s.create(ctx, n, nil)
}

func (s *NotificationService) create(ctx context.Context, n *model.Notification, actor *model.User) error {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if actor != nil {
		summary := &model.UserSummary{
			ID:       actor.ID,
			Username: actor.Username,
		}
		if actor.DisplayName != nil {
			summary.DisplayName = actor.DisplayName
		}
		if actor.AvatarURL != nil {
			summary.AvatarURL = actor.AvatarURL
		}
		n.Actor = summary
	}

	if s.hub != nil {
		unread, err := s.notificationRepo.UnreadCount(ctx, n.UserID)
		if err != nil {
			log.Printf("[NotificationService] Failed to load unread count for user %d: %v", n.UserID, err)
			unread = 0
		}
		s.hub.Push(n.UserID, realtime.Event{
			Type: realtime.EventNotification,
			Payload: map[string]interface{}{
				"notification": n,
				"unreadCount":  unread,
			},
		})
	}

	return nil
}
