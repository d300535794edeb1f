package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/database"
	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
	"pixelshelf/internal/repository"
)

// FollowService manages the follow graph and its counters.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	txRunner   database.TxRunner
	publisher  queue.Publisher
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	txRunner database.TxRunner,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		txRunner:   txRunner,
		publisher:  publisher,
	}
}

// Follow creates the follow edge and updates both counters in one
// transaction. The insert itself resolves races between concurrent follow
// requests: a duplicate comes back as zero rows affected, never as an error
// surfacing to the client as a 500.
func (s *FollowService) Follow(ctx context.Context, followerID, targetUserID int64) error {
	if followerID == targetUserID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return err
	}

	err := s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		inserted, err := s.followRepo.Create(ctx, tx, followerID, targetUserID)
		if err != nil {
			return err
		}
		if !inserted {
			return model.ErrAlreadyFollowing
		}

		if err := s.userRepo.IncrementFollowerCount(ctx, tx, targetUserID, 1); err != nil {
			return err
		}
		return s.userRepo.IncrementFollowingCount(ctx, tx, followerID, 1)
	})
	if err != nil {
		return err
	}

	// Publish after commit: workers backfill the feed and create the
	// follow notification. Best-effort, the follow itself already stands.
	if s.publisher != nil {
		event := queue.NewUserFollowedEvent(followerID, targetUserID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[FollowService] Failed to publish UserFollowed: follower=%d target=%d err=%v",
				followerID, targetUserID, err)
		}
	}

	return nil
}

// Unfollow removes the edge and decrements both counters in one transaction.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetUserID int64) error {
	err := s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.followRepo.Delete(ctx, tx, followerID, targetUserID); err != nil {
			return err
		}

		if err := s.userRepo.IncrementFollowerCount(ctx, tx, targetUserID, -1); err != nil {
			return err
		}
		return s.userRepo.IncrementFollowingCount(ctx, tx, followerID, -1)
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewUserUnfollowedEvent(followerID, targetUserID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[FollowService] Failed to publish UserUnfollowed: follower=%d target=%d err=%v",
				followerID, targetUserID, err)
		}
	}

	return nil
}

// GetFollowers returns a page of the user's followers. When a viewer is
// known, each row is enriched with whether the viewer follows that user.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64, page, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	pagination := model.NewPagination(page, limit, 0)

	users, total, err := s.followRepo.GetFollowers(ctx, userID, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.FollowListResponse{
		Users:      users,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// GetFollowing returns a page of users the user follows. See GetFollowers.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64, page, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	pagination := model.NewPagination(page, limit, 0)

	users, total, err := s.followRepo.GetFollowing(ctx, userID, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.FollowListResponse{
		Users:      users,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// enrichWithFollowStatus batch-checks follow state for the whole page in a
// single query. If the check fails the list is still returned, just without
// follow flags.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}

	return users
}
