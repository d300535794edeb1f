package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
)

func TestFollowService_Follow_Self(t *testing.T) {
	svc := NewFollowService(&mockFollowRepository{}, &mockUserRepository{}, &fakeTxRunner{}, nil)

	err := svc.Follow(context.Background(), 1, 1)

	if !errors.Is(err, model.ErrCannotFollowSelf) {
		t.Errorf("error = %v, want %v", err, model.ErrCannotFollowSelf)
	}
}

func TestFollowService_Follow_TargetNotFound(t *testing.T) {
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewFollowService(&mockFollowRepository{}, mockUsers, &fakeTxRunner{}, nil)

	err := svc.Follow(context.Background(), 1, 999)

	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
}

func TestFollowService_Follow(t *testing.T) {
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewFollowService(&mockFollowRepository{}, mockUsers, &fakeTxRunner{}, publisher)

	if err := svc.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both counters move inside the transaction
	if len(mockUsers.followerCountCalls) != 1 || mockUsers.followerCountCalls[0] != (countCall{ID: 2, Delta: 1}) {
		t.Errorf("follower counter calls = %v, want [{2 1}]", mockUsers.followerCountCalls)
	}
	if len(mockUsers.followingCountCalls) != 1 || mockUsers.followingCountCalls[0] != (countCall{ID: 1, Delta: 1}) {
		t.Errorf("following counter calls = %v, want [{1 1}]", mockUsers.followingCountCalls)
	}

	// The follow event goes out after the commit
	if len(publisher.published) != 1 {
		t.Fatalf("got %d published events, want 1", len(publisher.published))
	}
	event := publisher.published[0]
	if event.Type != queue.EventUserFollowed || event.FollowerID != 1 || event.FollowingID != 2 {
		t.Errorf("event = %+v, want user_followed follower=1 following=2", event)
	}
}

func TestFollowService_Follow_Duplicate(t *testing.T) {
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	// Zero rows affected: the edge already exists
	mockFollows := &mockFollowRepository{
		createFn: func(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) (bool, error) {
			return false, nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewFollowService(mockFollows, mockUsers, &fakeTxRunner{}, publisher)

	err := svc.Follow(context.Background(), 1, 2)

	if !errors.Is(err, model.ErrAlreadyFollowing) {
		t.Errorf("error = %v, want %v", err, model.ErrAlreadyFollowing)
	}
	if len(mockUsers.followerCountCalls) != 0 || len(mockUsers.followingCountCalls) != 0 {
		t.Error("duplicate follow must not touch the counters")
	}
	if len(publisher.published) != 0 {
		t.Error("duplicate follow must not publish an event")
	}
}

func TestFollowService_GetFollowers(t *testing.T) {
	alice := "alice"
	followers := []model.UserSummary{
		{ID: 10, Username: "alice", DisplayName: &alice},
		{ID: 11, Username: "bob"},
		{ID: 12, Username: "carol"},
	}

	var gotOffset, gotLimit int
	mockFollows := &mockFollowRepository{
		getFollowersFn: func(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error) {
			gotOffset, gotLimit = offset, limit
			return followers, 23, nil
		},
	}
	svc := NewFollowService(mockFollows, &mockUserRepository{}, &fakeTxRunner{}, nil)

	resp, err := svc.GetFollowers(context.Background(), 1, 2, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotOffset != 10 || gotLimit != 10 {
		t.Errorf("offset/limit = %d/%d, want 10/10", gotOffset, gotLimit)
	}
	if len(resp.Users) != 3 {
		t.Fatalf("got %d users, want 3", len(resp.Users))
	}
	if resp.Pagination.TotalCount != 23 {
		t.Errorf("totalCount = %d, want 23", resp.Pagination.TotalCount)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", resp.Pagination.TotalPages)
	}

	// No viewer: follow flags stay false
	for _, u := range resp.Users {
		if u.IsFollowing {
			t.Errorf("user %d should not be marked as followed for anonymous viewer", u.ID)
		}
	}
}

func TestFollowService_GetFollowers_ViewerEnrichment(t *testing.T) {
	followers := []model.UserSummary{
		{ID: 10, Username: "alice"},
		{ID: 11, Username: "bob"},
	}

	mockFollows := &mockFollowRepository{
		getFollowersFn: func(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error) {
			return followers, 2, nil
		},
		checkFollowsFn: func(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
			if followerID != 5 {
				t.Errorf("CheckFollows follower = %d, want 5", followerID)
			}
			if len(followingIDs) != 2 {
				t.Errorf("CheckFollows got %d ids, want 2", len(followingIDs))
			}
			return map[int64]bool{10: true, 11: false}, nil
		},
	}
	svc := NewFollowService(mockFollows, &mockUserRepository{}, &fakeTxRunner{}, nil)

	viewer := int64(5)
	resp, err := svc.GetFollowers(context.Background(), 1, 1, 20, &viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Users[0].IsFollowing {
		t.Error("viewer follows user 10, flag should be set")
	}
	if resp.Users[1].IsFollowing {
		t.Error("viewer does not follow user 11, flag should be unset")
	}
}

func TestFollowService_GetFollowing_EnrichmentFailureIsNonFatal(t *testing.T) {
	mockFollows := &mockFollowRepository{
		getFollowingFn: func(ctx context.Context, userID int64, offset, limit int) ([]model.UserSummary, int, error) {
			return []model.UserSummary{{ID: 10, Username: "alice"}}, 1, nil
		},
		checkFollowsFn: func(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
			return nil, errors.New("redis down")
		},
	}
	svc := NewFollowService(mockFollows, &mockUserRepository{}, &fakeTxRunner{}, nil)

	viewer := int64(5)
	resp, err := svc.GetFollowing(context.Background(), 1, 1, 20, &viewer)
	if err != nil {
		t.Fatalf("enrichment failure should not fail the listing: %v", err)
	}
	if len(resp.Users) != 1 {
		t.Fatalf("got %d users, want 1", len(resp.Users))
	}
	if resp.Users[0].IsFollowing {
		t.Error("follow flag should stay false when the batch check fails")
	}
}
