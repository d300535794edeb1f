package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
)

type mockCommentRepository struct {
	getByIDFn     func(ctx context.Context, commentID int64) (*model.Comment, error)
	updateFn      func(ctx context.Context, commentID int64, content string) (*model.Comment, error)
	listByAssetFn func(ctx context.Context, assetID int64, offset, limit int) ([]model.Comment, int, error)

	deleteCalls []int64
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, assetID, userID int64, content string) (*model.Comment, error) {
	return &model.Comment{ID: 1, AssetID: assetID, UserID: userID, Content: content}, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Update(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, commentID, content)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID int64) error {
	m.deleteCalls = append(m.deleteCalls, commentID)
	return nil
}

func (m *mockCommentRepository) ListByAsset(ctx context.Context, assetID int64, offset, limit int) ([]model.Comment, int, error) {
	if m.listByAssetFn != nil {
		return m.listByAssetFn(ctx, assetID, offset, limit)
	}
	return nil, 0, nil
}

func TestCommentService_Create_AssetNotFound(t *testing.T) {
	svc := NewCommentService(&mockCommentRepository{}, &mockAssetRepository{}, &fakeTxRunner{}, nil)

	_, err := svc.Create(context.Background(), 999, 1, model.CreateCommentRequest{Content: "nice"})

	if !errors.Is(err, model.ErrAssetNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrAssetNotFound)
	}
}

func TestCommentService_Update(t *testing.T) {
	comment := &model.Comment{ID: 5, AssetID: 100, UserID: 1, Content: "original"}

	tests := []struct {
		name    string
		userID  int64
		wantErr error
	}{
		{name: "author can edit", userID: 1, wantErr: nil},
		{name: "non-author cannot edit", userID: 2, wantErr: model.ErrNotCommentAuthor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockComments := &mockCommentRepository{
				getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
					return comment, nil
				},
				updateFn: func(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
					return &model.Comment{ID: commentID, Content: content}, nil
				},
			}
			svc := NewCommentService(mockComments, &mockAssetRepository{}, &fakeTxRunner{}, nil)

			updated, err := svc.Update(context.Background(), 5, tt.userID, model.UpdateCommentRequest{Content: "edited"})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.Content != "edited" {
				t.Errorf("content = %q, want edited", updated.Content)
			}
		})
	}
}

func TestCommentService_Delete_Permissions(t *testing.T) {
	// Comment 5 by user 1 on asset 100 owned by user 3
	comment := &model.Comment{ID: 5, AssetID: 100, UserID: 1}

	tests := []struct {
		name    string
		userID  int64
		wantErr error
	}{
		{name: "author can delete", userID: 1},
		{name: "asset owner can delete", userID: 3},
		// user 2 is neither author nor asset owner
		{name: "stranger cannot delete", userID: 2, wantErr: model.ErrCannotDelComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockComments := &mockCommentRepository{
				getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
					return comment, nil
				},
			}
			mockAssets := &mockAssetRepository{
				getOwnerIDFn: func(ctx context.Context, assetID int64) (int64, error) {
					return 3, nil
				},
			}
			svc := NewCommentService(mockComments, mockAssets, &fakeTxRunner{}, nil)

			err := svc.Delete(context.Background(), 5, tt.userID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if len(mockComments.deleteCalls) != 0 {
					t.Error("forbidden delete must not reach the repository")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(mockComments.deleteCalls) != 1 || mockComments.deleteCalls[0] != 5 {
				t.Errorf("delete calls = %v, want [5]", mockComments.deleteCalls)
			}
			// The asset's comment counter comes down with the row
			if len(mockAssets.commentCountCalls) != 1 || mockAssets.commentCountCalls[0] != (countCall{ID: 100, Delta: -1}) {
				t.Errorf("comment counter calls = %v, want [{100 -1}]", mockAssets.commentCountCalls)
			}
		})
	}
}

func TestCommentService_Create(t *testing.T) {
	mockAssets := &mockAssetRepository{
		getByIDFn: func(ctx context.Context, assetID int64) (*model.Asset, error) {
			return &model.Asset{ID: assetID, UserID: 3}, nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewCommentService(&mockCommentRepository{}, mockAssets, &fakeTxRunner{}, publisher)

	comment, err := svc.Create(context.Background(), 100, 1, model.CreateCommentRequest{Content: "nice work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if comment.Content != "nice work" {
		t.Errorf("content = %q, want nice work", comment.Content)
	}
	if len(mockAssets.commentCountCalls) != 1 || mockAssets.commentCountCalls[0] != (countCall{ID: 100, Delta: 1}) {
		t.Errorf("comment counter calls = %v, want [{100 1}]", mockAssets.commentCountCalls)
	}
	if len(publisher.published) != 1 || publisher.published[0].Type != queue.EventAssetCommented {
		t.Errorf("published = %+v, want one asset_commented event", publisher.published)
	}
}

func TestCommentService_ContentValidation(t *testing.T) {
	long := strings.Repeat("x", model.MaxCommentLength+1)

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty", content: "", wantErr: model.ErrContentRequired},
		{name: "too long", content: long, wantErr: model.ErrContentTooLong},
		{name: "at the limit", content: strings.Repeat("x", model.MaxCommentLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAssets := &mockAssetRepository{
				getByIDFn: func(ctx context.Context, assetID int64) (*model.Asset, error) {
					return &model.Asset{ID: assetID, UserID: 3}, nil
				},
			}
			svc := NewCommentService(&mockCommentRepository{}, mockAssets, &fakeTxRunner{}, nil)

			_, err := svc.Create(context.Background(), 100, 1, model.CreateCommentRequest{Content: tt.content})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCommentService_ListByAsset(t *testing.T) {
	mockAssets := &mockAssetRepository{
		getByIDFn: func(ctx context.Context, assetID int64) (*model.Asset, error) {
			return &model.Asset{ID: assetID}, nil
		},
	}
	mockComments := &mockCommentRepository{
		listByAssetFn: func(ctx context.Context, assetID int64, offset, limit int) ([]model.Comment, int, error) {
			return []model.Comment{{ID: 1}, {ID: 2}}, 45, nil
		},
	}
	svc := NewCommentService(mockComments, mockAssets, &fakeTxRunner{}, nil)

	resp, err := svc.ListByAsset(context.Background(), 100, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Comments) != 2 {
		t.Errorf("got %d comments, want 2", len(resp.Comments))
	}
	if resp.Pagination.TotalCount != 45 {
		t.Errorf("totalCount = %d, want 45", resp.Pagination.TotalCount)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", resp.Pagination.TotalPages)
	}
}

func TestCommentService_ListByAsset_AssetNotFound(t *testing.T) {
	svc := NewCommentService(&mockCommentRepository{}, &mockAssetRepository{}, &fakeTxRunner{}, nil)

	_, err := svc.ListByAsset(context.Background(), 999, 1, 20)

	if !errors.Is(err, model.ErrAssetNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrAssetNotFound)
	}
}
