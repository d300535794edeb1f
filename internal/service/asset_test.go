package service

import (
	"context"
	"errors"
	"testing"

	"pixelshelf/internal/model"
)

func TestAssetService_Get_Visibility(t *testing.T) {
	owner := int64(1)
	stranger := int64(2)

	privateAsset := &model.Asset{ID: 100, UserID: owner, Title: "WIP Tileset", IsPublic: false}
	publicAsset := &model.Asset{ID: 101, UserID: owner, Title: "Tileset", IsPublic: true}

	tests := []struct {
		name     string
		asset    *model.Asset
		viewerID *int64
		wantErr  error
	}{
		{name: "public asset, anonymous", asset: publicAsset, viewerID: nil},
		{name: "public asset, any viewer", asset: publicAsset, viewerID: &stranger},
		{name: "private asset, owner", asset: privateAsset, viewerID: &owner},
		{name: "private asset, anonymous", asset: privateAsset, viewerID: nil, wantErr: model.ErrAssetNotFound},
		{name: "private asset, stranger", asset: privateAsset, viewerID: &stranger, wantErr: model.ErrAssetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAssets := &mockAssetRepository{
				getByIDFn: func(ctx context.Context, assetID int64) (*model.Asset, error) {
					a := *tt.asset
					return &a, nil
				},
			}
			svc := NewAssetService(mockAssets, &mockProjectRepository{}, &mockUserRepository{}, &fakeTxRunner{}, nil, nil)

			asset, err := svc.Get(context.Background(), tt.asset.ID, tt.viewerID)

			if tt.wantErr != nil {
				// Private assets are indistinguishable from missing ones
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if asset.ID != tt.asset.ID {
				t.Errorf("asset id = %d, want %d", asset.ID, tt.asset.ID)
			}
		})
	}
}

func TestAssetService_Get_LikeEnrichment(t *testing.T) {
	viewer := int64(2)

	mockAssets := &mockAssetRepository{
		getByIDFn: func(ctx context.Context, assetID int64) (*model.Asset, error) {
			return &model.Asset{ID: assetID, UserID: 1, IsPublic: true}, nil
		},
		checkLikesFn: func(ctx context.Context, userID int64, assetIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{100: true}, nil
		},
	}
	svc := NewAssetService(mockAssets, &mockProjectRepository{}, &mockUserRepository{}, &fakeTxRunner{}, nil, nil)

	asset, err := svc.Get(context.Background(), 100, &viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !asset.IsLiked {
		t.Error("asset should be marked liked for this viewer")
	}
}

func TestAssetService_Update_OwnerOnly(t *testing.T) {
	mockAssets := &mockAssetRepository{
		getByIDFn: func(ctx context.Context, assetID int64) (*model.Asset, error) {
			return &model.Asset{ID: assetID, UserID: 1}, nil
		},
	}
	svc := NewAssetService(mockAssets, &mockProjectRepository{}, &mockUserRepository{}, &fakeTxRunner{}, nil, nil)

	title := "Renamed"
	_, err := svc.Update(context.Background(), 100, 2, model.UpdateAssetRequest{Title: &title})

	if !errors.Is(err, model.ErrNotAssetOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotAssetOwner)
	}
}

func TestAssetService_Update_ProjectMustBeOwn(t *testing.T) {
	mockAssets := &mockAssetRepository{
		getByIDFn: func(ctx context.Context, assetID int64) (*model.Asset, error) {
			return &model.Asset{ID: assetID, UserID: 1}, nil
		},
	}
	// Project 50 belongs to user 9, not the asset owner
	svc := NewAssetService(mockAssets, &projectOwnedBy{owner: 9}, &mockUserRepository{}, &fakeTxRunner{}, nil, nil)

	projectID := int64(50)
	_, err := svc.Update(context.Background(), 100, 1, model.UpdateAssetRequest{ProjectID: &projectID})

	if !errors.Is(err, model.ErrNotProjectOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotProjectOwner)
	}
}

// projectOwnedBy wraps the project mock with a fixed owner for every project.
type projectOwnedBy struct {
	mockProjectRepository
	owner int64
}

func (m *projectOwnedBy) GetOwnerID(ctx context.Context, projectID int64) (int64, error) {
	return m.owner, nil
}
