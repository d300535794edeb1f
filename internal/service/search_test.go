package service

import (
	"context"
	"testing"

	"pixelshelf/internal/model"
)

func newSearchServiceForTest(users *mockUserRepository, assets *mockAssetRepository, projects *mockProjectRepository, follows *mockFollowRepository) *SearchService {
	if users == nil {
		users = &mockUserRepository{}
	}
	if assets == nil {
		assets = &mockAssetRepository{}
	}
	if projects == nil {
		projects = &mockProjectRepository{}
	}
	if follows == nil {
		follows = &mockFollowRepository{}
	}
	return NewSearchService(users, assets, projects, follows)
}

func TestSearchService_EmptyQuery(t *testing.T) {
	userSearched := false
	mockUsers := &mockUserRepository{
		searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error) {
			userSearched = true
			return nil, 0, nil
		},
	}
	svc := newSearchServiceForTest(mockUsers, nil, nil, nil)

	resp, err := svc.Search(context.Background(), "   ", model.SearchTypeAll, 1, 20, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if userSearched {
		t.Error("blank query should not hit any repository")
	}
	if resp.Query != "" {
		t.Errorf("query should be trimmed to empty, got %q", resp.Query)
	}
	if resp.Pagination.TotalCount != 0 {
		t.Errorf("totalCount = %d, want 0", resp.Pagination.TotalCount)
	}
}

func TestSearchService_TypeSelectsSections(t *testing.T) {
	tests := []struct {
		name         string
		searchType   string
		wantUsers    bool
		wantAssets   bool
		wantProjects bool
	}{
		{name: "users only", searchType: model.SearchTypeUsers, wantUsers: true},
		{name: "assets only", searchType: model.SearchTypeAssets, wantAssets: true},
		{name: "projects only", searchType: model.SearchTypeProjects, wantProjects: true},
		{name: "all sections", searchType: model.SearchTypeAll, wantUsers: true, wantAssets: true, wantProjects: true},
		{name: "unknown type falls back to all", searchType: "bogus", wantUsers: true, wantAssets: true, wantProjects: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var usersHit, assetsHit, projectsHit bool

			mockUsers := &mockUserRepository{
				searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error) {
					usersHit = true
					return []model.UserSummary{{ID: 1, Username: "pixeldev"}}, 1, nil
				},
			}
			mockAssets := &mockAssetRepository{
				searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.Asset, int, error) {
					assetsHit = true
					return []model.Asset{{ID: 10, Title: "Pixel Tileset"}}, 1, nil
				},
			}
			mockProjects := &mockProjectRepository{
				searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.Project, int, error) {
					projectsHit = true
					return []model.Project{{ID: 100, Title: "Pixel RPG"}}, 1, nil
				},
			}
			svc := newSearchServiceForTest(mockUsers, mockAssets, mockProjects, nil)

			_, err := svc.Search(context.Background(), "pixel", tt.searchType, 1, 20, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if usersHit != tt.wantUsers {
				t.Errorf("users searched = %v, want %v", usersHit, tt.wantUsers)
			}
			if assetsHit != tt.wantAssets {
				t.Errorf("assets searched = %v, want %v", assetsHit, tt.wantAssets)
			}
			if projectsHit != tt.wantProjects {
				t.Errorf("projects searched = %v, want %v", projectsHit, tt.wantProjects)
			}
		})
	}
}

func TestSearchService_PaginationUsesLargestSection(t *testing.T) {
	mockUsers := &mockUserRepository{
		searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error) {
			return nil, 5, nil
		},
	}
	mockAssets := &mockAssetRepository{
		searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.Asset, int, error) {
			return nil, 87, nil
		},
	}
	mockProjects := &mockProjectRepository{
		searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.Project, int, error) {
			return nil, 12, nil
		},
	}
	svc := newSearchServiceForTest(mockUsers, mockAssets, mockProjects, nil)

	resp, err := svc.Search(context.Background(), "pixel", model.SearchTypeAll, 1, 20, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Pagination.TotalCount != 87 {
		t.Errorf("totalCount = %d, want 87 (largest section)", resp.Pagination.TotalCount)
	}
	if resp.Pagination.TotalPages != 5 {
		t.Errorf("totalPages = %d, want 5", resp.Pagination.TotalPages)
	}
}

func TestSearchService_ViewerEnrichment(t *testing.T) {
	mockUsers := &mockUserRepository{
		searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.UserSummary, int, error) {
			return []model.UserSummary{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}, 2, nil
		},
	}
	mockAssets := &mockAssetRepository{
		searchFn: func(ctx context.Context, query string, offset, limit int) ([]model.Asset, int, error) {
			return []model.Asset{{ID: 10, Title: "Tileset"}, {ID: 11, Title: "Sprites"}}, 2, nil
		},
		checkLikesFn: func(ctx context.Context, userID int64, assetIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{10: true}, nil
		},
	}
	mockFollows := &mockFollowRepository{
		checkFollowsFn: func(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{2: true}, nil
		},
	}
	svc := newSearchServiceForTest(mockUsers, mockAssets, nil, mockFollows)

	viewer := int64(9)
	resp, err := svc.Search(context.Background(), "pixel", model.SearchTypeAll, 1, 20, &viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Users[0].IsFollowing || !resp.Users[1].IsFollowing {
		t.Errorf("follow flags = [%v %v], want [false true]",
			resp.Users[0].IsFollowing, resp.Users[1].IsFollowing)
	}
	if !resp.Assets[0].IsLiked || resp.Assets[1].IsLiked {
		t.Errorf("like flags = [%v %v], want [true false]",
			resp.Assets[0].IsLiked, resp.Assets[1].IsLiked)
	}
}
