package service

import (
	"context"
	"strings"

	"pixelshelf/internal/model"
	"pixelshelf/internal/repository"
)

// SearchService fans a query out across users, assets and projects.
type SearchService struct {
	userRepo    repository.UserRepository
	assetRepo   repository.AssetRepository
	projectRepo repository.ProjectRepository
	followRepo  repository.FollowRepository
}

func NewSearchService(
	userRepo repository.UserRepository,
	assetRepo repository.AssetRepository,
	projectRepo repository.ProjectRepository,
	followRepo repository.FollowRepository,
) *SearchService {
	return &SearchService{
		userRepo:    userRepo,
		assetRepo:   assetRepo,
		projectRepo: projectRepo,
		followRepo:  followRepo,
	}
}

// Search runs the query against the sections the type selects. An unknown
// type falls back to "all". The largest section's total drives pagination
// so totalPages never undercounts.
func (s *SearchService) Search(ctx context.Context, query, searchType string, page, limit int, viewerID *int64) (*model.SearchResponse, error) {
	query = strings.TrimSpace(query)
	pagination := model.NewPagination(page, limit, 0)
	offset := pagination.Offset()

	switch searchType {
	case model.SearchTypeUsers, model.SearchTypeAssets, model.SearchTypeProjects:
	default:
		searchType = model.SearchTypeAll
	}

	resp := &model.SearchResponse{Query: query}
	if query == "" {
		resp.Pagination = model.NewPagination(page, limit, 0)
		return resp, nil
	}

	maxTotal := 0

	if searchType == model.SearchTypeAll || searchType == model.SearchTypeUsers {
		users, total, err := s.userRepo.Search(ctx, query, offset, limit)
		if err != nil {
			return nil, err
		}
		if viewerID != nil {
			users = s.enrichUsers(ctx, *viewerID, users)
		}
		resp.Users = users
		if total > maxTotal {
			maxTotal = total
		}
	}

	if searchType == model.SearchTypeAll || searchType == model.SearchTypeAssets {
		assets, total, err := s.assetRepo.Search(ctx, query, offset, limit)
		if err != nil {
			return nil, err
		}
		if viewerID != nil {
			assets = s.enrichAssets(ctx, *viewerID, assets)
		}
		resp.Assets = assets
		if total > maxTotal {
			maxTotal = total
		}
	}

	if searchType == model.SearchTypeAll || searchType == model.SearchTypeProjects {
		projects, total, err := s.projectRepo.Search(ctx, query, offset, limit)
		if err != nil {
			return nil, err
		}
		resp.Projects = projects
		if total > maxTotal {
			maxTotal = total
		}
	}

	resp.Pagination = model.NewPagination(page, limit, maxTotal)
	return resp, nil
}

func (s *SearchService) enrichUsers(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
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

func (s *SearchService) enrichAssets(ctx context.Context, viewerID int64, assets []model.Asset) []model.Asset {
	if len(assets) == 0 {
		return assets
	}

	assetIDs := make([]int64, len(assets))
	for i, asset := range assets {
		assetIDs[i] = asset.ID
	}

	likeMap, err := s.assetRepo.CheckLikes(ctx, viewerID, assetIDs)
	if err != nil {
		return assets
	}

	for i := range assets {
		assets[i].IsLiked = likeMap[assets[i].ID]
	}
	return assets
}
