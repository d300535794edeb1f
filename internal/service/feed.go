package service

import (
	"context"
	"fmt"
	"log"

	"pixelshelf/internal/cache"
	"pixelshelf/internal/model"
	"pixelshelf/internal/repository"
)

// FeedService serves each user's home feed from the Redis feed cache,
// rebuilding the cache from Postgres when it is cold.
type FeedService struct {
	feedCache  cache.FeedCache
	assetRepo  repository.AssetRepository
	followRepo repository.FollowRepository
}

func NewFeedService(feedCache cache.FeedCache, assetRepo repository.AssetRepository, followRepo repository.FollowRepository) *FeedService {
	return &FeedService{
		feedCache:  feedCache,
		assetRepo:  assetRepo,
		followRepo: followRepo,
	}
}

// GetFeed returns a page of assets uploaded by the users the viewer
// follows, newest first. The cache holds ids only; rows are hydrated in one
// batched query and reordered to match the cache.
func (s *FeedService) GetFeed(ctx context.Context, userID int64, page, limit int) (*model.AssetListResponse, error) {
	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.warmFeed(ctx, userID); err != nil {
			return nil, err
		}
	}

	pagination := model.NewPagination(page, limit, 0)

	assetIDs, err := s.feedCache.GetPage(ctx, userID, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	size, err := s.feedCache.Size(ctx, userID)
	if err != nil {
		return nil, err
	}

	assets, err := s.hydrate(ctx, userID, assetIDs)
	if err != nil {
		return nil, err
	}

	return &model.AssetListResponse{
		Assets:     assets,
		Pagination: model.NewPagination(page, limit, int(size)),
	}, nil
}

// warmFeed rebuilds a cold feed cache from the follow graph.
func (s *FeedService) warmFeed(ctx context.Context, userID int64) error {
	followingIDs, err := s.followRepo.GetFollowingIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("load following ids: %w", err)
	}
	if len(followingIDs) == 0 {
		return nil
	}

	scores, err := s.assetRepo.GetFeedAssetIDs(ctx, followingIDs, cache.FeedCacheCap)
	if err != nil {
		return fmt.Errorf("load feed assets: %w", err)
	}

	if err := s.feedCache.WarmCache(ctx, userID, scores); err != nil {
		return err
	}

	log.Printf("[FeedService] Warmed feed: user=%d following=%d assets=%d",
		userID, len(followingIDs), len(scores))
	return nil
}

// hydrate loads the asset rows for a page of ids and restores cache order.
// Ids whose rows are gone (deleted between cache write and read) are
// dropped silently.
func (s *FeedService) hydrate(ctx context.Context, viewerID int64, assetIDs []int64) ([]model.Asset, error) {
	if len(assetIDs) == 0 {
		return []model.Asset{}, nil
	}

	rows, err := s.assetRepo.GetByIDs(ctx, assetIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]model.Asset, len(rows))
	for _, asset := range rows {
		byID[asset.ID] = asset
	}

	assets := make([]model.Asset, 0, len(assetIDs))
	for _, id := range assetIDs {
		if asset, ok := byID[id]; ok {
			assets = append(assets, asset)
		}
	}

	if len(assets) > 0 {
		ids := make([]int64, len(assets))
		for i, asset := range assets {
			ids[i] = asset.ID
		}
		if likeMap, err := s.assetRepo.CheckLikes(ctx, viewerID, ids); err == nil {
			for i := range assets {
				assets[i].IsLiked = likeMap[assets[i].ID]
			}
		}
	}

	return assets, nil
}
