package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/database"
	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
	"pixelshelf/internal/repository"
)

// AssetService manages asset uploads, metadata, likes and visibility.
type AssetService struct {
	assetRepo   repository.AssetRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	txRunner    database.TxRunner
	media       *MediaService
	publisher   queue.Publisher
}

func NewAssetService(
	assetRepo repository.AssetRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	txRunner database.TxRunner,
	media *MediaService,
	publisher queue.Publisher,
) *AssetService {
	return &AssetService{
		assetRepo:   assetRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		txRunner:    txRunner,
		media:       media,
		publisher:   publisher,
	}
}

// Create stores the file, then inserts the asset row and bumps the owner's
// (and project's) asset counters in one transaction. The upload happens
// before the transaction: if the insert fails we delete the orphaned
// objects, which is cheaper than holding a transaction open across R2.
func (s *AssetService) Create(ctx context.Context, userID int64, req model.CreateAssetRequest, file multipart.File, header *multipart.FileHeader) (*model.Asset, error) {
	if s.media == nil {
		return nil, fmt.Errorf("media storage not configured")
	}

	if req.ProjectID != nil {
		ownerID, err := s.projectRepo.GetOwnerID(ctx, *req.ProjectID)
		if err != nil {
			return nil, err
		}
		if ownerID != userID {
			return nil, model.ErrNotProjectOwner
		}
	}

	upload, err := s.media.UploadAssetFile(ctx, file, header)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	asset := &model.Asset{
		UserID:      userID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		FileURL:     upload.File.URL,
		FileKey:     upload.File.Key,
		FileType:    upload.FileType,
		FileSize:    upload.SizeBytes,
		Tags:        req.Tags,
		IsPublic:    isPublic,
	}
	if upload.Thumbnail != nil {
		asset.ThumbnailURL = &upload.Thumbnail.URL
		asset.ThumbnailKey = &upload.Thumbnail.Key
	}

	err = s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.assetRepo.Create(ctx, tx, asset); err != nil {
			return err
		}

		if err := s.userRepo.IncrementAssetCount(ctx, tx, userID, 1); err != nil {
			return err
		}

		if req.ProjectID != nil {
			return s.projectRepo.IncrementAssetCount(ctx, tx, *req.ProjectID, 1)
		}
		return nil
	})
	if err != nil {
		s.cleanupUpload(ctx, upload)
		return nil, err
	}

	if s.publisher != nil && asset.IsPublic {
		event := queue.NewAssetUploadedEvent(asset.ID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[AssetService] Failed to publish AssetUploaded: asset=%d err=%v", asset.ID, err)
		}
	}

	return asset, nil
}

func (s *AssetService) cleanupUpload(ctx context.Context, upload *AssetUpload) {
	if err := s.media.DeleteObject(ctx, upload.File.Key); err != nil {
		log.Printf("[AssetService] Failed to delete orphaned upload %s: %v", upload.File.Key, err)
	}
	if upload.Thumbnail != nil {
		if err := s.media.DeleteObject(ctx, upload.Thumbnail.Key); err != nil {
			log.Printf("[AssetService] Failed to delete orphaned thumbnail %s: %v", upload.Thumbnail.Key, err)
		}
	}
}

// Get returns a single asset. Private assets are visible only to their
// owner; everyone else gets not-found rather than a hint that the asset
// exists. When a viewer is known, IsLiked is filled in.
func (s *AssetService) Get(ctx context.Context, assetID int64, viewerID *int64) (*model.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if !asset.IsPublic && (viewerID == nil || *viewerID != asset.UserID) {
		return nil, model.ErrAssetNotFound
	}

	if viewerID != nil {
		liked, err := s.assetRepo.CheckLikes(ctx, *viewerID, []int64{assetID})
		if err == nil {
			asset.IsLiked = liked[assetID]
		}
	}

	return asset, nil
}

// Update applies a partial metadata update. Only the owner may update, and
// moving the asset between projects keeps both projects' counters right.
func (s *AssetService) Update(ctx context.Context, assetID, userID int64, req model.UpdateAssetRequest) (*model.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.UserID != userID {
		return nil, model.ErrNotAssetOwner
	}

	if req.ProjectID != nil {
		ownerID, err := s.projectRepo.GetOwnerID(ctx, *req.ProjectID)
		if err != nil {
			return nil, err
		}
		if ownerID != userID {
			return nil, model.ErrNotProjectOwner
		}
	}

	updated, err := s.assetRepo.Update(ctx, assetID, req)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != nil && (asset.ProjectID == nil || *asset.ProjectID != *req.ProjectID) {
		err = s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
			if asset.ProjectID != nil {
				if err := s.projectRepo.IncrementAssetCount(ctx, tx, *asset.ProjectID, -1); err != nil {
					return err
				}
			}
			return s.projectRepo.IncrementAssetCount(ctx, tx, *req.ProjectID, 1)
		})
		if err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// Delete removes the asset row and its counters, then the stored objects.
// Storage cleanup after commit is best-effort.
func (s *AssetService) Delete(ctx context.Context, assetID, userID int64) error {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.UserID != userID {
		return model.ErrNotAssetOwner
	}

	err = s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.assetRepo.Delete(ctx, tx, assetID); err != nil {
			return err
		}

		if err := s.userRepo.IncrementAssetCount(ctx, tx, userID, -1); err != nil {
			return err
		}

		if asset.ProjectID != nil {
			return s.projectRepo.IncrementAssetCount(ctx, tx, *asset.ProjectID, -1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.media != nil {
		if err := s.media.DeleteObject(ctx, asset.FileKey); err != nil {
			log.Printf("[AssetService] Failed to delete asset file %s: %v", asset.FileKey, err)
		}
		if asset.ThumbnailKey != nil {
			if err := s.media.DeleteObject(ctx, *asset.ThumbnailKey); err != nil {
				log.Printf("[AssetService] Failed to delete thumbnail %s: %v", *asset.ThumbnailKey, err)
			}
		}
	}

	if s.publisher != nil {
		event := queue.NewAssetDeletedEvent(assetID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[AssetService] Failed to publish AssetDeleted: asset=%d err=%v", assetID, err)
		}
	}

	return nil
}

// Like records a like and bumps the counter. A duplicate like surfaces as
// ErrAlreadyLiked without touching the counter.
func (s *AssetService) Like(ctx context.Context, assetID, userID int64) error {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}

	err = s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		inserted, err := s.assetRepo.Like(ctx, tx, assetID, userID)
		if err != nil {
			return err
		}
		if !inserted {
			return model.ErrAlreadyLiked
		}
		return s.assetRepo.IncrementLikeCount(ctx, tx, assetID, 1)
	})
	if err != nil {
		return err
	}

	if s.publisher != nil && asset.UserID != userID {
		event := queue.NewAssetLikedEvent(assetID, asset.UserID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[AssetService] Failed to publish AssetLiked: asset=%d actor=%d err=%v",
				assetID, userID, err)
		}
	}

	return nil
}

// Unlike removes a like and decrements the counter.
func (s *AssetService) Unlike(ctx context.Context, assetID, userID int64) error {
	if _, err := s.assetRepo.GetByID(ctx, assetID); err != nil {
		return err
	}

	return s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.assetRepo.Unlike(ctx, tx, assetID, userID); err != nil {
			return err
		}
		return s.assetRepo.IncrementLikeCount(ctx, tx, assetID, -1)
	})
}

// ListByUser returns a page of a user's assets. Owners see everything,
// everyone else only public assets.
func (s *AssetService) ListByUser(ctx context.Context, userID int64, page, limit int, viewerID *int64) (*model.AssetListResponse, error) {
	publicOnly := viewerID == nil || *viewerID != userID

	pagination := model.NewPagination(page, limit, 0)
	assets, total, err := s.assetRepo.ListByUser(ctx, userID, publicOnly, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		assets = s.enrichWithLikeStatus(ctx, *viewerID, assets)
	}

	return &model.AssetListResponse{
		Assets:     assets,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// ListByProject returns a page of a project's assets.
func (s *AssetService) ListByProject(ctx context.Context, projectID int64, page, limit int, viewerID *int64) (*model.AssetListResponse, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsPublic && (viewerID == nil || *viewerID != project.UserID) {
		return nil, model.ErrProjectNotFound
	}

	pagination := model.NewPagination(page, limit, 0)
	assets, total, err := s.assetRepo.ListByProject(ctx, projectID, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		assets = s.enrichWithLikeStatus(ctx, *viewerID, assets)
	}

	return &model.AssetListResponse{
		Assets:     assets,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// enrichWithLikeStatus batch-checks like state for a page of assets.
func (s *AssetService) enrichWithLikeStatus(ctx context.Context, viewerID int64, assets []model.Asset) []model.Asset {
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
