package service

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/database"
	"pixelshelf/internal/model"
	"pixelshelf/internal/queue"
	"pixelshelf/internal/repository"
)

// CommentService manages comments on assets and keeps the asset's comment
// counter in step.
type CommentService struct {
	commentRepo repository.CommentRepository
	assetRepo   repository.AssetRepository
	txRunner    database.TxRunner
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	assetRepo repository.AssetRepository,
	txRunner database.TxRunner,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		assetRepo:   assetRepo,
		txRunner:    txRunner,
		publisher:   publisher,
	}
}

// validateCommentContent enforces the content limits at the service
// boundary, independent of the request-level validator tags.
func validateCommentContent(content string) error {
	if content == "" {
		return model.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return model.ErrContentTooLong
	}
	return nil
}

// Create posts a comment on an asset. The insert and the counter increment
// commit together.
func (s *CommentService) Create(ctx context.Context, assetID, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := validateCommentContent(req.Content); err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	var comment *model.Comment
	err = s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		comment, err = s.commentRepo.Create(ctx, tx, assetID, userID, req.Content)
		if err != nil {
			return err
		}
		return s.assetRepo.IncrementCommentCount(ctx, tx, assetID, 1)
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && asset.UserID != userID {
		event := queue.NewAssetCommentedEvent(assetID, comment.ID, asset.UserID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[CommentService] Failed to publish AssetCommented: asset=%d comment=%d err=%v",
				assetID, comment.ID, err)
		}
	}

	return comment, nil
}

// Update edits a comment's content. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, commentID, userID int64, req model.UpdateCommentRequest) (*model.Comment, error) {
	if err := validateCommentContent(req.Content); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != userID {
		return nil, model.ErrNotCommentAuthor
	}

	return s.commentRepo.Update(ctx, commentID, req.Content)
}

// Delete removes a comment. The author may delete their own comment, and
// the asset owner may delete any comment on their asset.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		ownerID, err := s.assetRepo.GetOwnerID(ctx, comment.AssetID)
		if err != nil {
			return err
		}
		if ownerID != userID {
			return model.ErrCannotDelComment
		}
	}

	return s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.commentRepo.Delete(ctx, tx, commentID); err != nil {
			return err
		}
		return s.assetRepo.IncrementCommentCount(ctx, tx, comment.AssetID, -1)
	})
}

// ListByAsset returns a page of an asset's comments, oldest first.
func (s *CommentService) ListByAsset(ctx context.Context, assetID int64, page, limit int) (*model.CommentListResponse, error) {
	if _, err := s.assetRepo.GetByID(ctx, assetID); err != nil {
		return nil, err
	}

	pagination := model.NewPagination(page, limit, 0)

	comments, total, err := s.commentRepo.ListByAsset(ctx, assetID, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	return &model.CommentListResponse{
		Comments:   comments,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}
