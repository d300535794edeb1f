package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"pixelshelf/internal/database"
	"pixelshelf/internal/model"
	"pixelshelf/internal/repository"
)

// ProjectService manages asset collections.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	txRunner    database.TxRunner
}

func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, txRunner database.TxRunner) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		txRunner:    txRunner,
	}
}

// Create inserts the project and bumps the owner's project counter together.
func (s *ProjectService) Create(ctx context.Context, userID int64, req model.CreateProjectRequest) (*model.Project, error) {
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	project := &model.Project{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    isPublic,
	}

	err := s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.projectRepo.Create(ctx, tx, project); err != nil {
			return err
		}
		return s.userRepo.IncrementProjectCount(ctx, tx, userID, 1)
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// Get returns a single project; private projects only to their owner.
func (s *ProjectService) Get(ctx context.Context, projectID int64, viewerID *int64) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !project.IsPublic && (viewerID == nil || *viewerID != project.UserID) {
		return nil, model.ErrProjectNotFound
	}

	return project, nil
}

// Update applies a partial update. Owner only.
func (s *ProjectService) Update(ctx context.Context, projectID, userID int64, req model.UpdateProjectRequest) (*model.Project, error) {
	ownerID, err := s.projectRepo.GetOwnerID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, model.ErrNotProjectOwner
	}

	return s.projectRepo.Update(ctx, projectID, req)
}

// Delete removes the project and decrements the owner's counter. Assets in
// the project survive; the database detaches them on delete.
func (s *ProjectService) Delete(ctx context.Context, projectID, userID int64) error {
	ownerID, err := s.projectRepo.GetOwnerID(ctx, projectID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return model.ErrNotProjectOwner
	}

	return s.txRunner.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.projectRepo.Delete(ctx, tx, projectID); err != nil {
			return err
		}
		return s.userRepo.IncrementProjectCount(ctx, tx, userID, -1)
	})
}

// ListByUser returns a page of a user's projects. Owners see everything,
// everyone else only public projects.
func (s *ProjectService) ListByUser(ctx context.Context, userID int64, page, limit int, viewerID *int64) (*model.ProjectListResponse, error) {
	publicOnly := viewerID == nil || *viewerID != userID

	pagination := model.NewPagination(page, limit, 0)
	projects, total, err := s.projectRepo.ListByUser(ctx, userID, publicOnly, pagination.Offset(), limit)
	if err != nil {
		return nil, err
	}

	return &model.ProjectListResponse{
		Projects:   projects,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}
