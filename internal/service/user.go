package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"

	"golang.org/x/crypto/bcrypt"

	"pixelshelf/internal/model"
	"pixelshelf/internal/repository"
)

// UserService handles accounts and profiles.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	media      *MediaService // nil when storage is not configured
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, media *MediaService) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		media:      media,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashed),
		Tier:           model.TierFree,
	}
	if req.DisplayName != "" {
		user.DisplayName = &req.DisplayName
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials. Lookup failures and wrong passwords both map
// to ErrInvalidCredentials so responses don't reveal which usernames exist.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile resolves a profile by username and, when a viewer is known,
// whether the viewer follows them.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID *int64) (*model.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{User: *user}

	if viewerID != nil && *viewerID != user.ID {
		following, err := s.followRepo.Exists(ctx, *viewerID, user.ID)
		if err == nil {
			profile.IsFollowing = following
		}
	}

	return profile, nil
}

// UpdateProfile applies a partial profile update.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	if req.IsEmpty() {
		return s.userRepo.GetByID(ctx, userID)
	}
	return s.userRepo.UpdateProfile(ctx, userID, req)
}

// UpdateAvatar uploads the new avatar, points the profile at it and removes
// the previous object. Deleting the old avatar is best-effort; an orphaned
// object costs storage, a missing one breaks the profile.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	if s.media == nil {
		return nil, fmt.Errorf("media storage not configured")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.media.UploadAvatar(ctx, file, header)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, result.URL, result.Key); err != nil {
		return nil, err
	}

	if user.AvatarKey != nil && *user.AvatarKey != "" {
		if err := s.media.DeleteObject(ctx, *user.AvatarKey); err != nil {
			log.Printf("[UserService] Failed to delete old avatar %s: %v", *user.AvatarKey, err)
		}
	}

	return result, nil
}
