package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pixelshelf/internal/httputil"
	"pixelshelf/internal/model"
	"pixelshelf/internal/service"
	"pixelshelf/internal/transport/http/middleware"
)

type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
}

func NewUserHandler(userService *service.UserService, followService *service.FollowService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
	}
}

// GetProfile handles GET /api/users/{username}.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.userService.GetProfile(r.Context(), username, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] GetProfile handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] UpdateProfile handler: %v", err)
		httputil.WriteInternalError(w, "Failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateAvatar handles PUT /api/users/avatar (multipart).
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		httputil.WriteBadRequest(w, "Avatar exceeds 5MB limit")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}
	defer file.Close()

	result, err := h.userService.UpdateAvatar(r.Context(), userID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "Avatar exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			log.Printf("[ERROR] UpdateAvatar handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update avatar")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetFollowers handles GET /api/users/{username}/followers.
func (h *UserHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.listFollowEdges(w, r, h.followService.GetFollowers)
}

// GetFollowing handles GET /api/users/{username}/following.
func (h *UserHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.listFollowEdges(w, r, h.followService.GetFollowing)
}

// listFollowEdges resolves the username and pages through one side of the
// follow graph. Both follower and following listings share this shape.
func (h *UserHandler) listFollowEdges(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, userID int64, page, limit int, viewerID *int64) (*model.FollowListResponse, error),
) {
	username := chi.URLParam(r, "username")

	user, err := h.userService.GetProfile(r.Context(), username, nil)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] listFollowEdges handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch user")
		return
	}

	page, limit := httputil.ParsePageLimit(r)

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	result, err := list(r.Context(), user.ID, page, limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] listFollowEdges handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch follow list")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
