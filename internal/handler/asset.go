package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"pixelshelf/internal/httputil"
	"pixelshelf/internal/model"
	"pixelshelf/internal/service"
	"pixelshelf/internal/transport/http/middleware"
)

type AssetHandler struct {
	assetService *service.AssetService
	userService  *service.UserService
}

func NewAssetHandler(assetService *service.AssetService, userService *service.UserService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		userService:  userService,
	}
}

// List handles GET /api/assets?username=...|projectId=...
// Exactly one of the two selectors is required.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.ParsePageLimit(r)

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	if projectIDStr := r.URL.Query().Get("projectId"); projectIDStr != "" {
		projectID, err := strconv.ParseInt(projectIDStr, 10, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid project ID")
			return
		}

		result, err := h.assetService.ListByProject(r.Context(), projectID, page, limit, viewerID)
		if err != nil {
			if errors.Is(err, model.ErrProjectNotFound) {
				httputil.WriteNotFound(w, "Project not found")
				return
			}
			log.Printf("[ERROR] List assets handler: %v", err)
			httputil.WriteInternalError(w, "Failed to fetch assets")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		httputil.WriteBadRequest(w, "Either username or projectId is required")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), username, nil)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] List assets handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch user")
		return
	}

	result, err := h.assetService.ListByUser(r.Context(), profile.ID, page, limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] List assets handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch assets")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Create handles POST /api/assets (multipart). The form carries the file
// under "file" and the metadata as a JSON blob under "metadata".
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxAssetSizeBytes) + 1024*1024 // form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "File exceeds 100MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	var req model.CreateAssetRequest
	metadata := r.FormValue("metadata")
	if metadata == "" {
		httputil.WriteBadRequest(w, "Metadata is required")
		return
	}
	if err := json.Unmarshal([]byte(metadata), &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid metadata")
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "File is required")
		return
	}
	defer file.Close()

	asset, err := h.assetService.Create(r.Context(), userID, req, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "File exceeds 100MB limit")
		case errors.Is(err, model.ErrFileRequired):
			httputil.WriteBadRequest(w, "File is required")
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, "Cannot add assets to another user's project")
		default:
			log.Printf("[ERROR] Create asset handler: %v", err)
			httputil.WriteInternalError(w, "Failed to upload asset")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid asset ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	asset, err := h.assetService.Get(r.Context(), assetID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrAssetNotFound) {
			httputil.WriteNotFound(w, "Asset not found")
			return
		}
		log.Printf("[ERROR] Get asset handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch asset")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, asset)
}

// Update handles PATCH /api/assets/{id}.
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	assetID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid asset ID")
		return
	}

	var req model.UpdateAssetRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	asset, err := h.assetService.Update(r.Context(), assetID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAssetNotFound):
			httputil.WriteNotFound(w, "Asset not found")
		case errors.Is(err, model.ErrNotAssetOwner):
			httputil.WriteForbidden(w, "Only the owner can update this asset")
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, "Cannot move assets to another user's project")
		default:
			log.Printf("[ERROR] Update asset handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update asset")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	assetID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid asset ID")
		return
	}

	if err := h.assetService.Delete(r.Context(), assetID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrAssetNotFound):
			httputil.WriteNotFound(w, "Asset not found")
		case errors.Is(err, model.ErrNotAssetOwner):
			httputil.WriteForbidden(w, "Only the owner can delete this asset")
		default:
			log.Printf("[ERROR] Delete asset handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete asset")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Asset deleted",
	})
}

// Like handles POST /api/assets/{id}/like.
func (h *AssetHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	assetID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid asset ID")
		return
	}

	if err := h.assetService.Like(r.Context(), assetID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrAssetNotFound):
			httputil.WriteNotFound(w, "Asset not found")
		case errors.Is(err, model.ErrAlreadyLiked):
			httputil.WriteBadRequest(w, "Asset already liked")
		default:
			log.Printf("[ERROR] Like handler: %v", err)
			httputil.WriteInternalError(w, "Failed to like asset")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Asset liked",
	})
}

// Unlike handles DELETE /api/assets/{id}/like.
func (h *AssetHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	assetID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid asset ID")
		return
	}

	if err := h.assetService.Unlike(r.Context(), assetID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrAssetNotFound):
			httputil.WriteNotFound(w, "Asset not found")
		case errors.Is(err, model.ErrNotLiked):
			httputil.WriteBadRequest(w, "Asset not liked")
		default:
			log.Printf("[ERROR] Unlike handler: %v", err)
			httputil.WriteInternalError(w, "Failed to unlike asset")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Asset unliked",
	})
}
