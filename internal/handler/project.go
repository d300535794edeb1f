package handler

import (
	"errors"
	"log"
	"net/http"

	"pixelshelf/internal/httputil"
	"pixelshelf/internal/model"
	"pixelshelf/internal/service"
	"pixelshelf/internal/transport/http/middleware"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	userService    *service.UserService
}

func NewProjectHandler(projectService *service.ProjectService, userService *service.UserService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		userService:    userService,
	}
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateProjectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	project, err := h.projectService.Create(r.Context(), userID, req)
	if err != nil {
		log.Printf("[ERROR] Create project handler: %v", err)
		httputil.WriteInternalError(w, "Failed to create project")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, project)
}

// List handles GET /api/projects?username=...
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), username, nil)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] List projects handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch user")
		return
	}

	page, limit := httputil.ParsePageLimit(r)

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	result, err := h.projectService.ListByUser(r.Context(), profile.ID, page, limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] List projects handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch projects")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid project ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	project, err := h.projectService.Get(r.Context(), projectID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			httputil.WriteNotFound(w, "Project not found")
			return
		}
		log.Printf("[ERROR] Get project handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch project")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

// Update handles PATCH /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	projectID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid project ID")
		return
	}

	var req model.UpdateProjectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	project, err := h.projectService.Update(r.Context(), projectID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, "Only the owner can update this project")
		default:
			log.Printf("[ERROR] Update project handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	projectID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(r.Context(), projectID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, "Only the owner can delete this project")
		default:
			log.Printf("[ERROR] Delete project handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Project deleted",
	})
}
