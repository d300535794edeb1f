package handler

import (
	"log"
	"net/http"

	"pixelshelf/internal/httputil"
	"pixelshelf/internal/service"
	"pixelshelf/internal/transport/http/middleware"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// Search handles GET /api/search?q=...&type=all|users|assets|projects.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteBadRequest(w, "Query parameter q is required")
		return
	}

	searchType := r.URL.Query().Get("type")
	page, limit := httputil.ParsePageLimit(r)

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	result, err := h.searchService.Search(r.Context(), query, searchType, page, limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Search handler: %v", err)
		httputil.WriteInternalError(w, "Failed to search")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
