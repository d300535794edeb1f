package handler

import (
	"log"
	"net/http"

	"pixelshelf/internal/httputil"
	"pixelshelf/internal/service"
	"pixelshelf/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /api/feed.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, limit := httputil.ParsePageLimit(r)

	result, err := h.feedService.GetFeed(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("[ERROR] GetFeed handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
