package handler

import (
	"errors"
	"log"
	"net/http"

	"pixelshelf/internal/httputil"
	"pixelshelf/internal/model"
	"pixelshelf/internal/realtime"
	"pixelshelf/internal/service"
	"pixelshelf/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	hub                 *realtime.Hub
}

func NewNotificationHandler(notificationService *service.NotificationService, hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 hub,
	}
}

// List handles GET /api/notifications.
// Query params: page, limit, unreadOnly=true, archivedOnly=true.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, limit := httputil.ParsePageLimit(r)
	filter := model.NotificationFilter{
		UnreadOnly:   httputil.ParseBoolParam(r, "unreadOnly"),
		ArchivedOnly: httputil.ParseBoolParam(r, "archivedOnly"),
	}

	result, err := h.notificationService.List(r.Context(), userID, filter, page, limit)
	if err != nil {
		log.Printf("[ERROR] List notifications handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Mark handles PATCH /api/notifications.
func (h *NotificationHandler) Mark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.MarkNotificationsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.notificationService.Mark(r.Context(), userID, req); err != nil {
		if errors.Is(err, model.ErrNothingToMark) {
			httputil.WriteBadRequest(w, "Either ids or all must be provided")
			return
		}
		log.Printf("[ERROR] Mark notifications handler: %v", err)
		httputil.WriteInternalError(w, "Failed to update notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Notifications updated",
	})
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] UnreadCount handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch unread count")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{
		"unreadCount": count,
	})
}

// Stream handles GET /api/notifications/stream, upgrading to a websocket
// that pushes new notifications as they are created.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if h.hub == nil {
		httputil.WriteNotFound(w, "Notification stream not available")
		return
	}

	if err := realtime.ServeWS(h.hub, w, r, userID); err != nil {
		// Upgrade failure already wrote the response
		log.Printf("[ERROR] Stream handler: upgrade failed for user %d: %v", userID, err)
	}
}
