package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"pixelshelf/internal/httputil"
	"pixelshelf/internal/model"
	"pixelshelf/internal/service"
	"pixelshelf/internal/transport/http/middleware"
)

type PaymentHandler struct {
	billingService *service.BillingService
}

func NewPaymentHandler(billingService *service.BillingService) *PaymentHandler {
	return &PaymentHandler{
		billingService: billingService,
	}
}

// CreateCheckout handles POST /api/payments/create-checkout.
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	session, err := h.billingService.CreateCheckout(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrBillingUnavailable):
			httputil.WriteError(w, http.StatusBadGateway, "BILLING_UNAVAILABLE", "Billing provider unavailable")
		default:
			log.Printf("[ERROR] CreateCheckout handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create checkout session")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, session)
}

// CreatePortal handles POST /api/payments/create-portal.
func (h *PaymentHandler) CreatePortal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	session, err := h.billingService.CreatePortal(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrSubscriptionNotFound):
			httputil.WriteNotFound(w, "No subscription found")
		case errors.Is(err, model.ErrBillingUnavailable):
			httputil.WriteError(w, http.StatusBadGateway, "BILLING_UNAVAILABLE", "Billing provider unavailable")
		default:
			log.Printf("[ERROR] CreatePortal handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create portal session")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, session)
}

// GetSubscription handles GET /api/payments/subscription.
func (h *PaymentHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	sub, err := h.billingService.GetSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrSubscriptionNotFound) {
			httputil.WriteNotFound(w, "No subscription found")
			return
		}
		log.Printf("[ERROR] GetSubscription handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch subscription")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sub)
}

// Webhook handles POST /api/payments/webhook, called by the billing
// provider. Authenticated by HMAC signature, not by user session.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteBadRequest(w, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Billing-Signature")

	if err := h.billingService.HandleWebhook(r.Context(), body, signature); err != nil {
		log.Printf("[ERROR] Webhook handler: %v", err)
		httputil.WriteBadRequest(w, "Webhook rejected")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
