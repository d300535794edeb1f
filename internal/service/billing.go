package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"pixelshelf/internal/config"
	"pixelshelf/internal/model"
	"pixelshelf/internal/repository"
)

// BillingService talks to the external billing provider over its REST API.
// Card data never touches this service; checkout and payment method entry
// happen on provider-hosted pages reached through the session URLs returned
// here.
type BillingService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	notifications    *NotificationService

	httpClient *http.Client
	apiURL     string
	apiKey     string
	returnURL  string
}

func NewBillingService(
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	cfg *config.Config,
) *BillingService {
	return &BillingService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		notifications:    notifications,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiURL:    strings.TrimSuffix(cfg.BillingAPIURL, "/"),
		apiKey:    cfg.BillingAPIKey,
		returnURL: cfg.BillingReturnURL,
	}
}

// checkoutSessionRequest is the provider payload for a new checkout session.
type checkoutSessionRequest struct {
	CustomerID    string `json:"customerId,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	Plan          string `json:"plan"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
	Reference     string `json:"reference"` // our user id, echoed back in webhooks
}

// portalSessionRequest is the provider payload for a management portal session.
type portalSessionRequest struct {
	CustomerID string `json:"customerId"`
	ReturnURL  string `json:"returnUrl"`
}

// sessionResponse is the provider's reply to both session calls.
type sessionResponse struct {
	URL        string `json:"url"`
	CustomerID string `json:"customerId"`
}

// webhookEvent is the provider's webhook envelope.
type webhookEvent struct {
	Type       string `json:"type"`
	CustomerID string `json:"customerId"`
	Reference  string `json:"reference"`
	Plan       string `json:"plan"`
	Status     string `json:"status"`
	PeriodEnd  *int64 `json:"periodEnd,omitempty"` // Unix timestamp
}

// Provider webhook event types
const (
	webhookSubscriptionActivated = "subscription.activated"
	webhookSubscriptionUpdated   = "subscription.updated"
	webhookSubscriptionCanceled  = "subscription.canceled"
)

// CreateCheckout opens a provider checkout session for upgrading to the
// requested tier and returns the redirect URL.
func (s *BillingService) CreateCheckout(ctx context.Context, userID int64, req model.CreateCheckoutRequest) (*model.PortalSessionResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload := checkoutSessionRequest{
		CustomerEmail: user.Email,
		Plan:          req.Tier,
		SuccessURL:    s.returnURL + "?checkout=success",
		CancelURL:     s.returnURL + "?checkout=canceled",
		Reference:     fmt.Sprintf("%d", userID),
	}

	// Reuse the provider customer when the user has subscribed before.
	if sub, err := s.subscriptionRepo.GetByUserID(ctx, userID); err == nil {
		payload.CustomerID = sub.BillingCustomerID
	}

	var resp sessionResponse
	if err := s.post(ctx, "/v1/checkout/sessions", payload, &resp); err != nil {
		return nil, err
	}

	return &model.PortalSessionResponse{URL: resp.URL}, nil
}

// CreatePortal opens the provider's self-service portal where the user can
// change payment methods or cancel. Requires an existing subscription.
func (s *BillingService) CreatePortal(ctx context.Context, userID int64) (*model.PortalSessionResponse, error) {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload := portalSessionRequest{
		CustomerID: sub.BillingCustomerID,
		ReturnURL:  s.returnURL,
	}

	var resp sessionResponse
	if err := s.post(ctx, "/v1/portal/sessions", payload, &resp); err != nil {
		return nil, err
	}

	return &model.PortalSessionResponse{URL: resp.URL}, nil
}

// GetSubscription returns the user's subscription row.
func (s *BillingService) GetSubscription(ctx context.Context, userID int64) (*model.Subscription, error) {
	return s.subscriptionRepo.GetByUserID(ctx, userID)
}

// HandleWebhook verifies the provider signature and applies the event:
// subscription state lands in the subscriptions table and the user's tier
// is updated to match.
func (s *BillingService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.verifySignature(body, signature) {
		return fmt.Errorf("invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("parse webhook: %w", err)
	}

	var userID int64
	if _, err := fmt.Sscanf(event.Reference, "%d", &userID); err != nil || userID <= 0 {
		return fmt.Errorf("invalid webhook reference %q", event.Reference)
	}

	switch event.Type {
	case webhookSubscriptionActivated, webhookSubscriptionUpdated:
		return s.applySubscription(ctx, userID, event)
	case webhookSubscriptionCanceled:
		return s.cancelSubscription(ctx, userID, event)
	default:
		log.Printf("[BillingService] Ignoring webhook type %q for user %d", event.Type, userID)
		return nil
	}
}

func (s *BillingService) applySubscription(ctx context.Context, userID int64, event webhookEvent) error {
	sub := &model.Subscription{
		UserID:            userID,
		BillingCustomerID: event.CustomerID,
		Tier:              event.Plan,
		Status:            event.Status,
	}
	if event.PeriodEnd != nil {
		periodEnd := time.Unix(*event.PeriodEnd, 0)
		sub.CurrentPeriodEnd = &periodEnd
	}

	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return err
	}

	tier := model.TierFree
	if event.Status == model.SubscriptionStatusActive {
		tier = event.Plan
	}
	if err := s.userRepo.SetTier(ctx, userID, tier); err != nil {
		return err
	}

	if event.Type == webhookSubscriptionActivated && s.notifications != nil {
		if err := s.notifications.CreateSystemNotification(ctx, userID,
			"Your Pro subscription is now active", "/settings/billing"); err != nil {
			log.Printf("[BillingService] Failed to notify user %d of activation: %v", userID, err)
		}
	}

	log.Printf("[BillingService] Subscription %s: user=%d plan=%s status=%s",
		event.Type, userID, event.Plan, event.Status)
	return nil
}

func (s *BillingService) cancelSubscription(ctx context.Context, userID int64, event webhookEvent) error {
	sub := &model.Subscription{
		UserID:            userID,
		BillingCustomerID: event.CustomerID,
		Tier:              event.Plan,
		Status:            model.SubscriptionStatusCanceled,
	}
	if event.PeriodEnd != nil {
		periodEnd := time.Unix(*event.PeriodEnd, 0)
		sub.CurrentPeriodEnd = &periodEnd
	}

	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return err
	}

	if err := s.userRepo.SetTier(ctx, userID, model.TierFree); err != nil {
		return err
	}

	if s.notifications != nil {
		if err := s.notifications.CreateSystemNotification(ctx, userID,
			"Your subscription has been canceled", "/settings/billing"); err != nil {
			log.Printf("[BillingService] Failed to notify user %d of cancellation: %v", userID, err)
		}
	}

	log.Printf("[BillingService] Subscription canceled: user=%d", userID)
	return nil
}

// post sends an authenticated JSON request to the provider and decodes the
// reply. Any non-2xx status maps to ErrBillingUnavailable; callers surface
// it as a 502-class failure rather than leaking provider internals.
func (s *BillingService) post(ctx context.Context, path string, payload, out interface{}) error {
	if s.apiURL == "" || s.apiKey == "" {
		return model.ErrBillingUnavailable
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[BillingService] Request to %s failed: %v", path, err)
		return model.ErrBillingUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[BillingService] Provider error: path=%s status=%d body=%s",
			path, resp.StatusCode, string(respBody))
		return model.ErrBillingUnavailable
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

// verifySignature checks the HMAC-SHA256 signature the provider puts on
// webhook deliveries.
func (s *BillingService) verifySignature(body []byte, signature string) bool {
	if s.apiKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.apiKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
