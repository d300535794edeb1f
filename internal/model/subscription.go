package model

import (
	"errors"
	"time"
)

// Subscription statuses mirror the billing provider's vocabulary.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription is one-to-one with User and holds the external
// billing-provider customer id. Card data never touches this system.
type Subscription struct {
	ID                int64      `db:"id" json:"id"`
	UserID            int64      `db:"user_id" json:"userId"`
	BillingCustomerID string     `db:"billing_customer_id" json:"-"`
	Tier              string     `db:"tier" json:"tier"`
	Status            string     `db:"status" json:"status"`
	CurrentPeriodEnd  *time.Time `db:"current_period_end" json:"currentPeriodEnd,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// CreateCheckoutRequest is the POST /api/payments/create-checkout body.
type CreateCheckoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=pro"`
}

// PortalSessionResponse carries the redirect URL returned by the provider.
type PortalSessionResponse struct {
	URL string `json:"url"`
}

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrBillingUnavailable   = errors.New("billing provider unavailable")
)
