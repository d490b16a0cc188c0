package domain

import "context"

// SessionLineItem is one purchased line as reported by the payment
// gateway's checkout session.
type SessionLineItem struct {
	ProductID string
	VariantID string
	Quantity  int64
	UnitPrice float64
}

type CheckoutSession struct {
	SessionRef     string
	CustomerEmail  string
	AmountTotal    float64
	OriginalAmount float64
	Currency       string
	CouponCode     string
	LineItems      []SessionLineItem
}

// PaymentGateway is the external payment-provider client. VerifyEvent
// authenticates a raw webhook delivery before the core ever sees it.
type PaymentGateway interface {
	VerifyEvent(payload []byte, signature string) (*Event, error)
	RetrieveSession(ctx context.Context, sessionRef string) (*CheckoutSession, error)
}

// VariantInfo is the catalog's current view of a variant, used for price
// reconciliation only.
type VariantInfo struct {
	ProductID string
	VariantID string
	SKU       string
	UnitPrice float64
}

type CatalogService interface {
	ResolveVariant(ctx context.Context, ref VariantRef) (*VariantInfo, error)
}

// OrderNotifier delivers post-commit notifications. Implementations are
// fire-and-forget: failures are logged, never returned to fulfillment.
type OrderNotifier interface {
	NotifyOrderCreated(order *Order)
}
