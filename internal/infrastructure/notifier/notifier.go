package notifier

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

type OrderCreatedPayload struct {
	OrderID       string  `json:"order_id"`
	OrderNumber   string  `json:"order_number"`
	Status        string  `json:"status"`
	CustomerEmail string  `json:"customer_email"`
	TotalAmount   float64 `json:"total_amount"`
	Currency      string  `json:"currency"`
}

// HTTPOrderNotifier posts order confirmations to the notification
// service. Delivery is fire-and-forget: fulfillment never waits on it
// and never fails because of it.
type HTTPOrderNotifier struct {
	CallbackURL string
	HTTPClient  *http.Client
}

func NewHTTPOrderNotifier(callbackURL string) *HTTPOrderNotifier {
	return &HTTPOrderNotifier{
		CallbackURL: callbackURL,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *HTTPOrderNotifier) NotifyOrderCreated(order *domain.Order) {
	if n.CallbackURL == "" {
		return
	}

	payload := OrderCreatedPayload{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			slog.Error("failed to marshal order notification", "order_id", payload.OrderID, "error", err.Error())
			return
		}

		req, err := http.NewRequest(http.MethodPost, n.CallbackURL, bytes.NewBuffer(body))
		if err != nil {
			slog.Error("failed to create notification request", "order_id", payload.OrderID, "error", err.Error())
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.HTTPClient.Do(req)
		if err != nil {
			slog.Error("order notification failed", "order_id", payload.OrderID, "error", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Warn("order notification returned non-2xx", "order_id", payload.OrderID, "status", resp.StatusCode)
		}
	}()
}
