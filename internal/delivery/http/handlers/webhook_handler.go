package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/metrics"
	fulfillmentdto "github.com/cartfox/fulfillment-service/internal/usecase/dto/fulfillment"
	"github.com/cartfox/fulfillment-service/internal/usecase/fulfillment"
)

const signatureHeader = "stripe-signature"

// EventCheckoutCompleted is the only event type fulfillment acts on;
// everything else is acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

type WebhookHandler struct {
	Gateway domain.PaymentGateway
	Usecase fulfillment.FulfillmentUsecase
	Metrics *metrics.FulfillmentMetrics
}

func NewWebhookHandler(gateway domain.PaymentGateway, uc fulfillment.FulfillmentUsecase, m *metrics.FulfillmentMetrics) *WebhookHandler {
	return &WebhookHandler{
		Gateway: gateway,
		Usecase: uc,
		Metrics: m,
	}
}

// HandlePaymentWebhook is the gateway-facing intake. Authentication
// failures are 401 and never reach the orchestrator; infrastructure
// failures are 500 so the gateway redelivers; everything else is a 200
// with a descriptive body.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := r.Header.Get(signatureHeader)
	if signature == "" {
		h.Metrics.WebhookSignatureRejects.Inc()
		writeError(w, http.StatusUnauthorized, "Missing stripe-signature header")
		return
	}

	event, err := h.Gateway.VerifyEvent(payload, signature)
	if err != nil {
		h.Metrics.WebhookSignatureRejects.Inc()
		slog.Warn("webhook signature verification failed", "error", err.Error())
		writeError(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	if event.EventType != EventCheckoutCompleted {
		writeJSON(w, http.StatusOK, fulfillmentdto.FulfillmentResult{
			Received:  true,
			Processed: false,
			Code:      fulfillmentdto.CodeIgnoredEventType,
		})
		return
	}

	result, err := h.Usecase.HandleCheckoutCompleted(r.Context(), &fulfillmentdto.WebhookEventInput{
		ExternalEventID: event.ExternalEventID,
		EventType:       event.EventType,
		SessionRef:      event.SessionRef,
	})
	if err != nil {
		slog.Error("webhook processing failed", "event_id", event.ExternalEventID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
