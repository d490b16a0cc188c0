package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/metrics"
	fulfillmentdto "github.com/cartfox/fulfillment-service/internal/usecase/dto/fulfillment"
)

type stubGateway struct {
	event     *domain.Event
	verifyErr error
}

func (g *stubGateway) VerifyEvent(_ []byte, _ string) (*domain.Event, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}

func (g *stubGateway) RetrieveSession(_ context.Context, _ string) (*domain.CheckoutSession, error) {
	return nil, domain.ErrSessionNotFound
}

type stubUsecase struct {
	result     *fulfillmentdto.FulfillmentResult
	handleErr  error
	lastInput  *fulfillmentdto.WebhookEventInput
	order      *domain.Order
	updateErr  error
	lastUpdate *fulfillmentdto.UpdateStatusInput
}

func (u *stubUsecase) HandleCheckoutCompleted(_ context.Context, input *fulfillmentdto.WebhookEventInput) (*fulfillmentdto.FulfillmentResult, error) {
	u.lastInput = input
	if u.handleErr != nil {
		return nil, u.handleErr
	}
	return u.result, nil
}

func (u *stubUsecase) UpdateOrderStatus(_ context.Context, input *fulfillmentdto.UpdateStatusInput) error {
	u.lastUpdate = input
	return u.updateErr
}

func (u *stubUsecase) RetryPendingInventory(_ context.Context) error { return nil }

func (u *stubUsecase) GetOrderByID(_ context.Context, _ string) (*domain.Order, error) {
	if u.order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return u.order, nil
}

func (u *stubUsecase) GetOrderBySessionID(_ context.Context, _ string) (*domain.Order, error) {
	if u.order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return u.order, nil
}

func (u *stubUsecase) ListOrders(_ context.Context, _ domain.OrderFilters, _, _ int64) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func newWebhookHandler(gateway *stubGateway, uc *stubUsecase) *WebhookHandler {
	return NewWebhookHandler(gateway, uc, metrics.NewFulfillmentMetricsWith(prometheus.NewRegistry()))
}

func postWebhook(h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("stripe-signature", signature)
	}
	rec := httptest.NewRecorder()
	h.HandlePaymentWebhook(rec, req)
	return rec
}

func TestHandlePaymentWebhook_MethodNotAllowed(t *testing.T) {
	h := newWebhookHandler(&stubGateway{}, &stubUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/webhooks/payment", nil)
	rec := httptest.NewRecorder()
	h.HandlePaymentWebhook(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlePaymentWebhook_MissingSignature(t *testing.T) {
	h := newWebhookHandler(&stubGateway{}, &stubUsecase{})

	rec := postWebhook(h, []byte(`{}`), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Missing stripe-signature header", body["error"])
}

func TestHandlePaymentWebhook_InvalidSignature(t *testing.T) {
	uc := &stubUsecase{}
	h := newWebhookHandler(&stubGateway{verifyErr: domain.ErrInvalidSignature}, uc)

	rec := postWebhook(h, []byte(`{}`), "t=1,v1=bad")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid webhook signature", body["error"])
	assert.Nil(t, uc.lastInput)
}

func TestHandlePaymentWebhook_IgnoredEventType(t *testing.T) {
	uc := &stubUsecase{}
	h := newWebhookHandler(&stubGateway{event: &domain.Event{
		ExternalEventID: "evt_1",
		EventType:       "payment_intent.created",
	}}, uc)

	rec := postWebhook(h, []byte(`{}`), "t=1,v1=ok")

	assert.Equal(t, http.StatusOK, rec.Code)
	var result fulfillmentdto.FulfillmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Received)
	assert.False(t, result.Processed)
	assert.Equal(t, fulfillmentdto.CodeIgnoredEventType, result.Code)
	assert.Nil(t, uc.lastInput)
}

func TestHandlePaymentWebhook_Processed(t *testing.T) {
	uc := &stubUsecase{result: &fulfillmentdto.FulfillmentResult{
		Received:  true,
		Processed: true,
		OrderID:   "order-1",
	}}
	h := newWebhookHandler(&stubGateway{event: &domain.Event{
		ExternalEventID: "evt_1",
		EventType:       EventCheckoutCompleted,
		SessionRef:      "cs_1",
	}}, uc)

	rec := postWebhook(h, []byte(`{}`), "t=1,v1=ok")

	assert.Equal(t, http.StatusOK, rec.Code)
	var result fulfillmentdto.FulfillmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Processed)
	assert.Equal(t, "order-1", result.OrderID)

	require.NotNil(t, uc.lastInput)
	assert.Equal(t, "evt_1", uc.lastInput.ExternalEventID)
	assert.Equal(t, "cs_1", uc.lastInput.SessionRef)
}

func TestHandlePaymentWebhook_UsecaseFailure(t *testing.T) {
	uc := &stubUsecase{handleErr: errors.New("db unavailable")}
	h := newWebhookHandler(&stubGateway{event: &domain.Event{
		ExternalEventID: "evt_1",
		EventType:       EventCheckoutCompleted,
		SessionRef:      "cs_1",
	}}, uc)

	rec := postWebhook(h, []byte(`{}`), "t=1,v1=ok")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "db unavailable", body["error"])
}
