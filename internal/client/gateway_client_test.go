package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

const testSecret = "whsec_test"

func signPayload(t *testing.T, secret string, timestamp int64, payload []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyEvent_ValidSignature(t *testing.T) {
	c := NewHTTPGatewayClient("https://gateway.example", "sk_test", testSecret)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	signature := signPayload(t, testSecret, time.Now().Unix(), payload)

	event, err := c.VerifyEvent(payload, signature)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ExternalEventID)
	assert.Equal(t, "checkout.session.completed", event.EventType)
	assert.Equal(t, "cs_1", event.SessionRef)
}

func TestVerifyEvent_WrongSecret(t *testing.T) {
	c := NewHTTPGatewayClient("https://gateway.example", "sk_test", testSecret)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	signature := signPayload(t, "whsec_other", time.Now().Unix(), payload)

	_, err := c.VerifyEvent(payload, signature)
	require.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyEvent_TamperedPayload(t *testing.T) {
	c := NewHTTPGatewayClient("https://gateway.example", "sk_test", testSecret)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	signature := signPayload(t, testSecret, time.Now().Unix(), payload)

	tampered := []byte(`{"id":"evt_2","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	_, err := c.VerifyEvent(tampered, signature)
	require.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyEvent_StaleTimestamp(t *testing.T) {
	c := NewHTTPGatewayClient("https://gateway.example", "sk_test", testSecret)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	stale := time.Now().Add(-10 * time.Minute).Unix()
	signature := signPayload(t, testSecret, stale, payload)

	_, err := c.VerifyEvent(payload, signature)
	require.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyEvent_MalformedHeader(t *testing.T) {
	c := NewHTTPGatewayClient("https://gateway.example", "sk_test", testSecret)

	for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=123"} {
		_, err := c.VerifyEvent([]byte(`{}`), header)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature, "header %q", header)
	}
}

func TestRetrieveSession_ParsesLineItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
		assert.Equal(t, "line_items", r.URL.Query().Get("expand"))
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "cs_1",
			"customer_email": "buyer@example.com",
			"amount_total": 54.00,
			"amount_subtotal": 60.00,
			"currency": "usd",
			"coupon_code": "SAVE10",
			"line_items": {"data": [
				{"product_id": "p1", "variant_id": "v1", "quantity": 2, "unit_price": 30.00}
			]}
		}`)
	}))
	defer server.Close()

	c := NewHTTPGatewayClient(server.URL, "sk_test", testSecret)
	session, err := c.RetrieveSession(context.Background(), "cs_1")
	require.NoError(t, err)

	assert.Equal(t, "cs_1", session.SessionRef)
	assert.Equal(t, "buyer@example.com", session.CustomerEmail)
	assert.Equal(t, 54.00, session.AmountTotal)
	assert.Equal(t, 60.00, session.OriginalAmount)
	assert.Equal(t, "SAVE10", session.CouponCode)
	require.Len(t, session.LineItems, 1)
	assert.Equal(t, int64(2), session.LineItems[0].Quantity)
}

func TestRetrieveSession_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewHTTPGatewayClient(server.URL, "sk_test", testSecret)
	_, err := c.RetrieveSession(context.Background(), "cs_missing")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRetrieveSession_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":{"type":"api_error","message":"upstream exploded"}}`)
	}))
	defer server.Close()

	c := NewHTTPGatewayClient(server.URL, "sk_test", testSecret)
	_, err := c.RetrieveSession(context.Background(), "cs_1")
	require.EqualError(t, err, "upstream exploded")
}
