package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

// signatureTolerance rejects replayed deliveries with a stale timestamp.
const signatureTolerance = 5 * time.Minute

// HTTPGatewayClient talks to the payment provider's REST API and
// verifies its webhook signatures. The signature scheme is the provider's
// "t=<unix>,v1=<hex hmac-sha256 of t.payload>" header format.
type HTTPGatewayClient struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	HTTPClient    *http.Client
}

func NewHTTPGatewayClient(baseURL, apiKey, webhookSecret string) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		APIKey:        apiKey,
		WebhookSecret: webhookSecret,
		HTTPClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

type gatewayEventPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

type gatewaySessionPayload struct {
	ID             string  `json:"id"`
	CustomerEmail  string  `json:"customer_email"`
	AmountTotal    float64 `json:"amount_total"`
	AmountSubtotal float64 `json:"amount_subtotal"`
	Currency       string  `json:"currency"`
	CouponCode     string  `json:"coupon_code"`
	LineItems      struct {
		Data []struct {
			ProductID string  `json:"product_id"`
			VariantID string  `json:"variant_id"`
			Quantity  int64   `json:"quantity"`
			UnitPrice float64 `json:"unit_price"`
		} `json:"data"`
	} `json:"line_items"`
}

type gatewayErrorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyEvent authenticates the raw webhook body against its signature
// header and returns the parsed envelope.
func (c *HTTPGatewayClient) VerifyEvent(payload []byte, signature string) (*domain.Event, error) {
	timestamp, expected, err := parseSignatureHeader(signature)
	if err != nil {
		return nil, err
	}

	if time.Since(time.Unix(timestamp, 0)) > signatureTolerance {
		return nil, fmt.Errorf("signature timestamp outside tolerance: %w", domain.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	computed := mac.Sum(nil)

	if !hmac.Equal(computed, expected) {
		return nil, domain.ErrInvalidSignature
	}

	var parsed gatewayEventPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if parsed.ID == "" {
		return nil, errors.New("webhook payload has no event id")
	}

	return &domain.Event{
		ExternalEventID: parsed.ID,
		EventType:       parsed.Type,
		SessionRef:      parsed.Data.Object.ID,
	}, nil
}

// RetrieveSession resolves the checkout session and its line items. A
// 404 maps to ErrSessionNotFound so the orchestrator can treat it as
// terminal instead of retryable.
func (c *HTTPGatewayClient) RetrieveSession(ctx context.Context, sessionRef string) (*domain.CheckoutSession, error) {
	url := fmt.Sprintf("%s/v1/checkout/sessions/%s?expand=line_items", c.BaseURL, sessionRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	response, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode == http.StatusNotFound {
		return nil, domain.ErrSessionNotFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var errorResponse gatewayErrorPayload
		if err := json.Unmarshal(responseBodyBytes, &errorResponse); err != nil || errorResponse.Error.Message == "" {
			return nil, fmt.Errorf("gateway returned status %d", response.StatusCode)
		}
		return nil, errors.New(errorResponse.Error.Message)
	}

	var parsed gatewaySessionPayload
	if err := json.Unmarshal(responseBodyBytes, &parsed); err != nil {
		return nil, err
	}

	session := &domain.CheckoutSession{
		SessionRef:     parsed.ID,
		CustomerEmail:  parsed.CustomerEmail,
		AmountTotal:    parsed.AmountTotal,
		OriginalAmount: parsed.AmountSubtotal,
		Currency:       parsed.Currency,
		CouponCode:     parsed.CouponCode,
	}
	for _, li := range parsed.LineItems.Data {
		session.LineItems = append(session.LineItems, domain.SessionLineItem{
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		})
	}

	return session, nil
}

func parseSignatureHeader(signature string) (int64, []byte, error) {
	var timestamp int64
	var expected []byte

	for _, part := range strings.Split(signature, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("bad signature timestamp: %w", domain.ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				return 0, nil, fmt.Errorf("bad signature encoding: %w", domain.ErrInvalidSignature)
			}
			expected = sig
		}
	}

	if timestamp == 0 || len(expected) == 0 {
		return 0, nil, fmt.Errorf("malformed signature header: %w", domain.ErrInvalidSignature)
	}
	return timestamp, expected, nil
}
