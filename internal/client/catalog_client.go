package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

// HTTPCatalogClient is the read-only product catalog collaborator, used
// for price/SKU reconciliation only.
type HTTPCatalogClient struct {
	Address    string
	HTTPClient *http.Client
}

func NewHTTPCatalogClient(address string) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		Address:    address,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type catalogVariantResponse struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id"`
	SKU       string  `json:"sku"`
	UnitPrice float64 `json:"unit_price"`
}

type catalogErrorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPCatalogClient) ResolveVariant(ctx context.Context, ref domain.VariantRef) (*domain.VariantInfo, error) {
	url := fmt.Sprintf("%s/products/%s/variants/%s", c.Address, ref.ProductID, ref.VariantID)
	if ref.VariantID == "" {
		url = fmt.Sprintf("%s/products/%s", c.Address, ref.ProductID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var errorResponse catalogErrorResponse
		if err := json.Unmarshal(responseBodyBytes, &errorResponse); err != nil || errorResponse.Error == "" {
			return nil, fmt.Errorf("catalog returned status %d", response.StatusCode)
		}
		return nil, errors.New(errorResponse.Error)
	}

	var parsed catalogVariantResponse
	if err := json.Unmarshal(responseBodyBytes, &parsed); err != nil {
		return nil, err
	}

	return &domain.VariantInfo{
		ProductID: parsed.ProductID,
		VariantID: parsed.VariantID,
		SKU:       parsed.SKU,
		UnitPrice: parsed.UnitPrice,
	}, nil
}
