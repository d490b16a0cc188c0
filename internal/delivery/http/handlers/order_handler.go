package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cartfox/fulfillment-service/internal/domain"
	fulfillmentdto "github.com/cartfox/fulfillment-service/internal/usecase/dto/fulfillment"
	"github.com/cartfox/fulfillment-service/internal/usecase/fulfillment"
	"github.com/cartfox/fulfillment-service/internal/usecase/statemachine"
)

type OrderHandler struct {
	Usecase fulfillment.FulfillmentUsecase
}

func NewOrderHandler(uc fulfillment.FulfillmentUsecase) *OrderHandler {
	return &OrderHandler{Usecase: uc}
}

type orderResponse struct {
	ID                string                   `json:"id"`
	OrderNumber       string                   `json:"orderNumber"`
	ExternalSessionID string                   `json:"externalSessionId"`
	Status            string                   `json:"status"`
	TotalAmount       float64                  `json:"totalAmount"`
	OriginalAmount    float64                  `json:"originalAmount,omitempty"`
	Currency          string                   `json:"currency"`
	CouponCode        string                   `json:"couponCode,omitempty"`
	LineItems         []lineItemResponse       `json:"lineItems"`
	StatusHistory     []statusHistoryResponse  `json:"statusHistory"`
	InventoryIssues   []inventoryIssueResponse `json:"inventoryIssues,omitempty"`
}

type lineItemResponse struct {
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId,omitempty"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type statusHistoryResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type inventoryIssueResponse struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

type batchTransitionRequest struct {
	Transitions []batchTransitionEntry `json:"transitions"`
}

type batchTransitionEntry struct {
	OrderID string `json:"orderId"`
	From    string `json:"from"`
	To      string `json:"to"`
	Actor   string `json:"actor,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type batchTransitionResponse struct {
	Valid   []batchTransitionEntry  `json:"valid"`
	Invalid []batchTransitionResult `json:"invalid"`
}

type batchTransitionResult struct {
	batchTransitionEntry
	Message string `json:"message"`
}

// HandleOrders dispatches requests under /orders/.
func (h *OrderHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/status"):
		h.UpdateStatus(w, r)
	case r.Method == http.MethodGet:
		h.GetOrder(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// GetOrder serves GET /orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimPrefix(r.URL.Path, "/orders/")
	if orderID == "" || strings.Contains(orderID, "/") {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	order, err := h.Usecase.GetOrderByID(r.Context(), orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus serves POST /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/orders/")
	orderID := strings.TrimSuffix(path, "/status")
	if orderID == "" || orderID == path {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.Usecase.UpdateOrderStatus(r.Context(), &fulfillmentdto.UpdateStatusInput{
		OrderID:   orderID,
		NewStatus: req.Status,
		Actor:     req.Actor,
		Reason:    req.Reason,
	})
	if errors.Is(err, domain.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if errors.Is(err, domain.ErrInvalidTransition) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
			writeError(w, http.StatusBadRequest, st.Message())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ValidateBatch serves POST /orders/status-batch: it partitions the
// requested transitions without mutating anything, so operators can
// preview a bulk change before applying it.
func (h *OrderHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	batch := make([]statemachine.TransitionRequest, 0, len(req.Transitions))
	for _, entry := range req.Transitions {
		batch = append(batch, statemachine.TransitionRequest{
			OrderID: entry.OrderID,
			From:    domain.OrderStatus(entry.From),
			To:      domain.OrderStatus(entry.To),
			Actor:   entry.Actor,
			Reason:  entry.Reason,
		})
	}

	valid, invalid := statemachine.PartitionTransitions(batch)

	resp := batchTransitionResponse{
		Valid:   make([]batchTransitionEntry, 0, len(valid)),
		Invalid: make([]batchTransitionResult, 0, len(invalid)),
	}
	for _, v := range valid {
		resp.Valid = append(resp.Valid, toBatchEntry(v))
	}
	for _, iv := range invalid {
		resp.Invalid = append(resp.Invalid, batchTransitionResult{
			batchTransitionEntry: toBatchEntry(iv.TransitionRequest),
			Message:              iv.Message,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func toBatchEntry(req statemachine.TransitionRequest) batchTransitionEntry {
	return batchTransitionEntry{
		OrderID: req.OrderID,
		From:    string(req.From),
		To:      string(req.To),
		Actor:   req.Actor,
		Reason:  req.Reason,
	}
}

func toOrderResponse(order *domain.Order) orderResponse {
	resp := orderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		ExternalSessionID: order.ExternalSessionID,
		Status:            string(order.Status),
		TotalAmount:       order.TotalAmount,
		OriginalAmount:    order.OriginalAmount,
		Currency:          order.Currency,
		CouponCode:        order.CouponCode,
		LineItems:         make([]lineItemResponse, 0, len(order.LineItems)),
		StatusHistory:     make([]statusHistoryResponse, 0, len(order.StatusHistory)),
	}

	for _, item := range order.LineItems {
		resp.LineItems = append(resp.LineItems, lineItemResponse{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	for _, tr := range order.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, statusHistoryResponse{
			From:      string(tr.From),
			To:        string(tr.To),
			Timestamp: tr.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Actor:     tr.Actor,
			Reason:    tr.Reason,
		})
	}
	for _, issue := range order.InventoryIssues {
		resp.InventoryIssues = append(resp.InventoryIssues, inventoryIssueResponse{
			ProductID: issue.ProductID,
			VariantID: issue.VariantID,
			Requested: issue.Requested,
			Available: issue.Available,
		})
	}

	return resp
}
