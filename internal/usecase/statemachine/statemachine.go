package statemachine

import (
	"fmt"
	"strings"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

// allowedTransitions is the full lifecycle table. Refunded is terminal;
// a cancelled order may be reopened to pending.
var allowedTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPending:          {domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusCompleted:        {domain.StatusRefunded},
	domain.StatusCancelled:        {domain.StatusPending},
	domain.StatusRefunded:         {},
	domain.StatusPendingInventory: {domain.StatusCompleted, domain.StatusCancelled},
}

// specificMessages carries operator-facing explanations for illegal pairs
// we expect people to actually attempt.
var specificMessages = map[[2]domain.OrderStatus]string{
	{domain.StatusCompleted, domain.StatusCancelled}:        "Cannot cancel an order that has already been completed",
	{domain.StatusCompleted, domain.StatusPending}:          "Cannot move a completed order back to pending",
	{domain.StatusRefunded, domain.StatusCompleted}:         "Cannot mark a refunded order as completed",
	{domain.StatusRefunded, domain.StatusPending}:           "Cannot reopen a refunded order",
	{domain.StatusRefunded, domain.StatusCancelled}:         "Cannot cancel a refunded order",
	{domain.StatusPending, domain.StatusRefunded}:           "Cannot refund an order that has not been completed",
	{domain.StatusPendingInventory, domain.StatusRefunded}:  "Cannot refund an order that has not been completed",
	{domain.StatusCancelled, domain.StatusCompleted}:        "Cannot complete a cancelled order without reopening it first",
}

func IsValidTransition(from, to domain.OrderStatus) bool {
	if from == to {
		return false
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionErrorMessage explains why (from, to) is rejected. Returns ""
// for legal transitions.
func TransitionErrorMessage(from, to domain.OrderStatus) string {
	if IsValidTransition(from, to) {
		return ""
	}
	if from == to {
		return fmt.Sprintf("Order is already in status %s", from)
	}
	if msg, ok := specificMessages[[2]domain.OrderStatus{from, to}]; ok {
		return msg
	}
	targets := allowedTransitions[from]
	if len(targets) == 0 {
		return fmt.Sprintf("Invalid transition from %s to %s. Status %s is terminal", from, to, from)
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return fmt.Sprintf("Invalid transition from %s to %s. Valid transitions: %s", from, to, strings.Join(names, ", "))
}

// AllowedTargets returns a copy of the row for from.
func AllowedTargets(from domain.OrderStatus) []domain.OrderStatus {
	targets := allowedTransitions[from]
	out := make([]domain.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// TransitionRequest is one entry of a bulk status-change request. Actor
// and Reason are caller metadata carried through untouched.
type TransitionRequest struct {
	OrderID string
	From    domain.OrderStatus
	To      domain.OrderStatus
	Actor   string
	Reason  string
}

// InvalidTransition is a rejected request plus the rejection message.
type InvalidTransition struct {
	TransitionRequest
	Message string
}

// PartitionTransitions splits a batch into valid and invalid requests,
// preserving input order within each bucket.
func PartitionTransitions(batch []TransitionRequest) (valid []TransitionRequest, invalid []InvalidTransition) {
	for _, req := range batch {
		if IsValidTransition(req.From, req.To) {
			valid = append(valid, req)
			continue
		}
		invalid = append(invalid, InvalidTransition{
			TransitionRequest: req,
			Message:           TransitionErrorMessage(req.From, req.To),
		})
	}
	return valid, invalid
}
