package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

var allStatuses = []domain.OrderStatus{
	domain.StatusPending,
	domain.StatusPendingInventory,
	domain.StatusCompleted,
	domain.StatusCancelled,
	domain.StatusRefunded,
}

func TestIsValidTransition_Table(t *testing.T) {
	valid := map[[2]domain.OrderStatus]bool{
		{domain.StatusPending, domain.StatusCompleted}:          true,
		{domain.StatusPending, domain.StatusCancelled}:          true,
		{domain.StatusCompleted, domain.StatusRefunded}:         true,
		{domain.StatusCancelled, domain.StatusPending}:          true,
		{domain.StatusPendingInventory, domain.StatusCompleted}: true,
		{domain.StatusPendingInventory, domain.StatusCancelled}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			expected := valid[[2]domain.OrderStatus{from, to}]
			assert.Equal(t, expected, IsValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsValidTransition_SelfTransitionsAlwaysInvalid(t *testing.T) {
	for _, s := range allStatuses {
		assert.False(t, IsValidTransition(s, s), "self transition %s", s)
	}
}

// Every illegal pair must produce a non-empty explanation.
func TestTransitionErrorMessage_Closure(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if IsValidTransition(from, to) {
				assert.Empty(t, TransitionErrorMessage(from, to))
				continue
			}
			assert.NotEmpty(t, TransitionErrorMessage(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionErrorMessage_SpecificMessages(t *testing.T) {
	assert.Equal(t,
		"Cannot cancel an order that has already been completed",
		TransitionErrorMessage(domain.StatusCompleted, domain.StatusCancelled),
	)
	assert.Equal(t,
		"Cannot mark a refunded order as completed",
		TransitionErrorMessage(domain.StatusRefunded, domain.StatusCompleted),
	)
}

func TestTransitionErrorMessage_GenericListsTargets(t *testing.T) {
	msg := TransitionErrorMessage(domain.StatusPending, domain.StatusPendingInventory)
	assert.Contains(t, msg, "Invalid transition from pending to pending_inventory")
	assert.Contains(t, msg, "completed")
	assert.Contains(t, msg, "cancelled")
}

func TestAllowedTargets_RefundedTerminal(t *testing.T) {
	assert.Empty(t, AllowedTargets(domain.StatusRefunded))
}

func TestPartitionTransitions(t *testing.T) {
	batch := []TransitionRequest{
		{OrderID: "o1", From: domain.StatusPending, To: domain.StatusCompleted, Actor: "ops", Reason: "manual"},
		{OrderID: "o2", From: domain.StatusRefunded, To: domain.StatusCompleted, Actor: "ops"},
		{OrderID: "o3", From: domain.StatusCancelled, To: domain.StatusPending},
		{OrderID: "o4", From: domain.StatusCompleted, To: domain.StatusCancelled, Reason: "oops"},
	}

	valid, invalid := PartitionTransitions(batch)

	require.Len(t, valid, 2)
	require.Len(t, invalid, 2)

	// Input order preserved within each bucket.
	assert.Equal(t, "o1", valid[0].OrderID)
	assert.Equal(t, "o3", valid[1].OrderID)
	assert.Equal(t, "o2", invalid[0].OrderID)
	assert.Equal(t, "o4", invalid[1].OrderID)

	// Caller metadata carried through on both branches.
	assert.Equal(t, "ops", valid[0].Actor)
	assert.Equal(t, "manual", valid[0].Reason)
	assert.Equal(t, "oops", invalid[1].Reason)

	assert.Equal(t, "Cannot mark a refunded order as completed", invalid[0].Message)
	assert.Equal(t, "Cannot cancel an order that has already been completed", invalid[1].Message)
}

func TestPartitionTransitions_Empty(t *testing.T) {
	valid, invalid := PartitionTransitions(nil)
	assert.Empty(t, valid)
	assert.Empty(t, invalid)
}
