package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusForwardChain(t *testing.T) {
	assert.True(t, OrderPending.CanTransition(OrderProcessing))
	assert.True(t, OrderProcessing.CanTransition(OrderShipped))
	assert.True(t, OrderShipped.CanTransition(OrderDelivered))
}

func TestOrderStatusNoSkipping(t *testing.T) {
	assert.False(t, OrderPending.CanTransition(OrderShipped))
	assert.False(t, OrderPending.CanTransition(OrderDelivered))
	assert.False(t, OrderProcessing.CanTransition(OrderDelivered))
}

func TestOrderStatusNoBackwards(t *testing.T) {
	assert.False(t, OrderProcessing.CanTransition(OrderPending))
	assert.False(t, OrderShipped.CanTransition(OrderProcessing))
	assert.False(t, OrderDelivered.CanTransition(OrderShipped))
}

func TestOrderStatusCancellation(t *testing.T) {
	assert.True(t, OrderPending.CanTransition(OrderCancelled))
	assert.True(t, OrderProcessing.CanTransition(OrderCancelled))
	assert.False(t, OrderShipped.CanTransition(OrderCancelled))
	assert.False(t, OrderDelivered.CanTransition(OrderCancelled))
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderDelivered.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderShipped.Terminal())

	assert.False(t, OrderCancelled.CanTransition(OrderPending))
	assert.False(t, OrderCancelled.CanTransition(OrderProcessing))
}
