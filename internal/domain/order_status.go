package domain

import "strings"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// ParseOrderStatus normalises a raw status string, returning false for
// anything outside the known set.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return status, true
	}
	return "", false
}

// orderTransitions is the allowed current -> next table for strict mode.
// Forward progression only, with cancellation and refund reachable from the
// states where they make sense; terminal states accept nothing.
var orderTransitions = map[OrderStatus]map[OrderStatus]struct{}{
	OrderStatusPending: {
		OrderStatusConfirmed: {},
		OrderStatusCancelled: {},
	},
	OrderStatusConfirmed: {
		OrderStatusProcessing: {},
		OrderStatusCancelled:  {},
		OrderStatusRefunded:   {},
	},
	OrderStatusProcessing: {
		OrderStatusShipped:   {},
		OrderStatusCancelled: {},
		OrderStatusRefunded:  {},
	},
	OrderStatusShipped: {
		OrderStatusDelivered: {},
		OrderStatusRefunded:  {},
	},
	OrderStatusDelivered: {
		OrderStatusRefunded: {},
	},
}

// CanTransition reports whether the strict transition table permits moving
// from the current status to the next one.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	allowed, ok := orderTransitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// Cancellable reports whether a user-initiated cancellation is permitted.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}
