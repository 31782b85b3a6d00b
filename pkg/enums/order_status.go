package enums

import "fmt"

// OrderStatus is the externally visible lifecycle of an order.
type OrderStatus string

const (
	OrderStatusInitiating    OrderStatus = "initiating"
	OrderStatusSynchronizing OrderStatus = "synchronizing"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusFailed        OrderStatus = "failed"
	OrderStatusCancelled     OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusInitiating,
	OrderStatusSynchronizing,
	OrderStatusCompleted,
	OrderStatusFailed,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
