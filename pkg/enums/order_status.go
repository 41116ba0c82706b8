package enums

import "fmt"

// OrderFulfillmentStatus tracks the fulfillment lifecycle of an order,
// independent from the quotation it was converted from.
type OrderFulfillmentStatus string

const (
	OrderFulfillmentPending   OrderFulfillmentStatus = "pending"
	OrderFulfillmentConfirmed OrderFulfillmentStatus = "confirmed"
	OrderFulfillmentPreparing OrderFulfillmentStatus = "preparing"
	OrderFulfillmentReady     OrderFulfillmentStatus = "ready"
	OrderFulfillmentDelivered OrderFulfillmentStatus = "delivered"
	OrderFulfillmentCancelled OrderFulfillmentStatus = "cancelled"
)

var validOrderFulfillmentStatuses = []OrderFulfillmentStatus{
	OrderFulfillmentPending,
	OrderFulfillmentConfirmed,
	OrderFulfillmentPreparing,
	OrderFulfillmentReady,
	OrderFulfillmentDelivered,
	OrderFulfillmentCancelled,
}

// String implements fmt.Stringer.
func (o OrderFulfillmentStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderFulfillmentStatus.
func (o OrderFulfillmentStatus) IsValid() bool {
	for _, candidate := range validOrderFulfillmentStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the fulfillment status admits no further movement.
func (o OrderFulfillmentStatus) IsTerminal() bool {
	return o == OrderFulfillmentDelivered || o == OrderFulfillmentCancelled
}

// ParseOrderFulfillmentStatus converts raw input into an OrderFulfillmentStatus.
func ParseOrderFulfillmentStatus(value string) (OrderFulfillmentStatus, error) {
	for _, candidate := range validOrderFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order fulfillment status %q", value)
}
