package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateQuotation OutboxAggregateType = "quotation"
	AggregateOrder     OutboxAggregateType = "order"
	AggregateStore     OutboxAggregateType = "store"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateQuotation,
	AggregateOrder,
	AggregateStore,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventQuotationCreated   OutboxEventType = "quotation_created"
	EventQuotationResponded OutboxEventType = "quotation_responded"
	EventQuotationConverted OutboxEventType = "quotation_converted"
	EventQuotationCancelled OutboxEventType = "quotation_cancelled"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderPaid          OutboxEventType = "order_paid"
)

var validOutboxEventTypes = []OutboxEventType{
	EventQuotationCreated,
	EventQuotationResponded,
	EventQuotationConverted,
	EventQuotationCancelled,
	EventOrderStatusChanged,
	EventOrderPaid,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
