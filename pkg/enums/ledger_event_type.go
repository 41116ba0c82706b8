package enums

import "fmt"

// LedgerEventType classifies revenue ledger entries.
type LedgerEventType string

const (
	LedgerEventQuotationConverted LedgerEventType = "quotation_converted"
	LedgerEventOrderPaid          LedgerEventType = "order_paid"
	LedgerEventOrderCancelled     LedgerEventType = "order_cancelled"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventQuotationConverted,
	LedgerEventOrderPaid,
	LedgerEventOrderCancelled,
}

// String implements fmt.Stringer.
func (l LedgerEventType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerEventType.
func (l LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerEventType converts raw input into a LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
