package enums

import "fmt"

// QuotationStatus tracks the lifecycle of a per-store quotation.
type QuotationStatus string

const (
	QuotationStatusPending     QuotationStatus = "pending"
	QuotationStatusContacted   QuotationStatus = "contacted"
	QuotationStatusNegotiating QuotationStatus = "negotiating"
	QuotationStatusAccepted    QuotationStatus = "accepted"
	QuotationStatusConverted   QuotationStatus = "converted"
	QuotationStatusCancelled   QuotationStatus = "cancelled"
	QuotationStatusExpired     QuotationStatus = "expired"
)

var validQuotationStatuses = []QuotationStatus{
	QuotationStatusPending,
	QuotationStatusContacted,
	QuotationStatusNegotiating,
	QuotationStatusAccepted,
	QuotationStatusConverted,
	QuotationStatusCancelled,
	QuotationStatusExpired,
}

// String implements fmt.Stringer.
func (q QuotationStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuotationStatus.
func (q QuotationStatus) IsValid() bool {
	for _, candidate := range validQuotationStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (q QuotationStatus) IsTerminal() bool {
	switch q {
	case QuotationStatusConverted, QuotationStatusCancelled, QuotationStatusExpired:
		return true
	default:
		return false
	}
}

// ParseQuotationStatus converts raw input into a QuotationStatus.
func ParseQuotationStatus(value string) (QuotationStatus, error) {
	for _, candidate := range validQuotationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quotation status %q", value)
}
