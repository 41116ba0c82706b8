package enums

import "fmt"

// ResponseFormat selects how a store's counter-offer is delivered.
type ResponseFormat string

const (
	ResponseFormatSave     ResponseFormat = "save"
	ResponseFormatWhatsApp ResponseFormat = "whatsapp"
	ResponseFormatPDF      ResponseFormat = "pdf"
)

var validResponseFormats = []ResponseFormat{
	ResponseFormatSave,
	ResponseFormatWhatsApp,
	ResponseFormatPDF,
}

// String implements fmt.Stringer.
func (r ResponseFormat) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ResponseFormat.
func (r ResponseFormat) IsValid() bool {
	for _, candidate := range validResponseFormats {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResponseFormat converts raw input into a ResponseFormat.
func ParseResponseFormat(value string) (ResponseFormat, error) {
	for _, candidate := range validResponseFormats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid response format %q", value)
}

// ValidityDays is the allowed validity window for a counter-offer.
type ValidityDays int

const (
	ValidityThreeDays ValidityDays = 3
	ValiditySevenDays ValidityDays = 7
	ValidityHalfMonth ValidityDays = 15
	ValidityFullMonth ValidityDays = 30
)

var validValidityWindows = []ValidityDays{
	ValidityThreeDays,
	ValiditySevenDays,
	ValidityHalfMonth,
	ValidityFullMonth,
}

// IsValid reports whether the window is one of the allowed choices.
func (v ValidityDays) IsValid() bool {
	for _, candidate := range validValidityWindows {
		if candidate == v {
			return true
		}
	}
	return false
}
