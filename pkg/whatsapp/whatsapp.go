// Package whatsapp builds the customer-facing WhatsApp message and wa.me
// deep link for a quotation response. The actual send happens outside the
// backend; this package only produces the payload handed to the client.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

const defaultBaseURL = "https://wa.me"

// Line is one priced row of the rendered offer.
type Line struct {
	Name               string
	Qty                int
	OriginalPriceCents int64
	AdjustedPriceCents int64
}

// Message is everything needed to render the offer as a WhatsApp text.
type Message struct {
	StoreName    string
	Ticket       string
	CustomerName string
	Lines        []Line
	TotalCents   int64
	SavingsCents int64
	ValidityDays int
	Note         string
}

// Payload is the deliverable handed back to the caller.
type Payload struct {
	Phone    string `json:"phone"`
	Text     string `json:"text"`
	DeepLink string `json:"deep_link"`
}

// Builder renders messages and deep links against a configured wa.me base.
type Builder struct {
	baseURL            string
	defaultCountryCode string
}

// NewBuilder returns a Builder. Empty arguments fall back to the wa.me
// default and to no implicit country code.
func NewBuilder(baseURL, defaultCountryCode string) *Builder {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	return &Builder{
		baseURL:            strings.TrimRight(trimmed, "/"),
		defaultCountryCode: strings.TrimSpace(defaultCountryCode),
	}
}

// Build renders the message text and wa.me deep link for the given phone.
func (b *Builder) Build(phone string, msg Message) (*Payload, error) {
	normalized, err := NormalizePhone(phone, b.defaultCountryCode)
	if err != nil {
		return nil, err
	}

	text := renderText(msg)
	link := fmt.Sprintf("%s/%s?text=%s", b.baseURL, normalized, url.QueryEscape(text))

	return &Payload{
		Phone:    normalized,
		Text:     text,
		DeepLink: link,
	}, nil
}

// NormalizePhone strips formatting characters and applies the default country
// code to local numbers (leading zero dropped). The result is digits only, as
// wa.me expects.
func NormalizePhone(phone, defaultCountryCode string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
			// formatting only
		default:
			return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("phone contains invalid character %q", r))
		}
	}

	value := digits.String()
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	if strings.HasPrefix(value, "0") && defaultCountryCode != "" {
		value = defaultCountryCode + strings.TrimLeft(value, "0")
	}

	if len(value) < 7 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "phone is too short")
	}

	return value, nil
}

func renderText(msg Message) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Quotation %s from %s\n", msg.Ticket, msg.StoreName)
	if msg.CustomerName != "" {
		fmt.Fprintf(&sb, "Hello %s,\n", msg.CustomerName)
	}
	sb.WriteString("\n")

	for _, line := range msg.Lines {
		if line.AdjustedPriceCents != line.OriginalPriceCents {
			fmt.Fprintf(&sb, "- %s x%d: %s (was %s)\n",
				line.Name, line.Qty,
				formatCents(line.AdjustedPriceCents), formatCents(line.OriginalPriceCents))
			continue
		}
		fmt.Fprintf(&sb, "- %s x%d: %s\n", line.Name, line.Qty, formatCents(line.AdjustedPriceCents))
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Total: %s\n", formatCents(msg.TotalCents))
	if msg.SavingsCents > 0 {
		fmt.Fprintf(&sb, "You save: %s\n", formatCents(msg.SavingsCents))
	}
	if msg.ValidityDays > 0 {
		fmt.Fprintf(&sb, "Offer valid for %d days.\n", msg.ValidityDays)
	}
	if note := strings.TrimSpace(msg.Note); note != "" {
		fmt.Fprintf(&sb, "\n%s\n", note)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
