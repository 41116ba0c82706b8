// Package pdfdoc assembles the structured document payload for a quotation
// response delivered as a PDF. Rendering happens in an external service; the
// backend only guarantees the payload is complete and internally consistent.
package pdfdoc

import (
	"time"

	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

// Document is the render-ready representation of a quotation offer.
type Document struct {
	Header   Header     `json:"header"`
	Customer Customer   `json:"customer"`
	Lines    []LineItem `json:"lines"`
	Totals   Totals     `json:"totals"`
	Footer   Footer     `json:"footer"`
}

// Header identifies the issuing store and the quotation.
type Header struct {
	StoreName string    `json:"store_name"`
	Ticket    string    `json:"ticket"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Customer is the addressee block.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	City  string `json:"city,omitempty"`
}

// LineItem is one priced row of the offer table.
type LineItem struct {
	Name               string `json:"name"`
	Qty                int    `json:"qty"`
	OriginalPriceCents int64  `json:"original_price_cents"`
	AdjustedPriceCents int64  `json:"adjusted_price_cents"`
	DiscountPercent    int    `json:"discount_percent"`
	LineTotalCents     int64  `json:"line_total_cents"`
}

// Totals summarizes the offer.
type Totals struct {
	OriginalTotalCents int64 `json:"original_total_cents"`
	AdjustedTotalCents int64 `json:"adjusted_total_cents"`
	SavingsCents       int64 `json:"savings_cents"`
	DiscountPercent    int   `json:"discount_percent"`
}

// Footer carries validity and free-form notes.
type Footer struct {
	ValidUntil   time.Time `json:"valid_until"`
	ValidityDays int       `json:"validity_days"`
	Note         string    `json:"note,omitempty"`
}

// Build validates and assembles a Document. Line totals and the totals block
// are recomputed here rather than trusted from the caller.
func Build(header Header, customer Customer, lines []LineItem, footer Footer) (*Document, error) {
	if header.StoreName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	if header.Ticket == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket is required")
	}
	if customer.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document needs at least one line")
	}

	var totals Totals
	out := make([]LineItem, len(lines))
	for i, line := range lines {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line qty must be positive")
		}
		if line.AdjustedPriceCents < 0 || line.OriginalPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line prices cannot be negative")
		}
		line.LineTotalCents = line.AdjustedPriceCents * int64(line.Qty)
		totals.OriginalTotalCents += line.OriginalPriceCents * int64(line.Qty)
		totals.AdjustedTotalCents += line.LineTotalCents
		out[i] = line
	}
	totals.SavingsCents = totals.OriginalTotalCents - totals.AdjustedTotalCents
	if totals.OriginalTotalCents > 0 {
		totals.DiscountPercent = int((totals.SavingsCents*100 + totals.OriginalTotalCents/2) / totals.OriginalTotalCents)
	}

	if header.IssuedAt.IsZero() {
		header.IssuedAt = time.Now().UTC()
	}

	return &Document{
		Header:   header,
		Customer: customer,
		Lines:    out,
		Totals:   totals,
		Footer:   footer,
	}, nil
}
