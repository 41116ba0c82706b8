// Package ticket generates the short human-readable identifiers printed on
// quotations and orders. Tickets are what customers quote over the phone, so
// the alphabet excludes characters that read ambiguously (0/O, 1/I/L).
package ticket

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	// QuotationPrefix marks quotation tickets, e.g. QT-7XK93F.
	QuotationPrefix = "QT"
	// OrderPrefix marks order tickets, e.g. ORD-7XK93F.
	OrderPrefix = "ORD"

	// DefaultLength is the random suffix length.
	DefaultLength = 6
)

var charset = []rune("ABCDEFGHJKMNPQRSTUVWXYZ23456789")

// Generator produces prefixed random tickets.
type Generator struct {
	length int
}

// NewGenerator returns a Generator with the given suffix length, falling back
// to DefaultLength for non-positive values.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Quotation returns a fresh quotation ticket.
func (g *Generator) Quotation() (string, error) {
	return g.generate(QuotationPrefix)
}

// Order returns a fresh order ticket.
func (g *Generator) Order() (string, error) {
	return g.generate(OrderPrefix)
}

func (g *Generator) generate(prefix string) (string, error) {
	suffix := make([]rune, g.length)
	for i := range suffix {
		idx, err := randInt(len(charset))
		if err != nil {
			return "", fmt.Errorf("generate ticket: %w", err)
		}
		suffix[i] = charset[idx]
	}
	return prefix + "-" + string(suffix), nil
}

// IsQuotationTicket reports whether the ticket carries the quotation prefix.
func IsQuotationTicket(ticket string) bool {
	return strings.HasPrefix(ticket, QuotationPrefix+"-")
}

// IsOrderTicket reports whether the ticket carries the order prefix.
func IsOrderTicket(ticket string) bool {
	return strings.HasPrefix(ticket, OrderPrefix+"-")
}

func randInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	// Rejection sampling keeps the distribution uniform across the charset.
	limit := 256 - (256 % max)
	buff := make([]byte, 1)
	for {
		if _, err := rand.Read(buff); err != nil {
			return 0, err
		}
		if int(buff[0]) < limit {
			return int(buff[0]) % max, nil
		}
	}
}
