package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// Unique indexes services branch on. Ticket collisions are retryable with a
// regenerated ticket; a quotation index hit on order insert means a lost
// conversion race.
const (
	QuotationTicketIndex = "ux_quotations_ticket"
	OrderTicketIndex     = "ux_orders_ticket"
	OrderQuotationIndex  = "ux_orders_quotation"
)

// IsUniqueViolation reports whether err is a unique-constraint violation on
// the named index. An empty name matches any unique violation. The sqlite
// driver reports the violated column rather than the index name, so the
// message fallback also accepts the index's trailing column token.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode &&
			(constraintName == "" || pgErr.ConstraintName == constraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode &&
			(constraintName == "" || pqErr.Constraint == constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") &&
		!strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if constraintName == "" || strings.Contains(msg, constraintName) {
		return true
	}
	if idx := strings.LastIndex(constraintName, "_"); idx >= 0 {
		return strings.Contains(msg, "."+constraintName[idx+1:])
	}
	return false
}
