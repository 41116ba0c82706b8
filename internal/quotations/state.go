package quotations

import (
	"fmt"
	"time"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

// allowedTransitions encodes the quotation lifecycle. Converted is reachable
// only through the conversion service; cancelled and expired are reachable
// from any non-terminal state and handled by GuardTransition directly.
var allowedTransitions = map[enums.QuotationStatus][]enums.QuotationStatus{
	enums.QuotationStatusPending: {
		enums.QuotationStatusContacted,
		enums.QuotationStatusConverted,
	},
	enums.QuotationStatusContacted: {
		enums.QuotationStatusNegotiating,
		enums.QuotationStatusAccepted,
		enums.QuotationStatusConverted,
	},
	enums.QuotationStatusNegotiating: {
		enums.QuotationStatusContacted,
		enums.QuotationStatusAccepted,
		enums.QuotationStatusConverted,
	},
	enums.QuotationStatusAccepted: {
		enums.QuotationStatusAccepted,
		enums.QuotationStatusConverted,
	},
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to enums.QuotationStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == enums.QuotationStatusCancelled || to == enums.QuotationStatusExpired {
		return true
	}
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// GuardTransition returns nil when from → to is legal, a terminal-state error
// when the quotation can no longer move, and an invalid-transition error
// otherwise.
func GuardTransition(from, to enums.QuotationStatus) error {
	if from.IsTerminal() {
		return pkgerrors.StateConflict(pkgerrors.ReasonTerminalState,
			fmt.Sprintf("quotation is %s and cannot change", from))
	}
	if !CanTransition(from, to) {
		return pkgerrors.StateConflict(pkgerrors.ReasonInvalidTransition,
			fmt.Sprintf("cannot move quotation from %s to %s", from, to))
	}
	return nil
}

// EffectiveStatus resolves the read-time status of a quotation: a non-terminal
// quotation whose response validity has lapsed reads as expired. The stored
// status is never mutated by reads, so expiry can never shadow a converted or
// cancelled row.
func EffectiveStatus(q *models.Quotation, now time.Time) enums.QuotationStatus {
	if q == nil {
		return ""
	}
	if q.Status.IsTerminal() {
		return q.Status
	}
	if q.Response != nil && q.Response.ValidUntil.Before(now) {
		return enums.QuotationStatusExpired
	}
	return q.Status
}
