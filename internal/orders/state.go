package orders

import (
	"fmt"

	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

// Fulfillment moves strictly forward; cancellation is reachable from any
// non-terminal status. Delivered and cancelled admit nothing further.
var allowedFulfillmentTransitions = map[enums.OrderFulfillmentStatus][]enums.OrderFulfillmentStatus{
	enums.OrderFulfillmentPending:   {enums.OrderFulfillmentConfirmed, enums.OrderFulfillmentCancelled},
	enums.OrderFulfillmentConfirmed: {enums.OrderFulfillmentPreparing, enums.OrderFulfillmentCancelled},
	enums.OrderFulfillmentPreparing: {enums.OrderFulfillmentReady, enums.OrderFulfillmentCancelled},
	enums.OrderFulfillmentReady:     {enums.OrderFulfillmentDelivered, enums.OrderFulfillmentCancelled},
}

// CanTransition reports whether fulfillment may move from one status to another.
func CanTransition(from, to enums.OrderFulfillmentStatus) bool {
	for _, candidate := range allowedFulfillmentTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// GuardTransition returns a coded error when the fulfillment move is not allowed.
func GuardTransition(from, to enums.OrderFulfillmentStatus) error {
	if from.IsTerminal() {
		return pkgerrors.StateConflict(pkgerrors.ReasonTerminalState,
			fmt.Sprintf("order is %s and accepts no further changes", from))
	}
	if !CanTransition(from, to) {
		return pkgerrors.StateConflict(pkgerrors.ReasonInvalidTransition,
			fmt.Sprintf("fulfillment cannot move from %s to %s", from, to))
	}
	return nil
}
