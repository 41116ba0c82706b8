package quotations

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

// CartItem is one line of the customer's mixed cart. StoreID names the store
// that owns the product; the splitter groups by it.
type CartItem struct {
	StoreID        uuid.UUID
	ProductID      *uuid.UUID
	Name           string
	UnitPriceCents int64
	Qty            int
	Size           *string
	Color          *string
	ImageURL       *string
}

// CustomerData is the contact block copied onto every quotation produced
// from the cart.
type CustomerData struct {
	Name  string
	Phone string
	City  *string
}

// StoreGroup is the per-store slice of the cart, in original relative order.
type StoreGroup struct {
	StoreID       uuid.UUID
	Items         []CartItem
	SubtotalCents int64
}

// SplitCart partitions the cart into one group per distinct store. Groups are
// ordered by each store's first appearance in the cart, and items keep their
// relative order within a group, so the quotation reads like the cart did.
func SplitCart(items []CartItem) ([]StoreGroup, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	order := make([]uuid.UUID, 0, len(items))
	grouped := make(map[uuid.UUID]*StoreGroup, len(items))

	for i, item := range items {
		if item.StoreID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item missing store reference").
				WithDetails(map[string]any{"index": i, "name": item.Name})
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item missing name").
				WithDetails(map[string]any{"index": i})
		}
		if item.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item price cannot be negative").
				WithDetails(map[string]any{"index": i, "name": item.Name})
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item qty must be positive").
				WithDetails(map[string]any{"index": i, "name": item.Name})
		}

		group, ok := grouped[item.StoreID]
		if !ok {
			group = &StoreGroup{StoreID: item.StoreID}
			grouped[item.StoreID] = group
			order = append(order, item.StoreID)
		}
		group.Items = append(group.Items, item)
		group.SubtotalCents += item.UnitPriceCents * int64(item.Qty)
	}

	groups := make([]StoreGroup, 0, len(order))
	for _, storeID := range order {
		groups = append(groups, *grouped[storeID])
	}
	return groups, nil
}
