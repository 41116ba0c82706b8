package negotiation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

// ItemAdjustment is the store's per-line input. Exactly one of
// AdjustedPriceCents or DiscountPercent is authoritative; the other is
// derived with the same rounding in both directions.
type ItemAdjustment struct {
	QuotationItemID    uuid.UUID
	AdjustedPriceCents *int64
	DiscountPercent    *int
}

// OfferLine is one fully derived line of the offer.
type OfferLine struct {
	QuotationItemID    uuid.UUID
	Name               string
	OriginalPriceCents int64
	AdjustedPriceCents int64
	DiscountPercent    int
	Qty                int
}

// Offer is the derived pricing for a whole response.
type Offer struct {
	Lines              []OfferLine
	OriginalTotalCents int64
	AdjustedTotalCents int64
	TotalDiscountCents int64
	DiscountPercent    int
}

var hundred = decimal.NewFromInt(100)

// AdjustedFromDiscount derives the adjusted unit price from a discount
// percent, rounding half up.
func AdjustedFromDiscount(originalCents int64, discountPercent int) int64 {
	factor := hundred.Sub(decimal.NewFromInt(int64(discountPercent))).Div(hundred)
	return decimal.NewFromInt(originalCents).Mul(factor).Round(0).IntPart()
}

// DiscountFromAdjusted derives the discount percent from an adjusted unit
// price, rounding half up. A zero original price yields zero.
func DiscountFromAdjusted(originalCents, adjustedCents int64) int {
	if originalCents == 0 {
		return 0
	}
	diff := decimal.NewFromInt(originalCents - adjustedCents)
	return int(diff.Div(decimal.NewFromInt(originalCents)).Mul(hundred).Round(0).IntPart())
}

// ComputeOffer derives per-line pricing and totals for a response. Items
// without an adjustment keep their original price. Adjustments referencing
// unknown items, negative prices, or discounts outside [0,100] are rejected.
func ComputeOffer(items []models.QuotationItem, adjustments []ItemAdjustment) (*Offer, error) {
	byItem := make(map[uuid.UUID]ItemAdjustment, len(adjustments))
	for _, adj := range adjustments {
		if adj.QuotationItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment missing quotation item id")
		}
		if (adj.AdjustedPriceCents == nil) == (adj.DiscountPercent == nil) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				"adjustment needs exactly one of adjusted price or discount percent").
				WithDetails(map[string]any{"quotation_item_id": adj.QuotationItemID})
		}
		if _, dup := byItem[adj.QuotationItemID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate adjustment for quotation item").
				WithDetails(map[string]any{"quotation_item_id": adj.QuotationItemID})
		}
		byItem[adj.QuotationItemID] = adj
	}

	known := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}
	for id := range byItem {
		if !known[id] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment references unknown quotation item").
				WithDetails(map[string]any{"quotation_item_id": id})
		}
	}

	offer := &Offer{Lines: make([]OfferLine, 0, len(items))}
	for _, item := range items {
		line := OfferLine{
			QuotationItemID:    item.ID,
			Name:               item.Name,
			OriginalPriceCents: item.UnitPriceCents,
			AdjustedPriceCents: item.UnitPriceCents,
			Qty:                item.Qty,
		}

		if adj, ok := byItem[item.ID]; ok {
			switch {
			case adj.DiscountPercent != nil:
				discount := *adj.DiscountPercent
				if discount < 0 || discount > 100 {
					return nil, pkgerrors.New(pkgerrors.CodeValidation,
						fmt.Sprintf("discount %d out of range [0,100]", discount)).
						WithDetails(map[string]any{"quotation_item_id": item.ID})
				}
				line.DiscountPercent = discount
				line.AdjustedPriceCents = AdjustedFromDiscount(item.UnitPriceCents, discount)

			case adj.AdjustedPriceCents != nil:
				adjusted := *adj.AdjustedPriceCents
				if adjusted < 0 {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjusted price cannot be negative").
						WithDetails(map[string]any{"quotation_item_id": item.ID})
				}
				if adjusted > item.UnitPriceCents {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjusted price exceeds original price").
						WithDetails(map[string]any{"quotation_item_id": item.ID})
				}
				line.AdjustedPriceCents = adjusted
				line.DiscountPercent = DiscountFromAdjusted(item.UnitPriceCents, adjusted)
			}
		}

		offer.Lines = append(offer.Lines, line)
		offer.OriginalTotalCents += line.OriginalPriceCents * int64(line.Qty)
		offer.AdjustedTotalCents += line.AdjustedPriceCents * int64(line.Qty)
	}

	offer.TotalDiscountCents = offer.OriginalTotalCents - offer.AdjustedTotalCents
	if offer.OriginalTotalCents > 0 {
		offer.DiscountPercent = DiscountFromAdjusted(offer.OriginalTotalCents, offer.AdjustedTotalCents)
	}
	return offer, nil
}
