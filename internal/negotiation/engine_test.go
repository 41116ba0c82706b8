package negotiation

import (
	"testing"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

func intPtr(v int) *int       { return &v }
func centsPtr(v int64) *int64 { return &v }

func TestDerivationRoundTrips(t *testing.T) {
	if got := AdjustedFromDiscount(10000, 20); got != 8000 {
		t.Fatalf("AdjustedFromDiscount(10000, 20) = %d, want 8000", got)
	}
	if got := DiscountFromAdjusted(10000, 8000); got != 20 {
		t.Fatalf("DiscountFromAdjusted(10000, 8000) = %d, want 20", got)
	}

	// Half-up rounding in both directions.
	if got := AdjustedFromDiscount(999, 33); got != 669 {
		t.Fatalf("AdjustedFromDiscount(999, 33) = %d, want 669", got)
	}
	if got := DiscountFromAdjusted(999, 669); got != 33 {
		t.Fatalf("DiscountFromAdjusted(999, 669) = %d, want 33", got)
	}

	if got := DiscountFromAdjusted(0, 0); got != 0 {
		t.Fatalf("DiscountFromAdjusted on free item = %d, want 0", got)
	}
}

func TestComputeOfferTotals(t *testing.T) {
	itemA := models.QuotationItem{ID: uuid.New(), Name: "Sofa", UnitPriceCents: 100000, Qty: 1}
	itemB := models.QuotationItem{ID: uuid.New(), Name: "Lamp", UnitPriceCents: 5000, Qty: 2}

	offer, err := ComputeOffer(
		[]models.QuotationItem{itemA, itemB},
		[]ItemAdjustment{
			{QuotationItemID: itemA.ID, DiscountPercent: intPtr(10)},
			{QuotationItemID: itemB.ID, AdjustedPriceCents: centsPtr(4000)},
		},
	)
	if err != nil {
		t.Fatalf("ComputeOffer: %v", err)
	}

	if offer.Lines[0].AdjustedPriceCents != 90000 || offer.Lines[0].DiscountPercent != 10 {
		t.Fatalf("sofa line = %+v, want 90000 at 10%%", offer.Lines[0])
	}
	if offer.Lines[1].AdjustedPriceCents != 4000 || offer.Lines[1].DiscountPercent != 20 {
		t.Fatalf("lamp line = %+v, want 4000 at 20%%", offer.Lines[1])
	}

	if offer.OriginalTotalCents != 110000 {
		t.Fatalf("original total = %d, want 110000", offer.OriginalTotalCents)
	}
	if offer.AdjustedTotalCents != 98000 {
		t.Fatalf("adjusted total = %d, want 98000", offer.AdjustedTotalCents)
	}
	if offer.TotalDiscountCents != 12000 {
		t.Fatalf("total discount = %d, want 12000", offer.TotalDiscountCents)
	}
	if offer.DiscountPercent != 11 {
		t.Fatalf("discount percent = %d, want 11", offer.DiscountPercent)
	}
}

func TestComputeOfferKeepsUnadjustedItems(t *testing.T) {
	item := models.QuotationItem{ID: uuid.New(), Name: "Chair", UnitPriceCents: 25000, Qty: 4}

	offer, err := ComputeOffer([]models.QuotationItem{item}, nil)
	if err != nil {
		t.Fatalf("ComputeOffer: %v", err)
	}
	if offer.Lines[0].AdjustedPriceCents != 25000 || offer.Lines[0].DiscountPercent != 0 {
		t.Fatalf("unadjusted line = %+v, want original price and zero discount", offer.Lines[0])
	}
	if offer.AdjustedTotalCents != 100000 || offer.TotalDiscountCents != 0 {
		t.Fatalf("totals = %d/%d, want 100000/0", offer.AdjustedTotalCents, offer.TotalDiscountCents)
	}
}

func TestComputeOfferRejectsBadAdjustments(t *testing.T) {
	item := models.QuotationItem{ID: uuid.New(), Name: "Desk", UnitPriceCents: 40000, Qty: 1}

	cases := []struct {
		name string
		adj  ItemAdjustment
	}{
		{"both price and discount", ItemAdjustment{QuotationItemID: item.ID, AdjustedPriceCents: centsPtr(1000), DiscountPercent: intPtr(5)}},
		{"neither price nor discount", ItemAdjustment{QuotationItemID: item.ID}},
		{"negative adjusted price", ItemAdjustment{QuotationItemID: item.ID, AdjustedPriceCents: centsPtr(-1)}},
		{"adjusted above original", ItemAdjustment{QuotationItemID: item.ID, AdjustedPriceCents: centsPtr(40001)}},
		{"discount over 100", ItemAdjustment{QuotationItemID: item.ID, DiscountPercent: intPtr(101)}},
		{"negative discount", ItemAdjustment{QuotationItemID: item.ID, DiscountPercent: intPtr(-3)}},
		{"unknown item", ItemAdjustment{QuotationItemID: uuid.New(), DiscountPercent: intPtr(5)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeOffer([]models.QuotationItem{item}, []ItemAdjustment{tc.adj})
			if err == nil {
				t.Fatal("expected validation error")
			}
			if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("error = %v, want validation code", err)
			}
		})
	}
}

func TestComputeOfferRejectsDuplicateAdjustments(t *testing.T) {
	item := models.QuotationItem{ID: uuid.New(), Name: "Rug", UnitPriceCents: 15000, Qty: 1}

	_, err := ComputeOffer([]models.QuotationItem{item}, []ItemAdjustment{
		{QuotationItemID: item.ID, DiscountPercent: intPtr(5)},
		{QuotationItemID: item.ID, DiscountPercent: intPtr(10)},
	})
	if err == nil {
		t.Fatal("expected validation error for duplicate adjustment")
	}
}
