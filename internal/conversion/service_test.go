package conversion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/internal/ledger"
	"github.com/karimfarhat/suqly-backend/internal/orders"
	"github.com/karimfarhat/suqly-backend/internal/quotations"
	"github.com/karimfarhat/suqly-backend/internal/stores"
	"github.com/karimfarhat/suqly-backend/pkg/db"
	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/outbox"
	"github.com/karimfarhat/suqly-backend/pkg/pagination"
)

type fakeQuotations struct {
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
}

func (f *fakeQuotations) WithTx(tx *gorm.DB) quotations.Repository { return f }

func (f *fakeQuotations) CreateBatch(ctx context.Context, drafts []*models.Quotation) error {
	return nil
}

func (f *fakeQuotations) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeQuotations) FindByTicket(ctx context.Context, ticket string) (*models.Quotation, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuotations) List(ctx context.Context, params quotations.ListQuotationsParams) ([]models.Quotation, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeQuotations) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to enums.QuotationStatus) (bool, error) {
	return false, nil
}

type fakeClaims struct {
	claimFn func(quotationID, orderID uuid.UUID) (bool, error)
	claimed []uuid.UUID
}

func (f *fakeClaims) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeClaims) ClaimConversion(ctx context.Context, quotationID, orderID uuid.UUID) (bool, error) {
	if f.claimFn != nil {
		return f.claimFn(quotationID, orderID)
	}
	f.claimed = append(f.claimed, orderID)
	return true, nil
}

type fakeOrders struct {
	createFn func(ctx context.Context, order *models.Order) error
	created  []*models.Order
}

func (f *fakeOrders) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrders) Create(ctx context.Context, order *models.Order) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, order); err != nil {
			return err
		}
	}
	order.ID = uuid.New()
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrders) FindByTicket(ctx context.Context, ticket string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrders) List(ctx context.Context, params orders.ListOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeOrders) UpdateFulfillmentGuarded(ctx context.Context, id uuid.UUID, from, to enums.OrderFulfillmentStatus) (bool, error) {
	return false, nil
}

func (f *fakeOrders) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	return false, nil
}

type revenuePost struct {
	storeID uuid.UUID
	amount  int64
}

type fakeStores struct {
	posts []revenuePost
}

func (f *fakeStores) WithTx(tx *gorm.DB) stores.Repository { return f }

func (f *fakeStores) Create(ctx context.Context, store *models.Store) error { return nil }

func (f *fakeStores) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	return &models.Store{ID: id}, nil
}

func (f *fakeStores) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error) {
	return nil, nil
}

func (f *fakeStores) AddRevenue(ctx context.Context, storeID uuid.UUID, amountCents int64) error {
	f.posts = append(f.posts, revenuePost{storeID: storeID, amount: amountCents})
	return nil
}

type fakeLedger struct {
	events []*models.LedgerEvent
}

func (f *fakeLedger) WithTx(tx *gorm.DB) ledger.Repository { return f }

func (f *fakeLedger) Record(ctx context.Context, event *models.LedgerEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLedger) HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.LedgerEventType) (bool, error) {
	for _, event := range f.events {
		if event.OrderID == orderID && event.Type == eventType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEvent, error) {
	return nil, nil
}

func (f *fakeLedger) SumForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var total int64
	for _, event := range f.events {
		if event.StoreID == storeID {
			total += event.AmountCents
		}
	}
	return total, nil
}

type fakeTickets struct{}

func (fakeTickets) Order() (string, error) { return "ORD-TEST77", nil }

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type testEnv struct {
	quotes *fakeQuotations
	claims *fakeClaims
	orders *fakeOrders
	stores *fakeStores
	ledger *fakeLedger
	outbox *fakeOutbox
	svc    Service
}

func newTestEnv(t *testing.T, quotes *fakeQuotations) *testEnv {
	t.Helper()
	env := &testEnv{
		quotes: quotes,
		claims: &fakeClaims{},
		orders: &fakeOrders{},
		stores: &fakeStores{},
		ledger: &fakeLedger{},
		outbox: &fakeOutbox{},
	}
	svc, err := NewService(env.claims, env.quotes, env.orders, env.stores, env.ledger,
		fakeTickets{}, fakeTxRunner{}, env.outbox, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	env.svc = svc
	return env
}

func respondedQuotation() *models.Quotation {
	itemA := models.QuotationItem{ID: uuid.New(), Name: "Wardrobe", UnitPriceCents: 100000, Qty: 1, Position: 0}
	itemB := models.QuotationItem{ID: uuid.New(), Name: "Mirror", UnitPriceCents: 10000, Qty: 1, Position: 1}
	q := &models.Quotation{
		ID:            uuid.New(),
		Ticket:        "QT-WXYZ23",
		StoreID:       uuid.New(),
		CustomerName:  "Hassan",
		CustomerPhone: "9647701112233",
		SubtotalCents: 110000,
		TotalCents:    110000,
		Status:        enums.QuotationStatusAccepted,
		Items:         []models.QuotationItem{itemA, itemB},
	}
	q.Response = &models.QuotationResponse{
		ID:                 uuid.New(),
		QuotationID:        q.ID,
		Format:             enums.ResponseFormatSave,
		ValidityDays:       enums.ValiditySevenDays,
		ValidUntil:         time.Now().UTC().AddDate(0, 0, 5),
		OriginalTotalCents: 110000,
		AdjustedTotalCents: 98000,
		TotalDiscountCents: 12000,
		DiscountPercent:    11,
		Items: []models.QuotationResponseItem{
			{QuotationItemID: itemA.ID, OriginalPriceCents: 100000, AdjustedPriceCents: 90000, DiscountPercent: 10, Qty: 1},
			{QuotationItemID: itemB.ID, OriginalPriceCents: 10000, AdjustedPriceCents: 8000, DiscountPercent: 20, Qty: 1},
		},
	}
	return q
}

func staticLoader(q *models.Quotation) *fakeQuotations {
	return &fakeQuotations{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
			if id == q.ID {
				return q, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}

func TestConvertCreatesOrderAtAgreedPrices(t *testing.T) {
	q := respondedQuotation()
	env := newTestEnv(t, staticLoader(q))

	order, err := env.svc.Convert(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if order.Ticket != "ORD-TEST77" {
		t.Fatalf("order ticket = %s", order.Ticket)
	}
	if order.TotalCents != 98000 {
		t.Fatalf("order total = %d, want response-adjusted 98000", order.TotalCents)
	}
	if order.Items[0].UnitPriceCents != 90000 || order.Items[1].UnitPriceCents != 8000 {
		t.Fatalf("order item prices = %d/%d, want 90000/8000",
			order.Items[0].UnitPriceCents, order.Items[1].UnitPriceCents)
	}
	if order.PaymentStatus != enums.PaymentStatusPending ||
		order.FulfillmentStatus != enums.OrderFulfillmentPending {
		t.Fatalf("new order statuses = %s/%s, want pending/pending",
			order.PaymentStatus, order.FulfillmentStatus)
	}

	if len(env.claims.claimed) != 1 {
		t.Fatalf("claims = %v, want exactly one", env.claims.claimed)
	}
	if len(env.ledger.events) != 1 || env.ledger.events[0].Type != enums.LedgerEventQuotationConverted ||
		env.ledger.events[0].AmountCents != 98000 {
		t.Fatalf("ledger events = %+v, want one quotation_converted for 98000", env.ledger.events)
	}
	if len(env.stores.posts) != 1 || env.stores.posts[0].amount != 98000 {
		t.Fatalf("revenue posts = %+v, want one post of 98000", env.stores.posts)
	}
	if len(env.outbox.events) != 1 || env.outbox.events[0].EventType != enums.EventQuotationConverted {
		t.Fatalf("outbox events = %+v, want one quotation_converted", env.outbox.events)
	}
}

func TestConvertWithoutResponseUsesOriginalPrices(t *testing.T) {
	q := respondedQuotation()
	q.Response = nil
	q.Status = enums.QuotationStatusContacted
	env := newTestEnv(t, staticLoader(q))

	order, err := env.svc.Convert(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if order.TotalCents != 110000 {
		t.Fatalf("order total = %d, want original 110000", order.TotalCents)
	}
	if order.Items[0].UnitPriceCents != 100000 {
		t.Fatalf("item price = %d, want original 100000", order.Items[0].UnitPriceCents)
	}
}

func TestConvertRejectsAlreadyConvertedQuotation(t *testing.T) {
	q := respondedQuotation()
	existing := uuid.New()
	q.Status = enums.QuotationStatusConverted
	q.ConvertedToOrderID = &existing
	env := newTestEnv(t, staticLoader(q))

	_, err := env.svc.Convert(context.Background(), q.ID)
	if pkgerrors.Reason(err) != pkgerrors.ReasonAlreadyConverted {
		t.Fatalf("error = %v, want already converted reason", err)
	}
	if len(env.orders.created) != 0 {
		t.Fatal("no order may be created for a converted quotation")
	}
}

func TestConvertRejectsTerminalQuotations(t *testing.T) {
	for _, status := range []enums.QuotationStatus{
		enums.QuotationStatusCancelled,
		enums.QuotationStatusExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			q := respondedQuotation()
			q.Status = status
			env := newTestEnv(t, staticLoader(q))

			_, err := env.svc.Convert(context.Background(), q.ID)
			if pkgerrors.Reason(err) != pkgerrors.ReasonTerminalState {
				t.Fatalf("error = %v, want terminal state reason", err)
			}
		})
	}
}

func TestConvertRejectsLapsedOffer(t *testing.T) {
	q := respondedQuotation()
	q.Status = enums.QuotationStatusContacted
	q.Response.ValidUntil = time.Now().UTC().AddDate(0, 0, -1)
	env := newTestEnv(t, staticLoader(q))

	_, err := env.svc.Convert(context.Background(), q.ID)
	if pkgerrors.Reason(err) != pkgerrors.ReasonTerminalState {
		t.Fatalf("error = %v, want terminal state reason for lapsed offer", err)
	}
}

func TestConvertLoserGetsAlreadyConverted(t *testing.T) {
	q := respondedQuotation()
	winner := uuid.New()
	loads := 0
	quotes := &fakeQuotations{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
			loads++
			copied := *q
			if loads > 1 {
				// Reload after the failed claim sees the winner's stamp.
				copied.Status = enums.QuotationStatusConverted
				copied.ConvertedToOrderID = &winner
			}
			return &copied, nil
		},
	}
	env := newTestEnv(t, quotes)
	env.claims.claimFn = func(quotationID, orderID uuid.UUID) (bool, error) {
		return false, nil
	}

	_, err := env.svc.Convert(context.Background(), q.ID)
	if pkgerrors.Reason(err) != pkgerrors.ReasonAlreadyConverted {
		t.Fatalf("error = %v, want already converted reason", err)
	}
	if len(env.stores.posts) != 0 || len(env.ledger.events) != 0 {
		t.Fatal("loser must not post revenue or ledger events")
	}
	if len(env.outbox.events) != 0 {
		t.Fatal("loser must not emit a converted event")
	}
}

func TestConvertLoserSeesConcurrentCancellation(t *testing.T) {
	q := respondedQuotation()
	loads := 0
	quotes := &fakeQuotations{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
			loads++
			copied := *q
			if loads > 1 {
				copied.Status = enums.QuotationStatusCancelled
			}
			return &copied, nil
		},
	}
	env := newTestEnv(t, quotes)
	env.claims.claimFn = func(quotationID, orderID uuid.UUID) (bool, error) {
		return false, nil
	}

	_, err := env.svc.Convert(context.Background(), q.ID)
	if pkgerrors.Reason(err) != pkgerrors.ReasonTerminalState {
		t.Fatalf("error = %v, want terminal state reason", err)
	}
}

func TestConvertRetriesOrderTicketCollision(t *testing.T) {
	quotation := respondedQuotation()
	env := newTestEnv(t, &fakeQuotations{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
			return quotation, nil
		},
	})

	calls := 0
	env.orders.createFn = func(ctx context.Context, order *models.Order) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "23505", ConstraintName: db.OrderTicketIndex}
		}
		return nil
	}

	dto, err := env.svc.Convert(context.Background(), quotation.ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if calls != 2 {
		t.Fatalf("create calls = %d, want a single retry", calls)
	}
	if dto.Ticket == "" {
		t.Fatal("order ticket missing after retry")
	}
}

func TestConvertDuplicateOrderReadsAsLostRace(t *testing.T) {
	quotation := respondedQuotation()
	env := newTestEnv(t, &fakeQuotations{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
			return quotation, nil
		},
	})

	env.orders.createFn = func(ctx context.Context, order *models.Order) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: db.OrderQuotationIndex}
	}

	_, err := env.svc.Convert(context.Background(), quotation.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want state conflict", err)
	}
	if pkgerrors.Reason(err) != pkgerrors.ReasonAlreadyConverted {
		t.Fatalf("reason = %q, want already converted", pkgerrors.Reason(err))
	}
	if len(env.ledger.events) != 0 || len(env.stores.posts) != 0 {
		t.Fatal("no ledger or revenue writes expected for the loser")
	}
}
