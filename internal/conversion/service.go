package conversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/internal/ledger"
	"github.com/karimfarhat/suqly-backend/internal/orders"
	"github.com/karimfarhat/suqly-backend/internal/quotations"
	"github.com/karimfarhat/suqly-backend/internal/stores"
	"github.com/karimfarhat/suqly-backend/pkg/db"
	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/metrics"
	"github.com/karimfarhat/suqly-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ticketSource interface {
	Order() (string, error)
}

// Service converts a quotation into an order, exactly once. This is the only
// path that creates orders and the only path that moves a quotation to
// converted.
type Service interface {
	Convert(ctx context.Context, quotationID uuid.UUID) (*orders.OrderDTO, error)
}

type service struct {
	repo    Repository
	quotes  quotations.Repository
	orders  orders.Repository
	stores  stores.Repository
	ledger  ledger.Repository
	tickets ticketSource
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.QuotationMetrics
	now     func() time.Time
}

// QuotationConvertedEvent is emitted when a quotation becomes an order.
type QuotationConvertedEvent struct {
	QuotationID uuid.UUID `json:"quotation_id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderTicket string    `json:"order_ticket"`
	StoreID     uuid.UUID `json:"store_id"`
	TotalCents  int64     `json:"total_cents"`
}

// NewService wires conversion dependencies.
func NewService(
	repo Repository,
	quotes quotations.Repository,
	ordersRepo orders.Repository,
	storesRepo stores.Repository,
	ledgerRepo ledger.Repository,
	tickets ticketSource,
	tx txRunner,
	publisher outboxPublisher,
	quotationMetrics *metrics.QuotationMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("conversion repository required")
	}
	if quotes == nil {
		return nil, fmt.Errorf("quotations repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if storesRepo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tickets == nil {
		return nil, fmt.Errorf("ticket source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		quotes:  quotes,
		orders:  ordersRepo,
		stores:  storesRepo,
		ledger:  ledgerRepo,
		tickets: tickets,
		tx:      tx,
		outbox:  publisher,
		metrics: quotationMetrics,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Convert(ctx context.Context, quotationID uuid.UUID) (*orders.OrderDTO, error) {
	if quotationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}

	now := s.now()
	var created *models.Order
	attempt := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			quotes := s.quotes.WithTx(tx)
			quotation, err := quotes.FindByID(ctx, quotationID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
			}

			if err := s.guardConvertible(quotation, now); err != nil {
				return err
			}

			ticket, err := s.tickets.Order()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate ticket")
			}

			order := buildOrder(quotation, ticket)
			if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
				if db.IsUniqueViolation(err, db.OrderQuotationIndex) {
					// A concurrent convert already inserted this quotation's
					// order; report it the same way a lost CAS claim does.
					s.metrics.IncConversionRace()
					return pkgerrors.StateConflict(pkgerrors.ReasonAlreadyConverted,
						"quotation already converted")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}

			claimed, err := s.repo.WithTx(tx).ClaimConversion(ctx, quotation.ID, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim conversion")
			}
			if !claimed {
				return s.loserError(ctx, quotes, quotation.ID)
			}

			if err := s.ledger.WithTx(tx).Record(ctx, &models.LedgerEvent{
				OrderID:     order.ID,
				StoreID:     order.StoreID,
				QuotationID: quotation.ID,
				Type:        enums.LedgerEventQuotationConverted,
				AmountCents: order.TotalCents,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record conversion ledger event")
			}
			if err := s.stores.WithTx(tx).AddRevenue(ctx, order.StoreID, order.TotalCents); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post store revenue")
			}

			created = order
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventQuotationConverted,
				AggregateType: enums.AggregateQuotation,
				AggregateID:   quotation.ID,
				Version:       1,
				Data: QuotationConvertedEvent{
					QuotationID: quotation.ID,
					OrderID:     order.ID,
					OrderTicket: order.Ticket,
					StoreID:     order.StoreID,
					TotalCents:  order.TotalCents,
				},
			})
		})
	}

	err := attempt()
	if db.IsUniqueViolation(err, db.OrderTicketIndex) {
		// Fresh ticket is drawn inside the transaction, so one more attempt
		// is a clean regenerate-and-retry.
		err = attempt()
	}
	if err != nil {
		return nil, err
	}

	s.metrics.IncConverted()
	return orders.FromModel(created), nil
}

// guardConvertible rejects terminal quotations up front, with the converted
// case called out separately so a repeat convert reads as the race it is.
func (s *service) guardConvertible(quotation *models.Quotation, now time.Time) error {
	if quotation.ConvertedToOrderID != nil {
		return pkgerrors.StateConflict(pkgerrors.ReasonAlreadyConverted,
			fmt.Sprintf("quotation already converted to order %s", *quotation.ConvertedToOrderID))
	}
	current := quotations.EffectiveStatus(quotation, now)
	if current.IsTerminal() {
		return pkgerrors.StateConflict(pkgerrors.ReasonTerminalState,
			fmt.Sprintf("quotation %s cannot be converted", current))
	}
	return nil
}

// loserError re-reads the row to tell a lost conversion race apart from a
// concurrent cancellation or expiry.
func (s *service) loserError(ctx context.Context, quotes quotations.Repository, quotationID uuid.UUID) error {
	quotation, err := quotes.FindByID(ctx, quotationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload quotation")
	}
	if quotation.ConvertedToOrderID != nil {
		s.metrics.IncConversionRace()
		return pkgerrors.StateConflict(pkgerrors.ReasonAlreadyConverted,
			fmt.Sprintf("quotation already converted to order %s", *quotation.ConvertedToOrderID))
	}
	return pkgerrors.StateConflict(pkgerrors.ReasonTerminalState,
		fmt.Sprintf("quotation moved to %s during conversion", quotation.Status))
}

// buildOrder snapshots the quotation into an order at the agreed prices:
// response-adjusted where a response exists, original otherwise.
func buildOrder(quotation *models.Quotation, ticket string) *models.Order {
	adjusted := make(map[uuid.UUID]int64, len(quotation.Items))
	total := quotation.TotalCents
	if quotation.Response != nil {
		total = quotation.Response.AdjustedTotalCents
		for _, item := range quotation.Response.Items {
			adjusted[item.QuotationItemID] = item.AdjustedPriceCents
		}
	}

	order := &models.Order{
		Ticket:            ticket,
		QuotationID:       quotation.ID,
		StoreID:           quotation.StoreID,
		CustomerName:      quotation.CustomerName,
		CustomerPhone:     quotation.CustomerPhone,
		CustomerCity:      quotation.CustomerCity,
		TotalCents:        total,
		PaymentStatus:     enums.PaymentStatusPending,
		FulfillmentStatus: enums.OrderFulfillmentPending,
		Items:             make([]models.OrderItem, 0, len(quotation.Items)),
	}
	for _, item := range quotation.Items {
		price := item.UnitPriceCents
		if v, ok := adjusted[item.ID]; ok {
			price = v
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: price,
			Qty:            item.Qty,
			Size:           item.Size,
			Color:          item.Color,
		})
	}
	return order
}
