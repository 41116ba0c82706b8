package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/internal/ledger"
	"github.com/karimfarhat/suqly-backend/internal/stores"
	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/outbox"
	"github.com/karimfarhat/suqly-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service covers the post-conversion order lifecycle. Creating an order is
// not here: that happens only through conversion.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	GetByTicket(ctx context.Context, ticket string) (*OrderDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateFulfillment(ctx context.Context, id uuid.UUID, to enums.OrderFulfillmentStatus) (*OrderDTO, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo   Repository
	ledger ledger.Repository
	stores stores.Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// ListParams configures pagination for orders.
type ListParams struct {
	StoreID     uuid.UUID
	Fulfillment string
	Payment     string
	Limit       int
	Cursor      string
}

// ListResult wraps returned orders and the cursor for the next page.
type ListResult struct {
	Items  []OrderDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

// OrderStatusChangedEvent is emitted on any fulfillment move.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID                    `json:"order_id"`
	Ticket      string                       `json:"ticket"`
	StoreID     uuid.UUID                    `json:"store_id"`
	QuotationID uuid.UUID                    `json:"quotation_id"`
	From        enums.OrderFulfillmentStatus `json:"from"`
	To          enums.OrderFulfillmentStatus `json:"to"`
}

// OrderPaidEvent is emitted when payment is recorded against an order.
type OrderPaidEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	Ticket     string    `json:"ticket"`
	StoreID    uuid.UUID `json:"store_id"`
	TotalCents int64     `json:"total_cents"`
	PaidAt     time.Time `json:"paid_at"`
}

// NewService wires order dependencies.
func NewService(
	repo Repository,
	ledgerRepo ledger.Repository,
	storesRepo stores.Repository,
	tx txRunner,
	publisher outboxPublisher,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if storesRepo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		ledger: ledgerRepo,
		stores: storesRepo,
		tx:     tx,
		outbox: publisher,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) GetByTicket(ctx context.Context, ticket string) (*OrderDTO, error) {
	if strings.TrimSpace(ticket) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket required")
	}
	order, err := s.repo.FindByTicket(ctx, ticket)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	query := ListOrdersParams{
		StoreID: params.StoreID,
		Limit:   params.Limit,
	}
	if params.Fulfillment != "" {
		status, err := enums.ParseOrderFulfillmentStatus(params.Fulfillment)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment filter")
		}
		query.Fulfillment = &status
	}
	if params.Payment != "" {
		status, err := enums.ParsePaymentStatus(params.Payment)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment filter")
		}
		query.Payment = &status
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

func (s *service) UpdateFulfillment(ctx context.Context, id uuid.UUID, to enums.OrderFulfillmentStatus) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid fulfillment status %q", to))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		from := order.FulfillmentStatus
		if err := GuardTransition(from, to); err != nil {
			return err
		}

		moved, err := repo.UpdateFulfillmentGuarded(ctx, order.ID, from, to)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fulfillment")
		}
		if !moved {
			return pkgerrors.StateConflict(pkgerrors.ReasonInvalidTransition,
				"order changed state during update")
		}
		order.FulfillmentStatus = to

		if to == enums.OrderFulfillmentCancelled {
			if err := s.reverseRevenue(ctx, tx, order); err != nil {
				return err
			}
		}

		updated = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: OrderStatusChangedEvent{
				OrderID:     order.ID,
				Ticket:      order.Ticket,
				StoreID:     order.StoreID,
				QuotationID: order.QuotationID,
				From:        from,
				To:          to,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// reverseRevenue posts the compensating ledger entry for a cancelled order
// and backs the amount out of the store aggregate, once.
func (s *service) reverseRevenue(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	ledgerRepo := s.ledger.WithTx(tx)
	reversed, err := ledgerRepo.HasEvent(ctx, order.ID, enums.LedgerEventOrderCancelled)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check ledger")
	}
	if reversed {
		return nil
	}

	if err := ledgerRepo.Record(ctx, &models.LedgerEvent{
		OrderID:     order.ID,
		StoreID:     order.StoreID,
		QuotationID: order.QuotationID,
		Type:        enums.LedgerEventOrderCancelled,
		AmountCents: -order.TotalCents,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record cancellation ledger event")
	}
	if err := s.stores.WithTx(tx).AddRevenue(ctx, order.StoreID, -order.TotalCents); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reverse store revenue")
	}
	return nil
}

func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	now := s.now()
	var paid *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.FulfillmentStatus == enums.OrderFulfillmentCancelled {
			return pkgerrors.StateConflict(pkgerrors.ReasonTerminalState,
				"cancelled order cannot be marked paid")
		}

		stamped, err := repo.MarkPaid(ctx, order.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark paid")
		}
		if !stamped {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
		}
		order.PaymentStatus = enums.PaymentStatusPaid
		stamp := now
		order.PaidAt = &stamp

		// Revenue was recognized at conversion; the paid event only records
		// the settlement fact.
		if err := s.ledger.WithTx(tx).Record(ctx, &models.LedgerEvent{
			OrderID:     order.ID,
			StoreID:     order.StoreID,
			QuotationID: order.QuotationID,
			Type:        enums.LedgerEventOrderPaid,
			AmountCents: 0,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record paid ledger event")
		}

		paid = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: OrderPaidEvent{
				OrderID:    order.ID,
				Ticket:     order.Ticket,
				StoreID:    order.StoreID,
				TotalCents: order.TotalCents,
				PaidAt:     now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(paid), nil
}
