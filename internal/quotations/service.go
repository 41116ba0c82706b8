package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/pkg/db"
	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/metrics"
	"github.com/karimfarhat/suqly-backend/pkg/outbox"
	"github.com/karimfarhat/suqly-backend/pkg/pagination"
	"github.com/karimfarhat/suqly-backend/pkg/whatsapp"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ticketSource interface {
	Quotation() (string, error)
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service defines quotation lifecycle operations other than responding and
// converting, which live in their own packages.
type Service interface {
	CreateFromCart(ctx context.Context, items []CartItem, customer CustomerData) ([]QuotationDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*QuotationDTO, error)
	GetByTicket(ctx context.Context, ticket string) (*QuotationDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Cancel(ctx context.Context, id uuid.UUID) (*QuotationDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	tickets ticketSource
	stores  storeLoader
	outbox  outboxPublisher
	metrics *metrics.QuotationMetrics
	now     func() time.Time
}

// ListParams configures pagination for quotations.
type ListParams struct {
	StoreID uuid.UUID
	Status  string
	Limit   int
	Cursor  string
}

// ListResult wraps returned quotations and the cursor for the next page.
type ListResult struct {
	Items  []QuotationDTO `json:"items"`
	Cursor string         `json:"cursor"`
}

// QuotationCreatedEvent is emitted per quotation produced by a cart split.
type QuotationCreatedEvent struct {
	QuotationID uuid.UUID `json:"quotation_id"`
	Ticket      string    `json:"ticket"`
	StoreID     uuid.UUID `json:"store_id"`
	TotalCents  int64     `json:"total_cents"`
	ItemCount   int       `json:"item_count"`
}

// QuotationCancelledEvent is emitted when a quotation is cancelled.
type QuotationCancelledEvent struct {
	QuotationID uuid.UUID             `json:"quotation_id"`
	Ticket      string                `json:"ticket"`
	StoreID     uuid.UUID             `json:"store_id"`
	Status      enums.QuotationStatus `json:"status"`
}

// NewService wires quotation dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	tickets ticketSource,
	stores storeLoader,
	publisher outboxPublisher,
	quotationMetrics *metrics.QuotationMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if tickets == nil {
		return nil, fmt.Errorf("ticket source required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		tickets: tickets,
		stores:  stores,
		outbox:  publisher,
		metrics: quotationMetrics,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateFromCart(ctx context.Context, items []CartItem, customer CustomerData) ([]QuotationDTO, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	phone, err := whatsapp.NormalizePhone(customer.Phone, "")
	if err != nil {
		return nil, err
	}

	groups, err := SplitCart(items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	drafts := make([]*models.Quotation, 0, len(groups))
	for _, group := range groups {
		if _, err := s.stores.FindByID(ctx, group.StoreID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("store %s not found", group.StoreID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
		}

		ticket, err := s.tickets.Quotation()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate ticket")
		}

		quotation := &models.Quotation{
			Ticket:        ticket,
			StoreID:       group.StoreID,
			CustomerName:  strings.TrimSpace(customer.Name),
			CustomerPhone: phone,
			CustomerCity:  customer.City,
			SubtotalCents: group.SubtotalCents,
			TotalCents:    group.SubtotalCents,
			Status:        enums.QuotationStatusPending,
			Items:         make([]models.QuotationItem, 0, len(group.Items)),
		}
		for position, item := range group.Items {
			quotation.Items = append(quotation.Items, models.QuotationItem{
				ProductID:      item.ProductID,
				Name:           item.Name,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
				Size:           item.Size,
				Color:          item.Color,
				ImageURL:       item.ImageURL,
				Position:       position,
			})
		}
		drafts = append(drafts, quotation)
	}

	persist := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.CreateBatch(ctx, drafts); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quotations")
			}
			for _, quotation := range drafts {
				event := outbox.DomainEvent{
					EventType:     enums.EventQuotationCreated,
					AggregateType: enums.AggregateQuotation,
					AggregateID:   quotation.ID,
					Version:       1,
					Data: QuotationCreatedEvent{
						QuotationID: quotation.ID,
						Ticket:      quotation.Ticket,
						StoreID:     quotation.StoreID,
						TotalCents:  quotation.TotalCents,
						ItemCount:   len(quotation.Items),
					},
				}
				if err := s.outbox.Emit(ctx, tx, event); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err = persist()
	if db.IsUniqueViolation(err, db.QuotationTicketIndex) {
		// Collided with an existing ticket; one fresh draw before giving up.
		for _, quotation := range drafts {
			ticket, terr := s.tickets.Quotation()
			if terr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, terr, "regenerate ticket")
			}
			quotation.Ticket = ticket
		}
		err = persist()
	}
	if err != nil {
		return nil, err
	}

	out := make([]QuotationDTO, 0, len(drafts))
	for _, quotation := range drafts {
		s.metrics.IncCreated(quotation.StoreID.String())
		out = append(out, *FromModel(quotation, now))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*QuotationDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}
	quotation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
	}
	return FromModel(quotation, s.now()), nil
}

func (s *service) GetByTicket(ctx context.Context, ticket string) (*QuotationDTO, error) {
	if strings.TrimSpace(ticket) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket required")
	}
	quotation, err := s.repo.FindByTicket(ctx, ticket)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
	}
	return FromModel(quotation, s.now()), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	query := ListQuotationsParams{
		StoreID: params.StoreID,
		Limit:   params.Limit,
	}
	if params.Status != "" {
		status, err := enums.ParseQuotationStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotations")
	}

	now := s.now()
	items := make([]QuotationDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i], now))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*QuotationDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}

	now := s.now()
	var cancelled *models.Quotation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quotation, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
		}

		current := EffectiveStatus(quotation, now)
		if err := GuardTransition(current, enums.QuotationStatusCancelled); err != nil {
			return err
		}

		updated, err := repo.UpdateStatusGuarded(ctx, quotation.ID, quotation.Status, enums.QuotationStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel quotation")
		}
		if !updated {
			return pkgerrors.StateConflict(pkgerrors.ReasonInvalidTransition,
				"quotation changed state during cancellation")
		}

		quotation.Status = enums.QuotationStatusCancelled
		cancelled = quotation

		event := outbox.DomainEvent{
			EventType:     enums.EventQuotationCancelled,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   quotation.ID,
			Version:       1,
			Data: QuotationCancelledEvent{
				QuotationID: quotation.ID,
				Ticket:      quotation.Ticket,
				StoreID:     quotation.StoreID,
				Status:      enums.QuotationStatusCancelled,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancelled()
	return FromModel(cancelled, now), nil
}
