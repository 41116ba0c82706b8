package negotiation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/internal/quotations"
	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
	"github.com/karimfarhat/suqly-backend/pkg/metrics"
	"github.com/karimfarhat/suqly-backend/pkg/outbox"
	"github.com/karimfarhat/suqly-backend/pkg/pdfdoc"
	"github.com/karimfarhat/suqly-backend/pkg/whatsapp"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type messageBuilder interface {
	Build(phone string, msg whatsapp.Message) (*whatsapp.Payload, error)
}

// Service records store counter-offers against quotations.
type Service interface {
	Respond(ctx context.Context, input RespondInput) (*RespondResult, error)
}

type service struct {
	repo    Repository
	quotes  quotations.Repository
	stores  storeLoader
	tx      txRunner
	outbox  outboxPublisher
	builder messageBuilder
	metrics *metrics.QuotationMetrics
	logger  *logger.Logger
	now     func() time.Time
}

// RespondInput is the store's counter-offer for a quotation.
type RespondInput struct {
	QuotationID  uuid.UUID
	Adjustments  []ItemAdjustment
	Note         string
	ValidityDays int
	Format       string
}

// RespondResult carries the persisted response plus the delivery payload for
// the chosen format. DeliveryError is set when the response was persisted but
// the delivery payload could not be built; the response itself stands.
type RespondResult struct {
	Quotation     *quotations.QuotationDTO `json:"quotation"`
	WhatsApp      *whatsapp.Payload        `json:"whatsapp,omitempty"`
	PDF           *pdfdoc.Document         `json:"pdf,omitempty"`
	DeliveryError string                   `json:"delivery_error,omitempty"`
}

// QuotationRespondedEvent is emitted when a store records a counter-offer.
type QuotationRespondedEvent struct {
	QuotationID        uuid.UUID            `json:"quotation_id"`
	Ticket             string               `json:"ticket"`
	StoreID            uuid.UUID            `json:"store_id"`
	Format             enums.ResponseFormat `json:"format"`
	AdjustedTotalCents int64                `json:"adjusted_total_cents"`
	DiscountPercent    int                  `json:"discount_percent"`
	ValidUntil         time.Time            `json:"valid_until"`
}

// NewService wires negotiation dependencies.
func NewService(
	repo Repository,
	quotes quotations.Repository,
	stores storeLoader,
	tx txRunner,
	publisher outboxPublisher,
	builder messageBuilder,
	quotationMetrics *metrics.QuotationMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("negotiation repository required")
	}
	if quotes == nil {
		return nil, fmt.Errorf("quotations repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if builder == nil {
		return nil, fmt.Errorf("message builder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		quotes:  quotes,
		stores:  stores,
		tx:      tx,
		outbox:  publisher,
		builder: builder,
		metrics: quotationMetrics,
		logger:  logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) (*RespondResult, error) {
	if input.QuotationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}
	format, err := enums.ParseResponseFormat(input.Format)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid response format")
	}
	validity := enums.ValidityDays(input.ValidityDays)
	if !validity.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("validity must be one of 3, 7, 15 or 30 days, got %d", input.ValidityDays))
	}

	now := s.now()
	var (
		quotation *models.Quotation
		response  *models.QuotationResponse
	)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		quotes := s.quotes.WithTx(tx)
		repo := s.repo.WithTx(tx)

		loaded, err := quotes.FindByID(ctx, input.QuotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
		}

		current := quotations.EffectiveStatus(loaded, now)
		if current.IsTerminal() {
			return pkgerrors.StateConflict(pkgerrors.ReasonTerminalState,
				fmt.Sprintf("quotation %s cannot be responded to", current))
		}

		offer, err := ComputeOffer(loaded.Items, input.Adjustments)
		if err != nil {
			return err
		}

		draft := &models.QuotationResponse{
			QuotationID:        loaded.ID,
			Format:             format,
			ValidityDays:       validity,
			ValidUntil:         now.AddDate(0, 0, int(validity)),
			OriginalTotalCents: offer.OriginalTotalCents,
			AdjustedTotalCents: offer.AdjustedTotalCents,
			TotalDiscountCents: offer.TotalDiscountCents,
			DiscountPercent:    offer.DiscountPercent,
			Items:              make([]models.QuotationResponseItem, 0, len(offer.Lines)),
		}
		if note := strings.TrimSpace(input.Note); note != "" {
			draft.Note = &note
		}
		for _, line := range offer.Lines {
			draft.Items = append(draft.Items, models.QuotationResponseItem{
				QuotationItemID:    line.QuotationItemID,
				OriginalPriceCents: line.OriginalPriceCents,
				AdjustedPriceCents: line.AdjustedPriceCents,
				DiscountPercent:    line.DiscountPercent,
				Qty:                line.Qty,
			})
		}

		if err := repo.ReplaceResponse(ctx, draft); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace response")
		}
		if err := repo.StampResponded(ctx, loaded.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp responded at")
		}

		if loaded.Status == enums.QuotationStatusPending {
			advanced, err := quotes.UpdateStatusGuarded(ctx, loaded.ID,
				enums.QuotationStatusPending, enums.QuotationStatusContacted)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance quotation status")
			}
			if advanced {
				loaded.Status = enums.QuotationStatusContacted
			}
		}

		stamp := now
		loaded.StoreRespondedAt = &stamp
		loaded.Response = draft
		quotation = loaded
		response = draft

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuotationResponded,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   loaded.ID,
			Version:       1,
			Data: QuotationRespondedEvent{
				QuotationID:        loaded.ID,
				Ticket:             loaded.Ticket,
				StoreID:            loaded.StoreID,
				Format:             format,
				AdjustedTotalCents: draft.AdjustedTotalCents,
				DiscountPercent:    draft.DiscountPercent,
				ValidUntil:         draft.ValidUntil,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncResponded(format.String())

	result := &RespondResult{Quotation: quotations.FromModel(quotation, now)}
	s.attachDelivery(ctx, result, quotation, response, format, now)
	return result, nil
}

// attachDelivery builds the format-specific payload after the response is
// committed. A builder failure never unwinds the persisted response; it is
// surfaced as a delivery error on the result instead.
func (s *service) attachDelivery(
	ctx context.Context,
	result *RespondResult,
	quotation *models.Quotation,
	response *models.QuotationResponse,
	format enums.ResponseFormat,
	now time.Time,
) {
	if format == enums.ResponseFormatSave {
		return
	}

	store, err := s.stores.FindByID(ctx, quotation.StoreID)
	if err != nil {
		s.deliveryFailed(ctx, result, quotation.ID, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store"))
		return
	}

	note := ""
	if response.Note != nil {
		note = *response.Note
	}

	switch format {
	case enums.ResponseFormatWhatsApp:
		msg := whatsapp.Message{
			StoreName:    store.Name,
			Ticket:       quotation.Ticket,
			CustomerName: quotation.CustomerName,
			Lines:        make([]whatsapp.Line, 0, len(response.Items)),
			TotalCents:   response.AdjustedTotalCents,
			SavingsCents: response.TotalDiscountCents,
			ValidityDays: int(response.ValidityDays),
			Note:         note,
		}
		byItem := itemsByID(quotation.Items)
		for _, item := range response.Items {
			msg.Lines = append(msg.Lines, whatsapp.Line{
				Name:               byItem[item.QuotationItemID].Name,
				Qty:                item.Qty,
				OriginalPriceCents: item.OriginalPriceCents,
				AdjustedPriceCents: item.AdjustedPriceCents,
			})
		}

		payload, err := s.builder.Build(store.Phone, msg)
		if err != nil {
			s.deliveryFailed(ctx, result, quotation.ID, err)
			return
		}
		result.WhatsApp = payload

		if err := s.repo.StampWhatsAppSent(ctx, quotation.ID, now); err != nil {
			s.deliveryFailed(ctx, result, quotation.ID,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp whatsapp sent"))
			return
		}
		stamp := now
		quotation.WhatsAppSentAt = &stamp
		result.Quotation = quotations.FromModel(quotation, now)

	case enums.ResponseFormatPDF:
		city := ""
		if quotation.CustomerCity != nil {
			city = *quotation.CustomerCity
		}
		lines := make([]pdfdoc.LineItem, 0, len(response.Items))
		byItem := itemsByID(quotation.Items)
		for _, item := range response.Items {
			lines = append(lines, pdfdoc.LineItem{
				Name:               byItem[item.QuotationItemID].Name,
				Qty:                item.Qty,
				OriginalPriceCents: item.OriginalPriceCents,
				AdjustedPriceCents: item.AdjustedPriceCents,
				DiscountPercent:    item.DiscountPercent,
			})
		}

		doc, err := pdfdoc.Build(
			pdfdoc.Header{StoreName: store.Name, Ticket: quotation.Ticket, IssuedAt: now},
			pdfdoc.Customer{Name: quotation.CustomerName, Phone: quotation.CustomerPhone, City: city},
			lines,
			pdfdoc.Footer{ValidUntil: response.ValidUntil, ValidityDays: int(response.ValidityDays), Note: note},
		)
		if err != nil {
			s.deliveryFailed(ctx, result, quotation.ID, err)
			return
		}
		result.PDF = doc
	}
}

func (s *service) deliveryFailed(ctx context.Context, result *RespondResult, quotationID uuid.UUID, err error) {
	result.DeliveryError = err.Error()
	ctx = s.logger.WithFields(ctx, map[string]any{
		"quotation_id": quotationID.String(),
		"error":        err.Error(),
	})
	s.logger.Warn(ctx, "response persisted but delivery payload failed")
}

func itemsByID(items []models.QuotationItem) map[uuid.UUID]models.QuotationItem {
	out := make(map[uuid.UUID]models.QuotationItem, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}
