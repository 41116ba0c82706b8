package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

// Service exposes the admin unread badge for new quotations.
type Service interface {
	MarkViewed(ctx context.Context, storeID uuid.UUID) (*BadgeDTO, error)
	UnreadCount(ctx context.Context, storeID uuid.UUID) (*BadgeDTO, error)
}

// BadgeDTO is the unread badge state after an operation.
type BadgeDTO struct {
	StoreID     uuid.UUID `json:"store_id"`
	UnreadCount int64     `json:"unread_count"`
	MarkedRead  int64     `json:"marked_read,omitempty"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires notification dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) MarkViewed(ctx context.Context, storeID uuid.UUID) (*BadgeDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	marked, err := s.repo.MarkViewed(ctx, storeID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark quotations viewed")
	}

	count, err := s.repo.UnreadCount(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread quotations")
	}
	return &BadgeDTO{StoreID: storeID, UnreadCount: count, MarkedRead: marked}, nil
}

func (s *service) UnreadCount(ctx context.Context, storeID uuid.UUID) (*BadgeDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	count, err := s.repo.UnreadCount(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread quotations")
	}
	return &BadgeDTO{StoreID: storeID, UnreadCount: count}, nil
}
