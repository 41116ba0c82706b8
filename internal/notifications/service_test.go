package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

type fakeRepository struct {
	unread int64
	marked int64
	sweeps int
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) MarkViewed(ctx context.Context, storeID uuid.UUID, viewedAt time.Time) (int64, error) {
	f.sweeps++
	marked := f.unread
	f.marked += marked
	f.unread = 0
	return marked, nil
}

func (f *fakeRepository) UnreadCount(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return f.unread, nil
}

func TestMarkViewedClearsBadge(t *testing.T) {
	repo := &fakeRepository{unread: 3}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	badge, err := svc.MarkViewed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MarkViewed: %v", err)
	}
	if badge.MarkedRead != 3 || badge.UnreadCount != 0 {
		t.Fatalf("badge = %+v, want 3 marked and 0 unread", badge)
	}

	// Repeat call marks nothing further.
	badge, err = svc.MarkViewed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MarkViewed: %v", err)
	}
	if badge.MarkedRead != 0 {
		t.Fatalf("second badge = %+v, want nothing newly marked", badge)
	}
}

func TestUnreadCountReadsStorage(t *testing.T) {
	repo := &fakeRepository{unread: 5}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	badge, err := svc.UnreadCount(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if badge.UnreadCount != 5 {
		t.Fatalf("unread = %d, want 5", badge.UnreadCount)
	}
	if repo.sweeps != 0 {
		t.Fatal("UnreadCount must not mark anything viewed")
	}
}

func TestBadgeRequiresStoreID(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.UnreadCount(context.Background(), uuid.Nil); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for nil store id")
	}
	if _, err := svc.MarkViewed(context.Background(), uuid.Nil); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for nil store id")
	}
}
