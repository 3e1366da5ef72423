package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-pesa/ticket_pesa/internal/logging"
)

func TestSweeperFailsStalePendingRecords(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	old := time.Now().UTC().Add(-time.Hour)

	stale := Record{
		ID: uuid.NewString(), UserID: uuid.NewString(), CheckoutRequestID: "ws_stale",
		Amount: 100, Status: StatusPending, CreatedAt: old, UpdatedAt: old,
	}
	fresh := Record{
		ID: uuid.NewString(), UserID: uuid.NewString(), CheckoutRequestID: "ws_fresh",
		Amount: 100, Status: StatusPending, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	settled := Record{
		ID: uuid.NewString(), UserID: uuid.NewString(), CheckoutRequestID: "ws_done",
		Amount: 100, Status: StatusCompleted, CreatedAt: old, UpdatedAt: old,
	}
	for _, rec := range []Record{stale, fresh, settled} {
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	sweeper := NewSweeper(repo, time.Minute, 15*time.Minute, logging.Discard())
	sweeper.sweep()

	got, _ := repo.FindByCheckoutID(ctx, "ws_stale")
	if got.Status != StatusFailed || got.ResultDesc != expiredResultDesc {
		t.Fatalf("stale record not expired: %+v", got)
	}
	got, _ = repo.FindByCheckoutID(ctx, "ws_fresh")
	if got.Status != StatusPending {
		t.Fatalf("fresh record must stay pending: %+v", got)
	}
	got, _ = repo.FindByCheckoutID(ctx, "ws_done")
	if got.Status != StatusCompleted {
		t.Fatalf("completed record must be untouched: %+v", got)
	}
}
