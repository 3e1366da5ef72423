package payments

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record // keyed by CheckoutRequestID
}

// NewMemoryRepository constructs an in-memory payment record store for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{records: make(map[string]Record)}
}

func (r *memoryRepository) Create(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.CheckoutRequestID] = record
	return nil
}

func (r *memoryRepository) FindByCheckoutID(_ context.Context, checkoutRequestID string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[checkoutRequestID]
	if !ok {
		return Record{}, ErrPaymentNotFound
	}
	return rec, nil
}

func (r *memoryRepository) Update(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.CheckoutRequestID]; !ok {
		return ErrPaymentNotFound
	}
	record.UpdatedAt = time.Now().UTC()
	r.records[record.CheckoutRequestID] = record
	return nil
}

func (r *memoryRepository) ExpirePending(_ context.Context, cutoff time.Time, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, rec := range r.records {
		if rec.Status == StatusPending && rec.CreatedAt.Before(cutoff) {
			rec.Status = StatusFailed
			rec.ResultDesc = reason
			rec.UpdatedAt = time.Now().UTC()
			r.records[key] = rec
			n++
		}
	}
	return n, nil
}
