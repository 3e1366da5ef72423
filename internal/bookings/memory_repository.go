package bookings

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]Booking
}

// NewMemoryRepository builds an in-memory booking store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{bookings: make(map[string]Booking)}
}

func (r *memoryRepository) Create(_ context.Context, booking Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = booking
	return nil
}

func (r *memoryRepository) Find(_ context.Context, id string) (Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return booking, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Booking
	for _, booking := range r.bookings {
		if booking.UserID == userID {
			out = append(out, booking)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	booking.Status = status
	r.bookings[id] = booking
	return nil
}
