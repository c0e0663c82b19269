// Package memory is a process-local BookingRepository, used by stub SOAP
// servers and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"hotel_reservations/internal/domain"
)

type Repo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Booking
}

func New() *Repo { return &Repo{rows: map[int64]domain.Booking{}} }

func (r *Repo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	r.rows[b.ID] = b
	return b, nil
}

func (r *Repo) Update(ctx context.Context, id int64, b domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	b.ID = id
	r.rows[id] = b
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Booking, 0, len(r.rows))
	for _, b := range r.rows {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}
