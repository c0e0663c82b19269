package domain

import "context"

// ReservationGateway is the remote reservation service as seen by the front-end.
type ReservationGateway interface {
	List(ctx context.Context) ([]Reservation, error)
	// GetByID returns nil, nil when the server has no matching record.
	GetByID(ctx context.Context, id string) (*Reservation, error)
	Create(ctx context.Context, r Reservation) (Reservation, error)
	Update(ctx context.Context, id string, r Reservation) error
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Get(ctx context.Context, id string) (ViewState, bool, error)
	Set(ctx context.Context, id string, v ViewState) error
	Del(ctx context.Context, id string) error
}

// SessionLocker is implemented by stores shared between processes. Lock
// blocks until the caller owns the session or ctx ends.
type SessionLocker interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

type BookingRepository interface {
	// Write paths
	Create(ctx context.Context, b Booking) (Booking, error)
	Update(ctx context.Context, id int64, b Booking) error
	Delete(ctx context.Context, id int64) (bool, error)

	// Read paths
	List(ctx context.Context) ([]Booking, error)
	Get(ctx context.Context, id int64) (Booking, error)
}
