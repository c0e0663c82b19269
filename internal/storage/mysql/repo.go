package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"hotel_reservations/internal/domain"
)

type bookingRow struct {
	ID            int64          `db:"id"`
	ClientPrenom  string         `db:"client_prenom"`
	ClientNom     string         `db:"client_nom"`
	ClientEmail   string         `db:"client_email"`
	ClientPhone   string         `db:"client_phone"`
	RoomType      string         `db:"room_type"`
	RoomAvailable bool           `db:"room_available"`
	StartDate     sql.NullTime   `db:"start_date"`
	EndDate       sql.NullTime   `db:"end_date"`
	Preferences   sql.NullString `db:"preferences"`
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toRow(id int64, b domain.Booking) bookingRow {
	return bookingRow{
		ID:            id,
		ClientPrenom:  b.Guest.FirstName,
		ClientNom:     b.Guest.LastName,
		ClientEmail:   b.Guest.Email,
		ClientPhone:   b.Guest.Phone,
		RoomType:      string(b.Room.Type),
		RoomAvailable: b.Room.Available,
		StartDate:     nullTime(b.StartDate),
		EndDate:       nullTime(b.EndDate),
		Preferences:   nullStr(b.Preferences),
	}
}

func (r bookingRow) booking() domain.Booking {
	b := domain.Booking{
		ID:          r.ID,
		Preferences: r.Preferences.String,
		Guest: domain.Guest{
			FirstName: r.ClientPrenom,
			LastName:  r.ClientNom,
			Email:     r.ClientEmail,
			Phone:     r.ClientPhone,
		},
		Room: domain.Room{Type: domain.RoomType(r.RoomType), Available: r.RoomAvailable},
	}
	if r.StartDate.Valid {
		b.StartDate = r.StartDate.Time
	}
	if r.EndDate.Valid {
		b.EndDate = r.EndDate.Time
	}
	return b
}

// Repo is the MySQL-backed domain.BookingRepository.
type Repo struct{ db *sqlx.DB }

func New(db *sql.DB) *Repo { return &Repo{db: sqlx.NewDb(db, "mysql")} }

func (r *Repo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	res, err := r.db.NamedExecContext(ctx, insertBookingSQL, toRow(0, b))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("insert reservation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Booking{}, fmt.Errorf("insert reservation id: %w", err)
	}
	b.ID = id
	return b, nil
}

func (r *Repo) Update(ctx context.Context, id int64, b domain.Booking) error {
	var n int
	if err := r.db.GetContext(ctx, &n, existsBookingSQL, id); err != nil {
		return fmt.Errorf("lookup reservation %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.db.NamedExecContext(ctx, updateBookingSQL, toRow(id, b)); err != nil {
		return fmt.Errorf("update reservation %d: %w", id, err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteBookingSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete reservation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, listBookingsSQL); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.booking())
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, getBookingSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return row.booking(), nil
}
