package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_reservations/internal/domain"
)

var ErrUnknownField = errors.New("unknown form field")

// ReservationController sequences gateway calls against a State. Gateway
// errors end up in LastError and never reach the caller.
type ReservationController struct {
	gw domain.ReservationGateway
}

func NewReservationController(gw domain.ReservationGateway) *ReservationController {
	return &ReservationController{gw: gw}
}

// SetField merges one form field, named as in the JSON form. No validation.
func (c *ReservationController) SetField(st *State, name, value string) error {
	set, ok := fieldSetter(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	st.apply(func(v *domain.ViewState) { set(&v.Form, value) })
	return nil
}

func (c *ReservationController) Load(ctx context.Context, st *State) {
	st.apply(setLoading(true))
	c.reload(ctx, st)
	st.apply(setLoading(false))
}

// SubmitCreate stops at a failed create; otherwise it reloads and then
// clears the form, so the final LastError is whatever the reload produced.
func (c *ReservationController) SubmitCreate(ctx context.Context, st *State) {
	st.apply(setLoading(true))
	defer st.apply(setLoading(false))

	form := st.Snapshot().Form
	if _, err := c.gw.Create(ctx, form); err != nil {
		c.fail(st, err)
		return
	}
	c.reload(ctx, st)
	st.apply(func(v *domain.ViewState) { v.Form = domain.EmptyReservation() })
}

func (c *ReservationController) SubmitUpdate(ctx context.Context, st *State, id string) {
	st.apply(setLoading(true))
	defer st.apply(setLoading(false))

	form := st.Snapshot().Form
	if err := c.gw.Update(ctx, id, form); err != nil {
		c.fail(st, err)
		return
	}
	c.reload(ctx, st)
}

func (c *ReservationController) SubmitDelete(ctx context.Context, st *State, id string) {
	st.apply(setLoading(true))
	defer st.apply(setLoading(false))

	if err := c.gw.Delete(ctx, id); err != nil {
		c.fail(st, err)
		return
	}
	c.reload(ctx, st)
}

// LoadOne replaces the form with the record, or with empty defaults when the
// record is missing or the call fails.
func (c *ReservationController) LoadOne(ctx context.Context, st *State, id string) domain.Reservation {
	st.apply(setLoading(true))
	defer st.apply(setLoading(false))

	r, err := c.gw.GetByID(ctx, id)
	if err != nil {
		c.fail(st, err)
	}
	form := domain.EmptyReservation()
	if err == nil && r != nil {
		form = *r
	}
	st.apply(func(v *domain.ViewState) { v.Form = form })
	return form
}

// reload replaces the list wholesale; success clears LastError.
func (c *ReservationController) reload(ctx context.Context, st *State) {
	list, err := c.gw.List(ctx)
	if err != nil {
		c.fail(st, err)
		return
	}
	if list == nil {
		list = []domain.Reservation{}
	}
	st.apply(func(v *domain.ViewState) {
		v.Reservations = list
		v.LastError = ""
	})
}

func (c *ReservationController) fail(st *State, err error) {
	ev := log.Warn().Err(err)
	var gerr *domain.GatewayError
	if errors.As(err, &gerr) {
		ev = ev.Str("op", string(gerr.Op)).Str("detail", gerr.Detail())
	}
	ev.Msg("reservation operation failed")

	msg := err.Error()
	st.apply(func(v *domain.ViewState) { v.LastError = msg })
}

func setLoading(on bool) func(*domain.ViewState) {
	return func(v *domain.ViewState) { v.Loading = on }
}

func fieldSetter(name string) (func(*domain.Reservation, string), bool) {
	switch name {
	case "id":
		return func(r *domain.Reservation, s string) { r.ID = s }, true
	case "clientName":
		return func(r *domain.Reservation, s string) { r.ClientName = s }, true
	case "email":
		return func(r *domain.Reservation, s string) { r.Email = s }, true
	case "phone":
		return func(r *domain.Reservation, s string) { r.Phone = s }, true
	case "roomType":
		return func(r *domain.Reservation, s string) { r.RoomType = domain.RoomType(s) }, true
	case "startDate":
		return func(r *domain.Reservation, s string) { r.StartDate = s }, true
	case "endDate":
		return func(r *domain.Reservation, s string) { r.EndDate = s }, true
	case "preferences":
		return func(r *domain.Reservation, s string) { r.Preferences = s }, true
	}
	return nil, false
}
