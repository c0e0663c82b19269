// Package soapserver serves the five reservation operations, plus the
// read-only getReservationStats, over SOAP 1.1 backed by a
// domain.BookingRepository.
package soapserver

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_reservations/internal/adapters/observability"
	"hotel_reservations/internal/adapters/soap"
	"hotel_reservations/internal/domain"
)

const Path = "/services/ws"

const maxRequestBytes = 1 << 20

// OpStats reports the reservation count and the average stay in days.
const OpStats = "getReservationStats"

type Handler struct{ repo domain.BookingRepository }

func New(repo domain.BookingRepository) *Handler { return &Handler{repo: repo} }

// fault is returned by operations; client faults are the caller's doing.
type fault struct {
	client bool
	msg    string
}

func (f *fault) Error() string { return f.msg }

func clientFault(format string, args ...any) *fault {
	return &fault{client: true, msg: fmt.Sprintf(format, args...)}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	op, body, err := readOperation(r)
	name := "unknown"
	if op != nil {
		name = op.XMLName.Local
	}

	var resp any
	if err == nil {
		resp, err = h.dispatch(r, name, op)
	}

	if err != nil {
		var f *fault
		if !errors.As(err, &f) {
			f = &fault{msg: err.Error()}
		}
		log.Warn().
			Str("op", name).
			Str("err_type", observability.LabelErr(err)).
			Err(err).
			Int("bytes", len(body)).
			Msg("soap fault")
		observability.ObserveSOAP(name, "fault", time.Since(start))
		writeEnvelope(w, http.StatusInternalServerError, faultXML{Code: faultCode(f), String: f.msg})
		return
	}

	observability.ObserveSOAP(name, "ok", time.Since(start))
	writeEnvelope(w, http.StatusOK, resp)
}

func faultCode(f *fault) string {
	if f.client {
		return "soap:Client"
	}
	return "soap:Server"
}

// readOperation returns the first element inside the envelope Body.
func readOperation(r *http.Request) (*soap.Node, []byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return nil, nil, clientFault("read request: %v", err)
	}
	doc, err := soap.Parse(raw)
	if err != nil {
		return nil, raw, clientFault("malformed envelope: %v", err)
	}
	body := doc.Find("Body")
	if body == nil || len(body.Nodes) == 0 {
		return nil, raw, clientFault("envelope has no operation")
	}
	return &body.Nodes[0], raw, nil
}

func (h *Handler) dispatch(r *http.Request, name string, op *soap.Node) (any, error) {
	ctx := r.Context()
	switch name {
	case string(domain.OpList):
		bs, err := h.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list reservations: %w", err)
		}
		return newBookingsResponse(name, bs...), nil

	case OpStats:
		bs, err := h.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list reservations: %w", err)
		}
		return newStatsResponse(name, bs), nil

	case string(domain.OpGetByID):
		id, err := parseID(op)
		if err != nil {
			return nil, err
		}
		b, err := h.repo.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return newBookingsResponse(name), nil
		}
		if err != nil {
			return nil, fmt.Errorf("get reservation %d: %w", id, err)
		}
		return newBookingsResponse(name, b), nil

	case string(domain.OpCreate):
		b, err := bookingFrom(op)
		if err != nil {
			return nil, err
		}
		created, err := h.repo.Create(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("create reservation: %w", err)
		}
		log.Info().Int64("id", created.ID).Msg("reservation created")
		return newBookingsResponse(name, created), nil

	case string(domain.OpUpdate):
		id, err := parseID(op)
		if err != nil {
			return nil, err
		}
		b, err := bookingFrom(op)
		if err != nil {
			return nil, err
		}
		if err := h.repo.Update(ctx, id, b); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, clientFault("reservation %d not found", id)
			}
			return nil, fmt.Errorf("update reservation %d: %w", id, err)
		}
		return newBoolResponse(name, true), nil

	case string(domain.OpDelete):
		id, err := parseID(op)
		if err != nil {
			return nil, err
		}
		ok, err := h.repo.Delete(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("delete reservation %d: %w", id, err)
		}
		return newBoolResponse(name, ok), nil
	}
	return nil, clientFault("unknown operation %q", name)
}

func parseID(op *soap.Node) (int64, error) {
	s := op.ChildText("id")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, clientFault("invalid id %q", s)
	}
	return id, nil
}

func bookingFrom(op *soap.Node) (domain.Booking, error) {
	start, err := domain.ParseDate(op.ChildText("dateDebut"))
	if err != nil {
		return domain.Booking{}, clientFault("invalid dateDebut: %v", err)
	}
	end, err := domain.ParseDate(op.ChildText("dateFin"))
	if err != nil {
		return domain.Booking{}, clientFault("invalid dateFin: %v", err)
	}
	rt := domain.RoomType(op.ChildText("type"))
	if !rt.Valid() {
		return domain.Booking{}, clientFault("invalid room type %q", rt)
	}
	pref := op.ChildText("preference")
	if pref == "" {
		pref = op.ChildText("preferences")
	}
	return domain.Booking{
		StartDate:   start,
		EndDate:     end,
		Preferences: pref,
		Guest: domain.Guest{
			FirstName: op.ChildText("prenom"),
			LastName:  op.ChildText("nom"),
			Email:     op.ChildText("email"),
			Phone:     op.ChildText("telephone"),
		},
		Room: domain.Room{Type: rt, Available: op.ChildText("disponible") == "true"},
	}, nil
}

func writeEnvelope(w http.ResponseWriter, status int, content any) {
	env := responseEnvelope{Soap: soap.EnvelopeNS11}
	env.Body.Content = content
	b, err := xml.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("marshal soap response failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append([]byte(xml.Header), b...)); err != nil {
		log.Error().Err(err).Msg("failed to write soap response")
	}
}
