// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_reservations/internal/app"
	"hotel_reservations/internal/domain"
)

type Handlers struct {
	Ctl        *app.ReservationController
	Val        *app.FormValidator
	Sessions   domain.SessionStore
	SessionTTL time.Duration
}

type problem struct {
	Type   string               `json:"type"`
	Title  string               `json:"title"`
	Status int                  `json:"status"`
	Detail string               `json:"detail,omitempty"`
	Errors app.ValidationErrors `json:"errors,omitempty"`
}

type fieldPatch struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Session(h.Sessions, h.SessionTTL))
		r.Get("/state", h.getState)
		r.Patch("/form", h.patchForm)
		r.Post("/reservations/load", h.load)
		r.Post("/reservations", h.create)
		r.Get("/reservations/{id}", h.loadOne)
		r.Put("/reservations/{id}", h.update)
		r.Delete("/reservations/{id}", h.remove)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemDoc(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemDoc(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeState answers with the session snapshot after the operation ran.
func writeState(w http.ResponseWriter, r *http.Request, st *app.State) {
	etag, body := calcETagAndBody(st.Snapshot())
	if r.Method == http.MethodGet {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write state body")
	}
}

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	writeState(w, r, StateFrom(r.Context()))
}

func (h *Handlers) load(w http.ResponseWriter, r *http.Request) {
	st := StateFrom(r.Context())
	h.Ctl.Load(r.Context(), st)
	writeState(w, r, st)
}

func (h *Handlers) patchForm(w http.ResponseWriter, r *http.Request) {
	var p fieldPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected {\"name\",\"value\"}")
		return
	}
	st := StateFrom(r.Context())
	if err := h.Ctl.SetField(st, p.Name, p.Value); err != nil {
		if errors.Is(err, app.ErrUnknownField) {
			writeProblem(w, http.StatusBadRequest, "Unknown Field", err.Error())
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", err.Error())
		return
	}
	writeState(w, r, st)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	st := StateFrom(r.Context())
	if !h.validForm(w, st) {
		return
	}
	h.Ctl.SubmitCreate(r.Context(), st)
	writeState(w, r, st)
}

func (h *Handlers) loadOne(w http.ResponseWriter, r *http.Request) {
	st := StateFrom(r.Context())
	h.Ctl.LoadOne(r.Context(), st, chi.URLParam(r, "id"))
	writeState(w, r, st)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	st := StateFrom(r.Context())
	if !h.validForm(w, st) {
		return
	}
	h.Ctl.SubmitUpdate(r.Context(), st, chi.URLParam(r, "id"))
	writeState(w, r, st)
}

func (h *Handlers) remove(w http.ResponseWriter, r *http.Request) {
	st := StateFrom(r.Context())
	h.Ctl.SubmitDelete(r.Context(), st, chi.URLParam(r, "id"))
	writeState(w, r, st)
}

// validForm writes a 400 with the field errors when the form is incomplete.
func (h *Handlers) validForm(w http.ResponseWriter, st *app.State) bool {
	err := h.Val.Validate(st.Snapshot().Form)
	if err == nil {
		return true
	}
	var verrs app.ValidationErrors
	if errors.As(err, &verrs) {
		writeProblemDoc(w, problem{
			Type:   "about:blank",
			Title:  "Invalid Reservation",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
			Errors: verrs,
		})
		return false
	}
	writeProblem(w, http.StatusInternalServerError, "Internal Error", err.Error())
	return false
}
