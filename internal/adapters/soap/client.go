// internal/adapters/soap/client.go
package soap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_reservations/internal/adapters/observability"
	"hotel_reservations/internal/domain"
)

const maxResponseBytes = 8 << 20

// Client is the reservation gateway over SOAP 1.1. It holds no state besides
// its transport; every call is a single POST with no retry.
type Client struct {
	endpoint string
	hc       *http.Client
	rl       *rate.Limiter // nil: unlimited
}

func New(endpoint string, timeout time.Duration, rps int) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("SOAP endpoint is required")
	}
	c := &Client{
		endpoint: endpoint,
		hc:       &http.Client{Timeout: timeout},
	}
	if rps > 0 {
		c.rl = rate.NewLimiter(rate.Limit(rps), rps)
	}
	return c, nil
}

// ---- Public API ----

func (c *Client) List(ctx context.Context) ([]domain.Reservation, error) {
	doc, err := c.call(ctx, domain.OpList, getAllReservations{})
	if err != nil {
		return nil, err
	}
	nodes := doc.FindAll("return")
	out := make([]domain.Reservation, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, mapReservation(n))
	}
	return out, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	doc, err := c.call(ctx, domain.OpGetByID, getReservationByID{ID: id})
	if err != nil {
		return nil, err
	}
	ret := doc.Find("return")
	if ret == nil {
		return nil, nil
	}
	r := mapReservation(ret)
	return &r, nil
}

func (c *Client) Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	doc, err := c.call(ctx, domain.OpCreate, createReservation{reservationParams: toParams(r)})
	if err != nil {
		return domain.Reservation{}, err
	}
	// servers that answer without a <return> wrapper carry the fields directly
	if ret := doc.Find("return"); ret != nil {
		return mapReservation(ret), nil
	}
	return mapReservation(doc), nil
}

func (c *Client) Update(ctx context.Context, id string, r domain.Reservation) error {
	doc, err := c.call(ctx, domain.OpUpdate, updateReservation{ID: id, reservationParams: toParams(r)})
	if err != nil {
		return err
	}
	return c.expectTrue(domain.OpUpdate, doc)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	doc, err := c.call(ctx, domain.OpDelete, deleteReservation{ID: id})
	if err != nil {
		return err
	}
	return c.expectTrue(domain.OpDelete, doc)
}

// ---- Internals ----

// call posts one envelope and returns the parsed response. A fault anywhere
// in the body wins over the HTTP status.
func (c *Client) call(ctx context.Context, op domain.GatewayOp, payload any) (*Node, error) {
	start := time.Now()
	status := 0
	defer func() { observability.ObserveExternal("soap", string(op), status, time.Since(start)) }()

	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, c.fail(op, domain.ErrTransport, err)
		}
	}

	body, err := MarshalRequest(payload)
	if err != nil {
		return nil, c.fail(op, domain.ErrTransport, fmt.Errorf("encode envelope: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(op, domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("User-Agent", "hotel-reservations/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, c.fail(op, domain.ErrTransport, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.fail(op, domain.ErrTransport, fmt.Errorf("read body: %w", err))
	}

	doc, perr := Parse(raw)
	if perr == nil {
		if f := doc.Fault(); f != nil {
			return nil, c.fail(op, domain.ErrFault, f)
		}
	}
	if status < 200 || status > 299 {
		return nil, c.fail(op, domain.ErrTransport, fmt.Errorf("bad status %d", status))
	}
	if perr != nil {
		return nil, c.fail(op, domain.ErrTransport, fmt.Errorf("parse response: %w", perr))
	}
	return doc, nil
}

// expectTrue enforces the mutation contract: the first <return> must read
// exactly "true".
func (c *Client) expectTrue(op domain.GatewayOp, doc *Node) error {
	ret := doc.Find("return")
	if ret == nil {
		return c.fail(op, domain.ErrResultMismatch, fmt.Errorf("no return element"))
	}
	if got := ret.Content(); got != "true" {
		return c.fail(op, domain.ErrResultMismatch, fmt.Errorf("return was %q", got))
	}
	return nil
}

func (c *Client) fail(op domain.GatewayOp, kind, cause error) error {
	gerr := &domain.GatewayError{Op: op, Kind: kind, Err: cause}
	log.Warn().
		Str("op", string(op)).
		Str("endpoint", c.endpoint).
		Str("detail", gerr.Detail()).
		Msg("soap call failed")
	return gerr
}
