package domain

import "errors"

var ErrNotFound = errors.New("not found")

// Gateway failure kinds. They stay internal to logs and metrics; callers
// only ever see the static per-operation message.
var (
	ErrTransport      = errors.New("soap transport failure")
	ErrFault          = errors.New("soap fault")
	ErrResultMismatch = errors.New("soap result marker not true")
)

type GatewayOp string

const (
	OpList    GatewayOp = "getAllReservations"
	OpGetByID GatewayOp = "getReservationById"
	OpCreate  GatewayOp = "createReservation"
	OpUpdate  GatewayOp = "updateReservation"
	OpDelete  GatewayOp = "deleteReservation"
)

var gatewayMessages = map[GatewayOp]string{
	OpList:    "soap error while loading reservations",
	OpGetByID: "soap error while fetching the reservation",
	OpCreate:  "soap error while creating the reservation",
	OpUpdate:  "soap error while updating the reservation",
	OpDelete:  "soap error while deleting the reservation",
}

type GatewayError struct {
	Op   GatewayOp
	Kind error // ErrTransport | ErrFault | ErrResultMismatch
	Err  error
}

func (e *GatewayError) Error() string { return GatewayMessage(e.Op) }

func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Detail is the underlying cause, for logs only.
func (e *GatewayError) Detail() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func GatewayMessage(op GatewayOp) string {
	if m, ok := gatewayMessages[op]; ok {
		return m
	}
	return "soap error"
}
