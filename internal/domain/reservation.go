package domain

import "strings"

type RoomType string

const (
	RoomSimple RoomType = "SIMPLE"
	RoomDouble RoomType = "DOUBLE"
	RoomTriple RoomType = "TRIPLE"
	RoomSuite  RoomType = "SUITE"
)

// Reservation is the flat record the front-end renders and edits.
// Dates are ISO strings (YYYY-MM-DD) exactly as exchanged with the SOAP service.
type Reservation struct {
	ID          string   `json:"id" yaml:"id"`
	ClientName  string   `json:"clientName" yaml:"clientName" validate:"required"`
	Email       string   `json:"email" yaml:"email" validate:"required"`
	Phone       string   `json:"phone" yaml:"phone" validate:"required"`
	RoomType    RoomType `json:"roomType" yaml:"roomType" validate:"required,oneof=SIMPLE DOUBLE TRIPLE SUITE"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate" yaml:"endDate"`
	Preferences string   `json:"preferences" yaml:"preferences"`
}

// EmptyReservation is the blank form: everything empty, room type SIMPLE.
func EmptyReservation() Reservation {
	return Reservation{RoomType: RoomSimple}
}

// SplitClientName returns (prenom, nom): the first space-separated token and
// the remainder. "Jean Paul Dupont" -> ("Jean", "Paul Dupont"), "Madonna" -> ("Madonna", "").
func SplitClientName(name string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, rest
}

func JoinClientName(prenom, nom string) string {
	return strings.TrimSpace(prenom + " " + nom)
}

// ViewState is what the UI renders: the draft form, the last fetched list,
// and the loading/error pair.
type ViewState struct {
	Form         Reservation   `json:"form"`
	Reservations []Reservation `json:"reservations"`
	Loading      bool          `json:"loading"`
	LastError    string        `json:"lastError"`
}

func NewViewState() ViewState {
	return ViewState{Form: EmptyReservation(), Reservations: []Reservation{}}
}

// Clone copies the list so the snapshot doesn't alias the live state.
func (v ViewState) Clone() ViewState {
	out := v
	out.Reservations = make([]Reservation, len(v.Reservations))
	copy(out.Reservations, v.Reservations)
	return out
}

func (t RoomType) Valid() bool {
	switch t {
	case RoomSimple, RoomDouble, RoomTriple, RoomSuite:
		return true
	}
	return false
}
