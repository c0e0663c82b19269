package domain

import "time"

// Booking is the server-side shape of a reservation: guest and room are
// nested, dates are real dates.
type Booking struct {
	ID          int64
	StartDate   time.Time
	EndDate     time.Time
	Preferences string
	Guest       Guest
	Room        Room
}

type Guest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type Room struct {
	Type      RoomType
	Available bool
}

const DateLayout = "2006-01-02"

// FormatDate renders a zero time as "" so unset dates round-trip as empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}

// AverageStay is the mean of EndDate-StartDate in days over bookings that
// have both dates; 0 when none do.
func AverageStay(bs []Booking) float64 {
	var days float64
	n := 0
	for _, b := range bs {
		if b.StartDate.IsZero() || b.EndDate.IsZero() {
			continue
		}
		days += b.EndDate.Sub(b.StartDate).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return days / float64(n)
}
