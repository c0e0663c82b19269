package soapserver

import (
	"encoding/xml"

	"hotel_reservations/internal/adapters/soap"
	"hotel_reservations/internal/domain"
)

type responseEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	Soap    string   `xml:"xmlns:soap,attr"`
	Body    struct {
		Content any
	} `xml:"soap:Body"`
}

type faultXML struct {
	XMLName xml.Name `xml:"soap:Fault"`
	Code    string   `xml:"faultcode"`
	String  string   `xml:"faultstring"`
}

type bookingsResponse struct {
	XMLName xml.Name
	NS      string       `xml:"xmlns:ns2,attr"`
	Return  []bookingXML `xml:"return"`
}

type boolResponse struct {
	XMLName xml.Name
	NS      string `xml:"xmlns:ns2,attr"`
	Return  bool   `xml:"return"`
}

type statsResponse struct {
	XMLName xml.Name
	NS      string   `xml:"xmlns:ns2,attr"`
	Return  statsXML `xml:"return"`
}

type statsXML struct {
	Count       int     `xml:"count"`
	AvgDuration float64 `xml:"avgDuration"`
}

// field order follows the entity: id, dates, preferences, client, chambre
type bookingXML struct {
	ID          int64      `xml:"id"`
	DateDebut   string     `xml:"dateDebut"`
	DateFin     string     `xml:"dateFin"`
	Preferences string     `xml:"preferences,omitempty"`
	Client      clientXML  `xml:"client"`
	Chambre     chambreXML `xml:"chambre"`
}

type clientXML struct {
	Nom       string `xml:"nom"`
	Prenom    string `xml:"prenom"`
	Email     string `xml:"email"`
	Telephone string `xml:"telephone"`
}

type chambreXML struct {
	Type       string `xml:"type"`
	Disponible bool   `xml:"disponible"`
}

func responseName(op string) xml.Name { return xml.Name{Local: "ns2:" + op + "Response"} }

func newBookingsResponse(op string, bs ...domain.Booking) bookingsResponse {
	out := bookingsResponse{XMLName: responseName(op), NS: soap.ServiceNS}
	for _, b := range bs {
		out.Return = append(out.Return, toXML(b))
	}
	return out
}

func newBoolResponse(op string, v bool) boolResponse {
	return boolResponse{XMLName: responseName(op), NS: soap.ServiceNS, Return: v}
}

func newStatsResponse(op string, bs []domain.Booking) statsResponse {
	return statsResponse{
		XMLName: responseName(op),
		NS:      soap.ServiceNS,
		Return:  statsXML{Count: len(bs), AvgDuration: domain.AverageStay(bs)},
	}
}

func toXML(b domain.Booking) bookingXML {
	return bookingXML{
		ID:          b.ID,
		DateDebut:   domain.FormatDate(b.StartDate),
		DateFin:     domain.FormatDate(b.EndDate),
		Preferences: b.Preferences,
		Client: clientXML{
			Nom:       b.Guest.LastName,
			Prenom:    b.Guest.FirstName,
			Email:     b.Guest.Email,
			Telephone: b.Guest.Phone,
		},
		Chambre: chambreXML{Type: string(b.Room.Type), Disponible: b.Room.Available},
	}
}
