package soap

import (
	"encoding/xml"
	"strings"

	"hotel_reservations/internal/domain"
)

const (
	EnvelopeNS11 = "http://schemas.xmlsoap.org/soap/envelope/"
	EnvelopeNS12 = "http://www.w3.org/2003/05/soap-envelope"
	ServiceNS    = "http://controller.hotelgestion.example.com/"
)

/********** request side **********/

type requestEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	SoapEnv string   `xml:"xmlns:soapenv,attr"`
	Hot     string   `xml:"xmlns:hot,attr"`
	Header  struct{} `xml:"soapenv:Header"`
	Body    struct {
		Operation any // element name comes from the operation's XMLName
	} `xml:"soapenv:Body"`
}

type getAllReservations struct {
	XMLName xml.Name `xml:"hot:getAllReservations"`
}

type getReservationByID struct {
	XMLName xml.Name `xml:"hot:getReservationById"`
	ID      string   `xml:"id"`
}

type deleteReservation struct {
	XMLName xml.Name `xml:"hot:deleteReservation"`
	ID      string   `xml:"id"`
}

type createReservation struct {
	XMLName xml.Name `xml:"hot:createReservation"`
	reservationParams
}

type updateReservation struct {
	XMLName xml.Name `xml:"hot:updateReservation"`
	ID      string   `xml:"id"`
	reservationParams
}

type reservationParams struct {
	DateDebut  string        `xml:"dateDebut"`
	DateFin    string        `xml:"dateFin"`
	Client     clientParams  `xml:"client"`
	Chambre    chambreParams `xml:"chambre"`
	Preference string        `xml:"preference,omitempty"`
}

type clientParams struct {
	Nom       string `xml:"nom"`
	Prenom    string `xml:"prenom"`
	Email     string `xml:"email"`
	Telephone string `xml:"telephone"`
}

type chambreParams struct {
	Type       string `xml:"type"`
	Disponible bool   `xml:"disponible"`
}

func toParams(r domain.Reservation) reservationParams {
	prenom, nom := domain.SplitClientName(r.ClientName)
	return reservationParams{
		DateDebut: r.StartDate,
		DateFin:   r.EndDate,
		Client: clientParams{
			Nom:       nom,
			Prenom:    prenom,
			Email:     r.Email,
			Telephone: r.Phone,
		},
		Chambre:    chambreParams{Type: string(r.RoomType), Disponible: true},
		Preference: r.Preferences,
	}
}

// MarshalRequest wraps one operation element in the request envelope.
func MarshalRequest(op any) ([]byte, error) {
	env := requestEnvelope{SoapEnv: EnvelopeNS11, Hot: ServiceNS}
	env.Body.Operation = op
	b, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

/********** response side **********/

// Node is a namespace-resolved element tree; Space holds the namespace URI,
// never the prefix.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr
	Text    string // own character data only
	Nodes   []Node

	content string // all descendant text in document order
}

func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	n.Attrs = start.Attr
	var all, own strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var c Node
			if err := c.UnmarshalXML(d, t); err != nil {
				return err
			}
			all.WriteString(c.content)
			n.Nodes = append(n.Nodes, c)
		case xml.CharData:
			own.Write(t)
			all.Write(t)
		case xml.EndElement:
			n.Text = own.String()
			n.content = all.String()
			return nil
		}
	}
}

func Parse(data []byte) (*Node, error) {
	var n Node
	if err := xml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Find returns the first element named local in document order, n included.
func (n *Node) Find(local string) *Node {
	if n.XMLName.Local == local {
		return n
	}
	for i := range n.Nodes {
		if m := n.Nodes[i].Find(local); m != nil {
			return m
		}
	}
	return nil
}

// FindAll collects every element named local without descending into matches.
func (n *Node) FindAll(local string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.XMLName.Local == local {
			out = append(out, cur)
			return
		}
		for i := range cur.Nodes {
			walk(&cur.Nodes[i])
		}
	}
	walk(n)
	return out
}

// Content is the element's text content: every descendant text node in
// document order, untrimmed.
func (n *Node) Content() string { return n.content }

// ChildText is the content of the first descendant named local, or "".
func (n *Node) ChildText(local string) string {
	if c := n.Find(local); c != nil {
		return c.Content()
	}
	return ""
}

type Fault struct {
	Code   string
	String string
}

func (f *Fault) Error() string {
	if f.String == "" {
		return "soap fault " + f.Code
	}
	return "soap fault " + f.Code + ": " + f.String
}

func isEnvelopeNS(space string) bool {
	return space == EnvelopeNS11 || space == EnvelopeNS12 || space == ""
}

// Fault returns the first Fault element bound to a SOAP envelope namespace
// (or to none), whatever prefix the server chose.
func (n *Node) Fault() *Fault {
	var hit *Node
	var walk func(*Node) bool
	walk = func(cur *Node) bool {
		if cur.XMLName.Local == "Fault" && isEnvelopeNS(cur.XMLName.Space) {
			hit = cur
			return true
		}
		for i := range cur.Nodes {
			if walk(&cur.Nodes[i]) {
				return true
			}
		}
		return false
	}
	if !walk(n) {
		return nil
	}
	f := &Fault{Code: hit.ChildText("faultcode"), String: hit.ChildText("faultstring")}
	// SOAP 1.2 carries Code/Value and Reason/Text instead
	if f.Code == "" {
		f.Code = hit.ChildText("Value")
	}
	if f.String == "" {
		f.String = hit.ChildText("Text")
	}
	return f
}

// mapReservation reads child text by tag name; missing tags map to "".
func mapReservation(n *Node) domain.Reservation {
	return domain.Reservation{
		ID:          n.ChildText("id"),
		ClientName:  domain.JoinClientName(n.ChildText("prenom"), n.ChildText("nom")),
		Email:       n.ChildText("email"),
		Phone:       n.ChildText("telephone"),
		RoomType:    domain.RoomType(n.ChildText("type")),
		StartDate:   n.ChildText("dateDebut"),
		EndDate:     n.ChildText("dateFin"),
		Preferences: n.ChildText("preferences"),
	}
}
