package soapserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotel_reservations/internal/adapters/soap"
	"hotel_reservations/internal/adapters/soapserver"
	"hotel_reservations/internal/domain"
	"hotel_reservations/internal/storage/memory"
)

func post(t *testing.T, h http.Handler, envelope string) (int, *soap.Node) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, soapserver.Path, strings.NewReader(envelope))
	req.Header.Set("Content-Type", "text/xml")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	body, _ := io.ReadAll(rr.Body)
	doc, err := soap.Parse(body)
	if err != nil {
		t.Fatalf("response is not xml: %v\n%s", err, body)
	}
	return rr.Code, doc
}

func wrap(op string) string {
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:hot="http://controller.hotelgestion.example.com/">
  <soapenv:Header/>
  <soapenv:Body>` + op + `</soapenv:Body>
</soapenv:Envelope>`
}

const createBody = `<hot:createReservation>
  <dateDebut>2025-01-10</dateDebut><dateFin>2025-01-12</dateFin>
  <client><nom>Dupont</nom><prenom>Jean</prenom><email>j@example.com</email><telephone>0102</telephone></client>
  <chambre><type>DOUBLE</type><disponible>true</disponible></chambre>
</hot:createReservation>`

func TestHandler_CreateAndGet(t *testing.T) {
	repo := memory.New()
	h := soapserver.New(repo)

	code, doc := post(t, h, wrap(createBody))
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	ret := doc.Find("return")
	if ret == nil || ret.ChildText("id") != "1" || ret.ChildText("nom") != "Dupont" {
		t.Fatalf("unexpected create response")
	}

	b, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Guest.FirstName != "Jean" || b.Room.Type != domain.RoomDouble || domain.FormatDate(b.EndDate) != "2025-01-12" || !b.Room.Available {
		t.Fatalf("unexpected stored booking %+v", b)
	}

	_, doc = post(t, h, wrap(`<hot:getReservationById><id>1</id></hot:getReservationById>`))
	if got := doc.Find("return"); got == nil || got.ChildText("dateDebut") != "2025-01-10" {
		t.Fatalf("getReservationById did not return the booking")
	}

	_, doc = post(t, h, wrap(`<hot:getReservationById><id>2</id></hot:getReservationById>`))
	if doc.Find("return") != nil {
		t.Fatalf("missing id should produce no return element")
	}
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	repo := memory.New()
	h := soapserver.New(repo)
	post(t, h, wrap(createBody))

	update := strings.Replace(strings.Replace(createBody, "createReservation", "updateReservation", 2),
		"<dateDebut>", "<id>1</id><dateDebut>", 1)
	update = strings.Replace(update, "DOUBLE", "SUITE", 1)
	code, doc := post(t, h, wrap(update))
	if code != http.StatusOK || doc.ChildText("return") != "true" {
		t.Fatalf("update: status %d", code)
	}
	b, _ := repo.Get(context.Background(), 1)
	if b.Room.Type != domain.RoomSuite {
		t.Fatalf("update not stored: %+v", b)
	}

	// unknown id -> fault
	missing := strings.Replace(update, "<id>1</id>", "<id>42</id>", 1)
	code, doc = post(t, h, wrap(missing))
	if f := doc.Fault(); code != http.StatusInternalServerError || f == nil || f.Code != "soap:Client" {
		t.Fatalf("expected client fault for unknown id, status %d", code)
	}

	_, doc = post(t, h, wrap(`<hot:deleteReservation><id>1</id></hot:deleteReservation>`))
	if doc.ChildText("return") != "true" {
		t.Fatalf("first delete should answer true")
	}
	_, doc = post(t, h, wrap(`<hot:deleteReservation><id>1</id></hot:deleteReservation>`))
	if doc.ChildText("return") != "false" {
		t.Fatalf("second delete should answer false")
	}
}

func TestHandler_ListOrder(t *testing.T) {
	h := soapserver.New(memory.New())
	post(t, h, wrap(createBody))
	post(t, h, wrap(strings.Replace(createBody, "Jean", "Marie", 1)))

	_, doc := post(t, h, wrap(`<hot:getAllReservations/>`))
	rets := doc.FindAll("return")
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if rets[0].ChildText("prenom") != "Jean" || rets[1].ChildText("prenom") != "Marie" {
		t.Fatalf("unexpected order")
	}
}

func TestHandler_ClientFaults(t *testing.T) {
	h := soapserver.New(memory.New())
	cases := map[string]string{
		"unknown op":      wrap(`<hot:dropTables/>`),
		"bad id":          wrap(`<hot:deleteReservation><id>abc</id></hot:deleteReservation>`),
		"bad date":        wrap(strings.Replace(createBody, "2025-01-10", "10/01/2025", 1)),
		"bad room":        wrap(strings.Replace(createBody, "DOUBLE", "PENTHOUSE", 1)),
		"empty body":      wrap(``),
		"not an envelope": `<<<`,
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			code, doc := post(t, h, env)
			if code != http.StatusInternalServerError {
				t.Fatalf("status %d", code)
			}
			f := doc.Fault()
			if f == nil || f.Code != "soap:Client" {
				t.Fatalf("expected client fault, got %+v", f)
			}
		})
	}
}

func TestHandler_RejectsGet(t *testing.T) {
	rr := httptest.NewRecorder()
	soapserver.New(memory.New()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, soapserver.Path, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestHandler_Stats(t *testing.T) {
	h := soapserver.New(memory.New())

	_, doc := post(t, h, wrap(`<hot:getReservationStats/>`))
	if doc.ChildText("count") != "0" || doc.ChildText("avgDuration") != "0" {
		t.Fatalf("empty stats: count=%q avg=%q", doc.ChildText("count"), doc.ChildText("avgDuration"))
	}

	// 2 nights, 5 nights, and one without an end date
	post(t, h, wrap(createBody))
	post(t, h, wrap(strings.Replace(createBody, "2025-01-12", "2025-01-15", 1)))
	post(t, h, wrap(strings.Replace(createBody, "<dateFin>2025-01-12</dateFin>", "", 1)))

	code, doc := post(t, h, wrap(`<hot:getReservationStats/>`))
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if doc.Find("getReservationStatsResponse") == nil {
		t.Fatalf("missing response element")
	}
	if doc.ChildText("count") != "3" || doc.ChildText("avgDuration") != "3.5" {
		t.Fatalf("stats: count=%q avg=%q", doc.ChildText("count"), doc.ChildText("avgDuration"))
	}
}
