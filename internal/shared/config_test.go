package shared_test

import (
	"testing"
	"time"

	"hotel_reservations/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	c := shared.Load()
	if c.HTTPAddr != ":3001" || c.SOAPEndpoint != "http://localhost:8080/services/ws" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.SOAPTimeout != 20*time.Second || c.SessionTTL != time.Hour || c.SessionBackend != "memory" {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SOAP_ENDPOINT", "http://soap:9000/ws")
	t.Setenv("SOAP_RPS", "5")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("IMPORT_WORKERS", "16")

	c := shared.Load()
	if c.SOAPEndpoint != "http://soap:9000/ws" || c.SOAPRPS != 5 || c.SessionBackend != "redis" {
		t.Fatalf("overrides not applied %+v", c)
	}
	if c.RedisDB != 0 || c.ImportWorkers != 16 {
		t.Fatalf("unexpected %+v", c)
	}
}

func TestLoad_UnknownBackendFallsBack(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "memcached")
	if c := shared.Load(); c.SessionBackend != "memory" {
		t.Fatalf("got %q", c.SessionBackend)
	}
}

func TestLoad_ImportWorkersAtLeastOne(t *testing.T) {
	for _, v := range []string{"0", "-3"} {
		t.Setenv("IMPORT_WORKERS", v)
		if c := shared.Load(); c.ImportWorkers != 1 {
			t.Fatalf("IMPORT_WORKERS=%s: got %d", v, c.ImportWorkers)
		}
	}
}
