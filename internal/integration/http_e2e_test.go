//go:build integration || !unit

package integration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	server "hotel_reservations/internal/adapters/http_server"
	redisad "hotel_reservations/internal/adapters/redis"
	"hotel_reservations/internal/adapters/soap"
	"hotel_reservations/internal/adapters/soapserver"
	"hotel_reservations/internal/app"
	"hotel_reservations/internal/domain"
	mysqlrepo "hotel_reservations/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=hotel"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotel?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

// browser drives the front-end API the way the page does: one cookie jar,
// form patches, then a submit.
type browser struct {
	t    *testing.T
	base string
	hc   *http.Client
}

func (b *browser) call(method, path, body string) domain.ViewState {
	b.t.Helper()
	req, _ := http.NewRequest(method, b.base+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := b.hc.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		b.t.Fatalf("%s %s: status %d", method, path, res.StatusCode)
	}
	var v domain.ViewState
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		b.t.Fatalf("decode: %v", err)
	}
	return v
}

func (b *browser) fill(fields map[string]string) {
	for k, v := range fields {
		body, _ := json.Marshal(map[string]string{"name": k, "value": v})
		b.call(http.MethodPatch, "/v1/form", string(body))
	}
}

func TestE2E_ReservationsThroughSOAPAndMySQL(t *testing.T) {
	db := startMySQL(t)

	soapSrv := httptest.NewServer(soapserver.New(mysqlrepo.New(db)))
	t.Cleanup(soapSrv.Close)

	gw, err := soap.New(soapSrv.URL+soapserver.Path, 5*time.Second, 0)
	if err != nil {
		t.Fatalf("soap.New: %v", err)
	}

	mr := miniredis.RunT(t)
	sessions := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	api := server.New(15 * time.Second)
	api.MountHandlers(&server.Handlers{
		Ctl:        app.NewReservationController(gw),
		Val:        app.NewFormValidator(),
		Sessions:   sessions,
		SessionTTL: time.Hour,
	})
	apiSrv := httptest.NewServer(api.Mux())
	t.Cleanup(apiSrv.Close)

	jar, _ := cookiejar.New(nil)
	b := &browser{t: t, base: apiSrv.URL, hc: &http.Client{Jar: jar}}

	if v := b.call(http.MethodPost, "/v1/reservations/load", ""); len(v.Reservations) != 0 || v.LastError != "" {
		t.Fatalf("expected empty list, got %+v", v)
	}

	b.fill(map[string]string{
		"clientName":  "Jean Paul Dupont",
		"email":       "jean@example.com",
		"phone":       "0600000000",
		"roomType":    "SUITE",
		"startDate":   "2025-07-01",
		"endDate":     "2025-07-04",
		"preferences": "vue mer",
	})
	v := b.call(http.MethodPost, "/v1/reservations", "")
	if v.LastError != "" || len(v.Reservations) != 1 {
		t.Fatalf("create failed: %+v", v)
	}
	got := v.Reservations[0]
	if got.ClientName != "Jean Paul Dupont" || got.RoomType != domain.RoomSuite || got.EndDate != "2025-07-04" || got.Preferences != "vue mer" {
		t.Fatalf("round trip lost fields: %+v", got)
	}

	// name split lands in the right columns
	var prenom, nom string
	if err := db.QueryRow(`SELECT client_prenom, client_nom FROM reservations WHERE id = ?`, got.ID).Scan(&prenom, &nom); err != nil {
		t.Fatalf("query: %v", err)
	}
	if prenom != "Jean" || nom != "Paul Dupont" {
		t.Fatalf("split stored as %q / %q", prenom, nom)
	}

	b.call(http.MethodGet, "/v1/reservations/"+got.ID, "")
	b.fill(map[string]string{"roomType": "DOUBLE"})
	v = b.call(http.MethodPut, "/v1/reservations/"+got.ID, "")
	if v.LastError != "" || v.Reservations[0].RoomType != domain.RoomDouble {
		t.Fatalf("update failed: %+v", v)
	}

	// updating a vanished row surfaces the static update message
	if _, err := db.Exec(`DELETE FROM reservations WHERE id = ?`, got.ID); err != nil {
		t.Fatalf("delete row: %v", err)
	}
	v = b.call(http.MethodPut, "/v1/reservations/"+got.ID, "")
	if v.LastError != domain.GatewayMessage(domain.OpUpdate) {
		t.Fatalf("expected update error, got %+v", v)
	}

	// delete of a missing row answers false
	v = b.call(http.MethodDelete, "/v1/reservations/"+got.ID, "")
	if v.LastError != domain.GatewayMessage(domain.OpDelete) {
		t.Fatalf("expected delete error, got %+v", v)
	}

	var sessionKeys []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "session:") {
			sessionKeys = append(sessionKeys, k)
		}
	}
	if len(sessionKeys) != 1 {
		t.Fatalf("expected one session key, got %v", mr.Keys())
	}
}
