package main

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_reservations/internal/adapters/observability"
	"hotel_reservations/internal/adapters/soap"
	"hotel_reservations/internal/app"
	"hotel_reservations/internal/domain"
	"hotel_reservations/internal/shared"
)

// importer pushes the reservations listed in a YAML file through the SOAP
// gateway. Usage: importer <file.yaml> (or IMPORT_FILE).
func main() {
	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "importer")

	path := os.Getenv("IMPORT_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		log.Fatal().Msg("usage: importer <file.yaml>")
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("open import file failed")
	}
	rows, err := app.DecodeImportFile(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("decode import file failed")
	}

	gw, err := soap.New(cfg.SOAPEndpoint, cfg.SOAPTimeout, cfg.SOAPRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SOAP client")
	}
	imp := app.NewImportService(gw, app.NewFormValidator())

	log.Info().
		Str("endpoint", cfg.SOAPEndpoint).
		Str("file", path).
		Int("rows", len(rows)).
		Int("workers", cfg.ImportWorkers).
		Msg("importer starting")

	sem := semaphore.NewWeighted(int64(cfg.ImportWorkers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for i, r := range rows {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(line int, r domain.Reservation) {
			defer wg.Done()
			defer sem.Release(1)

			created, err := imp.Import(ctx, r)
			if err != nil {
				failed.Add(1)
				log.Warn().Int("row", line).Str("client", r.ClientName).Err(err).Msg("import failed")
				return
			}
			log.Info().Int("row", line).Str("id", created.ID).Msg("import ok")
		}(i+1, r)
	}

	wg.Wait()
	log.Info().Int("rows", len(rows)).Int64("failed", failed.Load()).Msg("import completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
