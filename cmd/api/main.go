package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "hotel_reservations/internal/adapters/http_server"
	"hotel_reservations/internal/adapters/observability"
	redisad "hotel_reservations/internal/adapters/redis"
	"hotel_reservations/internal/adapters/ristretto"
	"hotel_reservations/internal/adapters/soap"
	"hotel_reservations/internal/app"
	"hotel_reservations/internal/domain"
	"hotel_reservations/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := soap.New(cfg.SOAPEndpoint, cfg.SOAPTimeout, cfg.SOAPRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SOAP client")
	}
	log.Info().Str("endpoint", cfg.SOAPEndpoint).Dur("timeout", cfg.SOAPTimeout).Msg("soap gateway ready")

	// one submit makes two gateway calls
	reqTimeout := 2*cfg.SOAPTimeout + 5*time.Second
	sessions := sessionStore(ctx, cfg, 2*reqTimeout)

	// http
	reg := observability.InitRegistry()
	srv := server.New(reqTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Ctl:        app.NewReservationController(gw),
		Val:        app.NewFormValidator(),
		Sessions:   sessions,
		SessionTTL: cfg.SessionTTL,
	})

	servers := []*http.Server{{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}}
	if ms := observability.MetricsServer(cfg.MetricsAddr, reg); ms != nil {
		servers = append(servers, ms)
	}

	if err := run(ctx, servers); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
	log.Info().Msg("api stopped")
}

func sessionStore(ctx context.Context, cfg shared.Config, lockTTL time.Duration) domain.SessionStore {
	if cfg.SessionBackend == "redis" {
		s := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.SessionTTL).WithLockTTL(lockTTL)
		if err := s.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis session store ready")
		return s
	}
	s, err := ristretto.New(cfg.SessionCacheMax, cfg.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session cache")
	}
	log.Info().Int64("max_sessions", cfg.SessionCacheMax).Msg("in-process session store ready")
	return s
}

// run serves every server until ctx ends, then shuts them all down.
func run(ctx context.Context, servers []*http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.Info().Str("addr", s.Addr).Msg("listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Str("addr", s.Addr).Msg("shutdown failed")
			}
		}
		return nil
	})
	return g.Wait()
}
