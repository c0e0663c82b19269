package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	SOAPEndpoint string
	SOAPRPS      int
	SOAPTimeout  time.Duration
	SOAPAddr     string

	MySQLDSN string

	SessionBackend  string // memory | redis
	SessionTTL      time.Duration
	SessionCacheMax int64
	RedisAddr       string
	RedisDB         int
	RedisPass       string

	ImportWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		HTTPAddr:        env("HTTP_ADDR", ":3001"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		SOAPEndpoint:    env("SOAP_ENDPOINT", "http://localhost:8080/services/ws"),
		SOAPRPS:         atoi("SOAP_RPS", 0),
		SOAPTimeout:     time.Duration(atoi("SOAP_TIMEOUT_SECONDS", 20)) * time.Second,
		SOAPAddr:        env("SOAP_ADDR", ":8080"),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		SessionBackend:  env("SESSION_BACKEND", "memory"),
		SessionTTL:      time.Duration(atoi("SESSION_TTL_SECONDS", 3600)) * time.Second,
		SessionCacheMax: int64(atoi("SESSION_CACHE_MAX", 10000)),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		ImportWorkers:   atoi("IMPORT_WORKERS", 4),
	}
	if c.SessionBackend != "memory" && c.SessionBackend != "redis" {
		log.Warn().Str("backend", c.SessionBackend).Msg("unknown SESSION_BACKEND, using memory")
		c.SessionBackend = "memory"
	}
	if c.ImportWorkers < 1 {
		log.Warn().Int("workers", c.ImportWorkers).Msg("IMPORT_WORKERS below 1, using 1")
		c.ImportWorkers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
