package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/criscriscristof/pagestream/pkg/config"
	"github.com/criscriscristof/pagestream/pkg/export"
	"github.com/criscriscristof/pagestream/pkg/fetch"
	"github.com/criscriscristof/pagestream/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := getEnv("PAGESTREAM_CONFIG", "pagestream.yaml")
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	os.Exit(run(configPath))
}

func run(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		log.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return 1
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	})

	// SIGINT/SIGTERM cancel the run: open sinks are closed cleanly and no
	// new requests are issued after the signal is observed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional metrics endpoint
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info().Str("addr", addr).Msg("Serving metrics")
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Warn().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	fetchCfg := fetch.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
		CacheTTL:  cfg.Cache.TTL,
	}

	// Optional Redis page cache
	redisAddr := getEnv("REDIS_URL", cfg.Cache.RedisAddr)
	if redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", redisAddr).Msg("Redis unreachable, page cache disabled")
		} else {
			log.Info().Str("addr", redisAddr).Msg("Page cache enabled")
			fetchCfg.Redis = redisClient
		}
		defer redisClient.Close()
	}

	client, err := fetch.New(fetchCfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create fetch client")
		return 1
	}

	jobs, err := cfg.ExportJobs()
	if err != nil {
		log.Error().Err(err).Msg("Invalid job configuration")
		return 1
	}

	exporter := export.New(client)
	allStats, err := exporter.RunAll(ctx, jobs)

	for name, stats := range allStats {
		log.Info().
			Str("job", name).
			Int("pages_ok", stats.PagesOK).
			Int("pages_failed", stats.PagesFailed).
			Int("rows", stats.Rows).
			Msg("Job finished")
	}

	if err != nil {
		log.Error().Err(err).Msg("Export failed")
		return 1
	}

	return 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
