package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/meostore/showcase-proxy/internal/server"
	"github.com/meostore/showcase-proxy/pkg/cache"
	"github.com/meostore/showcase-proxy/pkg/enka"
	"github.com/meostore/showcase-proxy/pkg/fetch"
	"github.com/meostore/showcase-proxy/pkg/idv"
	"github.com/meostore/showcase-proxy/pkg/keyspace"
	"github.com/meostore/showcase-proxy/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Configuration from environment
	port := getEnv("PORT", "8080")
	backend := getEnv("CACHE_BACKEND", "memory")
	userAgent := getEnv("USER_AGENT", "showcase-proxy/1.0 (+https://meostore.shop)")
	origins := splitList(getEnv("ALLOWED_ORIGINS",
		"http://127.0.0.1:5500,http://127.0.0.1:5501,https://meostore.shop"))

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
		Output: os.Stderr,
	})

	// Cache store
	var store cache.Store
	var redisClient *redis.Client
	switch backend {
	case "memory":
		store = cache.NewMemory()
	case "redis":
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Fatal().Msg("REDIS_URL is required when CACHE_BACKEND=redis")
		}
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", redisURL).Msg("Connected to Redis")
		store = cache.NewRedis(redisClient)
	default:
		logger.Fatal().Str("backend", backend).Msg("Unknown CACHE_BACKEND (want memory or redis)")
	}

	// Upstream clients: constructed once, closed at shutdown.
	enkaClient, err := enka.New(enka.DefaultConfig(userAgent))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Enka client")
	}
	idvClient, err := idv.New(idv.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Identity V client")
	}

	coalescer := fetch.New(store, map[keyspace.Game]fetch.Loader{
		keyspace.GenshinImpact: func(ctx context.Context, id int64) (json.RawMessage, error) {
			return enkaClient.FetchShowcase(ctx, keyspace.GenshinImpact, id)
		},
		keyspace.StarRail: func(ctx context.Context, id int64) (json.RawMessage, error) {
			return enkaClient.FetchShowcase(ctx, keyspace.StarRail, id)
		},
		keyspace.ZenlessZoneZero: func(ctx context.Context, id int64) (json.RawMessage, error) {
			return enkaClient.FetchShowcase(ctx, keyspace.ZenlessZoneZero, id)
		},
		keyspace.IdentityV: func(ctx context.Context, id int64) (json.RawMessage, error) {
			return idvClient.LookupRole(ctx, id)
		},
	}, fetch.DefaultRetryConfig())

	srv := server.New(coalescer, server.Config{
		AllowedOrigins: origins,
	})

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Warm-up runs in the background; the server accepts requests meanwhile.
	if targets := parseWarmTargets(os.Getenv("PRELOAD_UIDS"), logger); len(targets) > 0 {
		go coalescer.Warm(context.Background(), targets)
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()
	logger.Info().
		Str("port", port).
		Str("cache_backend", backend).
		Str("user_agent", userAgent).
		Msg("Showcase proxy listening")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Graceful shutdown failed")
	}

	enkaClient.Close()
	idvClient.Close()
	if redisClient != nil {
		redisClient.Close()
	}
}

// parseWarmTargets classifies a comma-separated UID list into warm-up
// targets. Unclassifiable entries are skipped with a warning.
func parseWarmTargets(raw string, logger zerolog.Logger) []fetch.WarmTarget {
	var targets []fetch.WarmTarget
	for _, field := range splitList(raw) {
		uid, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			logger.Warn().Str("uid", field).Msg("Skipping non-numeric preload UID")
			continue
		}
		game, ok := keyspace.DetectGame(uid)
		if !ok {
			logger.Warn().Int64("uid", uid).Msg("Skipping unclassifiable preload UID")
			continue
		}
		targets = append(targets, fetch.WarmTarget{Game: game, ID: uid})
	}
	return targets
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
