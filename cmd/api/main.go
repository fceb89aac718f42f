package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/radiodial/internal/adapters/http"
	natsadapter "github.com/samirrijal/radiodial/internal/adapters/nats"
	"github.com/samirrijal/radiodial/internal/adapters/radiogarden"
	"github.com/samirrijal/radiodial/internal/adapters/valkey"
	"github.com/samirrijal/radiodial/internal/core/ports"
	"github.com/samirrijal/radiodial/internal/core/usecases"
	"github.com/samirrijal/radiodial/internal/pkg/config"
	"github.com/samirrijal/radiodial/internal/pkg/logging"
	"github.com/samirrijal/radiodial/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("radiodial-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Directory client
	transport := radiogarden.NewTransport(cfg.Directory.BaseURL,
		radiogarden.WithUserAgent(cfg.Directory.UserAgent),
		radiogarden.WithTimeout(time.Duration(cfg.Directory.Timeout)*time.Second),
	)
	var directory ports.Directory = radiogarden.NewClient(transport, transport.BaseURL())

	deps := &http.Dependencies{
		NearbyTimeout: time.Duration(cfg.Server.NearbyTimeout) * time.Second,
	}

	// Cache
	if cfg.Cache.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, serving uncached", "error", err)
		} else {
			defer cache.Close()
			deps.Cache = cache
			directory = usecases.NewDirectoryService(directory, cache, usecases.CacheTTL{
				Places:   cfg.Cache.PlacesTTL,
				Channels: cfg.Cache.ChannelTTL,
			})
		}
	}
	deps.Directory = directory

	nearbyOpts := []usecases.NearbyOption{
		usecases.WithFetchConcurrency(cfg.Ranker.FetchConcurrency),
		usecases.WithLogger(slog.Default().With("component", "ranker")),
	}

	// NATS
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats publisher unavailable", "error", err)
		} else {
			defer pub.Close()
			nearbyOpts = append(nearbyOpts, usecases.WithPublisher(pub))
		}

		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws relay unavailable", "error", err)
		} else {
			defer sub.Close()
			deps.Events = sub
			deps.NATS = sub.Conn()
		}
	}

	deps.Nearby = usecases.NewNearbyService(directory, nearbyOpts...)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "radiodial API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "directory", transport.BaseURL())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
