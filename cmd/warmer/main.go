// Command warmer pre-fills the shared cache used by the API.
//
//	warmer [top] [interval]
//
// top is the number of largest places whose channel listings are refreshed
// (default 200, 0 = all). interval is a Go duration; when set the warmer
// repeats until interrupted, otherwise it runs once.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/samirrijal/radiodial/internal/adapters/radiogarden"
	"github.com/samirrijal/radiodial/internal/adapters/valkey"
	"github.com/samirrijal/radiodial/internal/core/usecases"
	"github.com/samirrijal/radiodial/internal/pkg/config"
	"github.com/samirrijal/radiodial/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("radiodial-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	top := 200
	if len(os.Args) > 1 {
		if top, err = strconv.Atoi(os.Args[1]); err != nil {
			log.Fatalf("top: %v", err)
		}
	}
	var interval time.Duration
	if len(os.Args) > 2 {
		if interval, err = time.ParseDuration(os.Args[2]); err != nil {
			log.Fatalf("interval: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	transport := radiogarden.NewTransport(cfg.Directory.BaseURL,
		radiogarden.WithUserAgent(cfg.Directory.UserAgent),
		radiogarden.WithTimeout(time.Duration(cfg.Directory.Timeout)*time.Second),
	)
	client := radiogarden.NewClient(transport, transport.BaseURL())
	svc := usecases.NewDirectoryService(client, cache, usecases.CacheTTL{
		Places:   cfg.Cache.PlacesTTL,
		Channels: cfg.Cache.ChannelTTL,
	})

	// Stay polite to the directory: at most 4 listings in flight.
	concurrency := min(max(cfg.Ranker.FetchConcurrency, 1), 4)

	warm := func() {
		start := time.Now()
		stats, err := svc.Warm(ctx, top, concurrency)
		if err != nil {
			slog.Error("warm failed", "error", err)
			return
		}
		slog.Info("warm complete",
			"places", stats.Places,
			"warmed", stats.Warmed,
			"failed", stats.Failed,
			"took", time.Since(start).String(),
		)
	}

	slog.Info("radiodial cache warmer", "directory", transport.BaseURL(), "top", top, "interval", interval.String())
	warm()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			warm()
		case <-ctx.Done():
			slog.Info("shutting down cache warmer")
			return
		}
	}
}
