package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/radiodial/internal/pkg/metrics"
)

const (
	requestTimeout       = 35 * time.Second // one upstream call plus headroom
	defaultNearbyTimeout = 2 * time.Minute
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	nearbyTimeout := deps.NearbyTimeout
	if nearbyTimeout <= 0 {
		nearbyTimeout = defaultNearbyTimeout
	}

	v1 := app.Group("/v1")
	v1.Get("/places", timeout.NewWithContext(ListPlacesHandler(deps), requestTimeout))
	v1.Get("/places/:id", timeout.NewWithContext(GetPlaceHandler(deps), requestTimeout))
	v1.Get("/places/:id/channels", timeout.NewWithContext(PlaceChannelsHandler(deps), requestTimeout))
	v1.Get("/channels/:id", timeout.NewWithContext(GetChannelHandler(deps), requestTimeout))
	v1.Get("/channels/:id/stream", timeout.NewWithContext(StreamURLHandler(deps), requestTimeout))
	v1.Get("/search", timeout.NewWithContext(SearchHandler(deps), requestTimeout))
	v1.Get("/geo", timeout.NewWithContext(GeolocationHandler(deps), requestTimeout))
	v1.Get("/nearby", timeout.NewWithContext(NearbyHandler(deps), nearbyTimeout))
	v1.Get("/nearby/auto", timeout.NewWithContext(NearbyAutoHandler(deps), nearbyTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	specPath := deps.SpecPath
	if specPath == "" {
		specPath = DefaultSpecPath
	}
	SetupDocs(app, specPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
