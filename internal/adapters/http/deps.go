package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/radiodial/internal/adapters/valkey"
	"github.com/samirrijal/radiodial/internal/core/ports"
	"github.com/samirrijal/radiodial/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Directory ports.Directory
	Nearby    *usecases.NearbyService
	Events    ports.EventSubscriber // nil disables the ws event relay
	NATS      *nats.Conn
	Cache     *valkey.Cache

	// NearbyTimeout bounds /v1/nearby requests. A ranking walks many
	// places, so it gets longer than the other routes.
	NearbyTimeout time.Duration

	SpecPath string // OpenAPI document served under /docs; empty means DefaultSpecPath
}
