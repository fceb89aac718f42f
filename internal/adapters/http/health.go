package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 3 * time.Second

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// probe checks one optional dependency. A nil probe means the dependency
// is not configured, which does not affect readiness.
type probe func(ctx context.Context) error

func (d *Dependencies) probes() map[string]probe {
	probes := map[string]probe{"cache": nil, "nats": nil}
	if d.Cache != nil {
		probes["cache"] = d.Cache.Ping
	}
	if d.NATS != nil {
		nc := d.NATS
		probes["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}
	return probes
}

// ReadyHandler runs every configured probe and answers 503 if any fails.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string)
		ready := true
		for name, p := range deps.probes() {
			switch err := runProbe(ctx, p); {
			case p == nil:
				checks[name] = "not configured"
			case err != nil:
				checks[name] = "error: " + err.Error()
				ready = false
			default:
				checks[name] = "ok"
			}
		}

		status, code := "ready", fiber.StatusOK
		if !ready {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}

func runProbe(ctx context.Context, p probe) error {
	if p == nil {
		return nil
	}
	return p(ctx)
}
