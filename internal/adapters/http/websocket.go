package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/pkg/dispatch"
	"github.com/samirrijal/radiodial/internal/pkg/metrics"
)

const (
	wsPingInterval = 30 * time.Second
	wsQueueSize    = 64
)

// wsRequest is sent by the client.
//
//	{"action":"nearby","id":"1","lat":52.52,"lon":13.40,"count":5}
//	{"action":"nearby","id":"2","auto":true}
//	{"action":"subscribe"} / {"action":"unsubscribe"}
type wsRequest struct {
	Action string   `json:"action"`
	ID     string   `json:"id,omitempty"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
	Count  *int     `json:"count,omitempty"`
	Auto   bool     `json:"auto,omitempty"`
}

// wsReply is sent to the client. Type is one of nearby, ranking, status, error.
type wsReply struct {
	Type     string                                  `json:"type"`
	ID       string                                  `json:"id,omitempty"`
	Response *domain.Response[domain.NearbyChannels] `json:"response,omitempty"`
	Event    *domain.RankingEvent                    `json:"event,omitempty"`
	Status   string                                  `json:"status,omitempty"`
	Error    string                                  `json:"error,omitempty"`
}

// WebSocketHandler answers nearby requests asynchronously and, on request,
// relays ranking events published by any instance.
//
// Every write to the socket runs on the connection's dispatch.Loop, so
// ranking results, relayed events and pings never interleave.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		logger := slog.Default().With("remote_addr", c.RemoteAddr().String())
		logger.Debug("ws client connected")

		ctx, cancel := context.WithCancel(context.Background())
		loop := dispatch.NewLoop(wsQueueSize)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			loop.Run(ctx)
		}()
		defer func() {
			cancel()
			loop.Close()
			<-writerDone
			_ = c.Close()
			logger.Debug("ws client disconnected")
		}()

		// write must only run on the loop; send posts it there.
		write := func(r wsReply) {
			data, err := json.Marshal(r)
			if err != nil {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				cancel()
			}
		}
		send := func(r wsReply) {
			loop.Post(func() { write(r) })
		}

		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					loop.Post(func() {
						if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
							cancel()
						}
					})
				case <-ctx.Done():
					return
				}
			}
		}()

		var stopRelay context.CancelFunc

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				send(wsReply{Type: "error", Error: "invalid JSON"})
				continue
			}

			switch req.Action {
			case "nearby":
				startNearby(ctx, deps, loop, req, send, write)

			case "subscribe":
				if deps.Events == nil {
					send(wsReply{Type: "error", Error: "event relay not configured"})
					continue
				}
				if stopRelay != nil {
					send(wsReply{Type: "status", Status: "already subscribed"})
					continue
				}
				relayCtx, stop := context.WithCancel(ctx)
				err := deps.Events.SubscribeRankings(relayCtx, func(_ context.Context, e *domain.RankingEvent) error {
					send(wsReply{Type: "ranking", Event: e})
					return nil
				})
				if err != nil {
					stop()
					send(wsReply{Type: "error", Error: "subscribe failed: " + err.Error()})
					continue
				}
				stopRelay = stop
				send(wsReply{Type: "status", Status: "subscribed"})

			case "unsubscribe":
				if stopRelay == nil {
					send(wsReply{Type: "error", Error: "not subscribed"})
					continue
				}
				stopRelay()
				stopRelay = nil
				send(wsReply{Type: "status", Status: "unsubscribed"})

			default:
				send(wsReply{Type: "error", ID: req.ID, Error: "unknown action: " + req.Action})
			}
		}
	}
}

// startNearby validates a nearby request and starts the ranking. Validation
// errors go out through send; the envelope is handed to write on q once the
// ranking completes.
func startNearby(ctx context.Context, deps *Dependencies, q dispatch.Queue, req wsRequest, send, write func(wsReply)) {
	count := defaultNearbyCount
	if req.Count != nil {
		count = *req.Count
	}
	if count > maxNearbyCount {
		send(wsReply{Type: "error", ID: req.ID, Error: errCountTooLarge.Error()})
		return
	}

	deliver := func(resp domain.Response[domain.NearbyChannels]) {
		write(wsReply{Type: "nearby", ID: req.ID, Response: &resp})
	}

	if req.Auto {
		deps.Nearby.RankNearbyChannelsByGeolocationAsync(ctx, count, q, deliver)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		send(wsReply{Type: "error", ID: req.ID, Error: "lat and lon are required unless auto is set"})
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
		send(wsReply{Type: "error", ID: req.ID, Error: "lat or lon out of range"})
		return
	}

	target := domain.Coordinate{Latitude: *req.Lat, Longitude: *req.Lon}
	deps.Nearby.RankNearbyChannelsAsync(ctx, target, count, q, deliver)
}
