package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/core/ports"
)

// Subscriber implements ports.EventSubscriber. Every subscriber receives
// every event, which is what a WebSocket relay needs.
type Subscriber struct {
	conn *nats.Conn
}

var _ ports.EventSubscriber = (*Subscriber)(nil)

// NewSubscriber connects to NATS.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn}, nil
}

// SubscribeRankings delivers ranking events to handler until ctx ends.
// Events that fail to decode are dropped.
func (s *Subscriber) SubscribeRankings(ctx context.Context, handler func(ctx context.Context, event *domain.RankingEvent) error) error {
	sub, err := s.conn.Subscribe(RankingsSubjects, func(msg *nats.Msg) {
		var event domain.RankingEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Debug("dropping malformed ranking event", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, &event); err != nil {
			slog.Debug("ranking event handler failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

// Conn exposes the underlying connection for health checks.
func (s *Subscriber) Conn() *nats.Conn { return s.conn }

// Close drains and closes the connection.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
