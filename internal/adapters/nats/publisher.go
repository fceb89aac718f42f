package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/core/ports"
)

const (
	// RankingsStream holds ranking events for replay and late consumers.
	RankingsStream = "RADIODIAL_RANKINGS"
	// RankingsSubjects matches every ranking event subject.
	RankingsSubjects = "radiodial.rankings.>"
)

// rankingSubject buckets events by whole-degree latitude so relays can
// subscribe to a region, e.g. radiodial.rankings.43.>
func rankingSubject(e *domain.RankingEvent) string {
	return fmt.Sprintf("radiodial.rankings.%d.%s", int(e.Target.Latitude), e.ID)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher connects to NATS and ensures the rankings stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      RankingsStream,
		Subjects:  []string{RankingsSubjects},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishRanking publishes a ranking summary.
func (p *Publisher) PublishRanking(ctx context.Context, event *domain.RankingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ranking event: %w", err)
	}
	if _, err := p.js.Publish(rankingSubject(event), data, nats.Context(ctx), nats.MsgId(event.ID)); err != nil {
		return fmt.Errorf("publish ranking event: %w", err)
	}
	return nil
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

func connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("radiodial"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
