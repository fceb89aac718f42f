package usecases

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/core/ports"
	"github.com/samirrijal/radiodial/internal/pkg/geospatial"
	"github.com/samirrijal/radiodial/internal/pkg/metrics"
	"github.com/samirrijal/radiodial/internal/pkg/telemetry"
)

// NearbyService ranks radio channels by distance from a point.
type NearbyService struct {
	dir         ports.Directory
	publisher   ports.EventPublisher
	logger      *slog.Logger
	concurrency int
}

// NearbyOption configures a NearbyService.
type NearbyOption func(*NearbyService)

// WithFetchConcurrency lets up to n channel listings be fetched at once.
// Results are still consumed nearest-first, so rankings do not change; at
// most n-1 extra places may be fetched past the point where the quota is met.
func WithFetchConcurrency(n int) NearbyOption {
	return func(s *NearbyService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPublisher publishes a RankingEvent after every successful ranking.
func WithPublisher(p ports.EventPublisher) NearbyOption {
	return func(s *NearbyService) { s.publisher = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) NearbyOption {
	return func(s *NearbyService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewNearbyService creates a new NearbyService.
func NewNearbyService(dir ports.Directory, opts ...NearbyOption) *NearbyService {
	s := &NearbyService{
		dir:         dir,
		logger:      slog.Default(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type rankedPlace struct {
	place    domain.Place
	distance float64 // km
}

// RankNearbyChannels returns up to wanted channels, nearest first.
//
// Places are visited in order of distance and their channels accumulated
// until at least wanted have been collected. The last place visited may
// overshoot the quota; the final sort and truncation enforce the exact
// count and global order. A place whose channel list cannot be fetched is
// skipped. A failure to list places fails the ranking with the same status.
func (s *NearbyService) RankNearbyChannels(ctx context.Context, target domain.Coordinate, wanted int) (out domain.Response[domain.NearbyChannels]) {
	ctx, span := telemetry.StartSpan(ctx, "ranker.nearby",
		attribute.Float64("target.lat", target.Latitude),
		attribute.Float64("target.lon", target.Longitude),
		attribute.Int("wanted", wanted),
	)
	defer func() {
		metrics.Rankings.WithLabelValues(out.Status.String()).Inc()
		telemetry.EndSpan(span, out.Status.String(), out.Error)
	}()

	if wanted <= 0 {
		return domain.Fail[domain.NearbyChannels](domain.StatusInvalidResponse, "Channels count must be positive")
	}

	places := s.dir.ListPlaces(ctx)
	if !places.Success {
		return domain.Forward[domain.NearbyChannels](places)
	}

	ranked := rankPlaces(target, places.Payload)
	refs, visited := s.collect(ctx, ranked, wanted)
	metrics.PlacesVisited.Observe(float64(visited))
	span.SetAttributes(attribute.Int("places.visited", visited))

	if len(refs) == 0 {
		return domain.Fail[domain.NearbyChannels](domain.StatusInvalidResponse, "No channels found")
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Distance < refs[j].Distance })
	if len(refs) > wanted {
		refs = refs[:wanted]
	}

	result := domain.NearbyChannels{Target: target, Channels: refs}
	s.publish(ctx, result, wanted, visited)
	return domain.OK(result)
}

// RankNearbyChannelsByGeolocation ranks around the caller's IP location.
// A failed geolocation lookup is returned as-is.
func (s *NearbyService) RankNearbyChannelsByGeolocation(ctx context.Context, wanted int) domain.Response[domain.NearbyChannels] {
	if wanted <= 0 {
		return s.RankNearbyChannels(ctx, domain.Coordinate{}, wanted)
	}

	geo := s.dir.GetGeolocation(ctx)
	if !geo.Success {
		return domain.Forward[domain.NearbyChannels](geo)
	}
	return s.RankNearbyChannels(ctx, geo.Payload.Coordinate(), wanted)
}

// rankPlaces pairs each place with its distance to target, nearest first.
// Places at equal distance keep their listing order.
func rankPlaces(target domain.Coordinate, places []domain.Place) []rankedPlace {
	ranked := make([]rankedPlace, len(places))
	for i, p := range places {
		ranked[i] = rankedPlace{
			place:    p,
			distance: geospatial.Haversine(target.Latitude, target.Longitude, p.Geo.Latitude, p.Geo.Longitude),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].distance < ranked[j].distance })
	return ranked
}

// collect walks ranked places and gathers channel refs until the running
// quota is met. It returns the refs and the number of places consumed.
func (s *NearbyService) collect(ctx context.Context, ranked []rankedPlace, wanted int) ([]domain.ChannelRef, int) {
	var refs []domain.ChannelRef
	needed := wanted
	visited := 0

	for start := 0; start < len(ranked) && needed > 0; start += s.concurrency {
		end := min(start+s.concurrency, len(ranked))
		window := ranked[start:end]
		listings := s.fetchWindow(ctx, window)

		for i, resp := range listings {
			if needed <= 0 {
				break
			}
			visited++
			rp := window[i]
			if !resp.Success {
				metrics.PlaceFetchSkipped.Inc()
				s.logger.DebugContext(ctx, "skipping place",
					"place_id", rp.place.ID, "status", resp.Status.String(), "error", resp.Error)
				continue
			}
			for _, ch := range resp.Payload {
				ref := domain.ChannelRef{Title: ch.Title, Distance: rp.distance}
				if ch.ID != "" {
					ref.URL = s.dir.ListenURL(ch.ID)
				}
				refs = append(refs, ref)
			}
			needed -= len(resp.Payload)
		}
	}
	return refs, visited
}

// fetchWindow fetches channel listings for a window of places, returning
// them in window order.
func (s *NearbyService) fetchWindow(ctx context.Context, window []rankedPlace) []domain.Response[[]domain.Channel] {
	out := make([]domain.Response[[]domain.Channel], len(window))
	if len(window) == 1 {
		out[0] = s.dir.GetPlaceChannels(ctx, window[0].place.ID)
		return out
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, rp := range window {
		g.Go(func() error {
			out[i] = s.dir.GetPlaceChannels(ctx, rp.place.ID)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *NearbyService) publish(ctx context.Context, result domain.NearbyChannels, wanted, visited int) {
	if s.publisher == nil {
		return
	}
	event := &domain.RankingEvent{
		ID:            uuid.NewString(),
		Time:          time.Now().UTC(),
		Target:        result.Target,
		Wanted:        wanted,
		Returned:      len(result.Channels),
		PlacesVisited: visited,
		NearestKm:     result.Channels[0].Distance,
	}
	if err := s.publisher.PublishRanking(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish ranking event", "error", err)
	}
}
