package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/core/ports"
	"github.com/samirrijal/radiodial/internal/pkg/metrics"
)

// CacheTTL holds cache lifetimes in seconds.
type CacheTTL struct {
	Places   int // place listing
	Channels int // place pages, channel listings and single channels
}

const placesKey = "places:all"

func placePageKey(id string) string     { return "places:page:" + id }
func placeChannelsKey(id string) string { return "places:channels:" + id }
func channelKey(id string) string       { return "channels:id:" + id }

// DefaultCacheTTL is used for any zero field passed to NewDirectoryService.
var DefaultCacheTTL = CacheTTL{Places: 3600, Channels: 600}

// DirectoryService wraps a Directory with an optional read-through cache.
// Only successful envelopes are cached. Stream URLs, search and geolocation
// always go upstream.
type DirectoryService struct {
	dir   ports.Directory
	cache ports.CacheService
	ttl   CacheTTL
}

var _ ports.Directory = (*DirectoryService)(nil)

// NewDirectoryService creates a new DirectoryService. cache may be nil.
func NewDirectoryService(dir ports.Directory, cache ports.CacheService, ttl CacheTTL) *DirectoryService {
	if ttl.Places <= 0 {
		ttl.Places = DefaultCacheTTL.Places
	}
	if ttl.Channels <= 0 {
		ttl.Channels = DefaultCacheTTL.Channels
	}
	return &DirectoryService{dir: dir, cache: cache, ttl: ttl}
}

// ListPlaces returns every place known to the directory.
func (s *DirectoryService) ListPlaces(ctx context.Context) domain.Response[[]domain.Place] {
	return cached(ctx, s, "places", placesKey, s.ttl.Places, func() domain.Response[[]domain.Place] {
		return s.dir.ListPlaces(ctx)
	})
}

// GetPlace returns a place page summary.
func (s *DirectoryService) GetPlace(ctx context.Context, placeID string) domain.Response[domain.PlaceDetail] {
	if !domain.IsValidID(placeID) {
		return s.dir.GetPlace(ctx, placeID)
	}
	return cached(ctx, s, "place", placePageKey(placeID), s.ttl.Channels, func() domain.Response[domain.PlaceDetail] {
		return s.dir.GetPlace(ctx, placeID)
	})
}

// GetPlaceChannels lists the channels of a place.
func (s *DirectoryService) GetPlaceChannels(ctx context.Context, placeID string) domain.Response[[]domain.Channel] {
	if !domain.IsValidID(placeID) {
		return s.dir.GetPlaceChannels(ctx, placeID)
	}
	return cached(ctx, s, "place_channels", placeChannelsKey(placeID), s.ttl.Channels, func() domain.Response[[]domain.Channel] {
		return s.dir.GetPlaceChannels(ctx, placeID)
	})
}

// GetChannel returns a single channel.
func (s *DirectoryService) GetChannel(ctx context.Context, channelID string) domain.Response[domain.Channel] {
	if !domain.IsValidID(channelID) {
		return s.dir.GetChannel(ctx, channelID)
	}
	return cached(ctx, s, "channel", channelKey(channelID), s.ttl.Channels, func() domain.Response[domain.Channel] {
		return s.dir.GetChannel(ctx, channelID)
	})
}

func (s *DirectoryService) ResolveStreamURL(ctx context.Context, channelID string) domain.Response[string] {
	return s.dir.ResolveStreamURL(ctx, channelID)
}

func (s *DirectoryService) Search(ctx context.Context, query string) domain.Response[domain.SearchResults] {
	return s.dir.Search(ctx, query)
}

func (s *DirectoryService) GetGeolocation(ctx context.Context) domain.Response[domain.Geolocation] {
	return s.dir.GetGeolocation(ctx)
}

func (s *DirectoryService) ListenURL(channelID string) string {
	return s.dir.ListenURL(channelID)
}

// cached serves key from the cache when possible, otherwise calls fetch and
// stores a successful payload for ttl seconds. Cache errors fall through to fetch.
func cached[T any](ctx context.Context, s *DirectoryService, op, key string, ttl int, fetch func() domain.Response[T]) domain.Response[T] {
	if s.cache == nil {
		return fetch()
	}

	if data, err := s.cache.Get(ctx, key); err == nil {
		var payload T
		if err := json.Unmarshal(data, &payload); err == nil {
			metrics.CacheHits.WithLabelValues(op).Inc()
			return domain.OK(payload)
		}
	}
	metrics.CacheMisses.WithLabelValues(op).Inc()

	resp := fetch()
	if resp.Success {
		if data, err := json.Marshal(resp.Payload); err == nil {
			_ = s.cache.Set(ctx, key, data, ttl)
		}
	}
	return resp
}
