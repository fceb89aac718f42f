package usecases

import (
	"context"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/pkg/dispatch"
)

// RankNearbyChannelsAsync runs RankNearbyChannels on a worker goroutine and
// delivers the envelope to cb through q.
func (s *NearbyService) RankNearbyChannelsAsync(ctx context.Context, target domain.Coordinate, wanted int, q dispatch.Queue, cb func(domain.Response[domain.NearbyChannels])) {
	f := dispatch.Go(func() domain.Response[domain.NearbyChannels] {
		return s.RankNearbyChannels(ctx, target, wanted)
	})
	dispatch.Then(f, q, cb)
}

// RankNearbyChannelsByGeolocationAsync is the asynchronous form of
// RankNearbyChannelsByGeolocation.
func (s *NearbyService) RankNearbyChannelsByGeolocationAsync(ctx context.Context, wanted int, q dispatch.Queue, cb func(domain.Response[domain.NearbyChannels])) {
	f := dispatch.Go(func() domain.Response[domain.NearbyChannels] {
		return s.RankNearbyChannelsByGeolocation(ctx, wanted)
	})
	dispatch.Then(f, q, cb)
}
