package usecases

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

// ErrNoCache is returned by Warm when the service was built without a cache.
var ErrNoCache = errors.New("directory service has no cache")

// WarmStats summarizes one Warm pass.
type WarmStats struct {
	Places int // places in the listing
	Warmed int // channel listings refreshed
	Failed int // channel listings the directory could not serve
}

// Warm refreshes the cached place listing and the channel listings of the
// top largest places (by channel-count hint), fetching up to concurrency
// listings at once. top <= 0 warms every place. Existing entries are
// evicted first so a warm pass always reaches the directory.
func (s *DirectoryService) Warm(ctx context.Context, top, concurrency int) (WarmStats, error) {
	if s.cache == nil {
		return WarmStats{}, ErrNoCache
	}

	_ = s.cache.Delete(ctx, placesKey)
	places := s.ListPlaces(ctx)
	if err := places.Err(); err != nil {
		return WarmStats{}, err
	}

	targets := largestPlaces(places.Payload, top)
	stats := WarmStats{Places: len(places.Payload)}
	var warmed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, p := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_ = s.cache.Delete(gctx, placeChannelsKey(p.ID))
			if s.GetPlaceChannels(gctx, p.ID).Success {
				warmed.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Warmed = int(warmed.Load())
	stats.Failed = int(failed.Load())
	return stats, err
}

// largestPlaces returns up to n places with the highest Size, listing order
// breaking ties. Places with invalid IDs are skipped.
func largestPlaces(places []domain.Place, n int) []domain.Place {
	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if domain.IsValidID(p.ID) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
