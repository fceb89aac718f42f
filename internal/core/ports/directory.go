package ports

import (
	"context"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

// Directory fetches and normalizes records from the radio directory API.
// Every method reports failures inside the envelope; none of them return a Go error.
type Directory interface {
	ListPlaces(ctx context.Context) domain.Response[[]domain.Place]
	GetPlace(ctx context.Context, placeID string) domain.Response[domain.PlaceDetail]
	GetPlaceChannels(ctx context.Context, placeID string) domain.Response[[]domain.Channel]
	GetChannel(ctx context.Context, channelID string) domain.Response[domain.Channel]
	ResolveStreamURL(ctx context.Context, channelID string) domain.Response[string]
	Search(ctx context.Context, query string) domain.Response[domain.SearchResults]
	GetGeolocation(ctx context.Context) domain.Response[domain.Geolocation]

	// ListenURL builds the stream endpoint URL for a channel without any network activity.
	ListenURL(channelID string) string
}

// HTTPResponse is the raw outcome of a single upstream GET.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	Location   string
}

// Transport performs GET requests against the directory API.
// Redirects are never followed.
type Transport interface {
	Get(ctx context.Context, path string) (*HTTPResponse, error)
}
