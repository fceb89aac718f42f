package radiogarden

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/core/ports"
	"github.com/samirrijal/radiodial/internal/pkg/metrics"
	"github.com/samirrijal/radiodial/internal/pkg/telemetry"
)

const msgTimedOut = "Request timed out"

// Client is the Directory implementation for radio.garden.
type Client struct {
	transport ports.Transport
	baseURL   string
	logger    *slog.Logger
}

var _ ports.Directory = (*Client)(nil)

// NewClient creates a directory client. baseURL is only used to build
// listen URLs; requests go through transport.
func NewClient(transport ports.Transport, baseURL string) *Client {
	return &Client{
		transport: transport,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    slog.Default().With("component", "radiogarden"),
	}
}

// ListPlaces returns every place known to the directory.
func (c *Client) ListPlaces(ctx context.Context) domain.Response[[]domain.Place] {
	return fetchJSON(ctx, c, "places", "/ara/content/places", decodePlaces)
}

// GetPlace returns the page summary of a place.
func (c *Client) GetPlace(ctx context.Context, placeID string) domain.Response[domain.PlaceDetail] {
	if !domain.IsValidID(placeID) {
		return domain.Fail[domain.PlaceDetail](domain.StatusInvalidResponse, "Invalid Place ID")
	}
	return fetchJSON(ctx, c, "place", "/ara/content/page/"+placeID, decodePlaceDetail)
}

// GetPlaceChannels lists the channels broadcasting from a place.
func (c *Client) GetPlaceChannels(ctx context.Context, placeID string) domain.Response[[]domain.Channel] {
	if !domain.IsValidID(placeID) {
		return domain.Fail[[]domain.Channel](domain.StatusInvalidResponse, "Invalid Place ID")
	}
	return fetchJSON(ctx, c, "place_channels", "/ara/content/page/"+placeID+"/channels", decodePlaceChannels)
}

// GetChannel returns a single channel with its place and country.
func (c *Client) GetChannel(ctx context.Context, channelID string) domain.Response[domain.Channel] {
	if !domain.IsValidID(channelID) {
		return domain.Fail[domain.Channel](domain.StatusInvalidResponse, "Invalid Channel ID")
	}
	return fetchJSON(ctx, c, "channel", "/ara/content/channel/"+channelID, decodeChannel)
}

// Search queries the directory. Spaces (and pre-encoded %20) become '+';
// nothing else is escaped.
func (c *Client) Search(ctx context.Context, query string) domain.Response[domain.SearchResults] {
	if query == "" {
		return domain.Fail[domain.SearchResults](domain.StatusInvalidResponse, "Empty search query")
	}
	encoded := strings.ReplaceAll(strings.ReplaceAll(query, " ", "+"), "%20", "+")

	resp := fetchJSON(ctx, c, "search", "/search?q="+encoded, decodeSearch)
	if resp.Success {
		resp.Payload.Query = query
	}
	return resp
}

// GetGeolocation locates the caller by IP address.
func (c *Client) GetGeolocation(ctx context.Context) domain.Response[domain.Geolocation] {
	return fetchJSON(ctx, c, "geo", "/geo", decodeGeolocation)
}

// ListenURL builds the stream endpoint for a channel.
func (c *Client) ListenURL(channelID string) string {
	return c.baseURL + listenPath(channelID)
}

func listenPath(channelID string) string {
	return "/ara/content/listen/" + channelID + "/channel.mp3"
}

// ResolveStreamURL asks the listen endpoint for the channel's actual stream
// location. The endpoint answers with a redirect, or occasionally with an
// HTML page linking to the stream.
func (c *Client) ResolveStreamURL(ctx context.Context, channelID string) (out domain.Response[string]) {
	if !domain.IsValidID(channelID) {
		return domain.Fail[string](domain.StatusInvalidResponse, "Invalid Channel ID")
	}

	ctx, span, done := c.begin(ctx, "stream", listenPath(channelID))
	defer func() { done(out.Status, out.Error) }()

	resp, failed := c.get(ctx, span, listenPath(channelID))
	if failed != nil {
		return domain.Fail[string](failed.Status, failed.Message)
	}

	var streamURL string
	switch resp.StatusCode {
	case 301, 302:
		if resp.Location == "" {
			return domain.Fail[string](domain.StatusInvalidResponse, "Redirect status but no Location header")
		}
		streamURL = resp.Location
	case 200:
		href, ok := extractHref(resp.Body)
		if !ok {
			return domain.Fail[string](domain.StatusInvalidResponse, "Expected redirect, got 200 OK")
		}
		streamURL = href
	default:
		status := classifyHTTPStatus(resp.StatusCode)
		if status == domain.StatusSuccess {
			status = domain.StatusInvalidResponse
		}
		return domain.Fail[string](status, fmt.Sprintf("Unexpected response code: %d", resp.StatusCode))
	}

	if streamURL == "" {
		return domain.Fail[string](domain.StatusInvalidResponse, "Empty stream URL")
	}
	return domain.OK(streamURL)
}

// fetchJSON runs the shared failure ladder for JSON endpoints: transport
// failure, non-2xx status, undecodable body, unexpected structure, success.
func fetchJSON[T any](ctx context.Context, c *Client, endpoint, path string, decode func([]byte) (T, error)) (out domain.Response[T]) {
	ctx, span, done := c.begin(ctx, endpoint, path)
	defer func() { done(out.Status, out.Error) }()

	resp, failed := c.get(ctx, span, path)
	if failed != nil {
		return domain.Fail[T](failed.Status, failed.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Fail[T](classifyHTTPStatus(resp.StatusCode),
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Body))
	}

	payload, err := decode(resp.Body)
	if err != nil {
		return domain.Fail[T](domain.StatusParseError, err.Error())
	}
	return domain.OK(payload)
}

// get performs the GET and maps transport errors onto envelope statuses.
func (c *Client) get(ctx context.Context, span trace.Span, path string) (*ports.HTTPResponse, *domain.StatusError) {
	c.logger.DebugContext(ctx, "directory GET", "path", path)

	resp, err := c.transport.Get(ctx, path)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, &domain.StatusError{Status: domain.StatusTimeout, Message: msgTimedOut}
		}
		return nil, &domain.StatusError{Status: domain.StatusNetworkError, Message: err.Error()}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

// begin opens a span for one directory operation and returns the function
// that records its outcome.
func (c *Client) begin(ctx context.Context, endpoint, path string) (context.Context, trace.Span, func(domain.Status, string)) {
	ctx, span := telemetry.StartSpan(ctx, "radiogarden."+endpoint,
		attribute.String("radiogarden.path", path))
	start := time.Now()

	return ctx, span, func(status domain.Status, msg string) {
		metrics.UpstreamRequests.WithLabelValues(endpoint, status.String()).Inc()
		metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if status != domain.StatusSuccess {
			c.logger.WarnContext(ctx, "directory request failed",
				"endpoint", endpoint, "status", status.String(), "error", msg)
		}
		telemetry.EndSpan(span, status.String(), msg)
	}
}

// classifyHTTPStatus maps a non-2xx HTTP status onto an envelope status.
func classifyHTTPStatus(code int) domain.Status {
	switch {
	case code >= 200 && code < 300:
		return domain.StatusSuccess
	case code == 408 || code == 504:
		return domain.StatusTimeout
	case code >= 500:
		return domain.StatusServerError
	case code >= 400:
		return domain.StatusInvalidResponse
	default:
		return domain.StatusNetworkError
	}
}
