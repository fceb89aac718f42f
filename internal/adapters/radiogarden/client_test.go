package radiogarden

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/radiodial/internal/core/domain"
	"github.com/samirrijal/radiodial/internal/core/ports"
)

// --- Fake transport ---

type fakeTransport struct {
	getFn func(ctx context.Context, path string) (*ports.HTTPResponse, error)
	paths []string
}

func (f *fakeTransport) Get(ctx context.Context, path string) (*ports.HTTPResponse, error) {
	f.paths = append(f.paths, path)
	return f.getFn(ctx, path)
}

func respond(code int, body string) *fakeTransport {
	return &fakeTransport{getFn: func(context.Context, string) (*ports.HTTPResponse, error) {
		return &ports.HTTPResponse{StatusCode: code, Body: []byte(body)}, nil
	}}
}

func newTestClient(tr ports.Transport) *Client {
	return NewClient(tr, "https://radio.example/api")
}

func assertFailure[T any](t *testing.T, r domain.Response[T], status domain.Status, msg string) {
	t.Helper()
	assert.False(t, r.Success)
	assert.Equal(t, status, r.Status)
	assert.Equal(t, msg, r.Error)
	assert.NotEmpty(t, r.Error, "failed envelopes must carry a message")
}

// --- Failure ladder ---

func TestClient_TransportTimeout(t *testing.T) {
	tr := &fakeTransport{getFn: func(context.Context, string) (*ports.HTTPResponse, error) {
		return nil, fmt.Errorf("GET /geo: %w", ErrTimeout)
	}}
	assertFailure(t, newTestClient(tr).GetGeolocation(context.Background()), domain.StatusTimeout, "Request timed out")
}

func TestClient_TransportError(t *testing.T) {
	tr := &fakeTransport{getFn: func(context.Context, string) (*ports.HTTPResponse, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	r := newTestClient(tr).ListPlaces(context.Background())
	assertFailure(t, r, domain.StatusNetworkError, "dial tcp: connection refused")
}

func TestClient_HTTPStatusClassification(t *testing.T) {
	tests := []struct {
		code   int
		status domain.Status
	}{
		{404, domain.StatusInvalidResponse},
		{408, domain.StatusTimeout},
		{500, domain.StatusServerError},
		{503, domain.StatusServerError},
		{504, domain.StatusTimeout},
		{304, domain.StatusNetworkError},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			r := newTestClient(respond(tt.code, "nope")).ListPlaces(context.Background())
			assertFailure(t, r, tt.status, fmt.Sprintf("HTTP %d: nope", tt.code))
		})
	}
}

func TestClient_UnparseableBody(t *testing.T) {
	for _, body := range []string{"", "   ", "not json", `[1,2,3]`, `{"data":`} {
		r := newTestClient(respond(200, body)).ListPlaces(context.Background())
		assertFailure(t, r, domain.StatusParseError, "Failed to parse JSON")
	}
}

// --- Places ---

func TestListPlaces_DottedKey(t *testing.T) {
	body := `{"data.list":[{"id":"p1","title":"Bilbao","country":"Spain","url":"/visit/bilbao/p1","size":12,"boost":true,"geo":[-2.93,43.26]}]}`
	r := newTestClient(respond(200, body)).ListPlaces(context.Background())

	require.True(t, r.Success)
	require.Len(t, r.Payload, 1)
	p := r.Payload[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Bilbao", p.Title)
	assert.Equal(t, "Spain", p.Country)
	assert.Equal(t, 12, p.Size)
	assert.True(t, p.Boost)
	assert.Equal(t, -2.93, p.Geo.Longitude)
	assert.Equal(t, 43.26, p.Geo.Latitude)
}

func TestListPlaces_NestedList(t *testing.T) {
	body := `{"data":{"list":[{"id":"a","geo":[10.0,50.0]},42,"x",{"id":"b","geo":[1.0]}]}}`
	tr := respond(200, body)
	r := newTestClient(tr).ListPlaces(context.Background())

	require.True(t, r.Success)
	assert.Equal(t, []string{"/ara/content/places"}, tr.paths)
	require.Len(t, r.Payload, 2, "non-object entries are skipped")
	assert.Equal(t, 10.0, r.Payload[0].Geo.Longitude)
	assert.Equal(t, 50.0, r.Payload[0].Geo.Latitude)
	assert.Equal(t, domain.Coordinate{}, r.Payload[1].Geo, "short geo arrays leave coordinates at zero")
}

func TestListPlaces_InvalidShape(t *testing.T) {
	for _, body := range []string{`{}`, `{"data":[]}`, `{"data":{"items":[]}}`, `{"data":{"list":{}}}`} {
		r := newTestClient(respond(200, body)).ListPlaces(context.Background())
		assertFailure(t, r, domain.StatusParseError, "Invalid response format")
	}
}

func TestListPlaces_LenientScalars(t *testing.T) {
	body := `{"data":{"list":[{"id":7,"title":"X","size":"big","boost":"yes","geo":["a",50]}]}}`
	r := newTestClient(respond(200, body)).ListPlaces(context.Background())

	require.True(t, r.Success)
	require.Len(t, r.Payload, 1)
	assert.Equal(t, "", r.Payload[0].ID)
	assert.Equal(t, "X", r.Payload[0].Title)
	assert.Equal(t, 0, r.Payload[0].Size)
	assert.False(t, r.Payload[0].Boost)
	assert.Equal(t, 0.0, r.Payload[0].Geo.Longitude)
	assert.Equal(t, 50.0, r.Payload[0].Geo.Latitude)
}

// --- Place page ---

func TestGetPlace(t *testing.T) {
	body := `{"data":{"id":"p1","title":"Bilbao","subtitle":"Spain","url":"/visit/bilbao/p1","map":"p1","count":14,"utcOffset":120}}`
	tr := respond(200, body)
	r := newTestClient(tr).GetPlace(context.Background(), "p1")

	require.True(t, r.Success)
	assert.Equal(t, []string{"/ara/content/page/p1"}, tr.paths)
	assert.Equal(t, domain.PlaceDetail{
		ID: "p1", Title: "Bilbao", Subtitle: "Spain", URL: "/visit/bilbao/p1", Map: "p1", Count: 14, UTCOffset: 120,
	}, r.Payload)
}

func TestGetPlace_InvalidID(t *testing.T) {
	tr := respond(200, `{}`)
	r := newTestClient(tr).GetPlace(context.Background(), "")
	assertFailure(t, r, domain.StatusInvalidResponse, "Invalid Place ID")
	assert.Empty(t, tr.paths)
}

func TestGetPlace_MissingData(t *testing.T) {
	r := newTestClient(respond(200, `{"page":{}}`)).GetPlace(context.Background(), "p1")
	assertFailure(t, r, domain.StatusParseError, "Invalid response format")
}

// --- Place channels ---

func TestGetPlaceChannels(t *testing.T) {
	body := `{"data":{"content":[{"items":[
		{"page":{"title":"Radio One","url":"/listen/radio-one/abc123"}},
		{"nopage":true},
		"junk",
		{"page":{"title":"Loose","url":"orphan"}}
	]}]}}`
	tr := respond(200, body)
	r := newTestClient(tr).GetPlaceChannels(context.Background(), "p1")

	require.True(t, r.Success)
	assert.Equal(t, []string{"/ara/content/page/p1/channels"}, tr.paths)
	require.Len(t, r.Payload, 2)
	assert.Equal(t, domain.Channel{ID: "abc123", Title: "Radio One", URL: "/listen/radio-one/abc123"}, r.Payload[0])
	assert.Equal(t, "", r.Payload[1].ID)
	assert.Equal(t, "orphan", r.Payload[1].URL)
}

func TestGetPlaceChannels_InvalidID(t *testing.T) {
	tr := respond(200, `{}`)
	r := newTestClient(tr).GetPlaceChannels(context.Background(), strings.Repeat("x", 51))
	assertFailure(t, r, domain.StatusInvalidResponse, "Invalid Place ID")
	assert.Empty(t, tr.paths)
}

func TestGetPlaceChannels_StructureErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"no data", `{"content":[]}`, "Invalid response format"},
		{"no content", `{"data":{}}`, "No channels found"},
		{"empty content", `{"data":{"content":[]}}`, "No channels found"},
		{"content not object", `{"data":{"content":[[1]]}}`, "Invalid content format"},
		{"no items", `{"data":{"content":[{"title":"x"}]}}`, "Invalid items format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestClient(respond(200, tt.body)).GetPlaceChannels(context.Background(), "p1")
			assertFailure(t, r, domain.StatusParseError, tt.msg)
		})
	}
}

func TestChannelIDFromURL(t *testing.T) {
	tests := map[string]string{
		"/listen/radio-one/abc123":  "abc123",
		"/listen/radio-one/abc123/": "abc123",
		"listen/abc":                "abc",
		"abc":                       "",
		"/abc/":                     "",
		"":                          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, channelIDFromURL(in), in)
	}
}

// --- Channel ---

func TestGetChannel(t *testing.T) {
	body := `{"data":{"id":"c1","title":"Jazz FM","url":"/listen/jazz-fm/c1","website":"https://jazz.example","secure":true,
		"place":{"id":"p1","title":"London"},"country":{"id":"gb","title":"United Kingdom"}}}`
	tr := respond(200, body)
	r := newTestClient(tr).GetChannel(context.Background(), "c1")

	require.True(t, r.Success)
	assert.Equal(t, []string{"/ara/content/channel/c1"}, tr.paths)
	assert.Equal(t, domain.Channel{
		ID: "c1", Title: "Jazz FM", URL: "/listen/jazz-fm/c1", Website: "https://jazz.example", Secure: true,
		PlaceID: "p1", PlaceTitle: "London", CountryID: "gb", CountryTitle: "United Kingdom",
	}, r.Payload)
}

func TestGetChannel_OptionalNesting(t *testing.T) {
	r := newTestClient(respond(200, `{"data":{"id":"c1","title":"Solo","place":"nowhere"}}`)).GetChannel(context.Background(), "c1")
	require.True(t, r.Success)
	assert.Empty(t, r.Payload.PlaceID)
	assert.Empty(t, r.Payload.CountryID)
}

func TestGetChannel_Errors(t *testing.T) {
	assertFailure(t, newTestClient(respond(200, `{}`)).GetChannel(context.Background(), ""),
		domain.StatusInvalidResponse, "Invalid Channel ID")
	assertFailure(t, newTestClient(respond(200, `{"id":"c1"}`)).GetChannel(context.Background(), "c1"),
		domain.StatusParseError, "Invalid response format")
}

// --- Search ---

func TestSearch_QueryEncoding(t *testing.T) {
	tests := map[string]string{
		"jazz fm":    "/search?q=jazz+fm",
		"100%20fm":   "/search?q=100+fm",
		"rock&roll!": "/search?q=rock&roll!",
	}
	for query, wantPath := range tests {
		tr := respond(200, `{"hits":{"hits":[]}}`)
		r := newTestClient(tr).Search(context.Background(), query)
		require.True(t, r.Success, query)
		assert.Equal(t, []string{wantPath}, tr.paths)
		assert.Equal(t, query, r.Payload.Query)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	tr := respond(200, `{}`)
	assertFailure(t, newTestClient(tr).Search(context.Background(), ""), domain.StatusInvalidResponse, "Empty search query")
	assert.Empty(t, tr.paths)
}

func TestSearch_Hits(t *testing.T) {
	body := `{"took":17,"hits":{"hits":[
		{"_id":"c2","_score":9.5,"_source":{"type":"channel","title":"B","subtitle":"Berlin","code":"DE","url":"/listen/b/c2"}},
		{"_id":"skip","_score":9.0},
		{"_id":"p1","_score":3.25,"_source":{"type":"place","title":"A","url":"/visit/a/p1"}}
	]}}`
	r := newTestClient(respond(200, body)).Search(context.Background(), "b")

	require.True(t, r.Success)
	assert.Equal(t, 17, r.Payload.TookMs)
	require.Len(t, r.Payload.Results, 2)
	assert.Equal(t, domain.SearchResult{
		ID: "c2", Score: 9.5, Type: "channel", Title: "B", Subtitle: "Berlin", CountryCode: "DE", URL: "/listen/b/c2",
	}, r.Payload.Results[0])
	assert.Equal(t, "p1", r.Payload.Results[1].ID, "upstream order is kept")
}

func TestSearch_HitsShape(t *testing.T) {
	r := newTestClient(respond(200, `{"took":1,"hits":{"total":0}}`)).Search(context.Background(), "x")
	require.True(t, r.Success)
	assert.Empty(t, r.Payload.Results)

	r = newTestClient(respond(200, `{"took":1}`)).Search(context.Background(), "x")
	assertFailure(t, r, domain.StatusParseError, "Invalid response format")
}

// --- Geolocation ---

func TestGetGeolocation(t *testing.T) {
	body := `{"ip":"203.0.113.7","country_code":"ES","country_name":"Spain","region_code":"PV","region_name":"Basque Country",
		"city":"Bilbao","zip_code":"48001","time_zone":"Europe/Madrid","latitude":43.26,"longitude":-2.93,"metro_code":0}`
	tr := respond(200, body)
	r := newTestClient(tr).GetGeolocation(context.Background())

	require.True(t, r.Success)
	assert.Equal(t, []string{"/geo"}, tr.paths)
	assert.Equal(t, "Bilbao", r.Payload.City)
	assert.Equal(t, "Europe/Madrid", r.Payload.TimeZone)
	assert.Equal(t, domain.Coordinate{Latitude: 43.26, Longitude: -2.93}, r.Payload.Coordinate())
}

// --- Stream resolution ---

func streamResponse(code int, location, body string) *fakeTransport {
	return &fakeTransport{getFn: func(context.Context, string) (*ports.HTTPResponse, error) {
		return &ports.HTTPResponse{StatusCode: code, Location: location, Body: []byte(body)}, nil
	}}
}

func TestResolveStreamURL_Redirect(t *testing.T) {
	for _, code := range []int{301, 302} {
		tr := streamResponse(code, "https://stream.example/live.mp3", "")
		r := newTestClient(tr).ResolveStreamURL(context.Background(), "c1")
		require.True(t, r.Success)
		assert.Equal(t, "https://stream.example/live.mp3", r.Payload)
		assert.Equal(t, []string{"/ara/content/listen/c1/channel.mp3"}, tr.paths)
	}
}

func TestResolveStreamURL_Failures(t *testing.T) {
	tests := []struct {
		name   string
		tr     *fakeTransport
		status domain.Status
		msg    string
	}{
		{"redirect without location", streamResponse(302, "", ""), domain.StatusInvalidResponse, "Redirect status but no Location header"},
		{"plain 200", streamResponse(200, "", "<html>hello</html>"), domain.StatusInvalidResponse, "Expected redirect, got 200 OK"},
		{"not found", streamResponse(404, "", ""), domain.StatusInvalidResponse, "Unexpected response code: 404"},
		{"server error", streamResponse(502, "", ""), domain.StatusServerError, "Unexpected response code: 502"},
		{"no content", streamResponse(204, "", ""), domain.StatusInvalidResponse, "Unexpected response code: 204"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFailure(t, newTestClient(tt.tr).ResolveStreamURL(context.Background(), "c1"), tt.status, tt.msg)
		})
	}
}

func TestResolveStreamURL_HTMLFallback(t *testing.T) {
	tr := streamResponse(200, "", `<html><a href="https://stream.example/x.mp3?t=1">Found</a></html>`)
	r := newTestClient(tr).ResolveStreamURL(context.Background(), "c1")
	require.True(t, r.Success)
	assert.Equal(t, "https://stream.example/x.mp3?t=1", r.Payload)
}

func TestResolveStreamURL_InvalidID(t *testing.T) {
	tr := streamResponse(302, "x", "")
	assertFailure(t, newTestClient(tr).ResolveStreamURL(context.Background(), ""), domain.StatusInvalidResponse, "Invalid Channel ID")
	assert.Empty(t, tr.paths)
}

func TestListenURL(t *testing.T) {
	c := NewClient(respond(200, ""), "https://radio.example/api/")
	assert.Equal(t, "https://radio.example/api/ara/content/listen/abc/channel.mp3", c.ListenURL("abc"))
}
