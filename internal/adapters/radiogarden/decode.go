package radiogarden

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

// shapeError is a decode failure whose text is surfaced to callers verbatim.
type shapeError string

func (e shapeError) Error() string { return string(e) }

const (
	errParseJSON      shapeError = "Failed to parse JSON"
	errInvalidFormat  shapeError = "Invalid response format"
	errNoChannels     shapeError = "No channels found"
	errInvalidContent shapeError = "Invalid content format"
	errInvalidItems   shapeError = "Invalid items format"
)

const hrefMarker = `href="http`

// Scalar fields are read leniently: a value of the wrong JSON type decodes
// to the zero value instead of failing the whole document.

type jsonString string

func (s *jsonString) UnmarshalJSON(b []byte) error {
	var v string
	if json.Unmarshal(b, &v) == nil {
		*s = jsonString(v)
	}
	return nil
}

type jsonNumber float64

func (n *jsonNumber) UnmarshalJSON(b []byte) error {
	var v float64
	if json.Unmarshal(b, &v) == nil {
		*n = jsonNumber(v)
	}
	return nil
}

type jsonBool bool

func (v *jsonBool) UnmarshalJSON(b []byte) error {
	var x bool
	if json.Unmarshal(b, &x) == nil {
		*v = jsonBool(x)
	}
	return nil
}

func isKind(raw json.RawMessage, open byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == open
}

// asObject decodes raw into dst when raw is a JSON object.
func asObject(raw json.RawMessage, dst any) bool {
	if !isKind(raw, '{') {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// asArray splits raw into its elements when raw is a JSON array.
func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if !isKind(raw, '[') {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// decodeDocument parses a response body that must be a JSON object.
func decodeDocument(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 || !asObject(body, dst) {
		return errParseJSON
	}
	return nil
}

// --- places ---

type placesDoc struct {
	DottedList json.RawMessage `json:"data.list"`
	Data       json.RawMessage `json:"data"`
}

type placesData struct {
	List json.RawMessage `json:"list"`
}

type placeItem struct {
	ID      jsonString      `json:"id"`
	Title   jsonString      `json:"title"`
	Country jsonString      `json:"country"`
	URL     jsonString      `json:"url"`
	Size    jsonNumber      `json:"size"`
	Boost   jsonBool        `json:"boost"`
	Geo     json.RawMessage `json:"geo"`
}

func decodePlaces(body []byte) ([]domain.Place, error) {
	var doc placesDoc
	if err := decodeDocument(body, &doc); err != nil {
		return nil, err
	}

	list, ok := asArray(doc.DottedList)
	if !ok {
		var data placesData
		if !asObject(doc.Data, &data) {
			return nil, errInvalidFormat
		}
		if list, ok = asArray(data.List); !ok {
			return nil, errInvalidFormat
		}
	}

	places := make([]domain.Place, 0, len(list))
	for _, raw := range list {
		var item placeItem
		if !asObject(raw, &item) {
			continue
		}
		p := domain.Place{
			ID:      string(item.ID),
			Title:   string(item.Title),
			Country: string(item.Country),
			URL:     string(item.URL),
			Size:    int(item.Size),
			Boost:   bool(item.Boost),
		}
		if geo, ok := asArray(item.Geo); ok && len(geo) >= 2 {
			var lon, lat jsonNumber
			_ = json.Unmarshal(geo[0], &lon)
			_ = json.Unmarshal(geo[1], &lat)
			p.Geo = domain.FromLonLat(float64(lon), float64(lat))
		}
		places = append(places, p)
	}
	return places, nil
}

// --- place page ---

type dataDoc struct {
	Data json.RawMessage `json:"data"`
}

type placePage struct {
	ID        jsonString `json:"id"`
	Title     jsonString `json:"title"`
	Subtitle  jsonString `json:"subtitle"`
	URL       jsonString `json:"url"`
	Map       jsonString `json:"map"`
	Count     jsonNumber `json:"count"`
	UTCOffset jsonNumber `json:"utcOffset"`
}

func decodePlaceDetail(body []byte) (domain.PlaceDetail, error) {
	var doc dataDoc
	if err := decodeDocument(body, &doc); err != nil {
		return domain.PlaceDetail{}, err
	}
	var page placePage
	if !asObject(doc.Data, &page) {
		return domain.PlaceDetail{}, errInvalidFormat
	}
	return domain.PlaceDetail{
		ID:        string(page.ID),
		Title:     string(page.Title),
		Subtitle:  string(page.Subtitle),
		URL:       string(page.URL),
		Map:       string(page.Map),
		Count:     int(page.Count),
		UTCOffset: int(page.UTCOffset),
	}, nil
}

// --- place channels ---

type channelsData struct {
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Items json.RawMessage `json:"items"`
}

type channelItem struct {
	Page json.RawMessage `json:"page"`
}

type pageRef struct {
	Title jsonString `json:"title"`
	URL   jsonString `json:"url"`
}

func decodePlaceChannels(body []byte) ([]domain.Channel, error) {
	var doc dataDoc
	if err := decodeDocument(body, &doc); err != nil {
		return nil, err
	}

	var data channelsData
	if !asObject(doc.Data, &data) {
		return nil, errInvalidFormat
	}

	content, ok := asArray(data.Content)
	if !ok || len(content) == 0 {
		return nil, errNoChannels
	}

	var block contentBlock
	if !asObject(content[0], &block) {
		return nil, errInvalidContent
	}

	items, ok := asArray(block.Items)
	if !ok {
		return nil, errInvalidItems
	}

	channels := make([]domain.Channel, 0, len(items))
	for _, raw := range items {
		var item channelItem
		if !asObject(raw, &item) {
			continue
		}
		var page pageRef
		if !asObject(item.Page, &page) {
			continue
		}
		channels = append(channels, domain.Channel{
			ID:    channelIDFromURL(string(page.URL)),
			Title: string(page.Title),
			URL:   string(page.URL),
		})
	}
	return channels, nil
}

// channelIDFromURL returns the last path segment of a page URL such as
// "/listen/station-name/Xr2bAhMf". URLs with fewer than two segments carry no ID.
func channelIDFromURL(pageURL string) string {
	var parts []string
	for _, p := range strings.Split(pageURL, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}

// --- channel ---

type idTitle struct {
	ID    jsonString `json:"id"`
	Title jsonString `json:"title"`
}

type channelData struct {
	ID      jsonString      `json:"id"`
	Title   jsonString      `json:"title"`
	URL     jsonString      `json:"url"`
	Website jsonString      `json:"website"`
	Secure  jsonBool        `json:"secure"`
	Place   json.RawMessage `json:"place"`
	Country json.RawMessage `json:"country"`
}

func decodeChannel(body []byte) (domain.Channel, error) {
	var doc dataDoc
	if err := decodeDocument(body, &doc); err != nil {
		return domain.Channel{}, err
	}
	var data channelData
	if !asObject(doc.Data, &data) {
		return domain.Channel{}, errInvalidFormat
	}

	ch := domain.Channel{
		ID:      string(data.ID),
		Title:   string(data.Title),
		URL:     string(data.URL),
		Website: string(data.Website),
		Secure:  bool(data.Secure),
	}
	var place, country idTitle
	if asObject(data.Place, &place) {
		ch.PlaceID = string(place.ID)
		ch.PlaceTitle = string(place.Title)
	}
	if asObject(data.Country, &country) {
		ch.CountryID = string(country.ID)
		ch.CountryTitle = string(country.Title)
	}
	return ch, nil
}

// --- search ---

type searchDoc struct {
	Took jsonNumber      `json:"took"`
	Hits json.RawMessage `json:"hits"`
}

type searchHits struct {
	Hits json.RawMessage `json:"hits"`
}

type searchHit struct {
	ID     jsonString      `json:"_id"`
	Score  jsonNumber      `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

type searchSource struct {
	Type     jsonString `json:"type"`
	Title    jsonString `json:"title"`
	Subtitle jsonString `json:"subtitle"`
	Code     jsonString `json:"code"`
	URL      jsonString `json:"url"`
}

// decodeSearch keeps hits in upstream relevance order.
func decodeSearch(body []byte) (domain.SearchResults, error) {
	var doc searchDoc
	if err := decodeDocument(body, &doc); err != nil {
		return domain.SearchResults{}, err
	}

	out := domain.SearchResults{
		TookMs:  int(doc.Took),
		Results: []domain.SearchResult{},
	}

	var hits searchHits
	if !asObject(doc.Hits, &hits) {
		return domain.SearchResults{}, errInvalidFormat
	}
	list, ok := asArray(hits.Hits)
	if !ok {
		return out, nil
	}

	for _, raw := range list {
		var hit searchHit
		if !asObject(raw, &hit) {
			continue
		}
		var src searchSource
		if !asObject(hit.Source, &src) {
			continue
		}
		out.Results = append(out.Results, domain.SearchResult{
			ID:          string(hit.ID),
			Score:       float32(hit.Score),
			Type:        string(src.Type),
			Title:       string(src.Title),
			Subtitle:    string(src.Subtitle),
			CountryCode: string(src.Code),
			URL:         string(src.URL),
		})
	}
	return out, nil
}

// --- geolocation ---

type geoDoc struct {
	IP          jsonString `json:"ip"`
	CountryCode jsonString `json:"country_code"`
	CountryName jsonString `json:"country_name"`
	RegionCode  jsonString `json:"region_code"`
	RegionName  jsonString `json:"region_name"`
	City        jsonString `json:"city"`
	ZipCode     jsonString `json:"zip_code"`
	TimeZone    jsonString `json:"time_zone"`
	Latitude    jsonNumber `json:"latitude"`
	Longitude   jsonNumber `json:"longitude"`
	MetroCode   jsonNumber `json:"metro_code"`
}

func decodeGeolocation(body []byte) (domain.Geolocation, error) {
	var doc geoDoc
	if err := decodeDocument(body, &doc); err != nil {
		return domain.Geolocation{}, err
	}
	return domain.Geolocation{
		IP:          string(doc.IP),
		CountryCode: string(doc.CountryCode),
		CountryName: string(doc.CountryName),
		RegionCode:  string(doc.RegionCode),
		RegionName:  string(doc.RegionName),
		City:        string(doc.City),
		ZipCode:     string(doc.ZipCode),
		TimeZone:    string(doc.TimeZone),
		Latitude:    float64(doc.Latitude),
		Longitude:   float64(doc.Longitude),
		MetroCode:   int(doc.MetroCode),
	}, nil
}

// --- stream page ---

// extractHref pulls the first absolute URL out of an HTML redirect page:
// the text after `href="` up to the next double quote.
func extractHref(body []byte) (string, bool) {
	s := string(body)
	i := strings.Index(s, hrefMarker)
	if i < 0 {
		return "", false
	}
	start := i + len(`href="`)
	end := strings.IndexByte(s[start:], '"')
	if end <= 0 {
		return "", false
	}
	return s[start : start+end], true
}
