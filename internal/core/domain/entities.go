package domain

import (
	"time"
)

// MaxIDLength is the longest place or channel identifier accepted by the directory API.
const MaxIDLength = 50

// IsValidID reports whether id may be passed back to the directory API.
func IsValidID(id string) bool {
	return id != "" && len(id) <= MaxIDLength
}

// Place is a location (usually a city) that groups one or more channels.
type Place struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Country string     `json:"country"`
	URL     string     `json:"url"`
	Geo     Coordinate `json:"geo"`
	Size    int        `json:"size"` // channel-count hint
	Boost   bool       `json:"boost"`
}

// PlaceDetail is the page summary of a single place.
type PlaceDetail struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	URL       string `json:"url,omitempty"`
	Map       string `json:"map,omitempty"`
	Count     int    `json:"count"`
	UTCOffset int    `json:"utc_offset"`
}

// Channel is a single radio station belonging to exactly one place.
type Channel struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Website      string `json:"website,omitempty"`
	Secure       bool   `json:"secure"`
	PlaceID      string `json:"place_id,omitempty"`
	PlaceTitle   string `json:"place_title,omitempty"`
	CountryID    string `json:"country_id,omitempty"`
	CountryTitle string `json:"country_title,omitempty"`
}

// PlaceChannels is the channel listing of one place.
type PlaceChannels struct {
	PlaceID  string    `json:"place_id"`
	Channels []Channel `json:"channels"`
}

// ChannelRef is the distance-annotated projection produced by proximity ranking.
type ChannelRef struct {
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	Distance float64 `json:"distance_km"`
}

// NearbyChannels is the result of a proximity ranking.
type NearbyChannels struct {
	Target   Coordinate   `json:"target"`
	Channels []ChannelRef `json:"channels"`
}

// StreamURL is a resolved audio stream location for a channel.
type StreamURL struct {
	ChannelID string `json:"channel_id"`
	URL       string `json:"url"`
}

// SearchResult is a single search hit. Type is one of "channel", "place" or "country".
type SearchResult struct {
	ID          string  `json:"id"`
	Score       float32 `json:"score"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	URL         string  `json:"url"`
}

// SearchResults holds hits in upstream relevance order.
type SearchResults struct {
	Query   string         `json:"query"`
	TookMs  int            `json:"took_ms"`
	Results []SearchResult `json:"results"`
}

// Geolocation describes the location of the calling client's IP address.
type Geolocation struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	RegionCode  string  `json:"region_code"`
	RegionName  string  `json:"region_name"`
	City        string  `json:"city"`
	ZipCode     string  `json:"zip_code"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MetroCode   int     `json:"metro_code"`
}

// Coordinate returns the geolocated point.
func (g Geolocation) Coordinate() Coordinate {
	return Coordinate{Latitude: g.Latitude, Longitude: g.Longitude}
}

// RankingEvent is published after a proximity ranking succeeds.
type RankingEvent struct {
	ID            string     `json:"id"`
	Time          time.Time  `json:"time"`
	Target        Coordinate `json:"target"`
	Wanted        int        `json:"wanted"`
	Returned      int        `json:"returned"`
	PlacesVisited int        `json:"places_visited"`
	NearestKm     float64    `json:"nearest_km"`
}
