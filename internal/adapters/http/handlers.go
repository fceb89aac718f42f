package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

const (
	defaultPlacesLimit = 100
	maxPlacesLimit     = 1000
	defaultNearbyCount = 10
	maxNearbyCount     = 200
	maxQueryLength     = 200
)

// ListPlacesHandler returns a page of the place listing.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := deps.Directory.ListPlaces(c.UserContext())
		if !resp.Success {
			return respond(c, resp)
		}

		page := paginate(resp.Payload, c.QueryInt("offset", 0), c.QueryInt("limit", defaultPlacesLimit),
			defaultPlacesLimit, maxPlacesLimit)
		SetLinkHeaders(c, page.Pagination)
		return respond(c, domain.OK(page))
	}
}

// GetPlaceHandler returns the page summary of one place.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respond(c, deps.Directory.GetPlace(c.UserContext(), c.Params("id")))
	}
}

// PlaceChannelsHandler lists the channels broadcasting from a place.
func PlaceChannelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		resp := deps.Directory.GetPlaceChannels(c.UserContext(), id)
		if !resp.Success {
			return respond(c, domain.Forward[domain.PlaceChannels](resp))
		}
		return respond(c, domain.OK(domain.PlaceChannels{PlaceID: id, Channels: resp.Payload}))
	}
}

// GetChannelHandler returns a single channel.
func GetChannelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respond(c, deps.Directory.GetChannel(c.UserContext(), c.Params("id")))
	}
}

// StreamURLHandler resolves the audio stream behind a channel.
func StreamURLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		resp := deps.Directory.ResolveStreamURL(c.UserContext(), id)
		if !resp.Success {
			return respond(c, domain.Forward[domain.StreamURL](resp))
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return respond(c, domain.OK(domain.StreamURL{ChannelID: id, URL: resp.Payload}))
	}
}

// SearchHandler runs a free-text directory search.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if len(query) > maxQueryLength {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		return respond(c, deps.Directory.Search(c.UserContext(), query))
	}
}

// GeolocationHandler returns the directory's view of the server's location.
func GeolocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := deps.Directory.GetGeolocation(c.UserContext())
		if resp.Success {
			c.Set(fiber.HeaderCacheControl, "private, max-age=60")
		}
		return respond(c, resp)
	}
}

// NearbyHandler ranks channels around an explicit point.
func NearbyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := parseCoordinate(c.Query("lat"), 90)
		if err != nil {
			return errBadRequest(c, "lat: "+err.Error())
		}
		lon, err := parseCoordinate(c.Query("lon"), 180)
		if err != nil {
			return errBadRequest(c, "lon: "+err.Error())
		}
		count, err := parseCount(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		target := domain.Coordinate{Latitude: lat, Longitude: lon}
		return respond(c, deps.Nearby.RankNearbyChannels(c.UserContext(), target, count))
	}
}

// NearbyAutoHandler ranks channels around the geolocated server address.
func NearbyAutoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := parseCount(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return respond(c, deps.Nearby.RankNearbyChannelsByGeolocation(c.UserContext(), count))
	}
}

// parseCoordinate parses a required decimal degree within [-bound, bound].
func parseCoordinate(raw string, bound float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errRequired
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errNotANumber
	}
	if v < -bound || v > bound {
		return 0, errOutOfRange
	}
	return v, nil
}

// parseCount reads the count parameter. Values <= 0 are passed through so
// the ranker can reject them with its own envelope.
func parseCount(c *fiber.Ctx) (int, error) {
	raw := c.Query("count")
	if raw == "" {
		return defaultNearbyCount, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errCountNotInt
	}
	if n > maxNearbyCount {
		return 0, errCountTooLarge
	}
	return n, nil
}
