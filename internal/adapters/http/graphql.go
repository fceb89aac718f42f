package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the directory and ranker.
// A failed envelope surfaces as a field error carrying its status and message.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"title":   &graphql.Field{Type: graphql.String},
			"country": &graphql.Field{Type: graphql.String},
			"url":     &graphql.Field{Type: graphql.String},
			"geo":     &graphql.Field{Type: coordinateType},
			"size":    &graphql.Field{Type: graphql.Int},
			"boost":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	channelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Channel",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"title":         &graphql.Field{Type: graphql.String},
			"url":           &graphql.Field{Type: graphql.String},
			"website":       &graphql.Field{Type: graphql.String},
			"secure":        &graphql.Field{Type: graphql.Boolean},
			"place_id":      &graphql.Field{Type: graphql.String},
			"place_title":   &graphql.Field{Type: graphql.String},
			"country_id":    &graphql.Field{Type: graphql.String},
			"country_title": &graphql.Field{Type: graphql.String},
			"listen_url": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ch, ok := p.Source.(domain.Channel)
					if !ok || ch.ID == "" {
						return nil, nil
					}
					return deps.Directory.ListenURL(ch.ID), nil
				},
			},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"score":        &graphql.Field{Type: graphql.Float},
			"type":         &graphql.Field{Type: graphql.String},
			"title":        &graphql.Field{Type: graphql.String},
			"subtitle":     &graphql.Field{Type: graphql.String},
			"country_code": &graphql.Field{Type: graphql.String},
			"url":          &graphql.Field{Type: graphql.String},
		},
	})

	channelRefType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelRef",
		Fields: graphql.Fields{
			"title":       &graphql.Field{Type: graphql.String},
			"url":         &graphql.Field{Type: graphql.String},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Page through the place listing",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPlacesLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					resp := deps.Directory.ListPlaces(p.Context)
					if err := resp.Err(); err != nil {
						return nil, err
					}
					page := paginate(resp.Payload, p.Args["offset"].(int), p.Args["limit"].(int),
						defaultPlacesLimit, maxPlacesLimit)
					return page.Data, nil
				},
			},
			"placeChannels": &graphql.Field{
				Type:        graphql.NewList(channelType),
				Description: "Channels broadcasting from a place",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					resp := deps.Directory.GetPlaceChannels(p.Context, p.Args["id"].(string))
					return resp.Payload, resp.Err()
				},
			},
			"channel": &graphql.Field{
				Type:        channelType,
				Description: "Get a channel by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					resp := deps.Directory.GetChannel(p.Context, p.Args["id"].(string))
					if err := resp.Err(); err != nil {
						return nil, err
					}
					return resp.Payload, nil
				},
			},
			"search": &graphql.Field{
				Type:        graphql.NewList(searchResultType),
				Description: "Search channels, places and countries",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					resp := deps.Directory.Search(p.Context, p.Args["query"].(string))
					return resp.Payload.Results, resp.Err()
				},
			},
			"nearby": &graphql.Field{
				Type:        graphql.NewList(channelRefType),
				Description: "Channels nearest to a point",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"count": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultNearbyCount},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					target := domain.Coordinate{
						Latitude:  p.Args["lat"].(float64),
						Longitude: p.Args["lon"].(float64),
					}
					count := p.Args["count"].(int)
					if count > maxNearbyCount {
						return nil, errCountTooLarge
					}
					resp := deps.Nearby.RankNearbyChannels(p.Context, target, count)
					return resp.Payload.Channels, resp.Err()
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
