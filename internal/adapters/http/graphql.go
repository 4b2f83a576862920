package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
)

// buildSchema creates the GraphQL schema wired to the boundary service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"easting":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"northing": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	segmentInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SegmentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"from_point": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"to_point":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"bearing":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"distance":   &graphql.InputObjectFieldConfig{Type: graphql.Float},
		},
	})

	boundaryInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "BoundaryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"points":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pointInput)))},
			"segments": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(segmentInput)))},
		},
	})

	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"easting":  &graphql.Field{Type: graphql.Float},
			"northing": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_easting":  &graphql.Field{Type: graphql.Float},
			"min_northing": &graphql.Field{Type: graphql.Float},
			"max_easting":  &graphql.Field{Type: graphql.Float},
			"max_northing": &graphql.Field{Type: graphql.Float},
		},
	})

	diagnosticsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Diagnostics",
		Fields: graphql.Fields{
			"perimeter_m":       &graphql.Field{Type: graphql.Float},
			"orientation":       &graphql.Field{Type: graphql.String},
			"simple":            &graphql.Field{Type: graphql.Boolean},
			"distinct_vertices": &graphql.Field{Type: graphql.Int},
			"bounds":            &graphql.Field{Type: boundsType},
		},
	})

	legType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LegCheck",
		Fields: graphql.Fields{
			"segment":             &graphql.Field{Type: graphql.Int},
			"from":                &graphql.Field{Type: graphql.String},
			"to":                  &graphql.Field{Type: graphql.String},
			"observed_azimuth":    &graphql.Field{Type: graphql.Float},
			"computed_azimuth":    &graphql.Field{Type: graphql.Float},
			"observed_distance_m": &graphql.Field{Type: graphql.Float},
			"computed_distance_m": &graphql.Field{Type: graphql.Float},
			"offset_m":            &graphql.Field{Type: graphql.Float},
			"within_tolerance":    &graphql.Field{Type: graphql.Boolean},
		},
	})

	closureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Closure",
		Fields: graphql.Fields{
			"start":               &graphql.Field{Type: graphql.String},
			"misclosure_easting":  &graphql.Field{Type: graphql.Float},
			"misclosure_northing": &graphql.Field{Type: graphql.Float},
			"misclosure_m":        &graphql.Field{Type: graphql.Float},
			"traverse_length_m":   &graphql.Field{Type: graphql.Float},
			"precision_ratio":     &graphql.Field{Type: graphql.Float},
			"tolerance_m":         &graphql.Field{Type: graphql.Float},
			"within_tolerance":    &graphql.Field{Type: graphql.Boolean},
			"legs":                &graphql.Field{Type: graphql.NewList(legType)},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundaryReport",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"area_sqm":     &graphql.Field{Type: graphql.Float},
			"coordinates":  &graphql.Field{Type: graphql.NewList(coordinateType)},
			"diagnostics":  &graphql.Field{Type: diagnosticsType},
			"closure":      &graphql.Field{Type: closureType},
			"warnings":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"image_base64": &graphql.Field{Type: graphql.String},
			"render_error": &graphql.Field{Type: graphql.String},
			"computed_at":  &graphql.Field{Type: graphql.DateTime},
			"geojson": &graphql.Field{
				Type:        graphql.String,
				Description: "GeoJSON Feature of the boundary polygon",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(*domain.BoundaryReport); ok && len(r.GeoJSON) > 0 {
						return string(r.GeoJSON), nil
					}
					return nil, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"computeArea": &graphql.Field{
				Type:        reportType,
				Description: "Compute the area enclosed by a surveyed boundary",
				Args: graphql.FieldConfigArgument{
					"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(boundaryInput)},
					"render":    &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"tolerance": &graphql.ArgumentConfig{Type: graphql.Float, Description: "Closure tolerance in metres; the configured value when omitted"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input, err := decodeBoundaryArg(p.Args["input"])
					if err != nil {
						return nil, err
					}
					render, _ := p.Args["render"].(bool)
					opts := usecases.AnalyzeOptions{Render: render}
					if t, ok := p.Args["tolerance"].(float64); ok {
						opts.ToleranceM = &t
					}
					return deps.Boundaries.Analyze(p.Context, input, opts)
				},
			},
			"bearing": &graphql.Field{
				Type:        graphql.Float,
				Description: "Convert a quadrant bearing or azimuth to decimal degrees from north",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return geometry.ParseBearing(p.Args["value"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// decodeBoundaryArg converts the coerced input object into the domain type.
func decodeBoundaryArg(arg interface{}) (domain.BoundaryInput, error) {
	var input domain.BoundaryInput
	raw, err := json.Marshal(arg)
	if err != nil {
		return input, fmt.Errorf("encode input: %w", err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("decode input: %w", err)
	}
	return input, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
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
