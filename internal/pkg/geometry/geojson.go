package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// LinearRing converts a ring into a go-geom linear ring, closing it first.
func LinearRing(ring []XY) (*geom.LinearRing, error) {
	closed := Close(append([]XY(nil), ring...))
	return geom.NewLinearRing(geom.XY).SetCoords(toCoords(closed))
}

// Perimeter returns the length of the closed ring in metres.
func Perimeter(ring []XY) float64 {
	lr, err := LinearRing(ring)
	if err != nil {
		return 0
	}
	return lr.Length()
}

// Extent returns the bounding box of the ring as min and max corners.
func Extent(ring []XY) (lo, hi XY) {
	if len(ring) == 0 {
		return XY{}, XY{}
	}
	lr, err := LinearRing(ring)
	if err != nil {
		return XY{}, XY{}
	}
	b := lr.Bounds()
	return XY{X: b.Min(0), Y: b.Min(1)}, XY{X: b.Max(0), Y: b.Max(1)}
}

// FeatureJSON encodes the ring as a GeoJSON Feature with a Polygon geometry.
func FeatureJSON(id string, ring []XY, props map[string]interface{}) (json.RawMessage, error) {
	closed := Close(append([]XY(nil), ring...))
	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{toCoords(closed)})
	if err != nil {
		return nil, fmt.Errorf("build polygon: %w", err)
	}
	data, err := json.Marshal(&geojson.Feature{
		ID:         id,
		Geometry:   poly,
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

func toCoords(ring []XY) []geom.Coord {
	coords := make([]geom.Coord, len(ring))
	for i, c := range ring {
		coords[i] = geom.Coord{c.X, c.Y}
	}
	return coords
}
