package domain

// Coordinate is a planar grid position in metres.
type Coordinate struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// Bounds is the planar bounding box of a ring.
type Bounds struct {
	MinEasting  float64 `json:"min_easting"`
	MinNorthing float64 `json:"min_northing"`
	MaxEasting  float64 `json:"max_easting"`
	MaxNorthing float64 `json:"max_northing"`
}

// Width is the east-west extent of the box.
func (b Bounds) Width() float64 { return b.MaxEasting - b.MinEasting }

// Height is the north-south extent of the box.
func (b Bounds) Height() float64 { return b.MaxNorthing - b.MinNorthing }
