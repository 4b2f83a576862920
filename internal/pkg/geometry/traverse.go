package geometry

import "math"

// misclosureEpsilon absorbs trigonometric rounding on traverses that close
// exactly on paper.
const misclosureEpsilon = 1e-9

// Leg is one observed traverse course.
type Leg struct {
	Azimuth  float64 // degrees clockwise from grid north
	Distance float64 // metres
}

// End returns where the leg finishes when observed from start.
func (l Leg) End(start XY) XY {
	theta := toRad(l.Azimuth)
	return XY{
		X: start.X + l.Distance*math.Sin(theta),
		Y: start.Y + l.Distance*math.Cos(theta),
	}
}

// Closure is the outcome of running a traverse from a known start.
type Closure struct {
	End        XY
	DeltaX     float64 // start minus end, easting
	DeltaY     float64 // start minus end, northing
	Misclosure float64
	Length     float64
	// Precision is Length/Misclosure ("1 in N"); zero when the traverse closes.
	Precision float64
}

// RunTraverse walks the legs from start and reports how far the traverse
// ends from where it began.
func RunTraverse(start XY, legs []Leg) Closure {
	pos := start
	var length float64
	for _, l := range legs {
		pos = l.End(pos)
		length += l.Distance
	}

	c := Closure{
		End:    pos,
		DeltaX: start.X - pos.X,
		DeltaY: start.Y - pos.Y,
		Length: length,
	}
	c.Misclosure = math.Hypot(c.DeltaX, c.DeltaY)
	if c.Misclosure < misclosureEpsilon {
		c.DeltaX, c.DeltaY, c.Misclosure = 0, 0, 0
	} else {
		c.Precision = length / c.Misclosure
	}
	return c
}
