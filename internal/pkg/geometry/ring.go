package geometry

// IsClosed reports whether the first and last coordinates are exactly equal.
func IsClosed(ring []XY) bool {
	return len(ring) > 0 && ring[0] == ring[len(ring)-1]
}

// Close returns ring with its first coordinate appended when the ring does
// not already end where it starts. Equality is exact; no tolerance is applied.
func Close(ring []XY) []XY {
	if len(ring) == 0 || IsClosed(ring) {
		return ring
	}
	return append(ring, ring[0])
}

// DistinctCount returns the number of distinct coordinates in the ring.
func DistinctCount(ring []XY) int {
	seen := make(map[XY]struct{}, len(ring))
	for _, c := range ring {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// dedupe drops consecutive repeated coordinates, keeping the closing repeat.
func dedupe(ring []XY) []XY {
	out := make([]XY, 0, len(ring))
	for i, c := range ring {
		if i > 0 && c == out[len(out)-1] {
			continue
		}
		out = append(out, c)
	}
	return out
}
