package normals

// Class labels a measurement relative to a reference range
type Class string

const (
	// ClassLow is a value at or below the 2nd percentile
	ClassLow Class = "low"
	// ClassBorderlineLow is a value in the lower 10% of the normal span
	ClassBorderlineLow Class = "borderline_low"
	// ClassNormal is a value in the central band
	ClassNormal Class = "normal"
	// ClassBorderlineHigh is a value in the upper 10% of the normal span
	ClassBorderlineHigh Class = "borderline_high"
	// ClassHigh is a value at or above the 98th percentile
	ClassHigh Class = "high"
)

// borderlineFraction of the [p2,p98] span adjacent to each limit
const borderlineFraction = 0.1

// Classify labels value against r. Values exactly at p2 or p98 count as
// low/high, so the borderline zones sit strictly inside the hard limits
func Classify(value float64, r NormalRange) Class {
	if value <= r.P2 {
		return ClassLow
	}
	if value >= r.P98 {
		return ClassHigh
	}
	bw := (r.P98 - r.P2) * borderlineFraction
	if value < r.P2+bw {
		return ClassBorderlineLow
	}
	if value > r.P98-bw {
		return ClassBorderlineHigh
	}
	return ClassNormal
}

// EstimatePercentile maps value onto [0,100] piecewise-linearly through
// the (p2,2), (p50,50), (p98,98) anchors. Outside [p2,p98] the slope
// halves, clamped to the [0,100] bounds. A degenerate half-range falls
// back to a 0.5 ratio instead of dividing by zero
func EstimatePercentile(value float64, r NormalRange) float64 {
	lowSpan := r.P50 - r.P2
	highSpan := r.P98 - r.P50

	switch {
	case value < r.P2:
		if lowSpan <= 0 {
			return 2
		}
		p := 2 - (r.P2-value)*(48/lowSpan)*0.5
		return clamp(p, 0, 100)
	case value > r.P98:
		if highSpan <= 0 {
			return 98
		}
		p := 98 + (value-r.P98)*(48/highSpan)*0.5
		return clamp(p, 0, 100)
	case value <= r.P50:
		ratio := 0.5
		if lowSpan > 0 {
			ratio = (value - r.P2) / lowSpan
		}
		return 2 + ratio*48
	default:
		ratio := 0.5
		if highSpan > 0 {
			ratio = (value - r.P50) / highSpan
		}
		return 50 + ratio*48
	}
}

// ZScore is 0 at p50 and reaches -2/+2 at p2/p98, scaling each side by
// its own half-range so asymmetric reference ranges keep their shape.
// Degenerate half-ranges return 0
func ZScore(value float64, r NormalRange) float64 {
	if value <= r.P50 {
		span := r.P50 - r.P2
		if span <= 0 {
			return 0
		}
		return -2 * (r.P50 - value) / span
	}
	span := r.P98 - r.P50
	if span <= 0 {
		return 0
	}
	return 2 * (value - r.P50) / span
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
