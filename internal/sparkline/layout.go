package sparkline

import "math"

type Point struct {
	X, Y float64
}

// Layout maps values onto a width x height surface with pad pixels on
// every side. The vertical range always spans at least [0, 1], so flat or
// all-zero series stay inside the surface. Non-finite values plot as 0.
func Layout(values []float64, width, height, pad float64) []Point {
	if len(values) == 0 {
		return nil
	}

	clean := make([]float64, len(values))
	hi, lo := 1.0, 0.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		clean[i] = v
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	step := (width - 2*pad) / float64(max(1, len(clean)-1))

	points := make([]Point, len(clean))
	for i, v := range clean {
		t := (v - lo) / span
		points[i] = Point{
			X: pad + step*float64(i),
			Y: (height - pad) - t*(height-2*pad),
		}
	}
	return points
}
