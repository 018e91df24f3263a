package analysis

import (
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
)

// CentroidHeights projects the centroid of each frame onto axis.
func CentroidHeights(frames [][]dynamo.Vec3, axis dynamo.Vec3) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = mesh.Centroid(f).Dot(axis)
	}
	return out
}

// Spread returns the mean distance of particles from their centroid,
// divided by the same value for the first frame.
func Spread(frames [][]dynamo.Vec3) []float64 {
	out := make([]float64, len(frames))
	if len(frames) == 0 {
		return out
	}
	base := meanRadius(frames[0])
	for i, f := range frames {
		if base == 0 {
			out[i] = 1
			continue
		}
		out[i] = meanRadius(f) / base
	}
	return out
}

func meanRadius(points []dynamo.Vec3) float64 {
	if len(points) == 0 {
		return 0
	}
	c := mesh.Centroid(points)
	sum := 0.0
	for _, p := range points {
		sum += p.Sub(c).Len()
	}
	return sum / float64(len(points))
}

// Derivative estimates d(values)/dt with central differences, falling back
// to one-sided differences at the ends.
func Derivative(values, times []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n < 2 || len(times) != n {
		return out
	}
	for i := range values {
		lo, hi := max(i-1, 0), min(i+1, n-1)
		dt := times[hi] - times[lo]
		if dt != 0 {
			out[i] = (values[hi] - values[lo]) / dt
		}
	}
	return out
}

// Tail returns the part of values recorded at or after time from.
func Tail(values, times []float64, from float64) ([]float64, []float64) {
	for i, t := range times {
		if t >= from {
			return values[i:], times[i:]
		}
	}
	return nil, nil
}
