package scope

import (
	"time"

	"github.com/itohio/goadc/pkg/report"
)

// Point is one report reduced to the three voltages that are plotted.
type Point struct {
	Time        time.Time
	Raw         float32
	Oversampled float32
	Filtered    float32
}

// PointFrom converts a report to calibrated volts.
func PointFrom(r report.Report) Point {
	return Point{
		Time:        r.Timestamp,
		Raw:         r.RawMV.Volts(),
		Oversampled: r.OversampledMV.Volts(),
		Filtered:    r.FilteredMV.Volts(),
	}
}

// History keeps the points that fall inside a sliding time window.
// Removal is based on timestamp, not number of points.
type History struct {
	window time.Duration
	points []Point
}

// NewHistory creates an empty history spanning window.
func NewHistory(window time.Duration) *History {
	return &History{window: window}
}

// Push appends p and drops the points older than p.Time - window.
func (h *History) Push(p Point) {
	h.points = append(h.points, p)

	cutoff := p.Time.Add(-h.window)
	drop := 0
	for drop < len(h.points) && h.points[drop].Time.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		h.points = append(h.points[:0], h.points[drop:]...)
	}
}

// Len returns the number of points held.
func (h *History) Len() int {
	return len(h.points)
}

// Points returns the held points, oldest first. The slice is shared until the next Push.
func (h *History) Points() []Point {
	return h.points
}

// Decimate copies src into dst, keeping at most maxPoints evenly spaced elements.
// dst is reused when it has enough capacity.
func Decimate[T any](dst, src []T, maxPoints int) []T {
	if maxPoints <= 0 || len(src) <= maxPoints {
		if cap(dst) >= len(src) {
			dst = dst[:len(src)]
		} else {
			dst = make([]T, len(src))
		}
		copy(dst, src)
		return dst
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]T, 0, maxPoints)
	}

	step := float64(len(src)) / float64(maxPoints)
	for i := 0; i < maxPoints; i++ {
		dst = append(dst, src[int(float64(i)*step)])
	}
	return dst
}

// Bounds returns the voltage range covering every series with a 10% margin.
func Bounds(points []Point) (lo, hi float32) {
	if len(points) == 0 {
		return 0, 1
	}

	lo, hi = points[0].Raw, points[0].Raw
	for _, p := range points {
		for _, v := range [...]float32{p.Raw, p.Oversampled, p.Filtered} {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

// TimeSpan returns the x range of points, at least window long.
func TimeSpan(points []Point, window time.Duration) (start, end time.Time) {
	if len(points) == 0 {
		now := time.Now()
		return now, now.Add(window)
	}

	start = points[0].Time
	end = points[len(points)-1].Time
	if end.Sub(start) < window {
		end = start.Add(window)
	}
	return start, end
}
