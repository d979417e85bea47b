// Package labeltransfer derives SAM seed points from an annotated region
// so the same structure can be re-segmented on a neighboring slice.
package labeltransfer

import (
	"sort"

	"github.com/ctessum/geom"

	"cellscope/geometry"
)

// Point A single seed point for the segmentation model.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	IsPositive bool    `json:"is_positive"`
}

// negativeMargin Distance in pixels that negative candidates are pushed
// outward from the bounding box.
const negativeMargin = 10.0

// interiorSearchSteps Number of evenly spaced samples walked from an
// outside candidate toward the centroid when hunting for an interior point.
const interiorSearchSteps = 10

// GeneratePositive Generate count points inside the ring, centroid first.
// Additional points are spread along the dominant bbox axis at ±extent/3;
// candidates falling outside a concave region are walked back toward the
// centroid until they land inside.
func GeneratePositive(ring []float64, count int) []Point {
	if count < 1 {
		return nil
	}
	poly, ok := geometry.PolygonFromRing(ring)
	if !ok {
		return nil
	}

	first := poly.Centroid()
	if first.Within(poly) != geom.Inside {
		// Concave shapes can push the centroid outside the region.
		first = representativePoint(poly)
	}
	points := []Point{{X: first.X, Y: first.Y, IsPositive: true}}
	if count == 1 {
		return points
	}

	b := poly.Bounds()
	width := b.Max.X - b.Min.X
	height := b.Max.Y - b.Min.Y

	for _, offset := range axisOffsets(count - 1) {
		var candidate geom.Point
		if width >= height {
			candidate = geom.Point{X: first.X + offset*(width/3), Y: first.Y}
		} else {
			candidate = geom.Point{X: first.X, Y: first.Y + offset*(height/3)}
		}
		if candidate.Within(poly) != geom.Inside {
			candidate = findPointInside(poly, candidate)
		}
		points = append(points, Point{X: candidate.X, Y: candidate.Y, IsPositive: true})
	}

	if len(points) > count {
		points = points[:count]
	}
	return points
}

// GenerateNegative Generate up to count points outside the ring, placed a
// fixed margin outside the bounding box: edge midpoints first, then
// corners. Candidates swallowed by the polygon are skipped, so the result
// may be shorter than requested.
func GenerateNegative(bbox []float64, ring []float64, count int) []Point {
	if count < 1 || len(bbox) < 4 {
		return nil
	}
	x, y, w, h := bbox[0], bbox[1], bbox[2], bbox[3]

	poly, havePoly := geometry.PolygonFromRing(ring)

	candidates := []geom.Point{
		{X: x + w/2, Y: y - negativeMargin},     // above top edge
		{X: x + w + negativeMargin, Y: y + h/2}, // right of right edge
		{X: x + w/2, Y: y + h + negativeMargin}, // below bottom edge
		{X: x - negativeMargin, Y: y + h/2},     // left of left edge
		{X: x - negativeMargin, Y: y - negativeMargin},
		{X: x + w + negativeMargin, Y: y - negativeMargin},
		{X: x + w + negativeMargin, Y: y + h + negativeMargin},
		{X: x - negativeMargin, Y: y + h + negativeMargin},
	}

	var points []Point
	for _, candidate := range candidates {
		if len(points) >= count {
			break
		}
		if havePoly && candidate.Within(poly) == geom.Inside {
			continue
		}
		points = append(points, Point{X: candidate.X, Y: candidate.Y, IsPositive: false})
	}
	return points
}

// axisOffsets Offset multipliers for the extra positive points. Two extra
// points flank the primary one; a single extra point goes forward.
func axisOffsets(n int) []float64 {
	if n == 1 {
		return []float64{1}
	}
	return []float64{-1, 1}
}

// findPointInside Walk from the candidate toward the centroid and return
// the first sample strictly inside the polygon, falling back to the
// guaranteed-interior representative point.
func findPointInside(poly geom.Polygon, candidate geom.Point) geom.Point {
	centroid := poly.Centroid()
	for i := 0; i < interiorSearchSteps; i++ {
		t := float64(i) / float64(interiorSearchSteps-1)
		sample := geom.Point{
			X: candidate.X + t*(centroid.X-candidate.X),
			Y: candidate.Y + t*(centroid.Y-candidate.Y),
		}
		if sample.Within(poly) == geom.Inside {
			return sample
		}
	}
	return representativePoint(poly)
}

// representativePoint Interior point for polygons whose centroid falls
// outside: the midpoint of a span of a horizontal scanline through the
// bbox center. Spans are tried widest first.
func representativePoint(poly geom.Polygon) geom.Point {
	b := poly.Bounds()
	scanY := (b.Min.Y + b.Max.Y) / 2

	var crossings []float64
	for _, contour := range poly {
		n := len(contour)
		for i := 0; i < n; i++ {
			p1 := contour[i]
			p2 := contour[(i+1)%n]
			if (p1.Y <= scanY) == (p2.Y <= scanY) {
				continue
			}
			crossings = append(crossings, p1.X+(scanY-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y))
		}
	}
	if len(crossings) < 2 {
		return poly.Centroid()
	}
	sort.Float64s(crossings)

	type span struct{ lo, hi float64 }
	spans := make([]span, 0, len(crossings)/2)
	for i := 0; i+1 < len(crossings); i += 2 {
		spans = append(spans, span{crossings[i], crossings[i+1]})
	}
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].hi-spans[i].lo > spans[j].hi-spans[j].lo
	})

	for _, s := range spans {
		mid := geom.Point{X: (s.lo + s.hi) / 2, Y: scanY}
		if mid.Within(poly) == geom.Inside {
			return mid
		}
	}
	return geom.Point{X: (spans[0].lo + spans[0].hi) / 2, Y: scanY}
}
