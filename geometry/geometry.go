package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	log "github.com/sirupsen/logrus"
)

// Operation selects how a brush stroke combines with the existing shape.
type Operation string

const (
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
)

// brushSegments Number of segments approximating a full circle in brush
// discs, end caps and joins.
const brushSegments = 32

// strokeNudge Offset used to retry a remove whose brush edges exactly
// coincide with the shape's own edges; the clipper can return the subject
// unchanged for such alignments.
const strokeNudge = 1e-3

var (
	// ErrNoValidGeometry No input ring could be turned into a valid polygon.
	ErrNoValidGeometry = errors.New("no valid geometry in input")
	// ErrEmptyResult The boolean operation erased the shape completely.
	ErrEmptyResult = errors.New("operation produced empty geometry")
)

// Result The outcome of a geometric edit: the new multi-ring segmentation
// together with its recomputed bounding box and exact area.
type Result struct {
	Segmentation [][]float64
	BBox         []float64 // [x, y, width, height]
	Area         float64
}

// PolygonFromRing Build a simple polygon from a flat [x1,y1,x2,y2,...] ring.
// Self-intersecting rings are repaired through a normalizing self-union;
// rings with fewer than 3 points, or that stay degenerate after repair,
// are rejected.
func PolygonFromRing(ring []float64) (geom.Polygon, bool) {
	if len(ring) < 6 || len(ring)%2 != 0 {
		return nil, false
	}
	pts := make([]geom.Point, 0, len(ring)/2)
	for i := 0; i < len(ring); i += 2 {
		pts = append(pts, geom.Point{X: ring[i], Y: ring[i+1]})
	}
	p := geom.Polygon{pts}
	if ringIsSimple(pts) {
		if p.Area() == 0 {
			log.Debug("Dropping zero-area ring")
			return nil, false
		}
		return p, true
	}
	// The clipper subdivides the contour at its crossings and keeps the
	// covered region, same as a zero-radius buffer.
	repaired := asPolygon(p.Union(p))
	if len(repaired) == 0 || repaired.Area() == 0 {
		log.Debug("Dropping unrepairable self-intersecting ring")
		return nil, false
	}
	return repaired, true
}

// MergeUnion Union every valid ring polygon across all input segmentations
// into one multi-ring geometry. Overlap between inputs is counted once in
// the returned area.
func MergeUnion(segmentations [][][]float64) (*Result, error) {
	var polys []geom.Polygon
	for _, segmentation := range segmentations {
		polys = append(polys, polygonsFromSegmentation(segmentation)...)
	}
	if len(polys) == 0 {
		return nil, ErrNoValidGeometry
	}
	merged := unionAll(polys)
	if merged == nil || merged.Area() == 0 {
		return nil, ErrNoValidGeometry
	}
	return resultFromShape(merged, ErrNoValidGeometry)
}

// ApplyBrush Apply a brush stroke of the given radius along path to an
// existing segmentation. OpAdd unions the brush shape into the geometry,
// OpRemove subtracts it. A result with no remaining geometry reports
// ErrEmptyResult ("fully erased").
func ApplyBrush(segmentation [][]float64, path []geom.Point, radius float64, op Operation) (*Result, error) {
	current := polygonsFromSegmentation(segmentation)
	if len(current) == 0 {
		return nil, ErrNoValidGeometry
	}
	if len(path) == 0 {
		return nil, ErrNoValidGeometry
	}
	brush := brushShape(path, radius)

	shape := unionAll(current)
	switch op {
	case OpAdd:
		shape = shape.Union(brush)
	case OpRemove:
		result := shape.Difference(brush)
		if result != nil && result.Area() == shape.Area() {
			// A stroke exactly aligned with one of the shape's edges can
			// no-op in the clipper; retry with the stroke nudged off the
			// degenerate alignment.
			result = shape.Difference(brushShape(nudgePath(path), radius))
		}
		shape = result
	default:
		return nil, fmt.Errorf("unknown brush operation %q", op)
	}
	if shape == nil || shape.Area() == 0 {
		return nil, ErrEmptyResult
	}
	return resultFromShape(shape, ErrEmptyResult)
}

// polygonsFromSegmentation Convert each ring of a segmentation to a
// polygon, dropping invalid rings.
func polygonsFromSegmentation(segmentation [][]float64) []geom.Polygon {
	var polys []geom.Polygon
	for _, ring := range segmentation {
		if p, ok := PolygonFromRing(ring); ok {
			polys = append(polys, p)
		}
	}
	return polys
}

// unionAll Fold a list of polygons into their union.
func unionAll(polys []geom.Polygon) geom.Polygonal {
	var u geom.Polygonal = polys[0]
	for _, p := range polys[1:] {
		u = u.Union(p)
	}
	return u
}

// asPolygon Flatten a boolean result to a concrete polygon, collecting the
// contours of every member of a multi-polygon.
func asPolygon(shape geom.Polygonal) geom.Polygon {
	switch s := shape.(type) {
	case geom.Polygon:
		return s
	case geom.MultiPolygon:
		var p geom.Polygon
		for _, sub := range s {
			p = append(p, sub...)
		}
		return p
	}
	return nil
}

// resultFromShape Decompose a boolean result into the flat ring format and
// recompute bbox and area. Area and bounds are taken before hole contours
// are dropped, so a carved hole still subtracts from the stored area even
// though the ring format cannot express it.
func resultFromShape(shape geom.Polygonal, emptyErr error) (*Result, error) {
	rings := ringsFromShape(shape)
	if len(rings) == 0 {
		return nil, emptyErr
	}
	b := shape.Bounds()
	return &Result{
		Segmentation: rings,
		BBox:         []float64{b.Min.X, b.Min.Y, b.Max.X - b.Min.X, b.Max.Y - b.Min.Y},
		Area:         shape.Area(),
	}, nil
}

// ringsFromShape Emit one flat ring per exterior contour of a boolean
// result. Interior (hole) contours are identified by nesting parity and
// dropped: the wire format has no hole representation.
func ringsFromShape(shape geom.Polygonal) [][]float64 {
	var rings [][]float64
	switch s := shape.(type) {
	case geom.Polygon:
		for i, contour := range s {
			if contourDepth(s, i)%2 != 0 {
				log.Debug("Dropping interior hole contour from result")
				continue
			}
			if ring := flattenContour(contour); ring != nil {
				rings = append(rings, ring)
			}
		}
	case geom.MultiPolygon:
		for _, p := range s {
			rings = append(rings, ringsFromShape(p)...)
		}
	}
	return rings
}

// contourDepth Number of sibling contours that contain contour i. Even
// depth means an exterior boundary, odd depth a hole.
func contourDepth(p geom.Polygon, i int) int {
	depth := 0
	for j, other := range p {
		if j == i || len(other) < 3 {
			continue
		}
		if contourContains(geom.Polygon{other}, p[i]) {
			depth++
		}
	}
	return depth
}

// contourContains Whether the candidate contour lies inside other. A hole
// tangent to its exterior has vertices exactly on the boundary, so probing
// continues until a vertex is decisively inside or outside; a contour
// whose every vertex touches the boundary counts as contained.
func contourContains(other geom.Polygon, contour []geom.Point) bool {
	for _, v := range contour {
		switch v.Within(other) {
		case geom.Inside:
			return true
		case geom.Outside:
			return false
		}
	}
	return true
}

// flattenContour Flatten a contour to [x1,y1,...], dropping a repeated
// closing point. Contours with fewer than 3 remaining points are discarded.
func flattenContour(contour []geom.Point) []float64 {
	pts := contour
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil
	}
	ring := make([]float64, 0, len(pts)*2)
	for _, pt := range pts {
		ring = append(ring, pt.X, pt.Y)
	}
	return ring
}

// brushShape Build the fillable brush polygon: a disc for a single-point
// path, otherwise the radius-wide corridor around the polyline with round
// end caps and round joins (per-vertex discs unioned with per-segment
// quads).
func brushShape(path []geom.Point, radius float64) geom.Polygonal {
	var shape geom.Polygonal = disc(path[0], radius)
	for i := 1; i < len(path); i++ {
		shape = shape.Union(disc(path[i], radius))
		if quad, ok := corridor(path[i-1], path[i], radius); ok {
			shape = shape.Union(quad)
		}
	}
	return shape
}

// nudgePath Shift every stroke point by a sub-pixel offset, off any exact
// alignment with the shape being edited.
func nudgePath(path []geom.Point) []geom.Point {
	nudged := make([]geom.Point, len(path))
	for i, p := range path {
		nudged[i] = geom.Point{X: p.X + strokeNudge, Y: p.Y + strokeNudge}
	}
	return nudged
}

// disc Regular polygon approximating the circle of the given radius.
func disc(center geom.Point, radius float64) geom.Polygon {
	pts := make([]geom.Point, brushSegments)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / brushSegments
		pts[i] = geom.Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return geom.Polygon{pts}
}

// corridor Rectangle of width 2*radius around the segment a-b. Reports
// false for zero-length segments.
func corridor(a, b geom.Point, radius float64) (geom.Polygon, bool) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil, false
	}
	// Unit normal scaled to the brush radius.
	nx := -dy / length * radius
	ny := dx / length * radius
	return geom.Polygon{{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}}, true
}

// ringIsSimple Report whether no two non-adjacent edges of the closed ring
// properly cross each other.
func ringIsSimple(pts []geom.Point) bool {
	n := len(pts)
	for i := 0; i < n; i++ {
		a1 := pts[i]
		a2 := pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			b1 := pts[j]
			b2 := pts[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

// segmentsCross Proper intersection test between segments a1-a2 and b1-b2.
func segmentsCross(a1, a2, b1, b2 geom.Point) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(o, a, b geom.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
