package labeltransfer

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellscope/geometry"
)

// squareRing 100x100 square at the origin.
var squareRing = []float64{0, 0, 100, 0, 100, 100, 0, 100}

// uRing A U shape whose centroid falls in the notch, outside the region.
var uRing = []float64{0, 0, 90, 0, 90, 90, 60, 90, 60, 30, 30, 30, 30, 90, 0, 90}

func insideOrTouching(t *testing.T, ring []float64, p Point) bool {
	t.Helper()
	poly, ok := geometry.PolygonFromRing(ring)
	require.True(t, ok)
	return geom.Point{X: p.X, Y: p.Y}.Within(poly) != geom.Outside
}

func TestGeneratePositiveReturnsRequestedCount(t *testing.T) {
	for count := 1; count <= 3; count++ {
		points := GeneratePositive(squareRing, count)
		assert.Len(t, points, count)
	}
}

func TestGeneratePositiveFirstPointIsCentroid(t *testing.T) {
	points := GeneratePositive(squareRing, 1)
	require.Len(t, points, 1)

	assert.InDelta(t, 50, points[0].X, 1)
	assert.InDelta(t, 50, points[0].Y, 1)
	assert.True(t, points[0].IsPositive)
}

func TestGeneratePositiveAllInsideConvex(t *testing.T) {
	for _, p := range GeneratePositive(squareRing, 3) {
		assert.True(t, insideOrTouching(t, squareRing, p), "point (%v, %v)", p.X, p.Y)
	}
}

func TestGeneratePositiveConcaveCentroidOutside(t *testing.T) {
	poly, ok := geometry.PolygonFromRing(uRing)
	require.True(t, ok)
	// Precondition for this test: the naive centroid is in the notch.
	require.NotEqual(t, geom.Inside, poly.Centroid().Within(poly))

	points := GeneratePositive(uRing, 3)
	require.Len(t, points, 3)
	for _, p := range points {
		assert.True(t, insideOrTouching(t, uRing, p), "point (%v, %v)", p.X, p.Y)
	}
}

func TestGeneratePositiveSpreadsAlongDominantAxis(t *testing.T) {
	// 200x50 rectangle: extra points fan out horizontally.
	ring := []float64{0, 0, 200, 0, 200, 50, 0, 50}
	points := GeneratePositive(ring, 3)
	require.Len(t, points, 3)

	assert.InDelta(t, points[0].Y, points[1].Y, 1e-9)
	assert.InDelta(t, points[0].Y, points[2].Y, 1e-9)
	assert.NotEqual(t, points[0].X, points[1].X)
}

func TestGeneratePositiveInvalidRing(t *testing.T) {
	assert.Nil(t, GeneratePositive([]float64{0, 0, 1, 1}, 2))
	assert.Nil(t, GeneratePositive(squareRing, 0))
}

func TestGenerateNegativeOutsidePolygonAndBBox(t *testing.T) {
	bbox := []float64{0, 0, 100, 100}
	points := GenerateNegative(bbox, squareRing, 3)
	require.Len(t, points, 3)

	poly, ok := geometry.PolygonFromRing(squareRing)
	require.True(t, ok)
	for _, p := range points {
		assert.NotEqual(t, geom.Inside, geom.Point{X: p.X, Y: p.Y}.Within(poly))
		outsideBBox := p.X < bbox[0] || p.X > bbox[0]+bbox[2] ||
			p.Y < bbox[1] || p.Y > bbox[1]+bbox[3]
		assert.True(t, outsideBBox, "point (%v, %v) inside bbox", p.X, p.Y)
		assert.False(t, p.IsPositive)
	}
}

func TestGenerateNegativeFallsBackToCorners(t *testing.T) {
	// More points requested than edge midpoints accepted still succeeds
	// through the corner candidates.
	points := GenerateNegative([]float64{0, 0, 100, 100}, squareRing, 3)
	assert.Len(t, points, 3)
}

func TestGenerateNegativeShortListWhenSwallowed(t *testing.T) {
	// The polygon dwarfs the bbox: every outward candidate is inside it.
	bigRing := []float64{-100, -100, 200, -100, 200, 200, -100, 200}
	points := GenerateNegative([]float64{50, 50, 20, 20}, bigRing, 3)
	assert.Empty(t, points)
}

func TestGenerateNegativeZeroCount(t *testing.T) {
	assert.Empty(t, GenerateNegative([]float64{0, 0, 100, 100}, squareRing, 0))
}

func TestRepresentativePointInsideConcave(t *testing.T) {
	poly, ok := geometry.PolygonFromRing(uRing)
	require.True(t, ok)

	p := representativePoint(poly)
	assert.Equal(t, geom.Inside, p.Within(poly))
}
