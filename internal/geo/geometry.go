// Package geo provides pure helpers over polygon rings describing field
// boundaries: area estimation, bounding box and centroid extraction.
package geo

import "math"

// metersPerDegree is the flat equirectangular approximation of one degree
// of arc.  The error grows away from the equator and with polygon size;
// for sports-field-sized shapes it stays within rounding noise, but the
// estimate is not invariant to latitude.
const metersPerDegree = 111111.0

// Point is a single vertex of a boundary ring.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the axis-aligned bounding box of a ring.
type Bounds struct {
	TopLeft     Point `json:"top_left"`     // max latitude, min longitude
	BottomRight Point `json:"bottom_right"` // min latitude, max longitude
}

// EstimateArea applies the shoelace formula to the vertex ring and converts
// the squared-degree result to square meters, rounded to the nearest
// integer.  A ring with fewer than three distinct vertices has no area.
func EstimateArea(ring []Point) int64 {
	pts := openRing(ring)
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].Lng*pts[j].Lat - pts[j].Lng*pts[i].Lat
	}
	sqDeg := math.Abs(sum) / 2
	return int64(math.Round(sqDeg * metersPerDegree * metersPerDegree))
}

// BoundingBox returns the min/max extent of the ring.  The zero Bounds is
// returned for an empty ring.
func BoundingBox(ring []Point) Bounds {
	pts := openRing(ring)
	if len(pts) == 0 {
		return Bounds{}
	}
	minLat, maxLat := pts[0].Lat, pts[0].Lat
	minLng, maxLng := pts[0].Lng, pts[0].Lng
	for _, p := range pts[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLng = math.Min(minLng, p.Lng)
		maxLng = math.Max(maxLng, p.Lng)
	}
	return Bounds{
		TopLeft:     Point{Lat: maxLat, Lng: minLng},
		BottomRight: Point{Lat: minLat, Lng: maxLng},
	}
}

// Centroid returns the arithmetic mean of the ring's vertices.  The closing
// vertex, when present, is not double-counted.
func Centroid(ring []Point) Point {
	pts := openRing(ring)
	if len(pts) == 0 {
		return Point{}
	}
	var lat, lng float64
	for _, p := range pts {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(pts))
	return Point{Lat: lat / n, Lng: lng / n}
}

// openRing strips the duplicated closing vertex of a closed ring.
func openRing(ring []Point) []Point {
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		return ring[:n-1]
	}
	return ring
}
