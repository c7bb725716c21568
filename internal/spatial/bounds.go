package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/jengzang/climate-map-go/internal/models"
)

// RectFromBounds converts degree bounds into an s2.Rect. When MinLon is
// greater than MaxLon the rectangle spans the antimeridian; s2 picks the
// shorter longitude interval, which matches what a map viewport reports.
func RectFromBounds(b models.Bounds) s2.Rect {
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(b.MinLat, b.MinLon))
	return rect.AddPoint(s2.LatLngFromDegrees(b.MaxLat, b.MaxLon))
}

// IsZeroArea reports whether the bounds enclose no area at all. A map that
// has not finished layout yet can report such degenerate bounds.
func IsZeroArea(b models.Bounds) bool {
	return b.MinLat >= b.MaxLat || b.MinLon == b.MaxLon
}

// Contains reports whether the given coordinates fall within the bounds.
// Zero-area bounds contain nothing.
func Contains(b models.Bounds, lat, lon float64) bool {
	if IsZeroArea(b) {
		return false
	}
	return RectFromBounds(b).ContainsLatLng(s2.LatLngFromDegrees(lat, lon))
}
