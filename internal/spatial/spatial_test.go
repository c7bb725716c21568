package spatial

import (
	"testing"

	"github.com/jengzang/climate-map-go/internal/models"
)

func TestContains(t *testing.T) {
	bounds := models.Bounds{MinLat: 35, MinLon: 139, MaxLat: 36, MaxLon: 141}

	if !Contains(bounds, 35.683, 139.767) {
		t.Error("Tokyo should be inside")
	}
	if Contains(bounds, 39.933, 116.283) {
		t.Error("Beijing should be outside")
	}
	// Edges are inclusive.
	if !Contains(bounds, 35, 139) {
		t.Error("corner should be inside")
	}
}

func TestContainsAcrossAntimeridian(t *testing.T) {
	// A viewport over the Pacific: MinLon > MaxLon.
	bounds := models.Bounds{MinLat: 30, MinLon: 170, MaxLat: 50, MaxLon: -170}

	if !Contains(bounds, 40, 180) {
		t.Error("point on the antimeridian should be inside")
	}
	if !Contains(bounds, 40, -175) {
		t.Error("point east of the antimeridian should be inside")
	}
	if Contains(bounds, 40, 0) {
		t.Error("Greenwich should be outside")
	}
}

func TestIsZeroArea(t *testing.T) {
	tests := []struct {
		name   string
		bounds models.Bounds
		want   bool
	}{
		{"normal", models.Bounds{MinLat: 35, MinLon: 139, MaxLat: 36, MaxLon: 141}, false},
		{"point", models.Bounds{MinLat: 35, MinLon: 139, MaxLat: 35, MaxLon: 139}, true},
		{"zero value", models.Bounds{}, true},
		{"inverted lat", models.Bounds{MinLat: 36, MinLon: 139, MaxLat: 35, MaxLon: 141}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZeroArea(tt.bounds); got != tt.want {
				t.Errorf("IsZeroArea(%+v) = %v, want %v", tt.bounds, got, tt.want)
			}
		})
	}
}

func TestHaversineDistance(t *testing.T) {
	// Tokyo to Osaka is roughly 400 km.
	d := HaversineDistance(35.683, 139.767, 34.694, 135.502)
	if d < 380_000 || d > 420_000 {
		t.Errorf("Tokyo-Osaka distance = %.0f m", d)
	}

	if d := HaversineDistance(35.683, 139.767, 35.683, 139.767); d != 0 {
		t.Errorf("zero distance = %v", d)
	}
}
