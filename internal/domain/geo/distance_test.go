//go:build !integration

package geo_test

import (
	"math"
	"testing"

	"food-rescue-rewards/internal/domain/geo"
)

func TestDistance_ZeroForSamePoint(t *testing.T) {
	if d := geo.Distance(0, 0, 0, 0); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestDistance_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude along a meridian is ~111.19 km.
	d := geo.Distance(0, 0, 1, 0)
	want := 111194.0
	if math.Abs(d-want)/want > 0.01 {
		t.Errorf("expected ~%v m (±1%%), got %v", want, d)
	}
}

func TestValidateProximity_BoundaryAroundRadius(t *testing.T) {
	// ~1 degree latitude is ~111194 m, so 1 m is ~1/111194 degrees.
	degPerMeter := 1.0 / 111194.0

	t.Run("999 m is accepted", func(t *testing.T) {
		v := geo.ValidateProximity(0, 0, 999*degPerMeter, 0, 1000)
		if !v.OK {
			t.Errorf("expected pass at %.0f m", v.DistanceMeters)
		}
	})

	t.Run("1001 m is rejected", func(t *testing.T) {
		v := geo.ValidateProximity(0, 0, 1001*degPerMeter, 0, 1000)
		if v.OK {
			t.Errorf("expected rejection at %.0f m", v.DistanceMeters)
		}
		if v.MaxMeters != 1000 {
			t.Errorf("expected max 1000, got %v", v.MaxMeters)
		}
	})
}

func TestValidCoordinates(t *testing.T) {
	if !geo.ValidCoordinates(32.0, 34.8) {
		t.Error("expected valid")
	}
	if geo.ValidCoordinates(91, 0) || geo.ValidCoordinates(0, -181) {
		t.Error("expected out-of-range coordinates to be invalid")
	}
}
