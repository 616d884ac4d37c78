package mesh

import (
	"math"
	"testing"
)

func TestWithinTriangle(t *testing.T) {
	vals := [3]float64{1, 2, 3}
	phi := [3]float64{0.2, 0.3, 0.5}
	got := WithinTriangle(vals, phi)
	want := 1*0.2 + 2*0.3 + 3*0.5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("WithinTriangle = %v, want %v", got, want)
	}
}

func TestTemporalWeightClamps(t *testing.T) {
	cases := []struct{ t, tLast, tNext, want float64 }{
		{5, 0, 10, 0.5},
		{-1, 0, 10, 0},
		{11, 0, 10, 1},
		{0, 0, 0, 0},
	}
	for _, c := range cases {
		got := TemporalWeight(c.t, c.tLast, c.tNext)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("TemporalWeight(%v,%v,%v) = %v, want %v", c.t, c.tLast, c.tNext, got, c.want)
		}
	}
}

func TestSigmaLocateInterior(t *testing.T) {
	sig := []float64{0, -0.25, -0.5, -0.75, -1}
	lower, upper, beta, boundary := SigmaLocate(sig, -0.6)
	if boundary {
		t.Fatalf("unexpected boundary flag for interior point")
	}
	// -0.6 lies between sig[2]=-0.5 (upper) and sig[3]=-0.75 (lower).
	if upper != 2 || lower != 3 {
		t.Fatalf("lower=%d upper=%d, want lower=3 upper=2", lower, upper)
	}
	wantBeta := (-0.6 - (-0.75)) / (-0.5 - (-0.75))
	if math.Abs(beta-wantBeta) > 1e-12 {
		t.Errorf("beta = %v, want %v", beta, wantBeta)
	}
}

func TestSigmaLocateClampsOutsideLayers(t *testing.T) {
	sig := []float64{0, -0.5, -1}
	_, _, _, boundary := SigmaLocate(sig, 0.1)
	if !boundary {
		t.Errorf("expected boundary flag above the surface layer")
	}
	_, _, _, boundary = SigmaLocate(sig, -1.1)
	if !boundary {
		t.Errorf("expected boundary flag below the bottom layer")
	}
}

func TestLLSVelocityBypassedAtBoundaryElement(t *testing.T) {
	m := twoTriangleMesh(t)
	// Element 0 has two open-boundary edges, so LLS must fall back to the
	// constant host value regardless of a1u/a2u.
	u := [4]float64{3.5, 1, 1, 1}
	got := m.LLSVelocity(0, u, 100, 100)
	if got != 3.5 {
		t.Errorf("LLSVelocity = %v, want 3.5 (host value, LLS bypassed)", got)
	}
}

func TestShepardVelocityExactAtCentre(t *testing.T) {
	u := [4]float64{1, 2, 3, 4}
	centers := [4][2]float64{{0, 0}, {10, 0}, {0, 10}, {10, 10}}
	got, err := ShepardVelocity(u, centers, 4, 0, 0)
	if err != nil {
		t.Fatalf("ShepardVelocity: %v", err)
	}
	if got != 1 {
		t.Errorf("ShepardVelocity at an exact centre = %v, want 1", got)
	}
}
