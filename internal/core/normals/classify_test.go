package normals

import (
	"math"
	"testing"
)

var ref = NormalRange{P2: 100, P50: 150, P98: 190}

func TestClassify_Bands(t *testing.T) {
	cases := []struct {
		value float64
		want  Class
	}{
		{99, ClassLow},
		{100, ClassLow}, // exactly at p2 is low, not borderline
		{105, ClassBorderlineLow},
		{150, ClassNormal},
		{185, ClassBorderlineHigh},
		{190, ClassHigh}, // exactly at p98 is high
		{250, ClassHigh},
	}
	for _, tc := range cases {
		if got := Classify(tc.value, ref); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.value, got, tc.want)
		}
	}
}

func TestEstimatePercentile_Anchors(t *testing.T) {
	for _, tc := range []struct {
		value, want float64
	}{
		{ref.P2, 2},
		{ref.P50, 50},
		{ref.P98, 98},
	} {
		if got := EstimatePercentile(tc.value, ref); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("EstimatePercentile(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestEstimatePercentile_Monotonic(t *testing.T) {
	prev := -1.0
	for v := 0.0; v <= 300; v += 0.5 {
		p := EstimatePercentile(v, ref)
		if p < prev {
			t.Fatalf("percentile decreased at value %v (%v -> %v)", v, prev, p)
		}
		if p < 0 || p > 100 {
			t.Fatalf("percentile out of bounds at value %v: %v", v, p)
		}
		prev = p
	}
}

func TestEstimatePercentile_TailSlopeHalves(t *testing.T) {
	// in-range slope just below p98 is 48/highSpan; one unit past p98
	// must advance half as fast
	inRange := EstimatePercentile(ref.P98, ref) - EstimatePercentile(ref.P98-1, ref)
	tail := EstimatePercentile(ref.P98+1, ref) - EstimatePercentile(ref.P98, ref)
	if math.Abs(tail-inRange/2) > 1e-9 {
		t.Fatalf("tail slope %v, want half of %v", tail, inRange)
	}
}

func TestEstimatePercentile_Degenerate(t *testing.T) {
	flat := NormalRange{P2: 100, P50: 100, P98: 100}
	if got := EstimatePercentile(100, flat); got != 26 {
		// ratio fallback 0.5 on the lower half: 2 + 0.5*48
		t.Fatalf("degenerate percentile = %v", got)
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore(ref.P50, ref); got != 0 {
		t.Fatalf("zscore at p50 = %v", got)
	}
	if got := ZScore(ref.P2, ref); got != -2 {
		t.Fatalf("zscore at p2 = %v", got)
	}
	if got := ZScore(ref.P98, ref); got != 2 {
		t.Fatalf("zscore at p98 = %v", got)
	}
	// sign tracks value - p50, each side scaled by its own half-range
	if got := ZScore(140, ref); got >= 0 {
		t.Fatalf("zscore below median should be negative, got %v", got)
	}
	if got := ZScore(160, ref); got <= 0 {
		t.Fatalf("zscore above median should be positive, got %v", got)
	}
	flat := NormalRange{P2: 5, P50: 5, P98: 5}
	if got := ZScore(4, flat); got != 0 {
		t.Fatalf("degenerate zscore = %v", got)
	}
}
