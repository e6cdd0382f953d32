package features

import "testing"

func TestNames_Layout(t *testing.T) {
	n := Names()
	if len(n) != Dim {
		t.Fatalf("names length = %d", len(n))
	}
	checks := map[int]string{
		0:  "heart_rate",
		11: "quality",
		12: "hr_zscore",
		21: "rs_ratio_v1_zscore",
		23: "reserved",
		24: "is_tachycardia",
		29: "has_any_abnormality",
	}
	for i, want := range checks {
		if n[i] != want {
			t.Errorf("name[%d] = %q, want %q", i, n[i], want)
		}
	}
}

func TestVector_SegmentOrder(t *testing.T) {
	var f RuleFeatures
	f.Raw[0] = 0.1
	f.Raw[11] = 0.2
	f.ZScores[0] = 0.3
	f.ZScores[11] = 0.4
	f.Derived[0] = 0.5
	f.Derived[5] = 0.6

	v := f.Vector()
	for i, want := range map[int]float64{0: 0.1, 11: 0.2, 12: 0.3, 23: 0.4, 24: 0.5, 29: 0.6} {
		if v[i] != want {
			t.Errorf("vector[%d] = %v, want %v", i, v[i], want)
		}
	}
}

func TestMap_KeyedByName(t *testing.T) {
	var f RuleFeatures
	f.Derived[0] = 1
	m := f.Map()
	if len(m) != Dim {
		t.Fatalf("map size = %d", len(m))
	}
	if m["is_tachycardia"] != 1 {
		t.Fatalf("is_tachycardia = %v", m["is_tachycardia"])
	}
}

func TestRescale_ClipsAndCenters(t *testing.T) {
	cases := []struct{ z, want float64 }{
		{0, 0.5},
		{4, 1},
		{-4, 0},
		{10, 1},
		{-10, 0},
		{2, 0.75},
	}
	for _, tc := range cases {
		if got := rescale(tc.z); got != tc.want {
			t.Errorf("rescale(%v) = %v, want %v", tc.z, got, tc.want)
		}
	}
}

func TestNormalize_ClampsAndDegenerates(t *testing.T) {
	if got := normalize(125, 50, 200); got != 0.5 {
		t.Errorf("midpoint = %v", got)
	}
	if got := normalize(-10, 0, 100); got != 0 {
		t.Errorf("below min = %v", got)
	}
	if got := normalize(500, 0, 100); got != 1 {
		t.Errorf("above max = %v", got)
	}
	// degenerate range maps to the midpoint
	if got := normalize(7, 5, 5); got != 0.5 {
		t.Errorf("degenerate = %v", got)
	}
}
