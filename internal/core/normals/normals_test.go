package normals

import "testing"

func TestLoad_EmbeddedTable(t *testing.T) {
	tab, err := Load()
	if err != nil {
		t.Fatalf("load embedded table: %v", err)
	}
	if got := len(tab.Buckets()); got != 13 {
		t.Fatalf("expected 13 buckets, got %d", got)
	}
	if tab.Buckets()[0].ID != "neonate_0_24h" {
		t.Fatalf("unexpected first bucket: %s", tab.Buckets()[0].ID)
	}
	if tab.Buckets()[12].ID != "adolescent_16_18yr" {
		t.Fatalf("unexpected last bucket: %s", tab.Buckets()[12].ID)
	}
}

func TestResolveBucket_KnownAges(t *testing.T) {
	tab := Default()
	cases := []struct {
		ageDays int
		want    string
	}{
		{0, "neonate_0_24h"},
		{1, "neonate_0_24h"}, // touching bound, first match wins
		{2, "neonate_1_3d"},
		{10, "neonate_8_30d"},
		{90, "infant_1_3mo"},
		{365, "infant_6_12mo"},
		{366, "toddler_1_3yr"},
		{1825, "child_3_5yr"},
		{4380, "child_8_12yr"},
		{6000, "adolescent_16_18yr"},
	}
	for _, tc := range cases {
		if got := tab.ResolveBucket(tc.ageDays).ID; got != tc.want {
			t.Errorf("age %d: got %s want %s", tc.ageDays, got, tc.want)
		}
	}
}

func TestResolveBucket_Extrapolation(t *testing.T) {
	tab := Default()

	// beyond the table upper bound: oldest bucket, not an error
	if got := tab.ResolveBucket(10000).ID; got != "adolescent_16_18yr" {
		t.Fatalf("overflow age resolved to %s", got)
	}
	// negative ages clamp to day 0
	if got := tab.ResolveBucket(-5).ID; got != "neonate_0_24h" {
		t.Fatalf("negative age resolved to %s", got)
	}
}

// every age from birth through past the table bound resolves to exactly
// one bucket and bucket order never goes backwards
func TestResolveBucket_ContiguousWalk(t *testing.T) {
	tab := Default()
	idx := make(map[string]int, 13)
	for i, b := range tab.Buckets() {
		idx[b.ID] = i
	}

	prev := 0
	for age := 0; age <= 7000; age++ {
		b := tab.ResolveBucket(age)
		if age < b.MinDays || (age > b.MaxDays && b.ID != "adolescent_16_18yr") {
			t.Fatalf("age %d outside resolved bucket %s [%d,%d]", age, b.ID, b.MinDays, b.MaxDays)
		}
		i := idx[b.ID]
		if i < prev {
			t.Fatalf("bucket order regressed at age %d (%s)", age, b.ID)
		}
		prev = i
	}
}

func TestForAge_NeonateValues(t *testing.T) {
	n := Default().ForAge(10)
	if n.HeartRate.P98 != 190 {
		t.Fatalf("neonate_8_30d hr p98 = %v", n.HeartRate.P98)
	}
	if len(n.TWaveV1.Abnormal) != 1 || n.TWaveV1.Abnormal[0] != PolarityUpright {
		t.Fatalf("neonate_8_30d t-wave abnormal set = %v", n.TWaveV1.Abnormal)
	}
}
