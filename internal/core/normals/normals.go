// Package normals loads the embedded age-bucketed reference table for
// pediatric ECG measurements and resolves patient age to the matching
// bucket. Data compiled from Davignon 1979/80, Rijnbeek 2001 and the
// 2002 neonatal ECG guidelines
package normals

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed normals.json
var embedded []byte

// Polarity is a qualitative T-wave direction in V1
type Polarity string

const (
	// PolarityUpright is a positive T deflection
	PolarityUpright Polarity = "upright"
	// PolarityInverted is a negative T deflection
	PolarityInverted Polarity = "inverted"
	// PolarityFlat is an isoelectric T
	PolarityFlat Polarity = "flat"
)

// NormalRange holds percentile limits for one measurement in its native
// unit (ms, bpm, degrees, mm). Mean and SD are zero when the source
// tables do not publish them
type NormalRange struct {
	P2   float64 `json:"p2"`
	P50  float64 `json:"p50"`
	P98  float64 `json:"p98"`
	Mean float64 `json:"mean,omitempty"`
	SD   float64 `json:"sd,omitempty"`
}

// TWavePattern lists T-wave polarities considered normal or pathologic
// in V1 for one age bucket
type TWavePattern struct {
	Normal   []Polarity `json:"normal"`
	Abnormal []Polarity `json:"abnormal"`
	Notes    string     `json:"notes,omitempty"`
}

// AgeNormals bundles every reference range for one age bucket
type AgeNormals struct {
	HeartRate   NormalRange  `json:"heart_rate"`
	PRInterval  NormalRange  `json:"pr_interval"`
	QRSDuration NormalRange  `json:"qrs_duration"`
	QTcBazett   NormalRange  `json:"qtc_bazett"`
	QRSAxis     NormalRange  `json:"qrs_axis"`
	RWaveV1     NormalRange  `json:"r_wave_v1"`
	SWaveV1     NormalRange  `json:"s_wave_v1"`
	RWaveV6     NormalRange  `json:"r_wave_v6"`
	SWaveV6     NormalRange  `json:"s_wave_v6"`
	RSRatioV1   NormalRange  `json:"rs_ratio_v1"`
	RSRatioV6   NormalRange  `json:"rs_ratio_v6"`
	TWaveV1     TWavePattern `json:"t_wave_v1"`
	Notes       string       `json:"notes,omitempty"`
}

// AgeBucket is one developmental stage; MinDays..MaxDays inclusive
type AgeBucket struct {
	ID      string `json:"id"`
	MinDays int    `json:"min_days"`
	MaxDays int    `json:"max_days"`
}

type rawTable struct {
	Buckets []struct {
		AgeBucket
		Normals AgeNormals `json:"normals"`
	} `json:"buckets"`
}

// Table is the immutable bucket table. Safe for unsynchronized
// concurrent reads; never mutated after Load
type Table struct {
	buckets []AgeBucket
	byID    map[string]AgeNormals
}

// Load parses and validates the embedded table
func Load() (*Table, error) {
	var raw rawTable
	if err := json.Unmarshal(embedded, &raw); err != nil {
		return nil, fmt.Errorf("normals: parse embedded table: %w", err)
	}
	if len(raw.Buckets) == 0 {
		return nil, fmt.Errorf("normals: embedded table has no buckets")
	}

	t := &Table{
		buckets: make([]AgeBucket, 0, len(raw.Buckets)),
		byID:    make(map[string]AgeNormals, len(raw.Buckets)),
	}
	prevMax := -1
	for i, b := range raw.Buckets {
		if b.ID == "" {
			return nil, fmt.Errorf("normals: bucket %d has empty id", i)
		}
		if b.MinDays > b.MaxDays {
			return nil, fmt.Errorf("normals: bucket %s has min_days > max_days", b.ID)
		}
		// buckets must cover [0, inf) in ascending order; touching
		// boundaries are allowed, first match wins on lookup
		if i == 0 && b.MinDays != 0 {
			return nil, fmt.Errorf("normals: first bucket must start at day 0")
		}
		if i > 0 && b.MinDays > prevMax+1 {
			return nil, fmt.Errorf("normals: gap before bucket %s", b.ID)
		}
		prevMax = b.MaxDays

		if err := checkRanges(b.ID, b.Normals); err != nil {
			return nil, err
		}
		t.buckets = append(t.buckets, b.AgeBucket)
		t.byID[b.ID] = b.Normals
	}
	return t, nil
}

func checkRanges(id string, n AgeNormals) error {
	for _, rr := range []struct {
		name string
		r    NormalRange
	}{
		{"heart_rate", n.HeartRate},
		{"pr_interval", n.PRInterval},
		{"qrs_duration", n.QRSDuration},
		{"qtc_bazett", n.QTcBazett},
		{"qrs_axis", n.QRSAxis},
		{"r_wave_v1", n.RWaveV1},
		{"s_wave_v1", n.SWaveV1},
		{"r_wave_v6", n.RWaveV6},
		{"s_wave_v6", n.SWaveV6},
		{"rs_ratio_v1", n.RSRatioV1},
		{"rs_ratio_v6", n.RSRatioV6},
	} {
		if rr.r.P2 > rr.r.P50 || rr.r.P50 > rr.r.P98 {
			return fmt.Errorf("normals: %s.%s violates p2<=p50<=p98", id, rr.name)
		}
	}
	return nil
}

var (
	defOnce sync.Once
	defTab  *Table
)

// Default returns the process-wide table, loading it on first use.
// The embedded data is validated by tests; a corrupt build panics here
func Default() *Table {
	defOnce.Do(func() {
		t, err := Load()
		if err != nil {
			panic(err)
		}
		defTab = t
	})
	return defTab
}

// Buckets returns a copy of the bucket list in ascending age order
func (t *Table) Buckets() []AgeBucket {
	out := make([]AgeBucket, len(t.buckets))
	copy(out, t.buckets)
	return out
}

// ResolveBucket maps an age in days to its bucket. Ages past the table
// upper bound resolve to the oldest bucket; negative ages clamp to 0
func (t *Table) ResolveBucket(ageDays int) AgeBucket {
	if ageDays < 0 {
		ageDays = 0
	}
	for _, b := range t.buckets {
		if ageDays >= b.MinDays && ageDays <= b.MaxDays {
			return b
		}
	}
	return t.buckets[len(t.buckets)-1]
}

// ForAge returns the reference ranges for an age in days. Never fails
// for any input thanks to the clamp-and-extrapolate resolution policy
func (t *Table) ForAge(ageDays int) AgeNormals {
	return t.byID[t.ResolveBucket(ageDays).ID]
}
