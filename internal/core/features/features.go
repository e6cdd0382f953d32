// Package features turns ECG measurements into a fixed 30-dimension
// vector for downstream model fusion: 12 normalized raw measurements,
// 12 age-adjusted z-scores and 6 derived binary flags.
package features

// Dim is the total vector width.
const Dim = 30

// Slot widths of the three vector segments.
const (
	RawDim     = 12
	ZScoreDim  = 12
	DerivedDim = 6
)

// RawNames labels the raw segment, index-parallel to RuleFeatures.Raw.
var RawNames = [RawDim]string{
	"heart_rate", "rr_interval", "pr_interval", "qrs_duration",
	"qt_interval", "qtc_bazett", "qrs_axis",
	"r_wave_v1", "s_wave_v1", "r_wave_v6", "s_wave_v6", "quality",
}

// ZScoreNames labels the z-score segment.
var ZScoreNames = [ZScoreDim]string{
	"hr_zscore", "pr_zscore", "qrs_zscore", "qtc_zscore",
	"axis_zscore", "r_v1_zscore", "s_v1_zscore", "r_v6_zscore",
	"s_v6_zscore", "rs_ratio_v1_zscore", "rs_ratio_v6_zscore", "reserved",
}

// DerivedNames labels the derived-flag segment.
var DerivedNames = [DerivedDim]string{
	"is_tachycardia", "is_bradycardia", "is_axis_abnormal",
	"is_qtc_prolonged", "is_wide_qrs", "has_any_abnormality",
}

// RuleFeatures is one extracted feature set. A failed extraction keeps
// the zero value for every slot so batch consumers always see Dim
// columns regardless of signal quality.
type RuleFeatures struct {
	Raw     [RawDim]float64     `json:"raw_features"`
	ZScores [ZScoreDim]float64  `json:"zscore_features"`
	Derived [DerivedDim]float64 `json:"derived_features"`

	Success bool    `json:"extraction_success"`
	Err     string  `json:"error_message,omitempty"`
	Quality float64 `json:"quality_score"`
}

// Vector concatenates the three segments in raw, z-score, derived order.
func (f RuleFeatures) Vector() [Dim]float64 {
	var v [Dim]float64
	copy(v[:RawDim], f.Raw[:])
	copy(v[RawDim:RawDim+ZScoreDim], f.ZScores[:])
	copy(v[RawDim+ZScoreDim:], f.Derived[:])
	return v
}

// Names returns the slot names index-parallel to Vector.
func Names() [Dim]string {
	var n [Dim]string
	copy(n[:RawDim], RawNames[:])
	copy(n[RawDim:RawDim+ZScoreDim], ZScoreNames[:])
	copy(n[RawDim+ZScoreDim:], DerivedNames[:])
	return n
}

// Map returns the vector keyed by slot name.
func (f RuleFeatures) Map() map[string]float64 {
	v, names := f.Vector(), Names()
	out := make(map[string]float64, Dim)
	for i, name := range names {
		out[name] = v[i]
	}
	return out
}
