// Package rules applies age-adjusted diagnostic rules to extracted ECG
// measurements, producing binary findings with confidence scores and a
// human-readable findings list
package rules

// Prediction is one rule-engine verdict. Immutable once returned
type Prediction struct {
	IsAbnormal       bool `json:"is_abnormal"`
	HasTachycardia   bool `json:"has_tachycardia"`
	HasBradycardia   bool `json:"has_bradycardia"`
	HasAxisDeviation bool `json:"has_axis_deviation"`
	HasProlongedQTc  bool `json:"has_prolonged_qtc"`
	HasShortPR       bool `json:"has_short_pr"`
	HasProlongedPR   bool `json:"has_prolonged_pr"`
	HasWideQRS       bool `json:"has_wide_qrs"`
	HasRVH           bool `json:"has_rvh"`
	HasLVH           bool `json:"has_lvh"`

	AbnormalScore        float64 `json:"abnormal_score"`
	TachycardiaScore     float64 `json:"tachycardia_score"`
	BradycardiaScore     float64 `json:"bradycardia_score"`
	AxisDeviationScore   float64 `json:"axis_deviation_score"`
	QTcProlongationScore float64 `json:"qtc_prolongation_score"`
	ConductionScore      float64 `json:"conduction_abnormality_score"`
	HypertrophyScore     float64 `json:"hypertrophy_score"`

	Findings []string `json:"findings"`
}

// Config holds the fixed clinical thresholds. They were chosen
// empirically in the reference tables, so they stay adjustable rather
// than buried in the rule code
type Config struct {
	// QTc tiers in ms, absolute overrides on top of age norms
	QTcCritical   float64
	QTcProlonged  float64
	QTcBorderline float64
	QTcShort      float64

	// Short-PR and wide-QRS limits (ms) by age band: <1y, <8y, >=8y
	ShortPRByAge [3]float64
	WideQRSByAge [3]float64

	// Age band edges in days
	InfantMaxDays int
	ChildMaxDays  int

	// Hypertrophy voltage-criteria counts: with concordant axis
	// deviation, and standalone
	HypertrophyMinWithAxis int
	HypertrophyMinAlone    int

	// Absolute extreme-axis window in degrees; outside it the axis
	// finding is maximal regardless of age norms
	ExtremeAxisLow  float64
	ExtremeAxisHigh float64
}

// DefaultConfig returns the published thresholds
func DefaultConfig() Config {
	return Config{
		QTcCritical:   500,
		QTcProlonged:  470,
		QTcBorderline: 450,
		QTcShort:      340,

		ShortPRByAge: [3]float64{100, 110, 120},
		WideQRSByAge: [3]float64{100, 110, 120},

		InfantMaxDays: 365,
		ChildMaxDays:  2920,

		HypertrophyMinWithAxis: 1,
		HypertrophyMinAlone:    2,

		ExtremeAxisLow:  -90,
		ExtremeAxisHigh: 180,
	}
}

// byAgeBand picks the threshold for the patient's age band
func (c Config) byAgeBand(limits [3]float64, ageDays int) float64 {
	switch {
	case ageDays < c.InfantMaxDays:
		return limits[0]
	case ageDays < c.ChildMaxDays:
		return limits[1]
	default:
		return limits[2]
	}
}
