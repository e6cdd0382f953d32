package features

import (
	"math"

	"pedecg/internal/core/delineate"
	"pedecg/internal/core/measure"
	"pedecg/internal/core/normals"
)

// standard12 is assumed when the caller supplies no lead labels.
var standard12 = []string{
	"I", "II", "III", "aVR", "aVL", "aVF",
	"V1", "V2", "V3", "V4", "V5", "V6",
}

// rawRange is the fixed min/max clamp applied before a raw slot is
// scaled to [0,1]. Quality (slot 11) is already a fraction and has none.
type rawRange struct{ min, max float64 }

var rawRanges = [RawDim - 1]rawRange{
	{30, 220},   // heart_rate, bpm
	{270, 2000}, // rr_interval, ms
	{50, 300},   // pr_interval, ms
	{30, 180},   // qrs_duration, ms
	{200, 600},  // qt_interval, ms
	{300, 600},  // qtc_bazett, ms
	{-180, 180}, // qrs_axis, degrees
	{0, 40},     // r_wave_v1, mm
	{0, 40},     // s_wave_v1, mm
	{0, 40},     // r_wave_v6, mm
	{0, 40},     // s_wave_v6, mm
}

// prolongedQTcMs is the fixed flag threshold for the derived segment.
// The rule engine grades QTc in tiers; the feature flag is a single cut
const prolongedQTcMs = 460

// rsRatioFloor guards the R/S quotient against tiny S amplitudes
const rsRatioFloor = 0.1

// zClip bounds z-scores before they are rescaled to [0,1]
const zClip = 4.0

// Extractor builds RuleFeatures from a raw multi-lead signal.
type Extractor struct {
	meas *measure.Extractor
	tab  *normals.Table
}

func NewExtractor(d delineate.Delineator, tab *normals.Table) *Extractor {
	return &Extractor{meas: measure.NewExtractor(d), tab: tab}
}

// Default returns an extractor over the built-in beat detector and
// the embedded normals table.
func Default() *Extractor {
	return NewExtractor(delineate.NewDetector(), normals.Default())
}

// Extract measures the signal and folds the result into the fixed
// 30-dimension layout. The signal is leads-by-samples; a samples-by-leads
// matrix is detected by shape and transposed. On any extraction failure
// the returned features are all zero with Err set.
func (e *Extractor) Extract(signal [][]float64, fs int, leads []string, ageDays int) RuleFeatures {
	signal = orient(signal)
	if leads == nil {
		n := len(signal)
		if n > len(standard12) {
			n = len(standard12)
		}
		leads = standard12[:n]
	}

	m := e.meas.Extract(signal, fs, leads)
	return e.FromMeasurements(m, ageDays)
}

// FromMeasurements builds the feature vector from measurements that
// were already extracted, so callers running the full pipeline do not
// delineate the signal twice
func (e *Extractor) FromMeasurements(m measure.Measurements, ageDays int) RuleFeatures {
	var f RuleFeatures
	if !m.Success {
		f.Err = m.Err
		return f
	}

	n := e.tab.ForAge(ageDays)
	f.Raw = rawFeatures(m)
	f.ZScores = zscoreFeatures(m, n)
	f.Derived = derivedFeatures(m, n)
	f.Success = true
	f.Quality = m.Quality
	return f
}

// orient returns the signal as leads-by-samples. ECG leads are few and
// samples many, so more rows than columns means the matrix is flipped
func orient(signal [][]float64) [][]float64 {
	if len(signal) == 0 || len(signal[0]) == 0 || len(signal) <= len(signal[0]) {
		return signal
	}
	rows, cols := len(signal), len(signal[0])
	out := make([][]float64, cols)
	for j := range out {
		out[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			out[j][i] = signal[i][j]
		}
	}
	return out
}

func rawFeatures(m measure.Measurements) [RawDim]float64 {
	var out [RawDim]float64
	vals := [RawDim - 1]*float64{
		m.HeartRate, m.RRInterval, m.PRInterval, m.QRSDuration,
		m.QTInterval, m.QTcBazett, m.QRSAxis,
		m.RWaveV1, m.SWaveV1, m.RWaveV6, m.SWaveV6,
	}
	for i, v := range vals {
		if v != nil {
			out[i] = normalize(*v, rawRanges[i].min, rawRanges[i].max)
		}
	}
	out[RawDim-1] = m.Quality
	return out
}

func zscoreFeatures(m measure.Measurements, n normals.AgeNormals) [ZScoreDim]float64 {
	var out [ZScoreDim]float64
	slots := []struct {
		v *float64
		r normals.NormalRange
	}{
		{m.HeartRate, n.HeartRate},
		{m.PRInterval, n.PRInterval},
		{m.QRSDuration, n.QRSDuration},
		{m.QTcBazett, n.QTcBazett},
		{m.QRSAxis, n.QRSAxis},
		{m.RWaveV1, n.RWaveV1},
		{m.SWaveV1, n.SWaveV1},
		{m.RWaveV6, n.RWaveV6},
		{m.SWaveV6, n.SWaveV6},
	}
	for i, s := range slots {
		if s.v != nil {
			out[i] = rescale(normals.ZScore(*s.v, s.r))
		}
	}

	if m.RWaveV1 != nil && m.SWaveV1 != nil {
		ratio := *m.RWaveV1 / math.Max(*m.SWaveV1, rsRatioFloor)
		out[9] = rescale(normals.ZScore(ratio, n.RSRatioV1))
	}
	if m.RWaveV6 != nil && m.SWaveV6 != nil {
		ratio := *m.RWaveV6 / math.Max(*m.SWaveV6, rsRatioFloor)
		out[10] = rescale(normals.ZScore(ratio, n.RSRatioV6))
	}
	// slot 11 stays reserved at zero
	return out
}

func derivedFeatures(m measure.Measurements, n normals.AgeNormals) [DerivedDim]float64 {
	var out [DerivedDim]float64
	if m.HeartRate != nil {
		out[0] = flag(*m.HeartRate > n.HeartRate.P98)
		out[1] = flag(*m.HeartRate < n.HeartRate.P2)
	}
	if m.QRSAxis != nil {
		out[2] = flag(*m.QRSAxis < n.QRSAxis.P2 || *m.QRSAxis > n.QRSAxis.P98)
	}
	if m.QTcBazett != nil {
		out[3] = flag(*m.QTcBazett > prolongedQTcMs)
	}
	if m.QRSDuration != nil {
		out[4] = flag(*m.QRSDuration > n.QRSDuration.P98)
	}
	out[5] = flag(out[0] > 0 || out[1] > 0 || out[2] > 0 || out[3] > 0 || out[4] > 0)
	return out
}

// normalize clamps value into [min,max] and scales it to [0,1].
// A degenerate range maps everything to the midpoint
func normalize(value, min, max float64) float64 {
	if max <= min {
		return 0.5
	}
	return math.Max(0, math.Min(1, (value-min)/(max-min)))
}

// rescale clips a z-score to [-4,4] and maps it onto [0,1] with the
// median at 0.5
func rescale(z float64) float64 {
	if z < -zClip {
		z = -zClip
	} else if z > zClip {
		z = zClip
	}
	return (z + zClip) / (2 * zClip)
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
