package rules

import (
	"fmt"
	"math"

	"pedecg/internal/core/measure"
	"pedecg/internal/core/normals"
)

// Engine evaluates measurements against age norms and fixed thresholds
type Engine struct {
	tab *normals.Table
	cfg Config
}

// NewEngine builds an engine over the given table and thresholds
func NewEngine(tab *normals.Table, cfg Config) *Engine {
	return &Engine{tab: tab, cfg: cfg}
}

// Default returns an engine over the embedded table with published
// thresholds
func Default() *Engine {
	return NewEngine(normals.Default(), DefaultConfig())
}

// Classify produces a Prediction for one measurement set. A failed
// extraction yields the zero prediction with an empty findings list:
// "unknown" is deliberately distinguishable from "normal"
func (e *Engine) Classify(m measure.Measurements, ageDays int) Prediction {
	var p Prediction
	if !m.Success {
		return p
	}

	n := e.tab.ForAge(ageDays)

	e.heartRate(&p, m, n)
	e.qrsAxis(&p, m, n)
	e.qtc(&p, m, n)
	e.prInterval(&p, m, n, ageDays)
	e.qrsDuration(&p, m, ageDays)
	e.hypertrophy(&p, m, n)

	p.IsAbnormal = p.HasTachycardia || p.HasBradycardia || p.HasAxisDeviation ||
		p.HasProlongedQTc || p.HasShortPR || p.HasProlongedPR || p.HasWideQRS ||
		p.HasRVH || p.HasLVH

	// a single strong finding dominates; scores never sum
	p.AbnormalScore = max6(
		p.TachycardiaScore, p.BradycardiaScore, p.AxisDeviationScore,
		p.QTcProlongationScore, p.ConductionScore, p.HypertrophyScore,
	)

	if len(p.Findings) == 0 {
		p.Findings = append(p.Findings, "Normal ECG for age")
	}
	return p
}

func (e *Engine) heartRate(p *Prediction, m measure.Measurements, n normals.AgeNormals) {
	if m.HeartRate == nil {
		return
	}
	hr := *m.HeartRate
	switch normals.Classify(hr, n.HeartRate) {
	case normals.ClassHigh:
		p.HasTachycardia = true
		excess := (hr - n.HeartRate.P98) / n.HeartRate.P98
		p.TachycardiaScore = math.Min(0.5+excess, 1)
		p.Findings = append(p.Findings,
			fmt.Sprintf("Tachycardia (%.0f bpm, p98=%g)", hr, n.HeartRate.P98))
	case normals.ClassLow:
		p.HasBradycardia = true
		deficit := (n.HeartRate.P2 - hr) / n.HeartRate.P2
		p.BradycardiaScore = math.Min(0.5+deficit, 1)
		p.Findings = append(p.Findings,
			fmt.Sprintf("Bradycardia (%.0f bpm, p2=%g)", hr, n.HeartRate.P2))
	}
}

func (e *Engine) qrsAxis(p *Prediction, m measure.Measurements, n normals.AgeNormals) {
	if m.QRSAxis == nil {
		return
	}
	axis := *m.QRSAxis

	switch normals.Classify(axis, n.QRSAxis) {
	case normals.ClassLow:
		p.HasAxisDeviation = true
		p.Findings = append(p.Findings,
			fmt.Sprintf("Left axis deviation (%.0f°, p2=%g°)", axis, n.QRSAxis.P2))
	case normals.ClassHigh:
		p.HasAxisDeviation = true
		p.Findings = append(p.Findings,
			fmt.Sprintf("Right axis deviation (%.0f°, p98=%g°)", axis, n.QRSAxis.P98))
	}
	if p.HasAxisDeviation {
		deviation := math.Abs(axis - n.QRSAxis.P50)
		span := n.QRSAxis.P98 - n.QRSAxis.P2
		if span > 0 {
			p.AxisDeviationScore = math.Min(deviation/span, 1)
		}
	}

	// absolute override, not age-relative
	if axis < e.cfg.ExtremeAxisLow || axis > e.cfg.ExtremeAxisHigh {
		p.HasAxisDeviation = true
		p.AxisDeviationScore = 1
		p.Findings = append(p.Findings, fmt.Sprintf("Extreme axis deviation (%.0f°)", axis))
	}
}

func (e *Engine) qtc(p *Prediction, m measure.Measurements, n normals.AgeNormals) {
	if m.QTcBazett == nil {
		return
	}
	qtc := *m.QTcBazett
	switch {
	case qtc > e.cfg.QTcCritical:
		p.HasProlongedQTc = true
		p.QTcProlongationScore = 1
		p.Findings = append(p.Findings, fmt.Sprintf("Critically prolonged QTc (%.0f ms)", qtc))
	case qtc > e.cfg.QTcProlonged:
		p.HasProlongedQTc = true
		p.QTcProlongationScore = 0.8
		p.Findings = append(p.Findings, fmt.Sprintf("Prolonged QTc (%.0f ms)", qtc))
	case qtc > e.cfg.QTcBorderline || normals.Classify(qtc, n.QTcBazett) == normals.ClassHigh:
		p.HasProlongedQTc = true
		p.QTcProlongationScore = 0.5
		p.Findings = append(p.Findings, fmt.Sprintf("Borderline prolonged QTc (%.0f ms)", qtc))
	case qtc < e.cfg.QTcShort:
		// informational only, no score contribution
		p.Findings = append(p.Findings, fmt.Sprintf("Short QTc (%.0f ms)", qtc))
	}
}

func (e *Engine) prInterval(p *Prediction, m measure.Measurements, n normals.AgeNormals, ageDays int) {
	if m.PRInterval == nil {
		return
	}
	pr := *m.PRInterval

	switch {
	case pr < e.cfg.byAgeBand(e.cfg.ShortPRByAge, ageDays):
		p.HasShortPR = true
		p.ConductionScore = math.Max(p.ConductionScore, 0.6)
		p.Findings = append(p.Findings, fmt.Sprintf("Short PR interval (%.0f ms)", pr))
	case pr > 200:
		p.HasProlongedPR = true
		p.ConductionScore = math.Max(p.ConductionScore, 0.7)
		p.Findings = append(p.Findings, fmt.Sprintf("First-degree AV block (PR=%.0f ms)", pr))
	case normals.Classify(pr, n.PRInterval) == normals.ClassHigh:
		p.HasProlongedPR = true
		p.ConductionScore = math.Max(p.ConductionScore, 0.5)
		p.Findings = append(p.Findings, fmt.Sprintf("Borderline prolonged PR (%.0f ms)", pr))
	}
}

func (e *Engine) qrsDuration(p *Prediction, m measure.Measurements, ageDays int) {
	if m.QRSDuration == nil {
		return
	}
	qrs := *m.QRSDuration
	if qrs > e.cfg.byAgeBand(e.cfg.WideQRSByAge, ageDays) {
		p.HasWideQRS = true
		p.ConductionScore = math.Max(p.ConductionScore, 0.7)
		p.Findings = append(p.Findings, fmt.Sprintf("Wide QRS (%.0f ms)", qrs))
	}
}

func (e *Engine) hypertrophy(p *Prediction, m measure.Measurements, n normals.AgeNormals) {
	rvh, lvh := 0, 0
	if m.RWaveV1 != nil && *m.RWaveV1 > n.RWaveV1.P98 {
		rvh++
	}
	if m.SWaveV6 != nil && *m.SWaveV6 > n.SWaveV6.P98 {
		rvh++
	}
	if m.RWaveV6 != nil && *m.RWaveV6 > n.RWaveV6.P98 {
		lvh++
	}
	if m.SWaveV1 != nil && *m.SWaveV1 > n.SWaveV1.P98 {
		lvh++
	}

	axis := measure.Deref(m.QRSAxis, n.QRSAxis.P50)
	rightward := p.HasAxisDeviation && m.QRSAxis != nil && axis > n.QRSAxis.P50
	leftward := p.HasAxisDeviation && m.QRSAxis != nil && axis < n.QRSAxis.P50

	switch {
	case rvh >= e.cfg.HypertrophyMinWithAxis && rightward:
		p.HasRVH = true
		p.HypertrophyScore = math.Max(p.HypertrophyScore, 0.6+0.2*float64(rvh))
		p.Findings = append(p.Findings, fmt.Sprintf("RVH pattern (%d voltage criteria)", rvh))
	case rvh >= e.cfg.HypertrophyMinAlone:
		p.HasRVH = true
		p.HypertrophyScore = math.Max(p.HypertrophyScore, 0.5+0.2*float64(rvh))
		p.Findings = append(p.Findings, fmt.Sprintf("RVH by voltage (%d criteria)", rvh))
	}
	switch {
	case lvh >= e.cfg.HypertrophyMinWithAxis && leftward:
		p.HasLVH = true
		p.HypertrophyScore = math.Max(p.HypertrophyScore, 0.6+0.2*float64(lvh))
		p.Findings = append(p.Findings, fmt.Sprintf("LVH pattern (%d voltage criteria)", lvh))
	case lvh >= e.cfg.HypertrophyMinAlone:
		p.HasLVH = true
		p.HypertrophyScore = math.Max(p.HypertrophyScore, 0.5+0.2*float64(lvh))
		p.Findings = append(p.Findings, fmt.Sprintf("LVH by voltage (%d criteria)", lvh))
	}
	p.HypertrophyScore = math.Min(p.HypertrophyScore, 1)
}

func max6(xs ...float64) float64 {
	out := 0.0
	for _, x := range xs {
		if x > out {
			out = x
		}
	}
	return out
}
