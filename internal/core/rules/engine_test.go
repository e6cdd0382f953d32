package rules

import (
	"reflect"
	"strings"
	"testing"

	"pedecg/internal/core/measure"
	"pedecg/internal/core/normals"
)

func ok(hr float64) measure.Measurements {
	return measure.Measurements{HeartRate: measure.Ptr(hr), Success: true, Quality: 1}
}

func hasFinding(p Prediction, substr string) bool {
	for _, f := range p.Findings {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func TestClassify_FailedExtraction(t *testing.T) {
	p := Default().Classify(measure.Measurements{Err: "insufficient beats detected"}, 365)
	if p.IsAbnormal || p.AbnormalScore != 0 {
		t.Fatalf("failed extraction must score zero: %+v", p)
	}
	// empty findings, not the "Normal" fallback: unknown is not normal
	if len(p.Findings) != 0 {
		t.Fatalf("failed extraction findings = %v", p.Findings)
	}
}

func TestClassify_NormalFallback(t *testing.T) {
	// 120 bpm is median for a toddler
	p := Default().Classify(ok(120), 500)
	if p.IsAbnormal {
		t.Fatalf("median heart rate flagged abnormal: %+v", p)
	}
	if len(p.Findings) != 1 || p.Findings[0] != "Normal ECG for age" {
		t.Fatalf("findings = %v", p.Findings)
	}
}

func TestClassify_NeonatalTachycardia(t *testing.T) {
	// neonate_8_30d p98 = 190
	p := Default().Classify(ok(250), 10)
	if !p.HasTachycardia {
		t.Fatalf("250 bpm at 10 days not flagged")
	}
	if p.TachycardiaScore <= 0.5 {
		t.Fatalf("tachycardia score = %v", p.TachycardiaScore)
	}
	if !hasFinding(p, "Tachycardia") {
		t.Fatalf("findings = %v", p.Findings)
	}
	if p.AbnormalScore != p.TachycardiaScore {
		t.Fatalf("abnormal score should be the max: %+v", p)
	}
}

func TestClassify_Bradycardia(t *testing.T) {
	// adolescent p2 = 50
	p := Default().Classify(ok(40), 6000)
	if !p.HasBradycardia || !hasFinding(p, "Bradycardia") {
		t.Fatalf("%+v", p)
	}
	if p.BradycardiaScore <= 0.5 || p.BradycardiaScore > 1 {
		t.Fatalf("bradycardia score = %v", p.BradycardiaScore)
	}
}

func TestClassify_QTcTiers(t *testing.T) {
	cases := []struct {
		qtc     float64
		flagged bool
		score   float64
		substr  string
	}{
		{520, true, 1.0, "Critically prolonged"},
		{480, true, 0.8, "Prolonged QTc"},
		{455, true, 0.5, "Borderline prolonged"},
		{330, false, 0, "Short QTc"},
		{400, false, 0, ""},
	}
	for _, tc := range cases {
		m := ok(120)
		m.QTcBazett = measure.Ptr(tc.qtc)
		p := Default().Classify(m, 500)
		if p.HasProlongedQTc != tc.flagged {
			t.Errorf("qtc %v: flagged=%v", tc.qtc, p.HasProlongedQTc)
		}
		if p.QTcProlongationScore != tc.score {
			t.Errorf("qtc %v: score=%v want %v", tc.qtc, p.QTcProlongationScore, tc.score)
		}
		if tc.substr != "" && !hasFinding(p, tc.substr) {
			t.Errorf("qtc %v: findings %v", tc.qtc, p.Findings)
		}
	}
}

// short QTc is informational: a finding, but never abnormal on its own
func TestClassify_ShortQTcInformational(t *testing.T) {
	m := ok(120)
	m.QTcBazett = measure.Ptr(330)
	p := Default().Classify(m, 500)
	if !hasFinding(p, "Short QTc") {
		t.Fatalf("findings = %v", p.Findings)
	}
	if p.IsAbnormal {
		t.Fatalf("short QTc alone flagged abnormal")
	}
}

func TestClassify_ShortPRByAgeBand(t *testing.T) {
	cases := []struct {
		ageDays int
		pr      float64
		short   bool
	}{
		{100, 95, true},   // infant limit 100
		{100, 105, false},
		{1000, 105, true}, // child limit 110
		{1000, 115, false},
		{4000, 115, true}, // >=8y limit 120
		{4000, 125, false},
	}
	for _, tc := range cases {
		m := ok(restingRateFor(tc.ageDays))
		m.PRInterval = measure.Ptr(tc.pr)
		p := Default().Classify(m, tc.ageDays)
		if p.HasShortPR != tc.short {
			t.Errorf("age %d pr %v: short=%v", tc.ageDays, tc.pr, p.HasShortPR)
		}
		if tc.short && p.ConductionScore != 0.6 {
			t.Errorf("age %d pr %v: conduction score %v", tc.ageDays, tc.pr, p.ConductionScore)
		}
	}
}

func TestClassify_FirstDegreeBlock(t *testing.T) {
	m := ok(70)
	m.PRInterval = measure.Ptr(220)
	p := Default().Classify(m, 6000)
	if !p.HasProlongedPR || !hasFinding(p, "First-degree AV block") {
		t.Fatalf("%+v", p)
	}
	if p.ConductionScore != 0.7 {
		t.Fatalf("conduction score = %v", p.ConductionScore)
	}
}

// conduction score takes the max over PR and QRS findings, never a sum
func TestClassify_ConductionScoreIsMax(t *testing.T) {
	m := ok(restingRateFor(4000))
	m.PRInterval = measure.Ptr(115) // short for >=8y
	m.QRSDuration = measure.Ptr(130)
	p := Default().Classify(m, 4000)
	if !p.HasShortPR || !p.HasWideQRS {
		t.Fatalf("%+v", p)
	}
	if p.ConductionScore != 0.7 {
		t.Fatalf("conduction score = %v, want max(0.6, 0.7)", p.ConductionScore)
	}
}

func TestClassify_WideQRSByAgeBand(t *testing.T) {
	for _, tc := range []struct {
		ageDays int
		qrs     float64
		wide    bool
	}{
		{180, 105, true},
		{180, 95, false},
		{2000, 115, true},
		{5000, 115, false},
		{5000, 125, true},
	} {
		m := ok(restingRateFor(tc.ageDays))
		m.QRSDuration = measure.Ptr(tc.qrs)
		p := Default().Classify(m, tc.ageDays)
		if p.HasWideQRS != tc.wide {
			t.Errorf("age %d qrs %v: wide=%v", tc.ageDays, tc.qrs, p.HasWideQRS)
		}
	}
}

func TestClassify_ExtremeAxisOverride(t *testing.T) {
	m := ok(restingRateFor(500))
	m.QRSAxis = measure.Ptr(-120.0)
	p := Default().Classify(m, 500)
	if !p.HasAxisDeviation || p.AxisDeviationScore != 1 {
		t.Fatalf("%+v", p)
	}
	if !hasFinding(p, "Extreme axis deviation") {
		t.Fatalf("findings = %v", p.Findings)
	}
}

func TestClassify_RVHWithRightAxis(t *testing.T) {
	// toddler norms: qrs_axis p98=100, r_wave_v1 p98=15
	m := ok(restingRateFor(500))
	m.QRSAxis = measure.Ptr(130.0) // right axis deviation
	m.RWaveV1 = measure.Ptr(20.0)  // one voltage criterion
	p := Default().Classify(m, 500)
	if !p.HasRVH {
		t.Fatalf("one criterion plus rightward axis should assert RVH: %+v", p)
	}
	if !hasFinding(p, "RVH pattern") {
		t.Fatalf("findings = %v", p.Findings)
	}
	if p.HypertrophyScore != 0.8 { // 0.6 + 0.2*1
		t.Fatalf("hypertrophy score = %v", p.HypertrophyScore)
	}
}

func TestClassify_LVHByVoltageAlone(t *testing.T) {
	// toddler norms: r_wave_v6 p98=25, s_wave_v1 p98=22; no axis data
	m := ok(restingRateFor(500))
	m.RWaveV6 = measure.Ptr(30.0)
	m.SWaveV1 = measure.Ptr(26.0)
	p := Default().Classify(m, 500)
	if !p.HasLVH || !hasFinding(p, "LVH by voltage") {
		t.Fatalf("%+v", p)
	}
	if p.HypertrophyScore != 0.9 { // 0.5 + 0.2*2
		t.Fatalf("hypertrophy score = %v", p.HypertrophyScore)
	}
}

func TestClassify_OneCriterionWithoutAxisIsNotHypertrophy(t *testing.T) {
	m := ok(restingRateFor(500))
	m.RWaveV1 = measure.Ptr(20.0)
	p := Default().Classify(m, 500)
	if p.HasRVH || p.HasLVH {
		t.Fatalf("single criterion without axis asserted hypertrophy: %+v", p)
	}
}

func TestClassify_ConfigOverridesCriteriaCounts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HypertrophyMinAlone = 1 // loosen the standalone rule
	eng := NewEngine(normals.Default(), cfg)

	m := ok(restingRateFor(500))
	m.RWaveV1 = measure.Ptr(20.0)
	if p := eng.Classify(m, 500); !p.HasRVH {
		t.Fatalf("loosened config should assert RVH: %+v", p)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	m := ok(250)
	m.QTcBazett = measure.Ptr(480)
	m.QRSAxis = measure.Ptr(130.0)
	m.RWaveV1 = measure.Ptr(25.0)

	a := Default().Classify(m, 10)
	b := Default().Classify(m, 10)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("classification is not deterministic:\n%+v\n%+v", a, b)
	}
}

// restingRateFor picks a mid-normal heart rate so unrelated tests never
// trip the rate rules
func restingRateFor(ageDays int) float64 {
	return normals.Default().ForAge(ageDays).HeartRate.P50
}
