package measure

import (
	"math"
	"strings"

	"pedecg/internal/core/delineate"
	"pedecg/internal/platform/logger"
	"pedecg/internal/platform/metrics"
)

// rhythmPreference is the lead order tried for beat detection
var rhythmPreference = []string{"II", "I", "V5", "V6"}

// physiologic sanity bounds (ms); per-beat values outside are discarded
const (
	prMinMs, prMaxMs   = 50, 400
	qrsMinMs, qrsMaxMs = 20, 200
	qtMinMs, qtMaxMs   = 200, 700
)

// maxBeatsPerInterval caps how many beats feed each interval median
const maxBeatsPerInterval = 10

// minBeats below which the whole extraction is marked failed
const minBeats = 3

// Extractor turns one signal into Measurements
type Extractor struct {
	Delin delineate.Delineator
}

// NewExtractor wires an extractor to a delineation backend
func NewExtractor(d delineate.Delineator) *Extractor {
	return &Extractor{Delin: d}
}

// Extract measures signal (leads x samples). A result with
// Success=false carries no scalar fields; partial delineation keeps
// heart rate and drops only the affected intervals
func (e *Extractor) Extract(signal [][]float64, fs int, leads []string) Measurements {
	var m Measurements

	if len(signal) == 0 || fs <= 0 {
		m.Err = "empty signal or invalid sampling rate"
		return m
	}

	rhythmIdx := 0
	for _, name := range rhythmPreference {
		if i := leadIndex(leads, name); i >= 0 && i < len(signal) {
			rhythmIdx = i
			break
		}
	}
	rhythm := signal[rhythmIdx]

	beats, err := e.Delin.DetectBeats(rhythm, fs)
	if err != nil {
		m.Err = "beat detection failed: " + err.Error()
		return m
	}
	if len(beats) < minBeats {
		m.Err = "insufficient beats detected"
		return m
	}

	rrs := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		rrs = append(rrs, float64(beats[i]-beats[i-1])/float64(fs)*1000)
	}
	rr := median(rrs)
	if rr > 0 {
		m.RRInterval = Ptr(rr)
		m.HeartRate = Ptr(60000 / rr)
	}

	e.measureIntervals(&m, rhythm, beats, fs, rr)

	if iI, iF := leadIndex(leads, "I"), leadIndex(leads, "aVF"); iI >= 0 && iF >= 0 &&
		iI < len(signal) && iF < len(signal) {
		m.QRSAxis = axisFromNetDeflection(signal[iI], signal[iF], beats, fs)
	}

	if i := leadIndex(leads, "V1"); i >= 0 && i < len(signal) {
		m.RWaveV1, m.SWaveV1 = waveAmplitudes(signal[i], beats, fs)
	}
	if i := leadIndex(leads, "V6"); i >= 0 && i < len(signal) {
		m.RWaveV6, m.SWaveV6 = waveAmplitudes(signal[i], beats, fs)
	}

	m.Quality = math.Min(float64(len(beats))/10, 1)
	m.Success = true
	return m
}

// measureIntervals runs delineation and takes bounded per-beat medians.
// Delineation is best effort: any failure leaves the interval fields nil
// and never invalidates the heart-rate-only result
func (e *Extractor) measureIntervals(m *Measurements, rhythm []float64, beats []int, fs int, rr float64) {
	waves, err := e.Delin.Delineate(rhythm, beats, fs)
	if err != nil {
		metrics.DelineationFailures.Inc()
		logger.Named("measure").Debug().Err(err).Msg("delineation failed; intervals unavailable")
		return
	}

	pOn := waves[delineate.WavePOnset]
	qOn := waves[delineate.WaveQRSOnset]
	qOff := waves[delineate.WaveQRSOffset]
	tOff := waves[delineate.WaveTOffset]

	if prs := pairIntervals(pOn, qOn, fs, prMinMs, prMaxMs); len(prs) > 0 {
		m.PRInterval = Ptr(median(prs))
	}
	if qrss := pairIntervals(qOn, qOff, fs, qrsMinMs, qrsMaxMs); len(qrss) > 0 {
		m.QRSDuration = Ptr(median(qrss))
	}
	if qts := pairIntervals(qOn, tOff, fs, qtMinMs, qtMaxMs); len(qts) > 0 {
		qt := median(qts)
		m.QTInterval = Ptr(qt)
		if rr > 0 {
			m.QTcBazett = Ptr(qt / math.Sqrt(rr/1000))
		}
	}
}

// pairIntervals converts matching (from, to) landmark pairs to ms over
// at most the first maxBeatsPerInterval beats, keeping only values
// inside (minMs, maxMs). Out-of-bound beats are dropped silently
func pairIntervals(from, to []int, fs int, minMs, maxMs float64) []float64 {
	n := len(from)
	if len(to) < n {
		n = len(to)
	}
	if n > maxBeatsPerInterval {
		n = maxBeatsPerInterval
	}
	var out []float64
	for i := 0; i < n; i++ {
		a, b := from[i], to[i]
		if a == delineate.NotFound || b == delineate.NotFound || b <= a {
			continue
		}
		ms := float64(b-a) / float64(fs) * 1000
		if ms > minMs && ms < maxMs {
			out = append(out, ms)
		}
	}
	return out
}

// axisFromNetDeflection estimates the frontal-plane QRS axis from the
// median signed area in a 50ms window around each beat in leads I and
// aVF, via atan2. Needs both leads; returns nil when either is silent
func axisFromNetDeflection(leadI, leadAVF []float64, beats []int, fs int) *float64 {
	window := 50 * fs / 1000
	netI := medianNetArea(leadI, beats, window)
	netAVF := medianNetArea(leadAVF, beats, window)
	if netI == 0 && netAVF == 0 {
		return nil
	}
	deg := math.Atan2(netAVF, netI) * 180 / math.Pi
	return Ptr(deg)
}

func medianNetArea(x []float64, beats []int, window int) float64 {
	var areas []float64
	for _, r := range beats {
		if len(areas) >= maxBeatsPerInterval {
			break
		}
		lo, hi := r-window, r+window
		if lo < 0 {
			lo = 0
		}
		if hi > len(x) {
			hi = len(x)
		}
		if hi <= lo {
			continue
		}
		sum := 0.0
		for i := lo; i < hi; i++ {
			sum += x[i]
		}
		areas = append(areas, sum)
	}
	return median(areas)
}

// waveAmplitudes returns the per-beat median R amplitude (max positive
// deflection) and S amplitude (deepest negative deflection after the R
// peak) inside an 80ms window, scaled mV -> mm at 10mm/mV
func waveAmplitudes(x []float64, beats []int, fs int) (rWave, sWave *float64) {
	window := 80 * fs / 1000
	var rAmps, sAmps []float64
	for _, r := range beats {
		if len(rAmps) >= maxBeatsPerInterval {
			break
		}
		lo, hi := r-window, r+window
		if lo < 0 {
			lo = 0
		}
		if hi > len(x) {
			hi = len(x)
		}
		if hi <= lo {
			continue
		}
		seg := x[lo:hi]

		rIdx, rAmp := 0, seg[0]
		for i, v := range seg {
			if v > rAmp {
				rIdx, rAmp = i, v
			}
		}
		sAmp := 0.0
		for _, v := range seg[rIdx:] {
			if v < sAmp {
				sAmp = v
			}
		}

		rAmps = append(rAmps, math.Max(rAmp, 0)*10)
		sAmps = append(sAmps, -sAmp*10)
	}
	if len(rAmps) == 0 {
		return nil, nil
	}
	return Ptr(median(rAmps)), Ptr(median(sAmps))
}

// leadIndex finds a lead label, tolerating header case variance
func leadIndex(leads []string, name string) int {
	for i, l := range leads {
		if strings.EqualFold(l, name) {
			return i
		}
	}
	return -1
}
