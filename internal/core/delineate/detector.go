package delineate

import (
	"errors"
	"math"
)

// Detector is the built-in signal-processing backend: moving-average
// detrend, squared-derivative energy, adaptive threshold with a
// refractory period, then slope-based boundary search per beat
type Detector struct {
	// ThresholdFraction of the peak integrated energy (default 0.35)
	ThresholdFraction float64
	// RefractoryMs between accepted beats (default 200)
	RefractoryMs int
}

var _ Delineator = (*Detector)(nil)

// NewDetector returns a Detector with defaults
func NewDetector() *Detector {
	return &Detector{ThresholdFraction: 0.35, RefractoryMs: 200}
}

// DetectBeats implements Delineator
func (d *Detector) DetectBeats(signal []float64, fs int) ([]int, error) {
	if fs <= 0 {
		return nil, errors.New("delineate: non-positive sampling rate")
	}
	if len(signal) < fs/2 {
		return nil, errors.New("delineate: signal too short")
	}

	detrended := subtractMovingMean(signal, msToSamples(200, fs))

	// squared first difference, integrated over ~150ms
	energy := make([]float64, len(detrended))
	for i := 1; i < len(detrended); i++ {
		dv := detrended[i] - detrended[i-1]
		energy[i] = dv * dv
	}
	energy = movingSum(energy, msToSamples(150, fs))

	peak := 0.0
	for _, e := range energy {
		if e > peak {
			peak = e
		}
	}
	if peak == 0 {
		return nil, nil // flat line, no beats
	}

	frac := d.ThresholdFraction
	if frac <= 0 {
		frac = 0.35
	}
	threshold := peak * frac
	refractory := msToSamples(d.RefractoryMs, fs)
	if refractory <= 0 {
		refractory = msToSamples(200, fs)
	}

	var beats []int
	last := -refractory
	for i := 1; i < len(energy)-1; i++ {
		if energy[i] < threshold || energy[i] < energy[i-1] || energy[i] < energy[i+1] {
			continue
		}
		if i-last < refractory {
			continue
		}
		beats = append(beats, refinePeak(detrended, i, msToSamples(50, fs)))
		last = i
	}
	return beats, nil
}

// Delineate implements Delineator. Boundaries it cannot place within the
// physiologic search windows are reported as NotFound
func (d *Detector) Delineate(signal []float64, beats []int, fs int) (WaveMap, error) {
	if fs <= 0 {
		return nil, errors.New("delineate: non-positive sampling rate")
	}
	n := len(beats)
	out := WaveMap{
		WavePOnset:    fillNotFound(n),
		WaveQRSOnset:  fillNotFound(n),
		WaveQRSOffset: fillNotFound(n),
		WaveTOffset:   fillNotFound(n),
	}

	detrended := subtractMovingMean(signal, msToSamples(200, fs))
	for i, r := range beats {
		if r < 0 || r >= len(detrended) {
			continue
		}
		// QRS onset: walk back from R until the slope settles
		on := settlePoint(detrended, r, -1, msToSamples(80, fs), fs)
		// QRS offset: walk forward the same way
		off := settlePoint(detrended, r, +1, msToSamples(80, fs), fs)
		out[WaveQRSOnset][i] = on
		out[WaveQRSOffset][i] = off

		if on != NotFound {
			out[WavePOnset][i] = pOnset(detrended, on, fs)
		}
		if off != NotFound {
			out[WaveTOffset][i] = tOffset(detrended, off, nextBeat(beats, i, len(detrended)), fs)
		}
	}
	return out, nil
}

// settlePoint walks from r in the given direction until the local slope
// drops below a tenth of the steepest flank slope near R, bounded by
// maxDist samples
func settlePoint(x []float64, r, dir, maxDist, fs int) int {
	slopeAt := func(i int) float64 {
		if i <= 0 || i >= len(x)-1 {
			return 0
		}
		return math.Abs(x[i+1] - x[i-1])
	}
	// the centered difference at the apex of a symmetric QRS is ~0, so
	// the reference is the steepest slope within ~25ms of R
	w := msToSamples(25, fs)
	if w < 1 {
		w = 1
	}
	ref := 0.0
	for i := r - w; i <= r+w; i++ {
		if s := slopeAt(i); s > ref {
			ref = s
		}
	}
	if ref == 0 {
		return NotFound
	}
	for step := 1; step <= maxDist; step++ {
		i := r + dir*step
		if i <= 0 || i >= len(x)-1 {
			return NotFound
		}
		if slopeAt(i) < ref*0.1 {
			return i
		}
	}
	return NotFound
}

// pOnset searches the 200..40ms window before QRS onset for a P peak
// and returns the start of its upslope
func pOnset(x []float64, qrsOn, fs int) int {
	lo := qrsOn - msToSamples(200, fs)
	hi := qrsOn - msToSamples(40, fs)
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return NotFound
	}
	pk := lo
	for i := lo; i < hi; i++ {
		if math.Abs(x[i]) > math.Abs(x[pk]) {
			pk = i
		}
	}
	if math.Abs(x[pk]) < 1e-9 {
		return NotFound
	}
	// walk back off the P peak to its foot
	for i := pk; i > lo; i-- {
		if math.Abs(x[i]) < math.Abs(x[pk])*0.2 {
			return i
		}
	}
	return lo
}

// tOffset searches between QRS offset and the next beat for the T peak
// and returns the point where the wave returns toward baseline
func tOffset(x []float64, qrsOff, limit, fs int) int {
	lo := qrsOff + msToSamples(60, fs)
	hi := qrsOff + msToSamples(400, fs)
	if limit-msToSamples(60, fs) < hi {
		hi = limit - msToSamples(60, fs)
	}
	if hi > len(x) {
		hi = len(x)
	}
	if hi <= lo {
		return NotFound
	}
	pk := lo
	for i := lo; i < hi; i++ {
		if math.Abs(x[i]) > math.Abs(x[pk]) {
			pk = i
		}
	}
	if math.Abs(x[pk]) < 1e-9 {
		return NotFound
	}
	for i := pk; i < hi; i++ {
		if math.Abs(x[i]) < math.Abs(x[pk])*0.2 {
			return i
		}
	}
	return hi - 1
}

func nextBeat(beats []int, i, n int) int {
	if i+1 < len(beats) {
		return beats[i+1]
	}
	return n
}

func refinePeak(x []float64, i, window int) int {
	lo, hi := i-window, i+window
	if lo < 0 {
		lo = 0
	}
	if hi > len(x) {
		hi = len(x)
	}
	best := i
	for j := lo; j < hi; j++ {
		if math.Abs(x[j]) > math.Abs(x[best]) {
			best = j
		}
	}
	return best
}

func subtractMovingMean(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	sums := movingSum(x, window)
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - sums[i]/float64(window)
	}
	return out
}

// movingSum is a centered running sum over the given window
func movingSum(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(x))
	half := window / 2
	sum := 0.0
	for i := 0; i < len(x); i++ {
		sum += x[i]
		if i-window >= 0 {
			sum -= x[i-window]
		}
		if c := i - half; c >= 0 {
			out[c] = sum
		}
	}
	// trailing positions keep the final window sum
	for c := len(x) - half; c >= 0 && c < len(x); c++ {
		out[c] = sum
	}
	return out
}

func msToSamples(ms, fs int) int {
	return ms * fs / 1000
}

func fillNotFound(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = NotFound
	}
	return s
}
