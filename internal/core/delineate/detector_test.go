package delineate

import (
	"math"
	"testing"
)

// syntheticECG builds a train of sharp spikes with small P and T humps
// at the given RR interval
func syntheticECG(fs, seconds int, rrMs int) []float64 {
	n := fs * seconds
	sig := make([]float64, n)
	step := rrMs * fs / 1000
	for r := step; r < n-step; r += step {
		// P hump ~140ms before R
		addHump(sig, r-140*fs/1000, 40*fs/1000, 0.15)
		// QRS spike
		addSpike(sig, r, 30*fs/1000, 1.5)
		// T hump ~250ms after R
		addHump(sig, r+250*fs/1000, 80*fs/1000, 0.3)
	}
	return sig
}

func addSpike(sig []float64, center, width int, amp float64) {
	for i := center - width; i <= center+width; i++ {
		if i < 0 || i >= len(sig) {
			continue
		}
		d := float64(i-center) / float64(width)
		sig[i] += amp * (1 - math.Abs(d))
	}
}

func addHump(sig []float64, center, width int, amp float64) {
	for i := center - width; i <= center+width; i++ {
		if i < 0 || i >= len(sig) {
			continue
		}
		d := float64(i-center) / float64(width)
		sig[i] += amp * math.Cos(d*math.Pi/2)
	}
}

func TestDetector_BeatsAtExpectedRate(t *testing.T) {
	const fs = 500
	sig := syntheticECG(fs, 10, 600) // ~100 bpm

	d := NewDetector()
	beats, err := d.DetectBeats(sig, fs)
	if err != nil {
		t.Fatalf("DetectBeats: %v", err)
	}
	if len(beats) < 10 {
		t.Fatalf("expected a full beat train, got %d beats", len(beats))
	}
	for i := 1; i < len(beats); i++ {
		rr := float64(beats[i]-beats[i-1]) / fs * 1000
		if rr < 500 || rr > 700 {
			t.Fatalf("rr interval %v ms out of expected band", rr)
		}
	}
}

func TestDetector_FlatLine(t *testing.T) {
	d := NewDetector()
	beats, err := d.DetectBeats(make([]float64, 5000), 500)
	if err != nil {
		t.Fatalf("DetectBeats: %v", err)
	}
	if len(beats) != 0 {
		t.Fatalf("flat line produced %d beats", len(beats))
	}
}

func TestDetector_ShortSignal(t *testing.T) {
	d := NewDetector()
	if _, err := d.DetectBeats(make([]float64, 10), 500); err == nil {
		t.Fatalf("expected error for too-short signal")
	}
}

func TestDetector_DelineateShapes(t *testing.T) {
	const fs = 500
	sig := syntheticECG(fs, 10, 600)

	d := NewDetector()
	beats, err := d.DetectBeats(sig, fs)
	if err != nil {
		t.Fatalf("DetectBeats: %v", err)
	}
	wm, err := d.Delineate(sig, beats, fs)
	if err != nil {
		t.Fatalf("Delineate: %v", err)
	}
	for _, w := range []Wave{WavePOnset, WaveQRSOnset, WaveQRSOffset, WaveTOffset} {
		if len(wm[w]) != len(beats) {
			t.Fatalf("%s has %d entries for %d beats", w, len(wm[w]), len(beats))
		}
	}

	// for interior beats the boundary ordering must hold where found
	found := 0
	for i := 1; i < len(beats)-1; i++ {
		on, off := wm[WaveQRSOnset][i], wm[WaveQRSOffset][i]
		if on == NotFound || off == NotFound {
			continue
		}
		found++
		if !(on < beats[i] && beats[i] < off) {
			t.Fatalf("beat %d: onset %d / r %d / offset %d out of order", i, on, beats[i], off)
		}
	}
	if found == 0 {
		t.Fatalf("no beat produced both QRS boundaries")
	}
}

func TestFake_Scripting(t *testing.T) {
	beats := EvenBeats(100, 300, 5)
	f := &Fake{
		Beats: beats,
		Waves: OffsetWaves(beats, map[Wave]int{WaveQRSOnset: -20, WaveTOffset: 150}),
	}
	got, err := f.DetectBeats(nil, 500)
	if err != nil || len(got) != 5 {
		t.Fatalf("fake beats: %v %v", got, err)
	}
	wm, err := f.Delineate(nil, got, 500)
	if err != nil {
		t.Fatalf("fake delineate: %v", err)
	}
	if wm[WaveQRSOnset][0] != 80 || wm[WaveTOffset][4] != 100+4*300+150 {
		t.Fatalf("offset waves wrong: %v", wm)
	}
	if f.DetectCalls != 1 || f.DelineateCalls != 1 {
		t.Fatalf("call counters wrong")
	}
}

func TestDetector_SymmetricQRSBoundaries(t *testing.T) {
	const fs = 500
	sig := make([]float64, 3000)
	// a single symmetric spike: the centered difference at the apex is
	// exactly zero, so the flank must supply the reference slope
	addSpike(sig, 1500, 30*fs/1000, 1.5)

	d := NewDetector()
	wm, err := d.Delineate(sig, []int{1500}, fs)
	if err != nil {
		t.Fatalf("Delineate: %v", err)
	}
	on, off := wm[WaveQRSOnset][0], wm[WaveQRSOffset][0]
	if on == NotFound || off == NotFound {
		t.Fatalf("boundaries not found: on=%d off=%d", on, off)
	}
	if !(on < 1500 && 1500 < off) {
		t.Fatalf("onset %d / r 1500 / offset %d out of order", on, off)
	}
	durMs := float64(off-on) / fs * 1000
	if durMs < 30 || durMs > 120 {
		t.Fatalf("qrs duration %v ms outside expected band", durMs)
	}
}
