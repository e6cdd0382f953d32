// Package delineate defines the beat-detection and wave-delineation
// boundary the measurement extractor depends on. The extractor treats
// this as a black box: one implementation is the built-in Detector,
// the other is a scriptable Fake for tests
package delineate

// Wave names a delineated boundary
type Wave string

const (
	// WavePOnset is the start of atrial depolarization
	WavePOnset Wave = "p_onset"
	// WaveQRSOnset is the start of ventricular depolarization
	WaveQRSOnset Wave = "qrs_onset"
	// WaveQRSOffset is the end of ventricular depolarization
	WaveQRSOffset Wave = "qrs_offset"
	// WaveTOffset is the end of ventricular repolarization
	WaveTOffset Wave = "t_offset"
)

// NotFound marks a boundary that could not be located for a beat
const NotFound = -1

// WaveMap holds per-beat boundary sample indices, parallel to the beat
// slice passed to Delineate. Slots are NotFound where detection failed
type WaveMap map[Wave][]int

// Delineator locates beats and wave boundaries in a single cleaned lead
type Delineator interface {
	// DetectBeats returns ascending beat-center sample indices
	DetectBeats(signal []float64, fs int) ([]int, error)
	// Delineate returns wave boundaries for the given beats
	Delineate(signal []float64, beats []int, fs int) (WaveMap, error)
}
