package delineate

// Fake is a scriptable Delineator for tests. Zero value returns no
// beats and an empty wave map
type Fake struct {
	Beats    []int
	Waves    WaveMap
	BeatsErr error
	DelinErr error

	// DetectCalls and DelineateCalls count invocations
	DetectCalls    int
	DelineateCalls int
}

var _ Delineator = (*Fake)(nil)

// DetectBeats returns the scripted beats
func (f *Fake) DetectBeats(_ []float64, _ int) ([]int, error) {
	f.DetectCalls++
	return f.Beats, f.BeatsErr
}

// Delineate returns the scripted wave map
func (f *Fake) Delineate(_ []float64, _ []int, _ int) (WaveMap, error) {
	f.DelineateCalls++
	if f.DelinErr != nil {
		return nil, f.DelinErr
	}
	if f.Waves == nil {
		return WaveMap{}, nil
	}
	return f.Waves, nil
}

// EvenBeats builds beat indices at a fixed sample interval
func EvenBeats(start, interval, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = start + i*interval
	}
	return out
}

// OffsetWaves builds a WaveMap by shifting each beat index by fixed
// per-wave offsets; handy for scripting consistent interval geometry
func OffsetWaves(beats []int, offsets map[Wave]int) WaveMap {
	wm := WaveMap{}
	for w, off := range offsets {
		idx := make([]int, len(beats))
		for i, b := range beats {
			idx[i] = b + off
		}
		wm[w] = idx
	}
	return wm
}
