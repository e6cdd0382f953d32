// Package measure derives clinical ECG measurements from a raw
// multi-lead signal, delegating beat detection and wave delineation to
// a delineate.Delineator
package measure

import "sort"

// Measurements is one extraction result. Scalar fields are nil when the
// underlying wave landmarks could not be measured; Success=false means
// no field may be trusted
type Measurements struct {
	HeartRate   *float64 `json:"heart_rate,omitempty"`   // bpm
	RRInterval  *float64 `json:"rr_interval,omitempty"`  // ms
	PRInterval  *float64 `json:"pr_interval,omitempty"`  // ms
	QRSDuration *float64 `json:"qrs_duration,omitempty"` // ms
	QTInterval  *float64 `json:"qt_interval,omitempty"`  // ms
	QTcBazett   *float64 `json:"qtc_bazett,omitempty"`   // ms
	QRSAxis     *float64 `json:"qrs_axis,omitempty"`     // degrees
	RWaveV1     *float64 `json:"r_wave_v1,omitempty"`    // mm at 10mm/mV
	SWaveV1     *float64 `json:"s_wave_v1,omitempty"`    // mm
	RWaveV6     *float64 `json:"r_wave_v6,omitempty"`    // mm
	SWaveV6     *float64 `json:"s_wave_v6,omitempty"`    // mm

	Quality float64 `json:"quality_score"`
	Success bool    `json:"extraction_success"`
	Err     string  `json:"error_message,omitempty"`
}

// Ptr boxes a float64 for optional fields
func Ptr(v float64) *float64 { return &v }

// Deref returns *p or def when p is nil
func Deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// median of xs; 0 for an empty slice. Input is not modified
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}
