package node

import (
	"math"

	"github.com/phonon-live/phonon/dsp/filter/fir"
	"github.com/phonon-live/phonon/dsp/window"
	"github.com/phonon-live/phonon/signal"
)

// LinearPhaseFilter is a fixed-tap-count windowed-sinc FIR lowpass or
// highpass, offered alongside FilterCascade and ParametricEQ for patches
// that need the zero-phase-distortion guarantee an IIR cascade cannot
// give (e.g. matching filtered and unfiltered copies of a signal without
// a phase-aligning delay). Retuning the cutoff redesigns the whole tap
// set, so this node is meant for slowly-moving or static cutoffs rather
// than per-sample modulation.
type LinearPhaseFilter struct {
	base
	highpass bool
	taps     int
	kernel   *fir.Filter
	cutoff   float64
}

const defaultLinearPhaseTaps = 63

// NewLinearPhaseFilter creates a windowed-sinc FIR filter node. taps is
// rounded up to the next odd number (so the kernel has a single center
// sample) and defaults to 63 when <= 0.
func NewLinearPhaseFilter(id signal.NodeID, highpass bool, taps int, sampleRate float64, input, cutoffHz signal.Signal) *LinearPhaseFilter {
	if taps <= 0 {
		taps = defaultLinearPhaseTaps
	}
	if taps%2 == 0 {
		taps++
	}
	f := &LinearPhaseFilter{
		base:     newBase(id, KindLinearPhaseFilter, []signal.Signal{input, cutoffHz}),
		highpass: highpass,
		taps:     taps,
	}
	f.redesign(1000, sampleRate)
	return f
}

// designSincKernel builds a Kaiser-windowed sinc lowpass kernel, per
// dsp/resample's windowed-sinc anti-aliasing design but at a fixed tap
// count rather than one scaled to an up/down ratio.
func designSincKernel(cutoffHz, sampleRate float64, taps int) []float64 {
	win, err := window.Kaiser(taps, 8.0)
	if err != nil {
		win = window.Generate(window.TypeHann, taps)
	}
	fc := cutoffHz / sampleRate
	if fc <= 0 {
		fc = 1e-6
	}
	if fc >= 0.5 {
		fc = 0.499
	}
	center := 0.5 * float64(taps-1)
	h := make([]float64, taps)
	var sum float64
	for n := 0; n < taps; n++ {
		t := float64(n) - center
		h[n] = 2 * fc * sincNorm(2*fc*t) * win[n]
		sum += h[n]
	}
	if sum != 0 {
		for i := range h {
			h[i] /= sum
		}
	}
	return h
}

func sincNorm(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// spectralInvert turns a lowpass kernel into the matching highpass
// kernel: negate every tap, then add one to the center tap.
func spectralInvert(h []float64) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = -v
	}
	out[len(h)/2] += 1
	return out
}

func (f *LinearPhaseFilter) redesign(cutoffHz, sampleRate float64) {
	h := designSincKernel(cutoffHz, sampleRate, f.taps)
	if f.highpass {
		h = spectralInvert(h)
	}
	f.kernel = fir.New(h)
	f.cutoff = cutoffHz
}

// Tick redesigns the kernel whenever the requested cutoff moves by more
// than a semitone's worth of frequency, since a full FIR redesign per
// sample would be prohibitively expensive for what is meant to be a
// slowly-moving control.
func (f *LinearPhaseFilter) Tick(in []float64, tc *TickContext) float64 {
	cutoff := clampFreq(in[1], tc.SampleRate)
	if math.Abs(cutoff-f.cutoff) > f.cutoff*0.01 {
		f.redesign(cutoff, tc.SampleRate)
	}
	return f.kernel.ProcessSample(in[0])
}

func (f *LinearPhaseFilter) Reset() {
	if f.kernel != nil {
		f.kernel.Reset()
	}
}
