// Package analysis provides offline measurement helpers for rendered
// audio, used by integration tests and cmd/phonon-render to check the
// "Testable Properties" spec.md §8 names (mixing law, event count,
// isolation, and so on) without hand-rolling RMS/spectral math. It wraps
// the teacher's own measurement packages — stats/time, stats/frequency,
// measure/loudness, measure/thd, measure/ir, dsp/spectrum, dsp/filter/bank,
// dsp/filter/weighting — and the algo-fft dependency those packages
// already use, rather than reimplementing any of this on raw math.
package analysis

import (
	algofft "github.com/cwbudde/algo-fft"

	"github.com/phonon-live/phonon/dsp/filter/bank"
	"github.com/phonon-live/phonon/dsp/filter/weighting"
	"github.com/phonon-live/phonon/dsp/spectrum"
	"github.com/phonon-live/phonon/dsp/window"
	measureir "github.com/phonon-live/phonon/measure/ir"
	"github.com/phonon-live/phonon/measure/loudness"
	"github.com/phonon-live/phonon/measure/sweep"
	"github.com/phonon-live/phonon/measure/thd"
	"github.com/phonon-live/phonon/stats/frequency"
	"github.com/phonon-live/phonon/stats/time"
)

// TimeStats runs stats/time.Calculate over a rendered mono buffer,
// giving RMS, peak, crest factor, and zero-crossing count directly.
func TimeStats(samples []float64) time.Stats {
	return time.Calculate(samples)
}

// SpectralStats windows samples with a Hann window, runs a forward FFT
// via algo-fft (the same plan/Forward call measure/thd.Analyze uses),
// and reduces the one-sided magnitude spectrum with stats/frequency, to
// give spectral centroid/rolloff/flatness for checking filter-cutoff and
// oscillator-frequency claims end to end.
func SpectralStats(samples []float64, sampleRate float64) (frequency.Stats, error) {
	fftSize := nextPow2(len(samples))
	coeffs := window.Generate(window.TypeHann, len(samples))

	in := make([]complex128, fftSize)
	for i, s := range samples {
		in[i] = complex(s*coeffs[i], 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return frequency.Stats{}, err
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return frequency.Stats{}, err
	}

	mag := spectrum.Magnitude(out[:fftSize/2+1])

	return frequency.Calculate(mag, sampleRate), nil
}

// Distortion measures the total harmonic distortion of a mono buffer
// around fundamentalHz, using measure/thd.AnalyzeSignal — the same
// one-shot window/FFT/harmonic-sum pipeline node.Waveshaper's effects
// are meant to be checked against, rather than hand-rolling a second FFT
// path next to SpectralStats's.
func Distortion(samples []float64, sampleRate, fundamentalHz float64) thd.Result {
	return thd.AnalyzeSignal(samples, thd.Config{
		SampleRate:      sampleRate,
		FFTSize:         nextPow2(len(samples)),
		FundamentalFreq: fundamentalHz,
		RangeLowerFreq:  20,
		RangeUpperFreq:  sampleRate * 0.45,
		MaxHarmonics:    10,
		WindowType:      window.TypeHann,
	})
}

// ImpulseResponseMetrics runs measure/ir.Analyzer over an impulse
// response — typically a node.Reverb's tail captured from a single-sample
// impulse, or a sine-sweep deconvolution (see SweepImpulseResponse) — to
// give RT60/clarity/definition/center-time the way a room-acoustics
// measurement tool would, instead of only checking nonzero tail energy.
func ImpulseResponseMetrics(ir []float64, sampleRate float64) (measureir.Metrics, error) {
	return measureir.NewAnalyzer(sampleRate).Analyze(ir)
}

// SweepImpulseResponse deconvolves a rendered log-sweep response into an
// impulse response, the generate-then-deconvolve companion to
// ImpulseResponseMetrics: sw must be the same LogSweep whose Generate()
// output was fed through the graph to produce response.
func SweepImpulseResponse(sw *sweep.LogSweep, response []float64) ([]float64, error) {
	return sw.Deconvolve(response)
}

// OctaveBandEnergies runs a fractional-octave filter bank over samples
// and returns each band's RMS level, the standard spectral-balance check
// an EQ or speaker-response measurement would run, grounded directly on
// dsp/filter/bank.Octave rather than bucketing FFT bins by hand.
func OctaveBandEnergies(samples []float64, sampleRate float64, fraction int) []float64 {
	bk := bank.Octave(fraction, sampleRate)
	perBand := bk.ProcessBlock(samples)
	levels := make([]float64, len(perBand))
	for i, band := range perBand {
		levels[i] = time.Calculate(band).RMS
	}
	return levels
}

// WeightedRMS applies an IEC 61672 frequency-weighting curve (A/B/C/Z)
// before measuring RMS, the standard way an SPL/loudness measurement
// discounts frequencies the ear is less sensitive to, grounded on
// dsp/filter/weighting's biquad.Chain designs.
func WeightedRMS(samples []float64, sampleRate float64, t weighting.Type) float64 {
	chain := weighting.New(t, sampleRate)
	weighted := make([]float64, len(samples))
	copy(weighted, samples)
	chain.ProcessBlock(weighted)
	return time.Calculate(weighted).RMS
}

// LoudnessOf measures a mono buffer's integrated loudness using the
// teacher's measure/loudness.Meter, sample by sample.
func LoudnessOf(samples []float64, sampleRate float64) float64 {
	m := loudness.NewMeter(loudness.WithSampleRate(sampleRate), loudness.WithChannels(1))
	for _, s := range samples {
		m.ProcessSample([]float64{s})
	}
	return m.Integrated()
}

// CountOnsets counts samples where the signal crosses from at-or-below
// threshold to strictly above it, the same edge condition
// node.ZeroCrossing uses for a sign change — generalized to an arbitrary
// threshold so tests can count note/sample onsets in a rendered envelope
// or trigger trace (spec.md §8's "Event count" property).
func CountOnsets(samples []float64, threshold float64) int {
	count := 0
	below := true
	for _, s := range samples {
		above := s > threshold
		if above && below {
			count++
		}
		below = !above
	}
	return count
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	if p == 0 {
		p = 1
	}
	return p
}
