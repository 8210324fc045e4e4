package node

import (
	"math"
	"testing"

	"github.com/phonon-live/phonon/signal"
)

func TestPannerCenterSplitsEqually(t *testing.T) {
	p := NewPanner(0, signal.Const(0), signal.Const(0))
	tc := &TickContext{SampleRate: 48000}

	left := p.Tick([]float64{1, 0}, tc)
	right := p.Right()
	if math.Abs(left-right) > 1e-9 {
		t.Fatalf("center pan should split equally, got left=%v right=%v", left, right)
	}
	if math.Abs(left*left+right*right-1) > 1e-6 {
		t.Fatalf("center pan should preserve equal power, got left=%v right=%v", left, right)
	}
}

func TestPannerHardLeftSilencesRight(t *testing.T) {
	p := NewPanner(0, signal.Const(0), signal.Const(0))
	tc := &TickContext{SampleRate: 48000}

	p.Tick([]float64{1, -1}, tc)
	if math.Abs(p.Right()) > 1e-6 {
		t.Fatalf("hard left pan should silence the right channel, got %v", p.Right())
	}
}

func TestMixerSumsWeightedChannels(t *testing.T) {
	inputs := []signal.Signal{signal.Const(0), signal.Const(0)}
	gains := []signal.Signal{signal.Const(0), signal.Const(0)}
	m := NewMixer(0, inputs, gains)
	tc := &TickContext{SampleRate: 48000}

	got := m.Tick([]float64{1, 0.5, 2, 0.25}, tc)
	want := 1*0.5 + 2*0.25
	if got != want {
		t.Fatalf("Mixer.Tick() = %v, want %v", got, want)
	}
}

func TestOutputAppliesLevel(t *testing.T) {
	o := NewOutput(0, signal.Const(0), signal.Const(0))
	tc := &TickContext{SampleRate: 48000}

	if got := o.Tick([]float64{0.5, 2}, tc); got != 1 {
		t.Fatalf("Output.Tick() = %v, want 1", got)
	}
}

func TestLoudnessMeterPassesInputThrough(t *testing.T) {
	l := NewLoudnessMeter(0, 48000, signal.Const(0))
	tc := &TickContext{SampleRate: 48000}

	for i := 0; i < 1000; i++ {
		in := 0.5
		if got := l.Tick([]float64{in}, tc); got != in {
			t.Fatalf("LoudnessMeter.Tick() = %v, want pass-through %v", got, in)
		}
	}
	if math.IsInf(l.Momentary(), -1) {
		t.Fatalf("LoudnessMeter should report a finite momentary value after processing samples")
	}
}

func TestLoudnessMeterResetClearsState(t *testing.T) {
	l := NewLoudnessMeter(0, 48000, signal.Const(0))
	tc := &TickContext{SampleRate: 48000}
	for i := 0; i < 1000; i++ {
		l.Tick([]float64{0.8}, tc)
	}
	l.Reset()
}
