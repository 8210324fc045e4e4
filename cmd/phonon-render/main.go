// Command phonon-render builds and renders the example programs from
// spec.md §8 and prints time/spectral/loudness measurements for each,
// adapted from cmd/wininfo's flag+tabwriter reporting style.
//
// Usage:
//
//	phonon-render [-seconds 1.0] [-rate 48000] [name ...]
//
// Without arguments it renders every example.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/phonon-live/phonon/analysis"
	"github.com/phonon-live/phonon/ast"
	"github.com/phonon-live/phonon/compile"
)

type example struct {
	name  string
	stmts []ast.Statement
}

var registry = []example{
	{"sine-gain", programSineGain()},
	{"drum-pattern", programDrumPattern()},
	{"circular-bus", programCircularBus()},
	{"fast-transform", programFastTransform()},
	{"lfo-filter", programLFOFilter()},
	{"multi-output", programMultiOutput()},
}

// programSineGain is spec.md §8 example 1:
// tempo: 2.0; out: sine 440 * 0.5
func programSineGain() []ast.Statement {
	return []ast.Statement{
		ast.TempoSet{CPS: 2.0},
		ast.OutputAssignment{
			Channel: "out",
			Expr: ast.BinaryOp{
				Op:    "*",
				Left:  ast.Call{Name: "sine", Args: []ast.Expr{ast.Number{Value: 440}}},
				Right: ast.Number{Value: 0.5},
			},
		},
	}
}

// programDrumPattern is spec.md §8 example 2:
// tempo: 2.0; out: s "bd sn hh cp"
func programDrumPattern() []ast.Statement {
	return []ast.Statement{
		ast.TempoSet{CPS: 2.0},
		ast.OutputAssignment{
			Channel: "out",
			Expr: ast.Call{
				Name: "s",
				Args: []ast.Expr{ast.String{Value: "bd sn hh cp"}},
			},
		},
	}
}

// programCircularBus is spec.md §8 example 3:
// tempo: 2.0; ~a: ~b # lpf 1000 0.8; ~b: ~a # delay 0.1 0.5; out: ~a * 0.5
func programCircularBus() []ast.Statement {
	return []ast.Statement{
		ast.TempoSet{CPS: 2.0},
		ast.BusAssignment{
			Name: "~a",
			Expr: ast.Chain{
				Left: ast.BusRef{Name: "~b"},
				Right: ast.Call{Name: "lpf", Args: []ast.Expr{
					ast.Number{Value: 1000}, ast.Number{Value: 0.8},
				}},
			},
		},
		ast.BusAssignment{
			Name: "~b",
			Expr: ast.Chain{
				Left: ast.BusRef{Name: "~a"},
				Right: ast.Call{Name: "delay", Args: []ast.Expr{
					ast.Number{Value: 0.1}, ast.Number{Value: 0.5},
				}},
			},
		},
		ast.OutputAssignment{
			Channel: "out",
			Expr: ast.BinaryOp{
				Op:    "*",
				Left:  ast.BusRef{Name: "~a"},
				Right: ast.Number{Value: 0.5},
			},
		},
	}
}

// programFastTransform is spec.md §8 example 4:
// tempo: 2.0; out: s "bd sn" $ fast 2
func programFastTransform() []ast.Statement {
	return []ast.Statement{
		ast.TempoSet{CPS: 2.0},
		ast.OutputAssignment{
			Channel: "out",
			Expr: ast.Transform{
				Pattern: ast.Call{Name: "s", Args: []ast.Expr{ast.String{Value: "bd sn"}}},
				Name:    "fast",
				Args:    []ast.Expr{ast.Number{Value: 2}},
			},
		},
	}
}

// programLFOFilter is spec.md §8 example 5:
// tempo: 2.0; ~lfo: sine 0.5; out: saw 110 # lpf (~lfo * 2000 + 500) 0.8
func programLFOFilter() []ast.Statement {
	return []ast.Statement{
		ast.TempoSet{CPS: 2.0},
		ast.BusAssignment{
			Name: "~lfo",
			Expr: ast.Call{Name: "sine", Args: []ast.Expr{ast.Number{Value: 0.5}}},
		},
		ast.OutputAssignment{
			Channel: "out",
			Expr: ast.Chain{
				Left: ast.Call{Name: "saw", Args: []ast.Expr{ast.Number{Value: 110}}},
				Right: ast.Call{Name: "lpf", Args: []ast.Expr{
					ast.BinaryOp{
						Op:   "+",
						Left: ast.BinaryOp{Op: "*", Left: ast.BusRef{Name: "~lfo"}, Right: ast.Number{Value: 2000}},
						Right: ast.Number{Value: 500},
					},
					ast.Number{Value: 0.8},
				}},
			},
		},
	}
}

// programMultiOutput is spec.md §8 example 6:
// tempo: 2.0; o1: s "bd*4"; o2: s "sn*4"
//
// The "bd*4"/"sn*4" repeat-count notation is outside the minimal
// whitespace splitter compile/compile.go implements, so this example
// spells the four repeats out explicitly instead.
func programMultiOutput() []ast.Statement {
	return []ast.Statement{
		ast.TempoSet{CPS: 2.0},
		ast.OutputAssignment{
			Channel: "o1",
			Expr:    ast.Call{Name: "s", Args: []ast.Expr{ast.String{Value: "bd bd bd bd"}}},
		},
		ast.OutputAssignment{
			Channel: "o2",
			Expr:    ast.Call{Name: "s", Args: []ast.Expr{ast.String{Value: "sn sn sn sn"}}},
		},
	}
}

func main() {
	seconds := flag.Float64("seconds", 1.0, "render length in seconds")
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	flag.Parse()

	names := flag.Args()
	selected := registry
	if len(names) > 0 {
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
		selected = selected[:0]
		for _, ex := range registry {
			if wanted[ex.name] {
				selected = append(selected, ex)
			}
		}
		sort.Slice(selected, func(i, j int) bool { return selected[i].name < selected[j].name })
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "example\tsamples\tpeak\trms_db\tcentroid_hz\tloudness_lufs")

	for _, ex := range selected {
		g, warnings, err := compile.Program(ex.stmts, *rate, compile.WithSampleBuffers(demoBuffers(*rate), *rate))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: compile error: %v\n", ex.name, err)
			continue
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "%s: warning: %s\n", ex.name, w.Message)
		}

		n := int(*seconds * *rate)
		out := g.Render(n)

		ts := analysis.TimeStats(out)
		fs, err := analysis.SpectralStats(out, *rate)
		centroid := 0.0
		if err == nil {
			centroid = fs.Centroid
		}
		loud := analysis.LoudnessOf(out, *rate)

		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.2f\t%.1f\t%.2f\n",
			ex.name, n, ts.Peak, ts.RMS_dB, centroid, loud)
	}

	tw.Flush()
}

// demoBuffers synthesizes short impulse-like buffers standing in for
// "bd"/"sn"/"hh"/"cp" sample names, since this module has no audio file
// decoder wired in (spec.md §6 places sample-library loading outside the
// graph/compiler boundary).
func demoBuffers(sampleRate float64) map[string][]float64 {
	decay := func(lenSec, freq float64) []float64 {
		n := int(lenSec * sampleRate)
		buf := make([]float64, n)
		for i := range buf {
			t := float64(i) / sampleRate
			env := 1.0
			if lenSec > 0 {
				env = 1.0 - t/lenSec
			}
			buf[i] = env * math.Sin(2*math.Pi*freq*t)
		}
		return buf
	}
	return map[string][]float64{
		"bd": decay(0.3, 60),
		"sn": decay(0.15, 200),
		"hh": decay(0.05, 4000),
		"cp": decay(0.1, 1200),
	}
}
