package band

import (
	"github.com/phonon-live/phonon/dsp/filter/biquad"
	"github.com/phonon-live/phonon/internal/polyroot"
)

// splitFOSection factors a fourth-order digital section into two cascaded
// biquad sections. Delegates to the shared polyroot package.
func splitFOSection(b, a [5]float64) ([]biquad.Coefficients, error) {
	sections, err := polyroot.SplitFourthOrder(b, a)
	if err != nil {
		return nil, ErrInvalidParams
	}

	return sections, nil
}
