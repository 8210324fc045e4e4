//go:build !amd64 && !arm64

package biquad

import (
	_ "github.com/phonon-live/phonon/dsp/filter/biquad/internal/arch/generic"
	_ "github.com/phonon-live/phonon/dsp/filter/biquad/internal/arch/registry"
)
