//go:build purego

package vecmath

import (
	// Generic implementations (pure Go fallback)
	_ "github.com/phonon-live/phonon/internal/vecmath/arch/generic"
	// Import registry package
	_ "github.com/phonon-live/phonon/internal/vecmath/registry"
)
