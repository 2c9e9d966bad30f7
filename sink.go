package rgbfx

// This file defines the contract for the lighting server the engine
// pushes color frames to.  The transport behind it is opaque to the
// effects, which only ever compute colors for the devices it reports.

import (
	"strings"

	"github.com/karlmutch/errors"
)

// Device is one addressable unit reported by the lighting server.
type Device struct {
	Index int
	Name  string
	Leds  int
}

// Sink is the device control endpoint accepting color pushes.  The
// engine is the single writer, only the active effect's iteration hook
// pushes through it.
type Sink interface {
	Connect() errors.Error
	Devices() []Device
	SetColor(device Device, color Color) errors.Error
	Close() errors.Error
}

// IsConnectionErr reports whether err is a failure of the sink
// transport itself.  These are fatal to a run while any other push
// failure only skips the iteration.
func IsConnectionErr(err errors.Error) bool {
	return err != nil && strings.Contains(err.Error(), "connection failed")
}
