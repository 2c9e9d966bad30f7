package rgbfx

// Lightning effect, bright strikes that fade out over a random
// duration.  The strike color and the struck device are re-drawn for
// every strike when configured as random.

import (
	"math/rand"
	"time"

	"github.com/karlmutch/errors"
)

type Lightning struct {
	fixedColor  Color
	randomColor bool
	randomMode  bool
}

func NewLightning() (effect *Lightning) {
	return &Lightning{}
}

func (*Lightning) Name() string { return "Lightning" }

func (*Lightning) Schema() Schema {
	return append(baseSchema("0.5", "1.0"),
		Field{Name: "color", Kind: KindString, Default: "random", Help: "strike color, random re-draws per strike"},
		Field{Name: "target_mode", Kind: KindString, Default: "random", Help: "random strikes one device, all strikes every target"},
		Field{Name: "fade_min_ms", Kind: KindInt, Default: "100", Help: "minimum fade out duration in milliseconds"},
		Field{Name: "fade_max_ms", Kind: KindInt, Default: "500", Help: "maximum fade out duration in milliseconds"},
		Field{Name: "flash_duration_ms", Kind: KindInt, Default: "50", Help: "duration of the bright flash in milliseconds"},
	)
}

func (effect *Lightning) Start(run *Run) (err errors.Error) {
	spec := run.Opts().String("color")
	effect.randomColor = spec == "random"
	if !effect.randomColor {
		if effect.fixedColor, err = ParseColor(spec); err != nil {
			return err.With("option", "color")
		}
	}
	effect.randomMode = run.Opts().String("target_mode") == "random"
	return nil
}

func (effect *Lightning) strikeColor() Color {
	if !effect.randomColor {
		return effect.fixedColor
	}
	palette := Palette()
	return palette[rand.Intn(len(palette))]
}

func (effect *Lightning) Loop(run *Run) (err errors.Error) {
	targets := run.Targets()
	if effect.randomMode {
		targets = RandomTarget(targets)
	}
	if len(targets) == 0 {
		return nil
	}

	color := effect.strikeColor()

	// The flash goes out at full strength, the brightness ceiling only
	// shapes the fade.
	if err = run.SetDevicesRaw(targets, color); err != nil {
		return err
	}
	if !run.Sleep(time.Duration(run.Opts().Int("flash_duration_ms")) * time.Millisecond) {
		return nil
	}

	fadeMin := run.Opts().Int("fade_min_ms")
	fadeMax := run.Opts().Int("fade_max_ms")
	if fadeMax < fadeMin {
		fadeMax = fadeMin
	}
	fade := time.Duration(fadeMin+rand.Intn(fadeMax-fadeMin+1)) * time.Millisecond

	started := time.Now()
	for {
		progress := float64(time.Since(started)) / float64(fade)
		if progress > 1 {
			progress = 1
		}
		if err = run.SetDevices(targets, LerpColor(color, Black, progress)); err != nil {
			return err
		}
		if progress >= 1 {
			return nil
		}
		if !run.Sleep(10 * time.Millisecond) {
			return nil
		}
	}
}

func (*Lightning) Stop(run *Run) {
	run.Off()
}
