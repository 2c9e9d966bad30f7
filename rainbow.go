package rgbfx

// Rainbow effect, cycles the fixed rainbow progression either as
// discrete steps or as smooth interpolated transitions.

import (
	"time"

	"github.com/karlmutch/errors"
)

type RainbowEffect struct {
	colorIndex int
	step       int
}

func NewRainbow() (effect *RainbowEffect) {
	return &RainbowEffect{}
}

func (*RainbowEffect) Name() string { return "Rainbow" }

func (*RainbowEffect) Schema() Schema {
	return append(baseSchema("0.2", "1.0"),
		Field{Name: "smooth_transition", Kind: KindBool, Default: "true", Help: "interpolate between colors"},
		Field{Name: "steps_per_color", Kind: KindInt, Default: "30", Help: "interpolation steps between colors"},
		Field{Name: "transition_delay", Kind: KindFloat, Default: "0.03", Help: "delay between interpolation steps in seconds"},
	)
}

func (effect *RainbowEffect) Start(run *Run) (err errors.Error) {
	effect.colorIndex = 0
	effect.step = 0
	return nil
}

func (effect *RainbowEffect) Loop(run *Run) (err errors.Error) {
	if !run.Opts().Bool("smooth_transition") {
		err = run.SetAll(Rainbow[effect.colorIndex])
		effect.colorIndex = (effect.colorIndex + 1) % len(Rainbow)
		return err
	}

	steps := run.Opts().Int("steps_per_color")
	if steps < 1 {
		steps = 1
	}

	from := Rainbow[effect.colorIndex]
	to := Rainbow[(effect.colorIndex+1)%len(Rainbow)]
	err = run.SetAll(LerpColor(from, to, float64(effect.step)/float64(steps)))

	effect.step++
	if effect.step >= steps {
		effect.step = 0
		effect.colorIndex = (effect.colorIndex + 1) % len(Rainbow)
	}

	// Smooth mode ticks at the transition delay, not the base sleep.
	run.SetNextDelay(time.Duration(run.Opts().Float("transition_delay") * float64(time.Second)))
	return err
}

func (*RainbowEffect) Stop(run *Run) {
	run.Off()
}
