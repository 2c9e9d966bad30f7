package rgbfx

// Breathing effect, fades one color in and out on a sine curve.

import (
	"math"
	"time"

	"github.com/karlmutch/errors"
)

type Breathing struct {
	color   Color
	started time.Time
}

func NewBreathing() (effect *Breathing) {
	return &Breathing{}
}

func (*Breathing) Name() string { return "Breathing" }

func (*Breathing) Schema() Schema {
	return append(baseSchema("0.05", "1.0"),
		Field{Name: "color", Kind: KindColor, Default: "white", Help: "color to breathe"},
		Field{Name: "breathing_speed", Kind: KindFloat, Default: "2.0", Help: "breathing cycles per second"},
		Field{Name: "min_brightness", Kind: KindBrightness, Default: "0.1", Help: "brightness floor of the cycle"},
	)
}

func (effect *Breathing) Start(run *Run) (err errors.Error) {
	effect.color = run.Opts().Color("color")
	effect.started = time.Now()
	return nil
}

func (effect *Breathing) Loop(run *Run) (err errors.Error) {
	elapsed := time.Since(effect.started).Seconds()
	brightness := breathLevel(elapsed, run.Opts().Float("breathing_speed"), run.Opts().Float("min_brightness"))
	return run.SetAll(Scale(effect.color, brightness))
}

// breathLevel maps elapsed time onto the breathing brightness, a sine
// shifted into [0,1] then rescaled onto [floor,1].
func breathLevel(elapsed float64, speed float64, floor float64) float64 {
	cycle := (math.Sin(2*math.Pi*speed*elapsed) + 1) / 2
	return floor + (1-floor)*cycle
}

// Stop leaves the last color lit rather than blacking out mid breath.
func (*Breathing) Stop(run *Run) {}
