package rgbfx

// Random colors effect, draws palette colors per device or uniformly.

import (
	"math/rand"

	"github.com/karlmutch/errors"
)

type RandomColors struct {
	palette []Color
}

func NewRandomColors() (effect *RandomColors) {
	return &RandomColors{}
}

func (*RandomColors) Name() string { return "RandomColors" }

func (*RandomColors) Schema() Schema {
	return append(baseSchema("0.5", "1.0"),
		Field{Name: "per_device", Kind: KindBool, Default: "true", Help: "independent color per device"},
	)
}

func (effect *RandomColors) Start(run *Run) (err errors.Error) {
	effect.palette = Palette()
	return nil
}

func (effect *RandomColors) Loop(run *Run) (err errors.Error) {
	if !run.Opts().Bool("per_device") {
		return run.SetAll(effect.palette[rand.Intn(len(effect.palette))])
	}

	for _, device := range run.Targets() {
		color := effect.palette[rand.Intn(len(effect.palette))]
		if err = run.SetDevices([]Device{device}, color); err != nil {
			return err
		}
	}
	return nil
}

func (*RandomColors) Stop(run *Run) {
	run.Off()
}
