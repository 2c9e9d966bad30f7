package rgbfx

// Police lights effect, double blue flash, pause, double red flash.

import (
	"time"

	"github.com/karlmutch/errors"
)

type PoliceLights struct{}

func NewPoliceLights() (effect *PoliceLights) {
	return &PoliceLights{}
}

func (*PoliceLights) Name() string { return "PoliceLights" }

func (*PoliceLights) Schema() Schema {
	return append(baseSchema("0.1", "1.0"),
		Field{Name: "flash_duration_ms", Kind: KindInt, Default: "100", Help: "duration of each flash in milliseconds"},
		Field{Name: "pause_duration_s", Kind: KindFloat, Default: "0.5", Help: "pause between color groups in seconds"},
	)
}

func (*PoliceLights) Start(run *Run) (err errors.Error) {
	return nil
}

func (effect *PoliceLights) Loop(run *Run) (err errors.Error) {
	flash := time.Duration(run.Opts().Int("flash_duration_ms")) * time.Millisecond
	pause := time.Duration(run.Opts().Float("pause_duration_s") * float64(time.Second))

	for _, color := range []Color{Blue, Red} {
		for i := 0; i < 2; i++ {
			if err = run.SetAll(color); err != nil {
				return err
			}
			if !run.Sleep(flash) {
				return nil
			}
			if err = run.Off(); err != nil {
				return err
			}
			if !run.Sleep(50 * time.Millisecond) {
				return nil
			}
		}
		if !run.Sleep(pause) {
			return nil
		}
	}
	return nil
}

func (*PoliceLights) Stop(run *Run) {
	run.Off()
}
