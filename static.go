package rgbfx

// Static effect, holds every targeted device on one configured color.

import (
	"github.com/karlmutch/errors"
)

type Static struct {
	color Color
}

func NewStatic() (effect *Static) {
	return &Static{}
}

func (*Static) Name() string { return "Static" }

func (*Static) Schema() Schema {
	return append(baseSchema("1.0", "1.0"),
		Field{Name: "color", Kind: KindColor, Default: "white", Help: "color to hold"},
	)
}

func (effect *Static) Start(run *Run) (err errors.Error) {
	effect.color = run.Opts().Color("color")
	return run.SetAll(effect.color)
}

func (effect *Static) Loop(run *Run) (err errors.Error) {
	// Re-push every tick so a device reset elsewhere converges back,
	// the color itself never drifts.
	return run.SetAll(effect.color)
}

// Stop leaves the color lit so it persists after the run ends.
func (*Static) Stop(run *Run) {}
