package rgbfx

// Desktop effect, follows the dominant or average color of the screen.
// Screen capture itself is an external producer handed in through the
// FrameGrabber contract.

import (
	"image"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/lucasb-eyer/go-colorful"
)

// FrameGrabber produces one screen frame per call.  A nil image means
// no new frame was available.
type FrameGrabber interface {
	CaptureFrame() (frame image.Image, err errors.Error)
}

type Desktop struct {
	grabber FrameGrabber
	current colorful.Color
	primed  bool
}

func NewDesktop(grabber FrameGrabber) (effect *Desktop) {
	return &Desktop{grabber: grabber}
}

func (*Desktop) Name() string { return "Desktop" }

func (*Desktop) Schema() Schema {
	return append(baseSchema("0.1", "1.0"),
		Field{Name: "capture_interval_ms", Kind: KindInt, Default: "100", Help: "screen capture cadence in milliseconds"},
		Field{Name: "color_sampling", Kind: KindString, Default: "average", Help: "average or dominant"},
		Field{Name: "color_tolerance", Kind: KindInt, Default: "30", Help: "grouping tolerance for dominant sampling"},
		Field{Name: "smooth_transitions", Kind: KindBool, Default: "true", Help: "blend towards the new color instead of jumping"},
		Field{Name: "transition_duration_ms", Kind: KindInt, Default: "200", Help: "blend duration in milliseconds"},
	)
}

func (effect *Desktop) Start(run *Run) (err errors.Error) {
	if effect.grabber == nil {
		return errors.New("no screen grabber configured").With("effect", effect.Name()).With("stack", stack.Trace().TrimRuntime())
	}
	effect.primed = false
	return nil
}

func (effect *Desktop) Loop(run *Run) (err errors.Error) {
	run.SetNextDelay(time.Duration(run.Opts().Int("capture_interval_ms")) * time.Millisecond)

	frame, err := effect.grabber.CaptureFrame()
	if err != nil {
		return err
	}
	if frame == nil {
		if !effect.primed {
			return nil
		}
		return run.SetAll(toColor(effect.current))
	}

	var sampled Color
	if run.Opts().String("color_sampling") == "dominant" {
		sampled = dominantColor(frame, run.Opts().Int("color_tolerance"))
	} else {
		sampled = averageColor(frame)
	}

	next := colorful.Color{R: float64(sampled.R) / 255, G: float64(sampled.G) / 255, B: float64(sampled.B) / 255}
	if effect.primed && run.Opts().Bool("smooth_transitions") {
		transition := run.Opts().Int("transition_duration_ms")
		factor := 1.0
		if transition > 0 {
			factor = float64(run.Opts().Int("capture_interval_ms")) / float64(transition)
			if factor > 1 {
				factor = 1
			}
		}
		effect.current = effect.current.BlendLab(next, factor)
	} else {
		effect.current = next
		effect.primed = true
	}

	return run.SetAll(toColor(effect.current))
}

func (*Desktop) Stop(run *Run) {
	run.Off()
}

func toColor(c colorful.Color) (out Color) {
	out.R, out.G, out.B = c.Clamped().RGB255()
	return out
}

// sampleStride keeps the per frame pixel work bounded regardless of
// screen size.
func sampleStride(bounds image.Rectangle) int {
	stride := bounds.Dx() / 128
	if stride < 1 {
		stride = 1
	}
	return stride
}

func averageColor(frame image.Image) Color {
	bounds := frame.Bounds()
	stride := sampleStride(bounds)

	var rSum, gSum, bSum, count uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			r, g, b, _ := frame.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
			count++
		}
	}
	if count == 0 {
		return Black
	}
	return Color{uint8(rSum / count), uint8(gSum / count), uint8(bSum / count)}
}

// dominantColor buckets pixels by tolerance and averages the fullest
// bucket.
func dominantColor(frame image.Image, tolerance int) Color {
	if tolerance < 1 {
		tolerance = 1
	}
	if tolerance > 255 {
		tolerance = 255
	}
	bounds := frame.Bounds()
	stride := sampleStride(bounds)

	type bucket struct {
		rSum, gSum, bSum, count uint64
	}
	buckets := map[[3]uint8]*bucket{}

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			r, g, b, _ := frame.At(x, y).RGBA()
			r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
			key := [3]uint8{r8 / uint8(tolerance), g8 / uint8(tolerance), b8 / uint8(tolerance)}
			entry := buckets[key]
			if entry == nil {
				entry = &bucket{}
				buckets[key] = entry
			}
			entry.rSum += uint64(r8)
			entry.gSum += uint64(g8)
			entry.bSum += uint64(b8)
			entry.count++
		}
	}

	var best *bucket
	for _, entry := range buckets {
		if best == nil || entry.count > best.count {
			best = entry
		}
	}
	if best == nil {
		return Black
	}
	return Color{uint8(best.rSum / best.count), uint8(best.gSum / best.count), uint8(best.bSum / best.count)}
}
