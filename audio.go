package rgbfx

// Audio effect, flashes a random color whenever the captured signal
// peaks, then fades back to black.

import (
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	timestats "github.com/cwbudde/algo-dsp/stats/time"
)

type Audio struct {
	source AudioSource

	peakDetected bool
	peakStart    time.Time
	fading       bool
	fadeStart    time.Time
	target       Color
	current      Color
}

func NewAudio(source AudioSource) (effect *Audio) {
	return &Audio{source: source}
}

func (*Audio) Name() string { return "Audio" }

func (*Audio) Schema() Schema {
	return append(baseSchema("0.05", "1.0"),
		Field{Name: "sample_rate", Kind: KindInt, Default: "44100", Help: "capture sample rate in Hz"},
		Field{Name: "chunk_size", Kind: KindInt, Default: "1024", Help: "samples analyzed per tick"},
		Field{Name: "peak_threshold", Kind: KindFloat, Default: "0.05", Help: "RMS level that triggers a flash"},
		Field{Name: "peak_duration", Kind: KindFloat, Default: "0.1", Help: "flash hold time in seconds"},
		Field{Name: "fade_duration", Kind: KindFloat, Default: "0.2", Help: "fade out time in seconds"},
	)
}

func (effect *Audio) Start(run *Run) (err errors.Error) {
	if effect.source == nil {
		return errors.New("no audio source configured").With("effect", effect.Name()).With("stack", stack.Trace().TrimRuntime())
	}
	effect.current = Black
	effect.target = Black
	return nil
}

func (effect *Audio) Loop(run *Run) (err errors.Error) {
	frame, err := effect.source.ReadFrame(run.Opts().Int("chunk_size"))
	if err != nil {
		return err
	}

	// No fresh capture data, keep pushing the present color.
	if len(frame) > 0 {
		effect.advance(timestats.RMS(frame), time.Now(), run.Opts())
	}

	return run.SetAll(effect.current)
}

// advance moves the flash/fade state machine along for one analyzed
// frame.  Re-triggering is suppressed until the previous fade has
// completed so bursts do not strobe.
func (effect *Audio) advance(rms float64, now time.Time, opts *Options) {
	switch {
	case rms > opts.Float("peak_threshold") && !effect.peakDetected && !effect.fading:
		effect.peakDetected = true
		effect.peakStart = now
		effect.target = RandomColor()
		effect.current = effect.target

	case effect.peakDetected && now.Sub(effect.peakStart).Seconds() > opts.Float("peak_duration"):
		effect.peakDetected = false
		effect.fading = true
		effect.fadeStart = now
	}

	if effect.fading {
		progress := now.Sub(effect.fadeStart).Seconds() / opts.Float("fade_duration")
		if progress >= 1 {
			effect.current = Black
			effect.fading = false
		} else {
			effect.current = LerpColor(effect.target, Black, progress)
		}
	}
}

func (*Audio) Stop(run *Run) {
	run.Off()
}
