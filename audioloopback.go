package rgbfx

// Audio loopback effect, maps the frequency content of captured system
// audio onto color.  Band energies from the magnitude spectrum weight
// each band's color into one composite which follows the music.

import (
	"math/rand"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

type AudioLoopback struct {
	source   AudioSource
	analyzer *Analyzer
	bands    []Band
	current  Color
}

func NewAudioLoopback(source AudioSource) (effect *AudioLoopback) {
	return &AudioLoopback{source: source}
}

func (*AudioLoopback) Name() string { return "AudioLoopback" }

func (*AudioLoopback) Schema() Schema {
	return append(baseSchema("0.05", "1.0"),
		Field{Name: "sample_rate", Kind: KindInt, Default: "44100", Help: "capture sample rate in Hz"},
		Field{Name: "chunk_size", Kind: KindInt, Default: "1024", Help: "samples analyzed per tick, power of two"},
		Field{Name: "frequency_bands", Kind: KindIntList, Default: "[60,250,500,2000,4000,8000]", Help: "ascending band edge frequencies in Hz"},
		Field{Name: "per_device", Kind: KindBool, Default: "false", Help: "independent composite variation per device"},
	)
}

func (effect *AudioLoopback) Start(run *Run) (err errors.Error) {
	if effect.source == nil {
		return errors.New("no audio source configured").With("effect", effect.Name()).With("stack", stack.Trace().TrimRuntime())
	}

	sampleRate := float64(run.Opts().Int("sample_rate"))
	if effect.analyzer, err = NewAnalyzer(run.Opts().Int("chunk_size"), sampleRate); err != nil {
		return err
	}
	if effect.bands, err = BandsFromEdges(run.Opts().IntList("frequency_bands"), sampleRate); err != nil {
		return err.With("option", "frequency_bands")
	}
	effect.current = Black
	return nil
}

func (effect *AudioLoopback) Loop(run *Run) (err errors.Error) {
	frame, err := effect.source.ReadFrame(run.Opts().Int("chunk_size"))
	if err != nil {
		return err
	}

	if len(frame) == 0 {
		// Capture produced nothing this tick, hold the last composite.
		return run.SetAll(effect.current)
	}

	mags, err := effect.analyzer.Magnitudes(frame)
	if err != nil {
		return err
	}
	energies := effect.analyzer.BandEnergies(mags, effect.bands)

	// A silent frame holds the previous composite rather than
	// producing an undefined blend.
	if composite, ok := CompositeColor(effect.bands, energies, effect.current); ok {
		effect.current = composite
	}

	if !run.Opts().Bool("per_device") {
		return run.SetAll(effect.current)
	}

	for _, device := range run.Targets() {
		if err = run.SetDevices([]Device{device}, jitter(effect.current)); err != nil {
			return err
		}
	}
	return nil
}

// jitter gives one device its own frame local variation of the
// composite.
func jitter(c Color) Color {
	return LerpColor(c, RandomColor(), rand.Float64()*0.15)
}

func (*AudioLoopback) Stop(run *Run) {
	run.Off()
}
