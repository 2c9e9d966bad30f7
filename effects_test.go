package rgbfx

import (
	"testing"

	"github.com/karlmutch/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreathLevelCycle(t *testing.T) {
	// One cycle per second with a 0.1 floor: the quarter point peaks,
	// the three quarter point bottoms out at the floor
	assert.InDelta(t, 0.55, breathLevel(0, 1, 0.1), 1e-9)
	assert.InDelta(t, 1.0, breathLevel(0.25, 1, 0.1), 1e-9)
	assert.InDelta(t, 0.55, breathLevel(0.5, 1, 0.1), 1e-9)
	assert.InDelta(t, 0.1, breathLevel(0.75, 1, 0.1), 1e-9)
	assert.InDelta(t, 0.55, breathLevel(1, 1, 0.1), 1e-9)
}

func TestBreathLevelNeverBelowFloor(t *testing.T) {
	for elapsed := 0.0; elapsed < 2; elapsed += 0.01 {
		level := breathLevel(elapsed, 2, 0.3)
		assert.GreaterOrEqual(t, level, 0.3-1e-9)
		assert.LessOrEqual(t, level, 1.0+1e-9)
	}
}

func TestStaticStopKeepsColor(t *testing.T) {
	sink := newFakeSink(2)
	effect := NewStatic()
	run := NewRun(effect, mustOpts(t, effect.Schema(), map[string]string{"color": "red"}), sink)
	run.targets = sink.Devices()

	require.NoError(t, effect.Start(run))
	effect.Stop(run)

	pushes := sink.recorded()
	require.NotEmpty(t, pushes)
	// No blackout was pushed, the color survives the run
	for _, p := range pushes {
		assert.Equal(t, Red, p.Color)
	}
}

func TestRandomColorsUniform(t *testing.T) {
	sink := newFakeSink(3)
	effect := NewRandomColors()
	run := NewRun(effect, mustOpts(t, effect.Schema(), map[string]string{"per_device": "false"}), sink)
	run.targets = sink.Devices()

	require.NoError(t, effect.Start(run))
	sink.pushes = nil
	require.NoError(t, effect.Loop(run))

	pushes := sink.recorded()
	require.Len(t, pushes, 3)
	assert.Equal(t, pushes[0].Color, pushes[1].Color)
	assert.Equal(t, pushes[1].Color, pushes[2].Color)
}

// scriptedSource plays back a fixed sequence of frames.
type scriptedSource struct {
	frames [][]float64
}

func (source *scriptedSource) ReadFrame(samples int) (frame []float64, err errors.Error) {
	if len(source.frames) == 0 {
		return nil, nil
	}
	frame = source.frames[0]
	source.frames = source.frames[1:]
	return frame, nil
}

func TestAudioLoopbackTracksToneAndHoldsOnSilence(t *testing.T) {
	source := &scriptedSource{frames: [][]float64{
		sineFrame(1000, 44100, 1024), // lands in the yellow band
		make([]float64, 1024),        // silence
		nil,                          // no capture data at all
	}}
	sink := newFakeSink(1)
	effect := NewAudioLoopback(source)
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), sink)
	run.targets = sink.Devices()

	require.NoError(t, effect.Start(run))

	require.NoError(t, effect.Loop(run))
	assert.Equal(t, Yellow, effect.current)

	// A silent frame and an empty frame both hold the composite
	require.NoError(t, effect.Loop(run))
	assert.Equal(t, Yellow, effect.current)
	require.NoError(t, effect.Loop(run))
	assert.Equal(t, Yellow, effect.current)
}

func TestAudioLoopbackStartValidatesOptions(t *testing.T) {
	effect := NewAudioLoopback(&scriptedSource{})

	run := NewRun(effect, mustOpts(t, effect.Schema(), map[string]string{"chunk_size": "1000"}), newFakeSink(1))
	require.Error(t, effect.Start(run))

	run = NewRun(effect, mustOpts(t, effect.Schema(), map[string]string{"frequency_bands": "[8000,4000]"}), newFakeSink(1))
	err := effect.Start(run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid integer list")

	effect = NewAudioLoopback(nil)
	run = NewRun(effect, mustOpts(t, effect.Schema(), nil), newFakeSink(1))
	require.Error(t, effect.Start(run))
}
