package rgbfx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timestats "github.com/cwbudde/algo-dsp/stats/time"
)

func audioOpts(t *testing.T) *Options {
	t.Helper()
	return mustOpts(t, (&Audio{}).Schema(), map[string]string{
		"peak_threshold": "0.1",
		"peak_duration":  "0.1",
		"fade_duration":  "0.2",
	})
}

func TestAudioPeakTriggersFlash(t *testing.T) {
	effect := NewAudio(nil)
	effect.current = Black
	opts := audioOpts(t)
	now := time.Now()

	effect.advance(0.5, now, opts)
	assert.True(t, effect.peakDetected)
	assert.NotEqual(t, Black, effect.current)
	assert.Equal(t, effect.target, effect.current)
}

func TestAudioQuietFrameBelowThreshold(t *testing.T) {
	effect := NewAudio(nil)
	effect.advance(0.05, time.Now(), audioOpts(t))
	assert.False(t, effect.peakDetected)
	assert.Equal(t, Black, effect.current)
}

func TestAudioFlashFadesToBlack(t *testing.T) {
	effect := NewAudio(nil)
	opts := audioOpts(t)
	start := time.Now()

	effect.advance(0.5, start, opts)
	flash := effect.current

	// Past the hold time the fade begins
	effect.advance(0, start.Add(150*time.Millisecond), opts)
	assert.False(t, effect.peakDetected)
	assert.True(t, effect.fading)

	// Halfway through the fade the color has dimmed but not gone
	effect.advance(0, start.Add(250*time.Millisecond), opts)
	assert.NotEqual(t, flash, effect.current)
	assert.NotEqual(t, Black, effect.current)

	// Past the fade the color is fully off
	effect.advance(0, start.Add(400*time.Millisecond), opts)
	assert.False(t, effect.fading)
	assert.Equal(t, Black, effect.current)
}

func TestAudioRetriggerSuppressedWhileFading(t *testing.T) {
	effect := NewAudio(nil)
	opts := audioOpts(t)
	start := time.Now()

	effect.advance(0.5, start, opts)
	target := effect.target
	effect.advance(0, start.Add(150*time.Millisecond), opts)
	require.True(t, effect.fading)

	// A second burst mid fade does not restart the flash
	effect.advance(0.9, start.Add(200*time.Millisecond), opts)
	assert.True(t, effect.fading)
	assert.False(t, effect.peakDetected)
	assert.Equal(t, target, effect.target)
}

func TestAudioStartRequiresSource(t *testing.T) {
	effect := NewAudio(nil)
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), newFakeSink(1))
	err := effect.Start(run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio source configured")
}

func TestRMSOfKnownSignal(t *testing.T) {
	// A full scale square wave has RMS 1
	frame := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	assert.InDelta(t, 1.0, timestats.RMS(frame), 1e-9)

	assert.InDelta(t, 0.0, timestats.RMS(make([]float64, 8)), 1e-9)
}
