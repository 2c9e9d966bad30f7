package rgbfx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerRunsStatic(t *testing.T) {
	sink := newFakeSink(3)
	c, err := NewController(sink)
	require.NoError(t, err)
	require.NoError(t, c.Connect())

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := c.RunEffect("Static", map[string]string{
			"color":          "#00FF00",
			"max_brightness": "50%",
			"sleep_s":        "0.01",
		}, nil)
		assert.NoError(t, err)
	}()

	time.Sleep(50 * time.Millisecond)
	c.Stop()
	<-done

	pushes := sink.recorded()
	require.NotEmpty(t, pushes)
	// Green at a 0.5 ceiling scales to half intensity on every push
	for _, p := range pushes {
		assert.Equal(t, Color{0, 127, 0}, p.Color)
	}
	require.NoError(t, c.Close())
}

func TestControllerUnknownEffect(t *testing.T) {
	c, err := NewController(newFakeSink(1))
	require.NoError(t, err)

	err = c.RunEffect("Disco", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown effect")
}

func TestControllerRejectsBadOverrides(t *testing.T) {
	c, err := NewController(newFakeSink(1))
	require.NoError(t, err)

	err = c.RunEffect("Static", map[string]string{"color": "plaid"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid color format")

	err = c.RunEffect("Static", map[string]string{"shade": "red"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown option")
}

func TestControllerSingleRunAtATime(t *testing.T) {
	c, err := NewController(newFakeSink(1))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.RunEffect("Static", map[string]string{"sleep_s": "0.01"}, nil)
	}()
	time.Sleep(30 * time.Millisecond)

	err = c.RunEffect("Breathing", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	c.Stop()
	<-done
}

func TestControllerStopIdle(t *testing.T) {
	c, err := NewController(newFakeSink(1))
	require.NoError(t, err)

	// Stopping with nothing running returns immediately
	c.Stop()
	c.Stop()
}

func TestControllerCustomRegistry(t *testing.T) {
	registry, err := NewRegistry(func() Effect { return NewStatic() })
	require.NoError(t, err)

	c, err := NewController(newFakeSink(1), WithRegistry(registry))
	require.NoError(t, err)
	assert.Equal(t, []string{"Static"}, c.ListEffects())
}
