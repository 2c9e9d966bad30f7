package rgbfx

import (
	"sync"
	"testing"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type push struct {
	Device int
	Color  Color
}

// fakeSink records pushes for inspection and can be told to fail.
type fakeSink struct {
	sync.Mutex
	devices []Device
	pushes  []push
	fail    errors.Error
}

func newFakeSink(count int) (sink *fakeSink) {
	sink = &fakeSink{}
	for i := 0; i != count; i++ {
		sink.devices = append(sink.devices, Device{Index: i, Name: "fake", Leds: 8})
	}
	return sink
}

func (sink *fakeSink) Connect() (err errors.Error) { return nil }

func (sink *fakeSink) Devices() (devices []Device) {
	return sink.devices
}

func (sink *fakeSink) SetColor(device Device, color Color) (err errors.Error) {
	sink.Lock()
	defer sink.Unlock()
	if sink.fail != nil {
		return sink.fail
	}
	sink.pushes = append(sink.pushes, push{Device: device.Index, Color: color})
	return nil
}

func (sink *fakeSink) Close() (err errors.Error) { return nil }

func (sink *fakeSink) failWith(err errors.Error) {
	sink.Lock()
	defer sink.Unlock()
	sink.fail = err
}

func (sink *fakeSink) recorded() (pushes []push) {
	sink.Lock()
	defer sink.Unlock()
	pushes = make([]push, len(sink.pushes))
	copy(pushes, sink.pushes)
	return pushes
}

// countingEffect tracks its hook invocations.
type countingEffect struct {
	starts   int
	loops    int
	stops    int
	loopErr  errors.Error
	startErr errors.Error
}

func (*countingEffect) Name() string   { return "Counting" }
func (*countingEffect) Schema() Schema { return baseSchema("0.001", "1.0") }

func (effect *countingEffect) Start(run *Run) (err errors.Error) {
	effect.starts++
	return effect.startErr
}

func (effect *countingEffect) Loop(run *Run) (err errors.Error) {
	effect.loops++
	if effect.loopErr != nil {
		return effect.loopErr
	}
	return run.SetAll(Green)
}

func (effect *countingEffect) Stop(run *Run) {
	effect.stops++
	run.Off()
}

func mustOpts(t *testing.T, schema Schema, overrides map[string]string) *Options {
	t.Helper()
	opts, err := Merge(schema, overrides)
	require.NoError(t, err)
	return opts
}

func TestRunTeardownExactlyOnce(t *testing.T) {
	sink := newFakeSink(2)
	effect := &countingEffect{}
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), sink)

	go func() {
		time.Sleep(20 * time.Millisecond)
		run.Stop()
	}()

	require.NoError(t, run.Drive(nil))
	assert.Equal(t, 1, effect.starts)
	assert.Equal(t, 1, effect.stops)
	assert.Greater(t, effect.loops, 0)
	assert.Equal(t, Stopped, run.State())
}

func TestRunStopInterruptsSleep(t *testing.T) {
	sink := newFakeSink(1)
	effect := &countingEffect{}
	// A sleep far longer than the run should take to stop
	run := NewRun(effect, mustOpts(t, effect.Schema(), map[string]string{"sleep_s": "10"}), sink)

	go func() {
		time.Sleep(20 * time.Millisecond)
		run.Stop()
	}()

	started := time.Now()
	require.NoError(t, run.Drive(nil))
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, 1, effect.stops)
}

func TestRunTeardownRunsAfterStartFailure(t *testing.T) {
	sink := newFakeSink(1)
	effect := &countingEffect{startErr: errors.New("boom").With("stack", stack.Trace().TrimRuntime())}
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), sink)

	err := run.Drive(nil)
	require.Error(t, err)
	assert.Equal(t, 0, effect.loops)
	assert.Equal(t, 1, effect.stops)
	assert.Equal(t, Stopped, run.State())
}

func TestRunTransientLoopErrorContinues(t *testing.T) {
	sink := newFakeSink(1)
	effect := &countingEffect{loopErr: errors.New("capture glitch").With("stack", stack.Trace().TrimRuntime())}
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), sink)

	go func() {
		time.Sleep(30 * time.Millisecond)
		run.Stop()
	}()

	require.NoError(t, run.Drive(nil))
	// The loop kept ticking despite every iteration failing
	assert.Greater(t, effect.loops, 1)
	assert.Equal(t, 1, effect.stops)
}

func TestRunFatalSinkErrorStops(t *testing.T) {
	sink := newFakeSink(1)
	sink.failWith(errors.New("connection failed").With("stack", stack.Trace().TrimRuntime()))
	effect := &countingEffect{}
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), sink)

	err := run.Drive(nil)
	require.Error(t, err)
	assert.True(t, IsConnectionErr(err))
	assert.Equal(t, 1, effect.loops)
	assert.Equal(t, 1, effect.stops)
}

func TestRunQuitChannelStops(t *testing.T) {
	sink := newFakeSink(1)
	effect := &countingEffect{}
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), sink)

	quitC := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(quitC)
	}()

	require.NoError(t, run.Drive(quitC))
	assert.Equal(t, 1, effect.stops)
}

func TestRunIsSingleUse(t *testing.T) {
	sink := newFakeSink(1)
	effect := &countingEffect{}
	run := NewRun(effect, mustOpts(t, effect.Schema(), nil), sink)

	go func() {
		time.Sleep(10 * time.Millisecond)
		run.Stop()
	}()
	require.NoError(t, run.Drive(nil))

	err := run.Drive(nil)
	require.Error(t, err)
	assert.Equal(t, 1, effect.starts)
}

func TestRunBrightnessCeilingApplied(t *testing.T) {
	sink := newFakeSink(1)
	effect := &countingEffect{}
	run := NewRun(effect, mustOpts(t, effect.Schema(), map[string]string{"max_brightness": "0.5"}), sink)

	go func() {
		time.Sleep(15 * time.Millisecond)
		run.Stop()
	}()
	require.NoError(t, run.Drive(nil))

	pushes := sink.recorded()
	require.NotEmpty(t, pushes)
	// Loop pushes green scaled by the ceiling, teardown pushes black
	assert.Equal(t, Color{0, 127, 0}, pushes[0].Color)
	assert.Equal(t, Black, pushes[len(pushes)-1].Color)
}
