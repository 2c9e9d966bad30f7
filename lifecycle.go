package rgbfx

// This file contains the state machine that turns an effect
// implementation into a controllable run.  A run walks
// Created -> Running -> Stopping -> Stopped exactly once, the teardown
// hook fires exactly once, and the inter iteration sleep is
// interruptible so a stop request never waits out a full delay.

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// Effect is the capability contract every effect implements.  Start is
// invoked once before the first iteration, Loop once per tick, and
// Stop exactly once when the run winds down, even when Start or Loop
// failed.
type Effect interface {
	Name() string
	Schema() Schema
	Start(run *Run) errors.Error
	Loop(run *Run) errors.Error
	Stop(run *Run)
}

type State int32

const (
	Created State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Run binds one effect instance to one merged set of options and one
// sink for the duration of a single run.  A Run is not reusable, a
// stopped effect is restarted with a fresh Run.
type Run struct {
	effect  Effect
	opts    *Options
	sink    Sink
	targets []Device

	nextDelay time.Duration

	state    int32
	stopC    chan struct{}
	doneC    chan struct{}
	stopOnce sync.Once
}

func NewRun(effect Effect, opts *Options, sink Sink) (run *Run) {
	return &Run{
		effect: effect,
		opts:   opts,
		sink:   sink,
		stopC:  make(chan struct{}),
		doneC:  make(chan struct{}),
	}
}

func (run *Run) State() State {
	return State(atomic.LoadInt32(&run.state))
}

func (run *Run) setState(s State) {
	atomic.StoreInt32(&run.state, int32(s))
}

// Opts exposes the merged options for the effect hooks.
func (run *Run) Opts() *Options {
	return run.opts
}

// Targets is the device selection fixed when the run started.
func (run *Run) Targets() []Device {
	return run.targets
}

// Stop asks the run to wind down.  It is safe to call from any
// goroutine and is idempotent.
func (run *Run) Stop() {
	run.stopOnce.Do(func() { close(run.stopC) })
}

// Done is closed once teardown has completed.
func (run *Run) Done() <-chan struct{} {
	return run.doneC
}

// Sleep waits for d unless the run is stopped first, reporting whether
// the run should keep going.  Effects use it for any delay inside their
// own loop hooks so stop requests stay responsive.
func (run *Run) Sleep(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-run.stopC:
			return false
		default:
			return true
		}
	}
	select {
	case <-time.After(d):
		return true
	case <-run.stopC:
		return false
	}
}

// SetNextDelay overrides the configured sleep for the next tick only.
func (run *Run) SetNextDelay(d time.Duration) {
	run.nextDelay = d
}

// SetDevices pushes color to the given devices with the run's
// brightness ceiling applied.
func (run *Run) SetDevices(devices []Device, color Color) (err errors.Error) {
	return run.push(devices, Scale(color, run.opts.MaxBrightness()))
}

// SetAll pushes color to every targeted device with the brightness
// ceiling applied.
func (run *Run) SetAll(color Color) (err errors.Error) {
	return run.SetDevices(run.targets, color)
}

// SetDevicesRaw pushes color without the brightness ceiling.  Used by
// effects that flash at full strength regardless of the ceiling.
func (run *Run) SetDevicesRaw(devices []Device, color Color) (err errors.Error) {
	return run.push(devices, color)
}

// Off blacks out every targeted device.
func (run *Run) Off() (err errors.Error) {
	return run.push(run.targets, Black)
}

func (run *Run) push(devices []Device, color Color) (err errors.Error) {
	for _, device := range devices {
		if errGo := run.sink.SetColor(device, color); errGo != nil {
			if IsConnectionErr(errGo) {
				return errGo
			}
			// A single device refusing a push degrades, it does
			// not abort the iteration for the others.
			logger.Warn("color push failed", "device", device.Index, "error", errGo.Error())
			err = errGo
		}
	}
	return err
}

// Drive runs the effect on the calling goroutine until it is stopped
// through Stop, the supplied quit channel closes, or a fatal sink
// failure occurs.  Teardown always runs before Drive returns.
func (run *Run) Drive(quitC <-chan struct{}) (err errors.Error) {
	if !atomic.CompareAndSwapInt32(&run.state, int32(Created), int32(Running)) {
		return errors.New("run already used").With("effect", run.effect.Name()).With("state", run.State().String()).With("stack", stack.Trace().TrimRuntime())
	}

	run.targets = ResolveTargets(run.sink.Devices(), run.opts.Devices())

	// Relay an external quit onto this run's own stop signal.
	relayDone := make(chan struct{})
	defer close(relayDone)
	go func() {
		select {
		case <-quitC:
			run.Stop()
		case <-relayDone:
		}
	}()

	defer func() {
		run.setState(Stopping)
		run.effect.Stop(run)
		run.setState(Stopped)
		run.Stop()
		close(run.doneC)
	}()

	if err = run.effect.Start(run); err != nil {
		return err.With("effect", run.effect.Name())
	}

	for {
		select {
		case <-run.stopC:
			return nil
		default:
		}

		run.nextDelay = run.opts.Sleep()
		if err := run.effect.Loop(run); err != nil {
			if IsConnectionErr(err) {
				logger.Error("sink lost, stopping effect", "effect", run.effect.Name(), "error", err.Error())
				return err.With("effect", run.effect.Name())
			}
			logger.Warn("iteration skipped", "effect", run.effect.Name(), "error", err.Error())
		}

		if !run.Sleep(run.nextDelay) {
			return nil
		}
	}
}
