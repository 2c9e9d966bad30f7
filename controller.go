package rgbfx

// This file contains the top level facade.  A controller owns one sink
// connection, the effect registry, and at most one running effect at a
// time.

import (
	"sync"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

type Controller struct {
	sink     Sink
	registry *Registry

	audio  AudioSource
	screen FrameGrabber

	running *Run
	sync.Mutex
}

// ControllerOption mutates a controller while it is being built.
type ControllerOption func(c *Controller)

// WithAudioSource supplies the capture producer the audio effects read
// frames from.
func WithAudioSource(source AudioSource) ControllerOption {
	return func(c *Controller) { c.audio = source }
}

// WithFrameGrabber supplies the screen producer the desktop effect
// reads frames from.
func WithFrameGrabber(grabber FrameGrabber) ControllerOption {
	return func(c *Controller) { c.screen = grabber }
}

// WithRegistry replaces the default effect registry.
func WithRegistry(registry *Registry) ControllerOption {
	return func(c *Controller) { c.registry = registry }
}

func NewController(sink Sink, options ...ControllerOption) (c *Controller, err errors.Error) {
	c = &Controller{sink: sink}
	for _, option := range options {
		if option != nil {
			option(c)
		}
	}
	if c.registry == nil {
		if c.registry, err = DefaultRegistry(c.audio, c.screen); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Connect acquires the device sink.  Failures are surfaced to the
// caller untouched, retry policy belongs to the front end.
func (c *Controller) Connect() (err errors.Error) {
	if err = c.sink.Connect(); err != nil {
		return err
	}
	logger.Info("connected", "devices", len(c.sink.Devices()))
	return nil
}

// Close releases the sink.
func (c *Controller) Close() (err errors.Error) {
	c.Stop()
	return c.sink.Close()
}

// ListEffects returns the effect names in registration order.
func (c *Controller) ListEffects() (names []string) {
	return c.registry.List()
}

// Describe returns the option schema for one effect.
func (c *Controller) Describe(name string) (options map[string]OptionInfo, err errors.Error) {
	return c.registry.Describe(name)
}

// RunEffect resolves name, merges the overrides against the effect's
// defaults and drives the effect on the calling goroutine until it is
// stopped.  Only one effect runs per controller at a time.
func (c *Controller) RunEffect(name string, overrides map[string]string, quitC <-chan struct{}) (err errors.Error) {
	desc, err := c.registry.Resolve(name)
	if err != nil {
		return err
	}
	opts, err := Merge(desc.Schema, overrides)
	if err != nil {
		return err.With("effect", name)
	}

	run := NewRun(desc.Factory(), opts, c.sink)

	c.Lock()
	if c.running != nil && c.running.State() != Stopped {
		c.Unlock()
		return errors.New("an effect is already running").With("effect", name).With("stack", stack.Trace().TrimRuntime())
	}
	c.running = run
	c.Unlock()

	logger.Info("effect starting", "effect", name)
	err = run.Drive(quitC)
	logger.Info("effect stopped", "effect", name)

	c.Lock()
	c.running = nil
	c.Unlock()
	return err
}

// Stop winds down the active effect if one is running.  Idempotent,
// stopping an idle controller does nothing.
func (c *Controller) Stop() {
	c.Lock()
	run := c.running
	c.Unlock()

	if run == nil {
		return
	}
	run.Stop()
	<-run.Done()
}
