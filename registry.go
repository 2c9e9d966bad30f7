package rgbfx

// This file contains the effect registry.  Effects are registered from
// an explicit list when the registry is built, once, at startup.  The
// registry is read only afterwards and safe for concurrent readers.

import (
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// Factory produces a fresh effect instance for one run.
type Factory func() Effect

// Descriptor is the registry metadata for one effect.
type Descriptor struct {
	Name    string
	Schema  Schema
	Factory Factory
}

// OptionInfo describes one schema field for front end introspection.
type OptionInfo struct {
	Default string
	Formats string
	Help    string
}

type Registry struct {
	order  []string
	byName map[string]*Descriptor
}

// NewRegistry builds a registry from an explicit list of effect
// factories.  Duplicate names are rejected here, at discovery, rather
// than surfacing later at run time.
func NewRegistry(factories ...Factory) (registry *Registry, err errors.Error) {
	registry = &Registry{
		byName: make(map[string]*Descriptor, len(factories)),
	}

	for _, factory := range factories {
		probe := factory()
		name := probe.Name()
		if _, exists := registry.byName[name]; exists {
			return nil, errors.New("duplicate effect").With("effect", name).With("stack", stack.Trace().TrimRuntime())
		}
		registry.byName[name] = &Descriptor{
			Name:    name,
			Schema:  probe.Schema(),
			Factory: factory,
		}
		registry.order = append(registry.order, name)
	}
	return registry, nil
}

// DefaultRegistry registers every effect this module ships.  The audio
// and screen producers may be nil, in which case the effects needing
// them refuse to start.
func DefaultRegistry(audio AudioSource, screen FrameGrabber) (registry *Registry, err errors.Error) {
	return NewRegistry(
		func() Effect { return NewStatic() },
		func() Effect { return NewBreathing() },
		func() Effect { return NewRainbow() },
		func() Effect { return NewPoliceLights() },
		func() Effect { return NewLightning() },
		func() Effect { return NewRandomColors() },
		func() Effect { return NewAudio(audio) },
		func() Effect { return NewAudioLoopback(audio) },
		func() Effect { return NewDesktop(screen) },
	)
}

// List returns effect names in registration order.
func (registry *Registry) List() (names []string) {
	names = make([]string, len(registry.order))
	copy(names, registry.order)
	return names
}

// Resolve returns the descriptor registered under name.
func (registry *Registry) Resolve(name string) (desc *Descriptor, err errors.Error) {
	desc, exists := registry.byName[name]
	if !exists {
		return nil, errors.New("unknown effect").With("effect", name).With("known", registry.order).With("stack", stack.Trace().TrimRuntime())
	}
	return desc, nil
}

// Describe returns the option schema for one effect, keyed by field
// name, for display by the front end.
func (registry *Registry) Describe(name string) (options map[string]OptionInfo, err errors.Error) {
	desc, err := registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	options = make(map[string]OptionInfo, len(desc.Schema))
	for _, field := range desc.Schema {
		options[field.Name] = OptionInfo{
			Default: field.Default,
			Formats: field.Kind.Formats(),
			Help:    field.Help,
		}
	}
	return options, nil
}
