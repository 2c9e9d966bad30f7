package rgbfx

// This file contains the typed option layer all effects configure
// themselves from.  Every effect publishes a closed schema of field
// descriptors, each carrying its own parser. Caller overrides are
// validated eagerly when the schema is merged, before a run starts.

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

type FieldKind int

const (
	KindColor FieldKind = iota
	KindBrightness
	KindFloat
	KindInt
	KindBool
	KindIntList
	KindString
)

// Formats describes the accepted input for a field kind, surfaced by
// the registry describe operation.
func (k FieldKind) Formats() string {
	switch k {
	case KindColor:
		return "name, #RRGGBB, R,G,B, random"
	case KindBrightness:
		return "0.0-1.0, NN%, random"
	case KindFloat:
		return "float"
	case KindInt:
		return "integer"
	case KindBool:
		return "true|false"
	case KindIntList:
		return "[n,n,...], all, empty"
	default:
		return "string"
	}
}

// Field describes one option an effect accepts.
type Field struct {
	Name    string
	Kind    FieldKind
	Default string
	Help    string
}

type Schema []Field

// baseSchema returns the three fields every effect carries.  Effects
// append their own fields to the returned slice.
func baseSchema(sleep string, maxBrightness string) Schema {
	return Schema{
		{Name: "sleep_s", Kind: KindFloat, Default: sleep, Help: "delay between iterations in seconds"},
		{Name: "devices", Kind: KindIntList, Default: "", Help: "device indices to target, empty or all for every device"},
		{Name: "max_brightness", Kind: KindBrightness, Default: maxBrightness, Help: "brightness ceiling applied to every push"},
	}
}

// Options holds the merged, parsed configuration for one run.  It is
// immutable once built.
type Options struct {
	values map[string]interface{}
}

func parseField(field Field, raw string) (value interface{}, err errors.Error) {
	switch field.Kind {
	case KindColor:
		return ParseColor(raw)
	case KindBrightness:
		return ParseBrightness(raw)
	case KindFloat:
		v, errGo := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if errGo != nil {
			return nil, errors.Wrap(errGo, "invalid float").With("stack", stack.Trace().TrimRuntime())
		}
		return v, nil
	case KindInt:
		v, errGo := strconv.Atoi(strings.TrimSpace(raw))
		if errGo != nil {
			return nil, errors.Wrap(errGo, "invalid integer").With("stack", stack.Trace().TrimRuntime())
		}
		return v, nil
	case KindBool:
		v, errGo := strconv.ParseBool(strings.TrimSpace(raw))
		if errGo != nil {
			return nil, errors.Wrap(errGo, "invalid boolean").With("stack", stack.Trace().TrimRuntime())
		}
		return v, nil
	case KindIntList:
		return parseIntList(raw)
	default:
		return strings.TrimSpace(raw), nil
	}
}

// parseIntList accepts "[60,250,500]", a bare "60,250,500", or the
// empty/"all" forms that select everything.
func parseIntList(raw string) (values []int, err errors.Error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" || s == "all" {
		return nil, nil
	}
	for _, part := range strings.Split(s, ",") {
		v, errGo := strconv.Atoi(strings.TrimSpace(part))
		if errGo != nil {
			return nil, errors.Wrap(errGo, "invalid integer list").With("list", raw).With("stack", stack.Trace().TrimRuntime())
		}
		values = append(values, v)
	}
	return values, nil
}

// Merge builds the final options for a run: every schema field takes
// the override value when one was supplied, its default otherwise.
// Override keys absent from the schema are rejected.
func Merge(schema Schema, overrides map[string]string) (opts *Options, err errors.Error) {
	known := map[string]bool{}
	for _, field := range schema {
		known[field.Name] = true
	}
	for name := range overrides {
		if !known[name] {
			return nil, errors.New("unknown option").With("option", name).With("stack", stack.Trace().TrimRuntime())
		}
	}

	opts = &Options{values: make(map[string]interface{}, len(schema))}
	for _, field := range schema {
		raw := field.Default
		if override, isSet := overrides[field.Name]; isSet {
			raw = override
		}
		value, err := parseField(field, raw)
		if err != nil {
			return nil, err.With("option", field.Name)
		}
		opts.values[field.Name] = value
	}

	if sleep := opts.Float("sleep_s"); sleep < 0 {
		return nil, errors.New("invalid float").With("option", "sleep_s").With("stack", stack.Trace().TrimRuntime())
	}
	return opts, nil
}

// ParseOptionList splits a "key=value,key=value" option string into an
// override map.  Bracketed list values may themselves contain commas.
func ParseOptionList(s string) (overrides map[string]string, err errors.Error) {
	overrides = map[string]string{}
	s = strings.TrimSpace(s)
	if s == "" {
		return overrides, nil
	}

	depth := 0
	start := 0
	pairs := []string{}
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				pairs = append(pairs, s[start:i])
				start = i + 1
			}
		}
	}
	pairs = append(pairs, s[start:])

	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			return nil, errors.New("invalid option pair").With("pair", pair).With("stack", stack.Trace().TrimRuntime())
		}
		overrides[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return overrides, nil
}

func (opts *Options) Float(name string) float64 {
	v, _ := opts.values[name].(float64)
	return v
}

func (opts *Options) Int(name string) int {
	v, _ := opts.values[name].(int)
	return v
}

func (opts *Options) Bool(name string) bool {
	v, _ := opts.values[name].(bool)
	return v
}

func (opts *Options) String(name string) string {
	v, _ := opts.values[name].(string)
	return v
}

func (opts *Options) Color(name string) Color {
	v, _ := opts.values[name].(Color)
	return v
}

func (opts *Options) IntList(name string) []int {
	v, _ := opts.values[name].([]int)
	return v
}

// Sleep is the configured inter iteration delay.
func (opts *Options) Sleep() time.Duration {
	return time.Duration(opts.Float("sleep_s") * float64(time.Second))
}

// MaxBrightness is the brightness ceiling for every push in a run.
func (opts *Options) MaxBrightness() float64 {
	return opts.Float("max_brightness")
}

// Devices is the configured device selector, nil meaning all.
func (opts *Options) Devices() []int {
	return opts.IntList("devices")
}
