package rgbfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	registry, err := NewRegistry(
		func() Effect { return NewStatic() },
		func() Effect { return NewStatic() },
	)
	require.Error(t, err)
	assert.Nil(t, registry)
	assert.Contains(t, err.Error(), "duplicate effect")
}

func TestNewRegistryEmpty(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)
	assert.Empty(t, registry.List())
}

func TestRegistryListOrder(t *testing.T) {
	registry, err := NewRegistry(
		func() Effect { return NewBreathing() },
		func() Effect { return NewStatic() },
		func() Effect { return NewRainbow() },
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breathing", "Static", "Rainbow"}, registry.List())
}

func TestRegistryResolve(t *testing.T) {
	registry, err := DefaultRegistry(nil, nil)
	require.NoError(t, err)

	desc, err := registry.Resolve("Static")
	require.NoError(t, err)
	assert.Equal(t, "Static", desc.Name)
	assert.NotNil(t, desc.Factory)

	_, err = registry.Resolve("Disco")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown effect")
}

func TestRegistryFactoryYieldsFreshInstances(t *testing.T) {
	registry, err := DefaultRegistry(nil, nil)
	require.NoError(t, err)

	desc, err := registry.Resolve("Breathing")
	require.NoError(t, err)
	assert.NotSame(t, desc.Factory(), desc.Factory())
}

func TestRegistryDescribe(t *testing.T) {
	registry, err := DefaultRegistry(nil, nil)
	require.NoError(t, err)

	options, err := registry.Describe("Static")
	require.NoError(t, err)
	require.Contains(t, options, "color")
	require.Contains(t, options, "max_brightness")
	assert.NotEmpty(t, options["color"].Formats)
	assert.NotEmpty(t, options["max_brightness"].Default)

	_, err = registry.Describe("Disco")
	require.Error(t, err)
}
