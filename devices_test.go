package rgbfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTargetsAll(t *testing.T) {
	all := newFakeSink(3).Devices()

	assert.Equal(t, all, ResolveTargets(all, nil))
	assert.Equal(t, all, ResolveTargets(all, []int{}))
}

func TestResolveTargetsSelection(t *testing.T) {
	all := newFakeSink(4).Devices()

	targets := ResolveTargets(all, []int{2, 0})
	assert.Len(t, targets, 2)
	assert.Equal(t, 2, targets[0].Index)
	assert.Equal(t, 0, targets[1].Index)
}

func TestResolveTargetsDropsUnknown(t *testing.T) {
	all := newFakeSink(3).Devices()

	// Index 5 does not exist, the valid selection survives
	targets := ResolveTargets(all, []int{0, 5})
	assert.Len(t, targets, 1)
	assert.Equal(t, 0, targets[0].Index)

	assert.Empty(t, ResolveTargets(all, []int{-1, 9}))
}

func TestRandomTarget(t *testing.T) {
	all := newFakeSink(3).Devices()

	seen := map[int]bool{}
	for i := 0; i != 64; i++ {
		picked := RandomTarget(all)
		require.Len(t, picked, 1)
		assert.Contains(t, []int{0, 1, 2}, picked[0].Index)
		seen[picked[0].Index] = true
	}
	assert.Greater(t, len(seen), 1)

	assert.Nil(t, RandomTarget(nil))
}
