package od_test

import (
	"testing"

	"github.com/exmachina-dev/CANopenNode/internal/od"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureRepeatCount(t *testing.T) {
	f, err := od.NewFeature("SDO server", 3)
	require.NoError(t, err)
	require.NoError(t, f.AddObject(0x1400, 0x1600, 1))

	assert.Equal(t, []int{0x1400, 0x1401, 0x1402}, f.Indices())
	assert.Equal(t, []int{0x1400}, f.FirstIndices())
	assert.Equal(t, 3, f.Count(0x1400))

	for want, idx := range []int{0x1400, 0x1401, 0x1402} {
		pos, first, ok := f.Position(idx)
		require.True(t, ok)
		assert.Equal(t, want, pos)
		assert.Equal(t, 0x1400, first)
	}
	_, _, ok := f.Position(0x1403)
	assert.False(t, ok)
	assert.True(t, f.IsFirst(0x1400))
	assert.False(t, f.IsFirst(0x1401))
	assert.Equal(t, "SDO_SERVER", f.MacroName())
}

func TestFeatureWithoutValueWalksRange(t *testing.T) {
	f, err := od.NewFeature("TPDO", 0)
	require.NoError(t, err)
	require.NoError(t, f.AddObject(0x1800, 0x1808, 2))
	require.NoError(t, f.AddObject(0x1A00, 0x1A02, 0))

	assert.Equal(t, []int{0x1800, 0x1802, 0x1804, 0x1806}, f.Covered(0x1800))
	assert.Equal(t, []int{0x1A00, 0x1A01}, f.Covered(0x1A00))
	assert.Equal(t, []int{0x1800, 0x1802, 0x1804, 0x1806, 0x1A00, 0x1A01}, f.Indices())
	assert.Equal(t, []int{0x1800, 0x1A00}, f.FirstIndices())

	pos, first, ok := f.Position(0x1A01)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 0x1A00, first)
}

func TestFeatureStep(t *testing.T) {
	f, err := od.NewFeature("pairs", 2)
	require.NoError(t, err)
	require.NoError(t, f.AddObject(0x2000, 0x2010, 4))
	assert.Equal(t, []int{0x2000, 0x2004}, f.Covered(0x2000))
}

func TestFeatureDescriptorErrors(t *testing.T) {
	f, err := od.NewFeature("RPDO", 4)
	require.NoError(t, err)

	assert.ErrorIs(t, f.AddObject(0x1400, 0x1400, 1), od.ErrRange)
	assert.ErrorIs(t, f.AddObject(0x1400, 0x1300, 1), od.ErrRange)
	assert.ErrorIs(t, f.AddObject(0x1400, 0x1600, -1), od.ErrRange)
	assert.ErrorIs(t, f.AddObject(0xFFFE, 0xFFFF, 1), od.ErrRange)

	require.NoError(t, f.AddObject(0x1400, 0x1600, 1))
	assert.ErrorIs(t, f.AddObject(0x1400, 0x1500, 1), od.ErrDuplicate)

	_, err = od.NewFeature("", 1)
	assert.ErrorIs(t, err, od.ErrValue)
	_, err = od.NewFeature("neg", -1)
	assert.ErrorIs(t, err, od.ErrValue)
}
