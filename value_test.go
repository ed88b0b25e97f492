package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueNode_New(t *testing.T) {
	v := NewValue(42)
	assert.Equal(t, 42, v.Get())
}

func TestValueNode_Set(t *testing.T) {
	v := NewValue(0)

	require.NoError(t, v.Set(10))
	assert.Equal(t, 10, v.Get())

	require.NoError(t, v.Set(20))
	assert.Equal(t, 20, v.Get())
}

func TestValueNode_SetIdenticalIsNoop(t *testing.T) {
	v := NewValue(5)
	before := v.pState.version

	require.NoError(t, v.Set(5))
	assert.Equal(t, before, v.pState.version, "Set with an identical value must not bump valueVersion (P6)")
}

func TestValueNode_Update(t *testing.T) {
	v := NewValue(5)

	require.NoError(t, v.Update(func(n int) int { return n * 2 }))
	assert.Equal(t, 10, v.Get())
}

func TestValueNode_Mutate(t *testing.T) {
	v := NewValue(&[]int{1, 2, 3})
	before := v.pState.version

	require.NoError(t, v.Mutate(func(s **[]int) { **s = append(**s, 4) }))

	assert.Equal(t, []int{1, 2, 3, 4}, *v.Get())
	assert.Greater(t, v.pState.version, before, "Mutate must unconditionally bump valueVersion")
}

func TestValueNode_VersionMonotonic(t *testing.T) {
	v := NewValue(0)
	last := v.pState.version

	for i := 1; i <= 5; i++ {
		require.NoError(t, v.Set(i))
		assert.GreaterOrEqual(t, v.pState.version, last)
		last = v.pState.version
	}
}

func TestValueNode_String(t *testing.T) {
	v := NewValue(1, WithName("count"))
	assert.Contains(t, v.String(), "count")
}
