package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputedNode_BasicDependency(t *testing.T) {
	count := NewValue(5)
	doubled := NewComputed(func() (int, error) {
		return count.Get() * 2, nil
	})

	v, err := doubled.Get()
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	require.NoError(t, count.Set(10))
	v, err = doubled.Get()
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestComputedNode_MultipleDependencies(t *testing.T) {
	first := NewValue("John")
	last := NewValue("Doe")

	fullName := NewComputed(func() (string, error) {
		return first.Get() + " " + last.Get(), nil
	})

	v, err := fullName.Get()
	require.NoError(t, err)
	assert.Equal(t, "John Doe", v)

	require.NoError(t, first.Set("Jane"))
	v, err = fullName.Get()
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", v)
}

func TestComputedNode_MinimalRecomputation(t *testing.T) {
	// P5: if the leaf values are unchanged between two reads of the same
	// node, the second read performs zero calculate() invocations.
	calls := 0
	count := NewValue(5)
	doubled := NewComputed(func() (int, error) {
		calls++
		return count.Get() * 2, nil
	})

	_, err := doubled.Get()
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	_, err = doubled.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a second read with no leaf changes must not recompute")
}

func TestComputedNode_IdentityStabilityWhenUnchanged(t *testing.T) {
	// P3: if calculate() returns a value identical to the prior cached
	// value, valueVersion does not bump.
	const mod = 2
	a := NewValue(0)
	b := NewValue(0)
	c := NewComputed(func() (int, error) {
		return (a.Get() + b.Get()) % mod, nil
	})

	_, err := c.Get()
	require.NoError(t, err)
	versionAfterFirst := c.pState.version

	require.NoError(t, a.Set(1))
	require.NoError(t, a.Set(0)) // round-trips back to the originally observed value

	v, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, versionAfterFirst, c.pState.version, "recompute that yields an identical value must not bump valueVersion")
}

func TestComputedNode_DynamicTopology(t *testing.T) {
	cond := NewValue(true)
	x := NewValue(10)
	y := NewValue(20)

	calls := 0
	out := NewComputed(func() (int, error) {
		calls++
		if cond.Get() {
			return x.Get(), nil
		}
		return y.Get(), nil
	})

	v, err := out.Get()
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, out.cState.producers.Size())
	require.Equal(t, 1, calls)

	require.NoError(t, y.Set(99))
	v, err = out.Get()
	require.NoError(t, err)
	assert.Equal(t, 10, v, "y is not a recorded dependency while cond is true")
	assert.Equal(t, 1, calls, "y.Set must not even mark out dirty, since out never read y")

	require.NoError(t, cond.Set(false))
	v, err = out.Get()
	require.NoError(t, err)
	assert.Equal(t, 99, v)
	require.Equal(t, 2, calls)

	require.NoError(t, x.Set(11))
	v, err = out.Get()
	require.NoError(t, err)
	assert.Equal(t, 99, v)
	assert.Equal(t, 2, calls, "x is no longer a recorded dependency once cond is false; x.Set must not trigger a recomputation")
}

func TestComputedNode_CycleDetection(t *testing.T) {
	var a, b *ComputedNode[int]
	a = NewComputed(func() (int, error) { return b.Get() })
	b = NewComputed(func() (int, error) { return a.Get() })

	_, err := a.Get()
	require.Error(t, err)
	assert.True(t, IsCycle(err))

	// A subsequent read on an unrelated leaf still works.
	leaf := NewValue(1)
	assert.Equal(t, 1, leaf.Get())
}

func TestComputedNode_ChangedWhileCalculating(t *testing.T) {
	trigger := NewValue(0)
	var c *ComputedNode[int]
	c = NewComputed(func() (int, error) {
		v := trigger.Get()
		if v == 0 {
			// Mutating a producer of the node currently calculating, from
			// inside that very calculation, must surface as
			// ChangedWhileCalculating: trigger.Set notifies c, and c is
			// still cacheComputing at that point.
			if err := trigger.Set(1); err != nil {
				return 0, err
			}
		}
		return v, nil
	})

	_, err := c.Get()
	require.Error(t, err)
	assert.True(t, IsChangedWhileCalculating(err))
}

func TestComputedNode_PanicIsRecovered(t *testing.T) {
	c := NewComputed(func() (int, error) {
		panic("boom")
	})

	_, err := c.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestComputedNode_OnPanicHook(t *testing.T) {
	var captured any
	c := NewComputed(func() (int, error) {
		panic("boom")
	}, WithOnPanic(func(r any, _ []byte) { captured = r }))

	_, err := c.Get()
	require.Error(t, err)
	assert.Equal(t, "boom", captured)
}

func TestComputedNode_String(t *testing.T) {
	c := NewComputed(func() (int, error) { return 1, nil }, WithName("total"))
	_, err := c.Get()
	require.NoError(t, err)
	assert.Contains(t, c.String(), "total")
}
