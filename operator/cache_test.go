package operator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionCache_Reuse(t *testing.T) {
	cache := NewFunctionCache()

	invoked := 0
	factory := func() (*Function, error) {
		invoked++
		return &Function{Name: "u", Save: 1}, nil
	}

	first, err := cache.GetOrCreate("u", true, factory)
	require.NoError(t, err)
	second, err := cache.GetOrCreate("u", true, factory)
	require.NoError(t, err)

	assert.Equal(t, 1, invoked, "factory must run exactly once for a reused name")
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestFunctionCache_NoReuse(t *testing.T) {
	cache := NewFunctionCache()

	invoked := 0
	factory := func() (*Function, error) {
		invoked++
		return &Function{Name: "u"}, nil
	}

	first, err := cache.GetOrCreate("u", true, factory)
	require.NoError(t, err)
	second, err := cache.GetOrCreate("u", false, factory)
	require.NoError(t, err)

	assert.Equal(t, 2, invoked)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, cache.Len(), "the replaced declaration is released, never two live at once")
}

func TestFunctionCache_Release(t *testing.T) {
	cache := NewFunctionCache()

	invoked := 0
	factory := func() (*Function, error) {
		invoked++
		return &Function{Name: "v"}, nil
	}

	_, err := cache.GetOrCreate("v", true, factory)
	require.NoError(t, err)

	cache.Release("v")
	_, ok := cache.Get("v")
	assert.False(t, ok)

	_, err = cache.GetOrCreate("v", true, factory)
	require.NoError(t, err)
	assert.Equal(t, 2, invoked, "release must force the factory to run again")

	// Releasing an absent name is a no-op.
	cache.Release("never_declared")
	cache.Release("v")
	cache.Release("v")
	assert.Equal(t, 0, cache.Len())
}

func TestFunctionCache_FactoryError(t *testing.T) {
	cache := NewFunctionCache()

	boom := errors.New("allocation failed")
	_, err := cache.GetOrCreate("w", true, func() (*Function, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len(), "failed factories leave no entry behind")
}

func TestFunctionCache_NamesAndClear(t *testing.T) {
	cache := NewFunctionCache()

	for _, name := range []string{"vp", "rho", "u"} {
		_, err := cache.GetOrCreate(name, true, func() (*Function, error) {
			return &Function{Name: name}, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"rho", "u", "vp"}, cache.Names())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestFunction_Elements(t *testing.T) {
	dense := &Function{Shape: []int{4, 5, 6}}
	assert.Equal(t, 120, dense.Elements())

	sparse := &Function{Num: 7}
	assert.Equal(t, 7, sparse.Elements())
}

func TestFunction_FreeNilSafe(t *testing.T) {
	var fun *Function
	fun.Free()

	fun = &Function{Name: "u"}
	fun.Free()
	fun.Free()
}
