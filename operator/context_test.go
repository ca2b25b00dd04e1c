package operator

import (
	"testing"

	"github.com/notargets/gocca"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyenterprise/stride/grid"
	"github.com/agencyenterprise/stride/utils"
)

func testProblem(t *testing.T) *grid.Grid {
	t.Helper()
	space, err := grid.NewSpace([]int{10, 10}, []float64{0.5}, []int{2, 2}, []int{2, 2})
	require.NoError(t, err)
	tm, err := grid.NewTime(grid.TimeConfig{Start: grid.Float(0), Step: grid.Float(0.001), Num: grid.Int(100)})
	require.NoError(t, err)
	return grid.NewGrid(space, tm, nil)
}

func testContext(t *testing.T) (*GridContext, *gocca.OCCADevice) {
	t.Helper()
	device, err := utils.TestDevice()
	if err != nil {
		t.Skipf("skipping device-bound test: %v", err)
	}
	gc := NewGridContext(device, Config{SpaceOrder: 4, TimeOrder: 2})
	gc.SetProblem(testProblem(t))
	return gc, device
}

func TestGridContext_NilDevicePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil device")
		}
	}()
	NewGridContext(nil, Config{})
}

func TestGridContext_Geometry(t *testing.T) {
	gc, device := testContext(t)
	defer device.Free()
	defer gc.Free()

	geom := gc.Geometry()
	require.NotNil(t, geom)
	assert.Equal(t, []int{14, 14}, geom.Shape)
	assert.InDeltaSlice(t, []float64{6.5, 6.5}, geom.Extent, 1e-12)
	assert.InDeltaSlice(t, []float64{-1.0, -1.0}, geom.Origin, 1e-12)

	assert.Len(t, gc.Regions(), 18, "2D decomposition")
}

func TestGridContext_FunctionCaching(t *testing.T) {
	gc, device := testContext(t)
	defer device.Free()
	defer gc.Free()

	vp, err := gc.Function("vp")
	require.NoError(t, err)
	assert.Equal(t, []int{22, 22}, vp.Shape, "extended shape plus the space-order halo")
	assert.Equal(t, 1, vp.Save)
	require.NotNil(t, vp.Memory)

	again, err := gc.Function("vp")
	require.NoError(t, err)
	assert.Same(t, vp, again, "repeated declaration reuses the cached function")

	fresh, err := gc.Function("vp", NoReuse())
	require.NoError(t, err)
	assert.NotSame(t, vp, fresh)

	gc.Deallocate("vp")
	_, ok := gc.Cache().Get("vp")
	assert.False(t, ok)
	gc.Deallocate("vp") // idempotent
}

func TestGridContext_TimeFunctions(t *testing.T) {
	gc, device := testContext(t)
	defer device.Free()
	defer gc.Free()

	u, err := gc.TimeFunction("u")
	require.NoError(t, err)
	assert.Equal(t, 3, u.Save, "time order 2 buffers three slots")

	u2, err := gc.TimeFunction("u2", WithTimeOrder(4), WithSpaceOrder(2))
	require.NoError(t, err)
	assert.Equal(t, 5, u2.Save)
	assert.Equal(t, []int{18, 18}, u2.Shape)

	saved, err := gc.UndersampledTimeFunction("u_saved", 8)
	require.NoError(t, err)
	assert.Equal(t, 13, saved.Save, "ceil(100/8) decimated slots")

	_, err = gc.UndersampledTimeFunction("bad", 0)
	assert.ErrorIs(t, err, grid.ErrConfiguration)
}

func TestGridContext_SparseTimeFunctions(t *testing.T) {
	gc, device := testContext(t)
	defer device.Free()
	defer gc.Free()

	coords := [][]float64{{1.25, 2.0}, {3.0, 3.75}}

	t.Run("Linear", func(t *testing.T) {
		rec, err := gc.SparseTimeFunction("rec", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, rec.Num)
		assert.Equal(t, 100, rec.Save)
		assert.Nil(t, rec.Placement)
	})

	t.Run("Hicks", func(t *testing.T) {
		src, err := gc.SparseTimeFunction("src", 2,
			WithInterpolation(InterpHicks), WithCoordinates(coords))
		require.NoError(t, err)
		require.NotNil(t, src.Placement)
		assert.Equal(t, 2, src.Placement.Num)
		assert.Equal(t, 7, src.Placement.Width)
		assert.Len(t, src.aux, 3, "gridpoints plus one coefficient table per axis")
	})

	t.Run("HicksWithoutCoordinates", func(t *testing.T) {
		_, err := gc.SparseTimeFunction("src2", 2, WithInterpolation(InterpHicks))
		assert.ErrorIs(t, err, grid.ErrConfiguration)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, err := gc.SparseTimeFunction("src3", 2, WithInterpolation("cubic"))
		assert.ErrorIs(t, err, ErrInvalidInterpolation)
	})

	t.Run("NoPoints", func(t *testing.T) {
		_, err := gc.SparseTimeFunction("src4", 0)
		assert.ErrorIs(t, err, grid.ErrConfiguration)
	})
}

func TestPadEdge(t *testing.T) {
	t.Run("1D", func(t *testing.T) {
		out := padEdge([]float32{1, 2, 3}, []int{3}, 2)
		assert.Equal(t, []float32{1, 1, 1, 2, 3, 3, 3}, out)
	})

	t.Run("2D", func(t *testing.T) {
		out := padEdge([]float32{
			1, 2,
			3, 4,
		}, []int{2, 2}, 1)
		assert.Equal(t, []float32{
			1, 1, 2, 2,
			1, 1, 2, 2,
			3, 3, 4, 4,
			3, 3, 4, 4,
		}, out)
	})
}

func TestOperator_Lifecycle(t *testing.T) {
	gc, device := testContext(t)
	defer device.Free()
	defer gc.Free()

	op := NewOperator(gc, "")
	assert.Equal(t, "kernel", op.Name)

	timeM, timeMax := op.TimeRange()
	assert.Equal(t, 0, timeM)
	assert.Equal(t, 99, timeMax, "defaults to the extended time grid")

	op.SetTimeRange(10, 20)
	timeM, timeMax = op.TimeRange()
	assert.Equal(t, 10, timeM)
	assert.Equal(t, 20, timeMax)

	err := op.Run()
	assert.Error(t, err, "running an uncompiled operator must fail")
}
