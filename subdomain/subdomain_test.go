package subdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyenterprise/stride/grid"
)

func space2D(t *testing.T) *grid.Space {
	t.Helper()
	s, err := grid.NewSpace([]int{10, 12}, []float64{1}, []int{3, 4}, []int{3, 4})
	require.NoError(t, err)
	return s
}

func TestDecompose_RegionCount(t *testing.T) {
	testCases := []struct {
		dim   int
		shape []int
		count int
	}{
		{1, []int{10}, 10},
		{2, []int{10, 12}, 18},
		{3, []int{10, 12, 14}, 28},
	}

	for _, tc := range testCases {
		extra := make([]int, tc.dim)
		for d := range extra {
			extra[d] = 2
		}
		s, err := grid.NewSpace(tc.shape, []float64{1}, extra, extra)
		require.NoError(t, err)

		regions := Decompose(s)
		assert.Len(t, regions, tc.count, "dim=%d", tc.dim)
		assert.Equal(t, tc.count, Count(tc.dim))

		// Names are unique: the backend indexes regions by name.
		seen := make(map[string]bool)
		for _, r := range regions {
			if seen[r.Name] {
				t.Errorf("dim=%d: duplicate region name %q", tc.dim, r.Name)
			}
			seen[r.Name] = true
			assert.Len(t, r.Selectors, tc.dim)
		}
	}
}

func TestDecompose_Naming(t *testing.T) {
	regions := Decompose(space2D(t))

	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}

	assert.Equal(t, []string{
		"full_domain", "interior_domain",
		"pml_partial_left0", "pml_partial_right0", "pml_partial_left1", "pml_partial_right1",
		"pml_side_left0", "pml_side_left1", "pml_side_right0", "pml_side_right1",
		"pml_centre_left0", "pml_centre_right0", "pml_centre_left1", "pml_centre_right1",
		"pml_corner_left_left", "pml_corner_left_right", "pml_corner_right_left", "pml_corner_right_right",
	}, names)
}

func TestDecompose_Selectors(t *testing.T) {
	regions := Decompose(space2D(t))
	byName := make(map[string]Region)
	for _, r := range regions {
		byName[r.Name] = r
	}

	t.Run("Full", func(t *testing.T) {
		r := byName["full_domain"]
		assert.Equal(t, Identity(), r.Selectors[0])
		assert.Equal(t, Identity(), r.Selectors[1])
	})

	t.Run("Interior", func(t *testing.T) {
		r := byName["interior_domain"]
		assert.Equal(t, MiddleOf(3), r.Selectors[0])
		assert.Equal(t, MiddleOf(4), r.Selectors[1])
	})

	t.Run("Side", func(t *testing.T) {
		r := byName["pml_side_right1"]
		assert.Equal(t, Identity(), r.Selectors[0], "other axes keep full extent")
		assert.Equal(t, SideOf(Right, 4), r.Selectors[1])
	})

	t.Run("Partial", func(t *testing.T) {
		// Partial regions keep axis 0 at full extent.
		r := byName["pml_partial_left1"]
		assert.Equal(t, Identity(), r.Selectors[0])
		assert.Equal(t, SideOf(Left, 4), r.Selectors[1])

		// Unless axis 0 is itself the restricted axis.
		r = byName["pml_partial_right0"]
		assert.Equal(t, SideOf(Right, 3), r.Selectors[0])
		assert.Equal(t, MiddleOf(4), r.Selectors[1])
	})

	t.Run("Centre", func(t *testing.T) {
		r := byName["pml_centre_left0"]
		assert.Equal(t, SideOf(Left, 3), r.Selectors[0])
		assert.Equal(t, MiddleOf(4), r.Selectors[1])
	})

	t.Run("Corner", func(t *testing.T) {
		r := byName["pml_corner_right_left"]
		assert.Equal(t, SideOf(Right, 3), r.Selectors[0])
		assert.Equal(t, SideOf(Left, 4), r.Selectors[1])
	})
}

func TestSelector_Range(t *testing.T) {
	testCases := []struct {
		name     string
		selector Selector
		n        int
		want     grid.Slice
	}{
		{"identity", Identity(), 10, grid.Slice{Start: 0, Stop: 10}},
		{"middle", MiddleOf(2), 10, grid.Slice{Start: 2, Stop: 8}},
		{"side_left", SideOf(Left, 3), 10, grid.Slice{Start: 0, Stop: 3}},
		{"side_right", SideOf(Right, 3), 10, grid.Slice{Start: 7, Stop: 10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.selector.Range(tc.n))
		})
	}
}

func TestDecompose_SidesTileAxis(t *testing.T) {
	// Along each axis, left side + middle + right side must cover the
	// extended extent without gaps; the PML terms depend on exact tiling.
	s := space2D(t)
	for d := 0; d < s.Dim; d++ {
		n := s.ExtendedShape[d]
		k := s.Absorbing[d]

		left := SideOf(Left, k).Range(n)
		mid := MiddleOf(k).Range(n)
		right := SideOf(Right, k).Range(n)

		assert.Equal(t, 0, left.Start)
		assert.Equal(t, left.Stop, mid.Start)
		assert.Equal(t, mid.Stop, right.Start)
		assert.Equal(t, n, right.Stop)
	}
}

func TestSelector_String(t *testing.T) {
	assert.Equal(t, "identity", Identity().String())
	assert.Equal(t, "middle(2)", MiddleOf(2).String())
	assert.Equal(t, "side(left, 3)", SideOf(Left, 3).String())
}
