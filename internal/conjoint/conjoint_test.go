package conjoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflab/platform/internal/conjoint"
)

func TestBuildPriceGridSpacing(t *testing.T) {
	grid, err := conjoint.BuildPriceGrid([]conjoint.PriceRange{
		{Min: 100, Max: 300},
		{Min: 250, Max: 250},
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 200, 300}, grid[0])
	assert.Equal(t, []int64{250, 250, 250}, grid[1], "flat range keeps a flat row")
}

func TestBuildPriceGridRounding(t *testing.T) {
	grid, err := conjoint.BuildPriceGrid([]conjoint.PriceRange{{Min: 100, Max: 199}}, 4)
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 133, 166, 199}, grid[0])
}

func TestBuildPriceGridValidation(t *testing.T) {
	cases := []struct {
		name   string
		ranges []conjoint.PriceRange
		levels int
		want   error
	}{
		{"no products", nil, 3, conjoint.ErrNoProducts},
		{"too many products", make([]conjoint.PriceRange, 7), 3, conjoint.ErrTooManyProducts},
		{"one level", []conjoint.PriceRange{{Min: 1, Max: 2}}, 1, conjoint.ErrBadLevelCount},
		{"six levels", []conjoint.PriceRange{{Min: 1, Max: 2}}, 6, conjoint.ErrBadLevelCount},
		{"inverted range", []conjoint.PriceRange{{Min: 5, Max: 1}}, 3, conjoint.ErrBadPriceRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := conjoint.BuildPriceGrid(tc.ranges, tc.levels)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEnumerateScenariosFullFactorial(t *testing.T) {
	scenarios := conjoint.EnumerateScenarios(2, 3)
	require.Len(t, scenarios, 9)

	assert.Equal(t, []int{0, 0}, scenarios[0])
	assert.Equal(t, []int{0, 1}, scenarios[1])
	assert.Equal(t, []int{2, 2}, scenarios[8])

	seen := make(map[[2]int]bool)
	for _, s := range scenarios {
		seen[[2]int{s[0], s[1]}] = true
	}
	assert.Len(t, seen, 9, "all combinations distinct")
}

func TestScenarioCountMaxConfiguration(t *testing.T) {
	assert.Equal(t, 15625, conjoint.ScenarioCount(6, 5))
}

func TestSampleScenariosDeterministic(t *testing.T) {
	a := conjoint.SampleScenarios(3, 4, 10, 42)
	b := conjoint.SampleScenarios(3, 4, 10, 42)
	require.Equal(t, a, b, "same seed yields same tasks")

	c := conjoint.SampleScenarios(3, 4, 10, 43)
	assert.NotEqual(t, a, c, "different seed yields a different draw")
}

func TestSampleScenariosWithoutReplacement(t *testing.T) {
	scenarios := conjoint.SampleScenarios(2, 2, 100, 7)
	require.Len(t, scenarios, 4, "capped at the factorial size")

	seen := make(map[[2]int]bool)
	for _, s := range scenarios {
		key := [2]int{s[0], s[1]}
		assert.False(t, seen[key], "scenario drawn twice: %v", s)
		seen[key] = true
	}
}
