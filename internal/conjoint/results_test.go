package conjoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflab/platform/internal/conjoint"
)

func twoProductGrid(t *testing.T) [][]int64 {
	t.Helper()
	grid, err := conjoint.BuildPriceGrid([]conjoint.PriceRange{
		{Min: 100, Max: 200},
		{Min: 100, Max: 200},
	}, 2)
	require.NoError(t, err)
	return grid
}

func TestComputeResultsShares(t *testing.T) {
	grid := twoProductGrid(t)

	obs := []conjoint.Observation{
		{Levels: []int{0, 0}, Choice: 0},
		{Levels: []int{0, 0}, Choice: 0},
		{Levels: []int{0, 0}, Choice: 1},
		{Levels: []int{0, 0}, Choice: conjoint.NoneChoice},
	}

	result, err := conjoint.ComputeResults(grid, obs)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Observations)
	assert.InDelta(t, 0.5, result.Products[0].Share, 1e-9)
	assert.InDelta(t, 0.25, result.Products[1].Share, 1e-9)
	assert.InDelta(t, 0.25, result.NoneShare, 1e-9)
}

func TestComputeResultsLevelSharesAndElasticity(t *testing.T) {
	grid := twoProductGrid(t)

	// Product 0 wins 80% at its low price and 20% at its high price.
	var obs []conjoint.Observation
	for i := 0; i < 10; i++ {
		choice := 0
		if i >= 8 {
			choice = 1
		}
		obs = append(obs, conjoint.Observation{Levels: []int{0, 1}, Choice: choice})
	}
	for i := 0; i < 10; i++ {
		choice := 1
		if i >= 8 {
			choice = 0
		}
		obs = append(obs, conjoint.Observation{Levels: []int{1, 0}, Choice: choice})
	}

	result, err := conjoint.ComputeResults(grid, obs)
	require.NoError(t, err)

	p0 := result.Products[0]
	assert.Equal(t, 10, p0.LevelShares[0].Shown)
	assert.InDelta(t, 0.8, p0.LevelShares[0].Share, 1e-9)
	assert.InDelta(t, 0.2, p0.LevelShares[1].Share, 1e-9)

	// Share falls as price rises, so elasticity is negative. Arc formula:
	// ((0.2-0.8)/0.5) / ((200-100)/150) = -1.2 / 0.666... = -1.8
	assert.InDelta(t, -1.8, p0.Elasticity, 1e-9)
}

func TestComputeResultsFlatPriceRow(t *testing.T) {
	grid, err := conjoint.BuildPriceGrid([]conjoint.PriceRange{{Min: 150, Max: 150}}, 3)
	require.NoError(t, err)

	obs := []conjoint.Observation{
		{Levels: []int{0}, Choice: 0},
		{Levels: []int{2}, Choice: 0},
	}
	result, err := conjoint.ComputeResults(grid, obs)
	require.NoError(t, err)

	assert.Zero(t, result.Products[0].Elasticity)
}

func TestComputeResultsEmpty(t *testing.T) {
	result, err := conjoint.ComputeResults(twoProductGrid(t), nil)
	require.NoError(t, err)

	assert.Zero(t, result.Observations)
	assert.Zero(t, result.NoneShare)
	assert.Zero(t, result.Products[0].Share)
	assert.Zero(t, result.Products[0].Elasticity)
}

func TestComputeResultsRejectsMalformedObservations(t *testing.T) {
	grid := twoProductGrid(t)

	cases := []conjoint.Observation{
		{Levels: []int{0}, Choice: 0},     // wrong vector length
		{Levels: []int{0, 5}, Choice: 0},  // level index out of range
		{Levels: []int{0, 0}, Choice: 2},  // choice beyond shelf
		{Levels: []int{0, 0}, Choice: -2}, // below the none marker
	}
	for _, bad := range cases {
		_, err := conjoint.ComputeResults(grid, []conjoint.Observation{bad})
		assert.ErrorIs(t, err, conjoint.ErrShapeMismatch)
	}
}
