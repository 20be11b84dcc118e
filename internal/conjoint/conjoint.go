package conjoint

import (
	"errors"
	"math"
	"math/rand"
)

// Shelf limits. The full factorial at the maximum configuration is
// 5^6 = 15625 scenarios, small enough to enumerate eagerly.
const (
	MaxProducts    = 6
	MinPriceLevels = 2
	MaxPriceLevels = 5
)

var (
	ErrNoProducts      = errors.New("conjoint: at least one product required")
	ErrTooManyProducts = errors.New("conjoint: too many products")
	ErrBadLevelCount   = errors.New("conjoint: price level count out of range")
	ErrBadPriceRange   = errors.New("conjoint: min price exceeds max price")
)

// PriceRange bounds a product's tested price in cents.
type PriceRange struct {
	Min int64
	Max int64
}

// BuildPriceGrid returns, for each product, `levels` evenly spaced prices
// between its min and max (inclusive). A range with Min == Max produces a
// flat row, which is allowed; elasticity for such a product reports zero.
func BuildPriceGrid(ranges []PriceRange, levels int) ([][]int64, error) {
	if len(ranges) == 0 {
		return nil, ErrNoProducts
	}
	if len(ranges) > MaxProducts {
		return nil, ErrTooManyProducts
	}
	if levels < MinPriceLevels || levels > MaxPriceLevels {
		return nil, ErrBadLevelCount
	}

	grid := make([][]int64, len(ranges))
	for i, r := range ranges {
		if r.Min > r.Max {
			return nil, ErrBadPriceRange
		}
		row := make([]int64, levels)
		span := float64(r.Max - r.Min)
		for k := 0; k < levels; k++ {
			step := span * float64(k) / float64(levels-1)
			row[k] = r.Min + int64(math.Round(step))
		}
		grid[i] = row
	}
	return grid, nil
}

// ScenarioCount is the size of the full factorial: levels^products.
func ScenarioCount(products, levels int) int {
	count := 1
	for i := 0; i < products; i++ {
		count *= levels
	}
	return count
}

// EnumerateScenarios lists the full factorial in lexicographic order. Each
// scenario assigns one price-level index per product.
func EnumerateScenarios(products, levels int) [][]int {
	total := ScenarioCount(products, levels)
	scenarios := make([][]int, total)
	for idx := 0; idx < total; idx++ {
		scenarios[idx] = ScenarioFromIndex(idx, products, levels)
	}
	return scenarios
}

// ScenarioFromIndex decodes a factorial index into per-product level
// indices, most significant digit first.
func ScenarioFromIndex(idx, products, levels int) []int {
	scenario := make([]int, products)
	for i := products - 1; i >= 0; i-- {
		scenario[i] = idx % levels
		idx /= levels
	}
	return scenario
}

// SampleScenarios draws n distinct scenarios using the given seed. The same
// seed always yields the same tasks, so a respondent who reloads sees the
// same shelf sequence. If n meets or exceeds the factorial size the whole
// enumeration is returned in seeded order.
func SampleScenarios(products, levels, n int, seed int64) [][]int {
	total := ScenarioCount(products, levels)
	if n > total {
		n = total
	}
	if n <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(total)

	scenarios := make([][]int, n)
	for i := 0; i < n; i++ {
		scenarios[i] = ScenarioFromIndex(perm[i], products, levels)
	}
	return scenarios
}
