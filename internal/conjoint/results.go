package conjoint

import (
	"errors"
	"fmt"
)

// NoneChoice marks an observation where the respondent bought nothing.
const NoneChoice = -1

var ErrShapeMismatch = errors.New("conjoint: observation does not match grid shape")

// Observation is one completed choice task: the price level each product
// was shown at, and which product (by position) was chosen.
type Observation struct {
	Levels []int
	Choice int
}

// LevelShare reports how a product performed at one price point.
type LevelShare struct {
	Price  int64   `json:"price"`
	Shown  int     `json:"shown"`
	Chosen int     `json:"chosen"`
	Share  float64 `json:"share"`
}

// ProductResult aggregates preference share and price response for one
// product position on the shelf.
type ProductResult struct {
	Share       float64      `json:"share"`
	LevelShares []LevelShare `json:"level_shares"`
	Elasticity  float64      `json:"elasticity"`
}

// Result is the survey-level readout.
type Result struct {
	Observations int             `json:"observations"`
	NoneShare    float64         `json:"none_share"`
	Products     []ProductResult `json:"products"`
}

// ComputeResults tallies first-choice preference shares over the supplied
// observations and estimates each product's arc price elasticity between
// its cheapest and dearest tested levels. Zero observations is not an
// error; the result simply carries empty shares.
func ComputeResults(grid [][]int64, obs []Observation) (Result, error) {
	products := len(grid)
	if products == 0 {
		return Result{}, ErrNoProducts
	}
	levels := len(grid[0])

	chosen := make([]int, products)
	shownAt := make([][]int, products)
	chosenAt := make([][]int, products)
	for i := range grid {
		shownAt[i] = make([]int, levels)
		chosenAt[i] = make([]int, levels)
	}

	none := 0
	for n, o := range obs {
		if len(o.Levels) != products {
			return Result{}, fmt.Errorf("observation %d: %w", n, ErrShapeMismatch)
		}
		if o.Choice < NoneChoice || o.Choice >= products {
			return Result{}, fmt.Errorf("observation %d: choice %d out of range: %w", n, o.Choice, ErrShapeMismatch)
		}
		for i, lvl := range o.Levels {
			if lvl < 0 || lvl >= levels {
				return Result{}, fmt.Errorf("observation %d: level %d out of range: %w", n, lvl, ErrShapeMismatch)
			}
			shownAt[i][lvl]++
			if o.Choice == i {
				chosenAt[i][lvl]++
			}
		}
		if o.Choice == NoneChoice {
			none++
		} else {
			chosen[o.Choice]++
		}
	}

	result := Result{
		Observations: len(obs),
		Products:     make([]ProductResult, products),
	}
	if len(obs) > 0 {
		result.NoneShare = float64(none) / float64(len(obs))
	}

	for i := 0; i < products; i++ {
		pr := ProductResult{LevelShares: make([]LevelShare, levels)}
		if len(obs) > 0 {
			pr.Share = float64(chosen[i]) / float64(len(obs))
		}
		for k := 0; k < levels; k++ {
			ls := LevelShare{
				Price:  grid[i][k],
				Shown:  shownAt[i][k],
				Chosen: chosenAt[i][k],
			}
			if ls.Shown > 0 {
				ls.Share = float64(ls.Chosen) / float64(ls.Shown)
			}
			pr.LevelShares[k] = ls
		}
		pr.Elasticity = arcElasticity(pr.LevelShares[0], pr.LevelShares[levels-1])
		result.Products[i] = pr
	}

	return result, nil
}

// arcElasticity computes the midpoint elasticity between the cheapest and
// dearest level. Flat prices, an unobserved endpoint, or zero share at both
// endpoints all report zero rather than dividing by zero.
func arcElasticity(low, high LevelShare) float64 {
	if low.Price == high.Price {
		return 0
	}
	if low.Shown == 0 || high.Shown == 0 {
		return 0
	}
	meanShare := (low.Share + high.Share) / 2
	if meanShare == 0 {
		return 0
	}
	meanPrice := float64(low.Price+high.Price) / 2

	shareChange := (high.Share - low.Share) / meanShare
	priceChange := float64(high.Price-low.Price) / meanPrice
	return shareChange / priceChange
}
