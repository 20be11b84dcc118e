package panel

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/shelflab/platform/internal/conjoint"
)

// ErrSkip signals an unusable answer from a chooser. The run records a
// skip and moves on; any other error aborts the run.
var ErrSkip = errors.New("panel: chooser produced no usable answer")

// ShelfItem is one product facing as presented to a simulated consumer.
type ShelfItem struct {
	Name        string
	Brand       string
	Description string
	Price       int64 // cents
}

// Chooser picks a product position from a shelf, or conjoint.NoneChoice
// when the persona would buy nothing.
type Chooser interface {
	Choose(ctx context.Context, persona Persona, items []ShelfItem) (int, error)
}

// HeuristicChooser is a deterministic utility model: a price term scaled
// by the persona's sensitivity, a brand affinity bonus and a small seeded
// noise term. It backs offline panel runs and the test suite.
type HeuristicChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicChooser builds a chooser whose noise stream is reproducible
// from the seed.
func NewHeuristicChooser(seed int64) *HeuristicChooser {
	return &HeuristicChooser{rng: rand.New(rand.NewSource(seed))}
}

func (c *HeuristicChooser) Choose(_ context.Context, persona Persona, items []ShelfItem) (int, error) {
	if len(items) == 0 {
		return conjoint.NoneChoice, nil
	}

	var meanPrice float64
	for _, item := range items {
		meanPrice += float64(item.Price)
	}
	meanPrice /= float64(len(items))
	if meanPrice == 0 {
		meanPrice = 1
	}

	best := conjoint.NoneChoice
	bestUtility := persona.NoneThreshold
	for i, item := range items {
		utility := persona.BrandAffinity[item.Brand]
		utility -= persona.PriceSensitivity * (float64(item.Price)/meanPrice - 1)
		utility += c.noise() * 0.1
		if utility > bestUtility {
			bestUtility = utility
			best = i
		}
	}
	return best, nil
}

func (c *HeuristicChooser) noise() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64()
}
