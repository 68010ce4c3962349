// internal/verification/sampler.go
package verification

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RandomSource yields uniform floats in [0, 1). The extractor draws all of
// its randomness through this interface so tests can pin outcomes with a
// seeded or scripted source.
type RandomSource interface {
	Float64() float64
}

type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewRandomSource returns a concurrency-safe source seeded from seed.
func NewRandomSource(seed int64) RandomSource {
	return &lockedRandom{r: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededSource is the production default.
func NewTimeSeededSource() RandomSource {
	return NewRandomSource(time.Now().UnixNano())
}

// Weighted choices are ordered slices, not maps, so a seeded source always
// walks them in the same order.
type intWeight struct {
	Value  int
	Weight float64
}

type decimalWeight struct {
	Value  decimal.Decimal
	Weight float64
}

func pickInt(r RandomSource, choices []intWeight) int {
	var total float64
	for _, c := range choices {
		total += c.Weight
	}

	target := r.Float64() * total
	var upto float64
	for _, c := range choices {
		if upto+c.Weight >= target {
			return c.Value
		}
		upto += c.Weight
	}
	return choices[len(choices)-1].Value
}

func pickDecimal(r RandomSource, choices []decimalWeight) decimal.Decimal {
	var total float64
	for _, c := range choices {
		total += c.Weight
	}

	target := r.Float64() * total
	var upto float64
	for _, c := range choices {
		if upto+c.Weight >= target {
			return c.Value
		}
		upto += c.Weight
	}
	return choices[len(choices)-1].Value
}
