// Package battle implements pair sampling, parallel generation against
// the workers, and battle persistence.
package battle

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/config"
	"github.com/tunearena/gateway/internal/registry"
)

type weightedPair struct {
	a, b   arena.SystemKey
	weight float64
}

// Sampler draws a weighted random system pair subject to the prompt's
// lyric constraints: a vocal prompt needs both systems lyric-capable,
// an instrumental prompt allows at most one lyric-capable system so
// vocal-only systems are not starved of instrumental exposure.
type Sampler struct {
	mu             sync.Mutex
	rng            *rand.Rand
	pairs          []weightedPair
	supportsLyrics map[arena.SystemKey]bool
}

// NewSampler validates the configured systems and weights against the
// catalog. An empty weight list means uniform weight over all
// combinations. Seed 0 draws a time seed.
func NewSampler(systems []config.SystemSpec, weights []config.PairWeight, catalog registry.Catalog, seed int64) (*Sampler, error) {
	if len(systems) < 2 {
		return nil, fmt.Errorf("need at least 2 systems to battle, got %d", len(systems))
	}

	supportsLyrics := make(map[arena.SystemKey]bool, len(systems))
	for _, s := range systems {
		md, err := catalog.Get(s.Key)
		if err != nil {
			return nil, err
		}
		if _, dup := supportsLyrics[s.Key]; dup {
			return nil, fmt.Errorf("system %s configured twice", s.Key)
		}
		supportsLyrics[s.Key] = md.SupportsLyrics
	}

	var pairs []weightedPair
	if len(weights) == 0 {
		// Uniform over all combinations.
		for i, a := range systems {
			for _, b := range systems[i+1:] {
				pairs = append(pairs, weightedPair{a: a.Key, b: b.Key, weight: 1})
			}
		}
	} else {
		for _, w := range weights {
			if w.A == w.B {
				return nil, fmt.Errorf("weight pairs a system with itself: %s", w.A)
			}
			if _, ok := supportsLyrics[w.A]; !ok {
				return nil, fmt.Errorf("weight references unconfigured system %s", w.A)
			}
			if _, ok := supportsLyrics[w.B]; !ok {
				return nil, fmt.Errorf("weight references unconfigured system %s", w.B)
			}
			if w.Weight <= 0 {
				return nil, fmt.Errorf("weight for %s/%s must be positive, got %g", w.A, w.B, w.Weight)
			}
			pairs = append(pairs, weightedPair{a: w.A, b: w.B, weight: w.Weight})
		}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{
		rng:            rand.New(rand.NewSource(seed)),
		pairs:          pairs,
		supportsLyrics: supportsLyrics,
	}, nil
}

func (s *Sampler) eligible(instrumental bool, p weightedPair) bool {
	aLyrics := s.supportsLyrics[p.a]
	bLyrics := s.supportsLyrics[p.b]
	if instrumental {
		return !(aLyrics && bLyrics)
	}
	return aLyrics && bLyrics
}

// SamplePair draws an eligible pair and shuffles slot assignment so
// slot A carries no information about the system.
func (s *Sampler) SamplePair(instrumental bool) (arena.SystemKey, arena.SystemKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []weightedPair
	var total float64
	for _, p := range s.pairs {
		if s.eligible(instrumental, p) {
			candidates = append(candidates, p)
			total += p.weight
		}
	}
	if len(candidates) == 0 {
		return arena.SystemKey{}, arena.SystemKey{}, &arena.NoEligiblePairError{Instrumental: instrumental}
	}

	draw := s.rng.Float64() * total
	chosen := candidates[len(candidates)-1]
	for _, p := range candidates {
		draw -= p.weight
		if draw < 0 {
			chosen = p
			break
		}
	}

	if s.rng.Intn(2) == 0 {
		return chosen.a, chosen.b, nil
	}
	return chosen.b, chosen.a, nil
}
