// Package sampler implements the per-planning-district weighted-without-
// replacement draw: given a district's seed household pool and each of its
// zones' population targets, it draws households until every zone's
// remaining-persons counter is satisfied.
package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/transportmodeling/popsynth/internal/seedstore"
)

const (
	numberOfAttempts = 3
	residualFloor    = 0.01
)

// DrawnPair is one draw: a seed household id assigned to a zone.
type DrawnPair struct {
	SeedHouseholdID int
	Zone            int
}

// Run draws households for planning district pd until every zone in zones
// has its population target satisfied (or is declared complete early — see
// the "declared complete" note below). pool must already be sorted
// ascending by HouseholdID (seedstore.HouseholdsInPD does this); pops holds
// the forecast population for each zone, same index order as zones. seed is
// mixed with pd and, per zone, drawn again to build one independent RNG per
// zone, so a zone's draw sequence never depends on the iteration order over
// its siblings.
func Run(pd int, zones []int, pops []float64, pool []seedstore.Household, seed int64) ([]DrawnPair, error) {
	if len(zones) != len(pops) {
		panic("sampler: zones and pops length mismatch")
	}

	w := make([]float64, len(pool))
	total := 0.0
	for i, hh := range pool {
		w[i] = hh.ExpansionFactor
		total += w[i]
	}

	remaining := make([]int, len(zones))
	hasDrawn := make([]bool, len(zones))
	for i, p := range pops {
		remaining[i] = int(math.Round(p))
	}

	zoneRNGs := buildZoneRNGs(seed, pd, len(zones))

	var out []DrawnPair

	for {
		anyPending := false
		for i := range zones {
			if remaining[i] <= 0 {
				continue
			}
			anyPending = true

			k, ok := drawOne(pool, w, &total, remaining[i], zoneRNGs[i])
			if !ok {
				// Exhausted numberOfAttempts resets. A zone that has already
				// received at least one draw is declared complete: this
				// covers a residual deficit smaller than every household in
				// the pool, and also a zone whose weighted walks all missed
				// the households that would still fit (spec.md §4.C, §8
				// boundary behaviors). A zone that never received a single
				// draw is reported as fatal.
				if hasDrawn[i] {
					remaining[i] = 0
					continue
				}
				return nil, diagnosticError(pd, zones[i], pool, w, total, remaining[i])
			}

			hasDrawn[i] = true
			remaining[i] -= pool[k].NumberOfPersons
			prev := w[k]
			w[k] -= 1.0
			if w[k] < residualFloor {
				w[k] = 0
			}
			total -= prev - w[k]

			out = append(out, DrawnPair{SeedHouseholdID: pool[k].HouseholdID, Zone: zones[i]})
		}
		if !anyPending {
			break
		}
	}

	return out, nil
}

// drawOne attempts up to numberOfAttempts tries to pick a pool index for a
// single zone draw, refilling the residual-weight vector between tries.
// It reports ok=false if every attempt failed to cross the threshold with a
// feasible, positively-weighted candidate.
func drawOne(pool []seedstore.Household, w []float64, total *float64, remaining int, rng *rand.Rand) (int, bool) {
	for attempt := 0; attempt < numberOfAttempts; attempt++ {
		if k, ok := attemptDraw(pool, w, *total, remaining, rng); ok {
			return k, true
		}
		if attempt < numberOfAttempts-1 {
			refill(pool, w, total)
		}
	}
	return 0, false
}

// attemptDraw performs one weighted walk: sample u in [0, total), then walk
// the pool accumulating weight. The first index where the cumulative sum
// has crossed u, the weight is positive, and the household fits the
// remaining counter is selected. The >= comparison is inclusive so a
// cluster of zero-weight entries right at the threshold doesn't skip a
// valid candidate.
func attemptDraw(pool []seedstore.Household, w []float64, total float64, remaining int, rng *rand.Rand) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	u := rng.Float64() * total

	a := 0.0
	crossed := false
	for k := range pool {
		a += w[k]
		if !crossed && a >= u {
			crossed = true
		}
		if crossed && w[k] > 0 && pool[k].NumberOfPersons <= remaining {
			return k, true
		}
	}
	return 0, false
}

func refill(pool []seedstore.Household, w []float64, total *float64) {
	sum := 0.0
	for i, hh := range pool {
		w[i] = hh.ExpansionFactor
		sum += w[i]
	}
	*total = sum
}

// buildZoneRNGs derives one RNG per zone from seed mixed with pd, so that a
// zone's outcomes depend only on its own generator, independent of any other
// zone's draws or of the order zones are visited in.
func buildZoneRNGs(seed int64, pd int, n int) []*rand.Rand {
	local := rand.New(rand.NewSource(mix(seed, pd)))
	rngs := make([]*rand.Rand, n)
	for i := range rngs {
		rngs[i] = rand.New(rand.NewSource(local.Int63()))
	}
	return rngs
}

// mix combines a run seed with a planning district id into a single
// deterministic int64, following the same master-RNG-to-child-seed pattern
// the driver uses per planning district.
func mix(seed int64, pd int) int64 {
	const c = uint64(0x9E3779B97F4A7C15) // splitmix64 golden-ratio constant
	x := uint64(seed) ^ (uint64(pd)*c + c)
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	return int64(x)
}

func diagnosticError(pd, zone int, pool []seedstore.Household, w []float64, total float64, remaining int) error {
	if len(pool) == 0 {
		return fmt.Errorf("planning district %d: sampler exhausted for zone %d: empty pool (no seed households in this district)", pd, zone)
	}

	minSize := pool[0].NumberOfPersons
	for _, hh := range pool {
		if hh.NumberOfPersons < minSize {
			minSize = hh.NumberOfPersons
		}
	}
	if minSize > remaining {
		return fmt.Errorf("planning district %d: sampler exhausted for zone %d: no seed household fits a remaining population of %d (smallest available is %d persons)", pd, zone, remaining, minSize)
	}

	if total <= 0 {
		return fmt.Errorf("planning district %d: sampler exhausted for zone %d: residual-weight vector sums to 0", pd, zone)
	}

	return fmt.Errorf("planning district %d: sampler exhausted for zone %d after %d attempts", pd, zone, numberOfAttempts)
}
