// Package synth is the synthesis driver: it wires the land-use table, seed
// store, per-district sampler, and worker-category aggregator together and
// writes the final household/person CSV outputs.
package synth

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/transportmodeling/popsynth/internal/landuse"
	"github.com/transportmodeling/popsynth/internal/progress"
	"github.com/transportmodeling/popsynth/internal/sampler"
	"github.com/transportmodeling/popsynth/internal/seedstore"
	"github.com/transportmodeling/popsynth/internal/workercat"
)

// Config carries everything a synthesis run needs.
type Config struct {
	PopulationForecastFile string
	InputDirectory         string
	OutputDirectory        string
	RandomSeed             int64
	Workers                int
	ReportProgress         bool
}

// Synthesize loads the inputs, draws a household multiset per zone, and
// writes HouseholdData/{Households,Persons}.csv plus the two worker-category
// output families.
func Synthesize(cfg Config) error {
	landuseTable, err := landuse.Load(filepath.Join(cfg.InputDirectory, "ZoneSystem.csv"), cfg.PopulationForecastFile)
	if err != nil {
		return err
	}
	store, err := seedstore.Load(
		filepath.Join(cfg.InputDirectory, "SeedHouseholds.csv"),
		filepath.Join(cfg.InputDirectory, "SeedPersons.csv"),
	)
	if err != nil {
		return err
	}

	pds := landuseTable.PlanningDistricts()
	results, err := runSamplers(cfg, landuseTable, store, pds)
	if err != nil {
		return err
	}

	writer, err := newHouseholdWriter(cfg.OutputDirectory)
	if err != nil {
		return err
	}
	defer writer.Close()

	agg := workercat.New()
	nextID := 1
	drawn := 0
	for _, pairs := range results {
		drawn += len(pairs)
	}

	for pdIdx := range pds {
		for _, pair := range results[pdIdx] {
			hh, ok := store.Household(pair.SeedHouseholdID)
			if !ok {
				return fmt.Errorf("internal error: drawn household %d not found in seed store", pair.SeedHouseholdID)
			}
			persons := store.PersonsOf(pair.SeedHouseholdID)

			if err := writer.WriteHousehold(nextID, pair.Zone, hh, persons); err != nil {
				return fmt.Errorf("writing household %d: %w", nextID, err)
			}

			licenses := 0
			for _, p := range persons {
				if p.License == "Y" {
					licenses++
				}
			}
			agg.Record(pair.Zone, hh.NumberOfVehicles, licenses, persons, hh.ExpansionFactor)

			nextID++
			if cfg.ReportProgress {
				progress.Report("synthesize", nextID-1, drawn)
			}
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing household output: %w", err)
	}

	if err := agg.WriteAll(cfg.OutputDirectory); err != nil {
		return fmt.Errorf("writing worker-category tables: %w", err)
	}

	return nil
}

// runSamplers draws every planning district's households, in parallel
// across districts, and returns results indexed the same way as pds
// (ascending PD order) so the caller's serial consumption never reorders a
// district's own draws.
func runSamplers(cfg Config, landuseTable *landuse.Table, store *seedstore.Store, pds []int) ([][]sampler.DrawnPair, error) {
	results := make([][]sampler.DrawnPair, len(pds))

	master := rand.New(rand.NewSource(cfg.RandomSeed))
	pdSeeds := make([]int64, len(pds))
	for i := range pds {
		pdSeeds[i] = master.Int63()
	}

	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(pds) {
		numWorkers = len(pds)
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	type job struct {
		idx int
		pd  int
	}
	jobs := make(chan job, len(pds))

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				zones, err := landuseTable.ZonesInPD(j.pd)
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				pops := make([]float64, len(zones))
				for i, z := range zones {
					p, err := landuseTable.Population(z)
					if err != nil {
						errOnce.Do(func() { firstErr = err })
						continue
					}
					pops[i] = p
				}
				pool := store.HouseholdsInPD(j.pd)

				pairs, err := sampler.Run(j.pd, zones, pops, pool, pdSeeds[j.idx])
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				results[j.idx] = pairs
			}
		}()
	}

	for i, pd := range pds {
		jobs <- job{idx: i, pd: pd}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
