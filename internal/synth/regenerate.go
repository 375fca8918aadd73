package synth

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/transportmodeling/popsynth/internal/csvio"
	"github.com/transportmodeling/popsynth/internal/landuse"
	"github.com/transportmodeling/popsynth/internal/seedstore"
	"github.com/transportmodeling/popsynth/internal/workercat"
)

// outputHousehold is one row of an already-synthesized HouseholdData/Households.csv.
type outputHousehold struct {
	ID               int
	Zone             int
	ExpansionFactor  float64
	NumberOfVehicles int
}

// RegenerateWorkerCategories bypasses sampling entirely: it reads an
// already-synthesized HouseholdData directory and reruns only the
// aggregator, resolving each household's planning district from its zone
// via the land-use table (the output schema carries a zone, not a district).
// Each household contributes the ExpansionFactor read from Households.csv,
// which Synthesize always writes as 1, so the regenerated tables weight every
// household equally rather than by its original seed expansion factor.
func RegenerateWorkerCategories(cfg Config) error {
	landuseTable, err := landuse.Load(filepath.Join(cfg.InputDirectory, "ZoneSystem.csv"), cfg.PopulationForecastFile)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.OutputDirectory, "HouseholdData")
	households, err := loadOutputHouseholds(filepath.Join(dir, "Households.csv"))
	if err != nil {
		return err
	}
	personsByHousehold, err := loadOutputPersons(filepath.Join(dir, "Persons.csv"))
	if err != nil {
		return err
	}

	agg := workercat.New()
	for _, hh := range households {
		pd, err := landuseTable.PDOf(hh.Zone)
		if err != nil {
			return fmt.Errorf("household %d: %w", hh.ID, err)
		}
		persons := personsByHousehold[hh.ID]

		licenses := 0
		for _, p := range persons {
			if p.License == "Y" {
				licenses++
			}
		}
		// pd is used as the aggregation key: worker-category tables are
		// keyed by district of residence, not zone, for a regenerate run.
		agg.Record(pd, hh.NumberOfVehicles, licenses, persons, hh.ExpansionFactor)
	}

	return agg.WriteAll(cfg.OutputDirectory)
}

func loadOutputHouseholds(path string) ([]outputHousehold, error) {
	rows, err := csvio.ReadRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]outputHousehold, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("parsing household id %q: %w", row[0], err)
		}
		zone, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("household %d: parsing zone %q: %w", id, row[1], err)
		}
		expansion, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("household %d: parsing expansion factor %q: %w", id, row[2], err)
		}
		vehicles, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, fmt.Errorf("household %d: parsing vehicles %q: %w", id, row[5], err)
		}
		out = append(out, outputHousehold{ID: id, Zone: zone, ExpansionFactor: expansion, NumberOfVehicles: vehicles})
	}
	return out, nil
}

func loadOutputPersons(path string) (map[int][]seedstore.Person, error) {
	rows, err := csvio.ReadRows(path)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]seedstore.Person)
	for _, row := range rows {
		if len(row) < 13 {
			continue
		}
		hhID, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("parsing household id %q: %w", row[0], err)
		}
		p := seedstore.Person{
			License:          row[4],
			TransitPass:      row[5],
			EmploymentStatus: row[6],
			Occupation:       row[7],
			StudentStatus:    row[9],
		}
		out[hhID] = append(out[hhID], p)
	}
	return out, nil
}
