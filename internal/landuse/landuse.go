// Package landuse holds the zone system and population forecast: which
// planning district each zone belongs to, and how many residents each zone
// must end up with.
package landuse

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/transportmodeling/popsynth/internal/csvio"
)

// Table answers zone/planning-district membership and forecast-population
// lookups. It is built once at load time and never mutated afterward.
type Table struct {
	zonePD  map[int]int
	pdZones map[int][]int // insertion order preserved per PD
	pds     []int         // ascending, each appearing once
	zonePop map[int]float64
}

// Load builds a Table from a zone-system CSV (columns Zone, PD) and a
// forecast CSV (columns Zone, Population). Construction fails if either file
// is unparseable, or if the forecast references a zone absent from the zone
// system.
func Load(zoneSystemPath, forecastPath string) (*Table, error) {
	zoneRows, err := csvio.ReadRows(zoneSystemPath)
	if err != nil {
		return nil, err
	}

	t := &Table{
		zonePD:  make(map[int]int),
		pdZones: make(map[int][]int),
		zonePop: make(map[int]float64),
	}

	pdSeen := make(map[int]bool)
	for i, row := range zoneRows {
		if len(row) != 2 {
			return nil, fmt.Errorf("%s: row %d: expected 2 columns (Zone,PD), got %d", zoneSystemPath, i+2, len(row))
		}
		zone, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: invalid Zone %q: %w", zoneSystemPath, i+2, row[0], err)
		}
		pd, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: invalid PD %q: %w", zoneSystemPath, i+2, row[1], err)
		}

		t.zonePD[zone] = pd
		t.pdZones[pd] = append(t.pdZones[pd], zone)
		if !pdSeen[pd] {
			pdSeen[pd] = true
			t.pds = append(t.pds, pd)
		}
	}
	sort.Ints(t.pds)

	forecastRows, err := csvio.ReadRows(forecastPath)
	if err != nil {
		return nil, err
	}
	for i, row := range forecastRows {
		if len(row) != 2 {
			return nil, fmt.Errorf("%s: row %d: expected 2 columns (Zone,Population), got %d", forecastPath, i+2, len(row))
		}
		zone, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: invalid Zone %q: %w", forecastPath, i+2, row[0], err)
		}
		pop, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: invalid Population %q: %w", forecastPath, i+2, row[1], err)
		}
		if _, ok := t.zonePD[zone]; !ok {
			return nil, fmt.Errorf("%s: row %d: forecast references zone %d, which is absent from the zone system", forecastPath, i+2, zone)
		}
		t.zonePop[zone] = pop
	}

	return t, nil
}

// PlanningDistricts returns every planning district, ascending, each once.
func (t *Table) PlanningDistricts() []int {
	out := make([]int, len(t.pds))
	copy(out, t.pds)
	return out
}

// ZonesInPD returns the zones belonging to pd, in the order they were first
// seen in the zone system file. Fails if pd is unknown.
func (t *Table) ZonesInPD(pd int) ([]int, error) {
	zones, ok := t.pdZones[pd]
	if !ok {
		return nil, fmt.Errorf("unknown planning district %d", pd)
	}
	out := make([]int, len(zones))
	copy(out, zones)
	return out, nil
}

// Population returns the forecast population for zone. A known zone with no
// forecast row returns 0. Fails if zone is unknown to the zone system.
func (t *Table) Population(zone int) (float64, error) {
	if _, ok := t.zonePD[zone]; !ok {
		return 0, fmt.Errorf("unknown zone %d", zone)
	}
	return t.zonePop[zone], nil
}

// PDOf returns the planning district zone belongs to. Fails if zone is unknown.
func (t *Table) PDOf(zone int) (int, error) {
	pd, ok := t.zonePD[zone]
	if !ok {
		return 0, fmt.Errorf("unknown zone %d", zone)
	}
	return pd, nil
}
