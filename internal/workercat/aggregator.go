// Package workercat accumulates expansion-factor contributions into a
// per-zone worker-category matrix and writes the two CSV output families
// the synthesizer's aggregator stage produces.
package workercat

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/transportmodeling/popsynth/internal/seedstore"
)

// occupations and employments are iterated in this exact order to produce
// the eight per-zone-axis file names: PF, PP, GF, GP, SF, SP, MF, MP.
var occupations = []string{"P", "G", "S", "M"}
var employments = []string{"F", "P"}

// cellsPerZone is the flat vector length: 4 occupations x 2 employment
// statuses x 3 worker-mobility classes.
const cellsPerZone = 4 * 2 * 3

// Aggregator accumulates per-zone worker-category contributions. It is
// populated serially by the driver during result collection; once
// collection finishes, its output phase only reads.
type Aggregator struct {
	mu    sync.Mutex
	cells map[int]*[cellsPerZone]float64
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{cells: make(map[int]*[cellsPerZone]float64)}
}

// occIndex maps an occupation code to its axis index, or false if it should
// be skipped (anything outside P/G/S/M).
func occIndex(occ string) (int, bool) {
	switch occ {
	case "P":
		return 0, true
	case "G":
		return 1, true
	case "S":
		return 2, true
	case "M":
		return 3, true
	default:
		return 0, false
	}
}

// empIndex maps an employment-status code to its axis index, or false if it
// should be skipped (work-from-home and unemployed are excluded here).
func empIndex(status string) (int, bool) {
	switch status {
	case "F":
		return 0, true
	case "P":
		return 1, true
	default:
		return 0, false
	}
}

// MobilityClass computes a household's worker-mobility class from its
// licensed-driver count and vehicle count.
func MobilityClass(vehicles, licenses int) int {
	if vehicles == 0 || licenses == 0 {
		return 0
	}
	if vehicles < licenses {
		return 1
	}
	return 2
}

// Record adds a household's contribution to zone's matrix: the worker
// mobility class is computed once from vehicles/licenses, then each
// person's expansion is the household's seed expansion factor, added to the
// cell for every person whose occupation and employment status both fall
// within the tracked set.
func (a *Aggregator) Record(zone, vehicles, licenses int, persons []seedstore.Person, expansionFactor float64) {
	w := MobilityClass(vehicles, licenses)

	var touched bool
	var idxs []int
	for _, p := range persons {
		o, ok := occIndex(p.Occupation)
		if !ok {
			continue
		}
		e, ok := empIndex(p.EmploymentStatus)
		if !ok {
			continue
		}
		idxs = append(idxs, (o+4*e)*3+w)
		touched = true
	}
	if !touched {
		return
	}

	a.mu.Lock()
	cell, ok := a.cells[zone]
	if !ok {
		cell = &[cellsPerZone]float64{}
		a.cells[zone] = cell
	}
	for _, idx := range idxs {
		cell[idx] += expansionFactor
	}
	a.mu.Unlock()
}

// zones returns every zone with at least one contribution, ascending.
func (a *Aggregator) zones() []int {
	out := make([]int, 0, len(a.cells))
	for z := range a.cells {
		out = append(out, z)
	}
	sort.Ints(out)
	return out
}

// oeCellIndices returns the three flat-vector indices (one per worker
// mobility class) for an (occupation, employment) pair.
func oeCellIndices(oIdx, eIdx int) [3]int {
	base := (oIdx + 4*eIdx) * 3
	return [3]int{base, base + 1, base + 2}
}

// WriteAll emits both output families under root: ZonalResidence/<OE>.csv
// and WorkerCategories/<OE>.csv. The two families, and the eight files
// within each, are produced concurrently.
func (a *Aggregator) WriteAll(root string) error {
	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for oIdx, o := range occupations {
		for eIdx, e := range employments {
			name := o + e + ".csv"
			idxs := oeCellIndices(oIdx, eIdx)

			wg.Add(2)
			go func(name string, idxs [3]int) {
				defer wg.Done()
				if err := a.writeZonalResidence(filepath.Join(root, "ZonalResidence", name), idxs); err != nil {
					errs <- err
				}
			}(name, idxs)
			go func(name string, idxs [3]int) {
				defer wg.Done()
				if err := a.writeWorkerCategories(filepath.Join(root, "WorkerCategories", name), idxs); err != nil {
					errs <- err
				}
			}(name, idxs)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) writeZonalResidence(path string, idxs [3]int) error {
	w, closeFn, err := newCSVWriter(path)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := w.Write([]string{"HomeZone", "WorkerCategory", "Data"}); err != nil {
		return err
	}
	for _, zone := range a.zones() {
		cell := a.cells[zone]
		sum := cell[idxs[0]] + cell[idxs[1]] + cell[idxs[2]]
		if err := w.Write([]string{strconv.Itoa(zone), formatFloat(sum)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (a *Aggregator) writeWorkerCategories(path string, idxs [3]int) error {
	w, closeFn, err := newCSVWriter(path)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := w.Write([]string{"HomeZone", "WorkerCategory", "Data"}); err != nil {
		return err
	}
	for _, zone := range a.zones() {
		cell := a.cells[zone]
		total := cell[idxs[0]] + cell[idxs[1]] + cell[idxs[2]]
		if total <= 0 {
			continue
		}
		for wClass := 0; wClass < 3; wClass++ {
			v := cell[idxs[wClass]]
			if v <= 0 {
				continue
			}
			row := []string{strconv.Itoa(zone), strconv.Itoa(wClass + 1), formatFloat(v / total)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func newCSVWriter(path string) (*csv.Writer, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return csv.NewWriter(f), func() { f.Close() }, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
