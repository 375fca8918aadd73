package synth

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/transportmodeling/popsynth/internal/seedstore"
)

// householdWriter streams the two output CSVs: HouseholdData/Households.csv
// and HouseholdData/Persons.csv.
type householdWriter struct {
	hhFile, personFile *os.File
	hh, person         *csv.Writer
}

func newHouseholdWriter(outputDir string) (*householdWriter, error) {
	dir := filepath.Join(outputDir, "HouseholdData")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	hhFile, err := os.Create(filepath.Join(dir, "Households.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating Households.csv: %w", err)
	}
	personFile, err := os.Create(filepath.Join(dir, "Persons.csv"))
	if err != nil {
		hhFile.Close()
		return nil, fmt.Errorf("creating Persons.csv: %w", err)
	}

	w := &householdWriter{
		hhFile:     hhFile,
		personFile: personFile,
		hh:         csv.NewWriter(hhFile),
		person:     csv.NewWriter(personFile),
	}

	if err := w.hh.Write([]string{"HouseholdID", "Zone", "ExpansionFactor", "DwellingType", "NumberOfPersons", "NumberOfVehicles", "Income"}); err != nil {
		w.Close()
		return nil, err
	}
	// EmploymentZone/SchoolZone name the columns that actually carry
	// EmploymentPD/SchoolPD values — kept for output schema compatibility.
	if err := w.person.Write([]string{"HouseholdID", "PersonNumber", "Age", "Sex", "License", "TransitPass", "EmploymentStatus", "Occupation", "FreeParking", "StudentStatus", "EmploymentZone", "SchoolZone", "ExpansionFactor"}); err != nil {
		w.Close()
		return nil, err
	}

	return w, nil
}

// WriteHousehold emits one sampled household and its persons. id is the
// fresh sequential household id; seed is the seed household body to copy;
// persons are the seed household's persons in file order, each re-expanded
// by the household's mean seed expansion factor.
func (w *householdWriter) WriteHousehold(id, zone int, seed seedstore.Household, persons []seedstore.Person) error {
	row := []string{
		strconv.Itoa(id),
		strconv.Itoa(zone),
		"1",
		strconv.Itoa(seed.DwellingType),
		strconv.Itoa(seed.NumberOfPersons),
		strconv.Itoa(seed.NumberOfVehicles),
		strconv.Itoa(seed.Income),
	}
	if err := w.hh.Write(row); err != nil {
		return err
	}

	meanExp := meanExpansionFactor(persons)
	for i, p := range persons {
		personRow := []string{
			strconv.Itoa(id),
			strconv.Itoa(i + 1),
			strconv.Itoa(p.Age),
			p.Sex,
			p.License,
			p.TransitPass,
			p.EmploymentStatus,
			p.Occupation,
			yesNo(p.FreeParking),
			p.StudentStatus,
			strconv.Itoa(p.EmploymentPD),
			strconv.Itoa(p.SchoolPD),
			formatExpansion(p.ExpansionFactor, meanExp),
		}
		if err := w.person.Write(personRow); err != nil {
			return err
		}
	}
	return nil
}

func (w *householdWriter) Flush() error {
	w.hh.Flush()
	if err := w.hh.Error(); err != nil {
		return err
	}
	w.person.Flush()
	return w.person.Error()
}

func (w *householdWriter) Close() {
	w.hhFile.Close()
	w.personFile.Close()
}

func meanExpansionFactor(persons []seedstore.Person) float64 {
	if len(persons) == 0 {
		return 1
	}
	sum := 0.0
	for _, p := range persons {
		sum += p.ExpansionFactor
	}
	return sum / float64(len(persons))
}

func formatExpansion(personExp, meanExp float64) string {
	if meanExp == 0 {
		return strconv.FormatFloat(personExp, 'f', -1, 64)
	}
	return strconv.FormatFloat(personExp/meanExp, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
