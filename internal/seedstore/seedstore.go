// Package seedstore holds the seed sample: the households and persons drawn
// from a travel survey that the sampler draws from.
package seedstore

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/transportmodeling/popsynth/internal/csvio"
)

// Household is an immutable seed household record.
type Household struct {
	HouseholdID      int
	HouseholdPD      int
	ExpansionFactor  float64
	DwellingType     int
	NumberOfPersons  int
	NumberOfVehicles int
	Income           int
}

// Person is an immutable seed person record, grouped under its household's id.
type Person struct {
	Age              int
	Sex              string // "M" | "F"
	License          string // "Y" | "N"
	TransitPass      string
	EmploymentStatus string // "F" | "P" | "H" | "J" | "O"
	Occupation       string // "P" | "G" | "S" | "M" | "O"
	FreeParking      bool
	StudentStatus    string // "F" | "P" | "O"
	EmploymentPD     int
	SchoolPD         int
	ExpansionFactor  float64
}

// Store holds the seed households (keyed by id) and the seed persons
// grouped by household id, in file order.
type Store struct {
	households   map[int]Household
	persons      map[int][]Person
	pdHouseholds map[int][]Household // sorted ascending by HouseholdID
}

// Load reads the households and persons CSVs into a Store.
func Load(householdsPath, personsPath string) (*Store, error) {
	s := &Store{
		households: make(map[int]Household),
		persons:    make(map[int][]Person),
	}

	hhRows, err := csvio.ReadRows(householdsPath)
	if err != nil {
		return nil, err
	}
	for i, row := range hhRows {
		if len(row) != 7 {
			continue // different column count: silently dropped
		}
		hh, err := parseHousehold(row)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", householdsPath, i+2, err)
		}
		s.households[hh.HouseholdID] = hh
	}

	personRows, err := csvio.ReadRows(personsPath)
	if err != nil {
		return nil, err
	}
	for i, row := range personRows {
		if len(row) < 13 {
			continue // fewer than 13 columns: dropped
		}
		hhID, p, err := parsePerson(row)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", personsPath, i+2, err)
		}
		s.persons[hhID] = append(s.persons[hhID], p)
	}

	s.pdHouseholds = make(map[int][]Household)
	for _, hh := range s.households {
		s.pdHouseholds[hh.HouseholdPD] = append(s.pdHouseholds[hh.HouseholdPD], hh)
	}
	for pd := range s.pdHouseholds {
		sort.Slice(s.pdHouseholds[pd], func(i, j int) bool {
			return s.pdHouseholds[pd][i].HouseholdID < s.pdHouseholds[pd][j].HouseholdID
		})
	}

	return s, nil
}

func parseHousehold(row []string) (Household, error) {
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return Household{}, fmt.Errorf("invalid HouseholdID %q: %w", row[0], err)
	}
	pd, err := strconv.Atoi(row[1])
	if err != nil {
		return Household{}, fmt.Errorf("invalid HouseholdPD %q: %w", row[1], err)
	}
	exp, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return Household{}, fmt.Errorf("invalid ExpansionFactor %q: %w", row[2], err)
	}
	dwelling, err := strconv.Atoi(row[3])
	if err != nil {
		return Household{}, fmt.Errorf("invalid DwellingType %q: %w", row[3], err)
	}
	numPersons, err := strconv.Atoi(row[4])
	if err != nil {
		return Household{}, fmt.Errorf("invalid NumberOfPersons %q: %w", row[4], err)
	}
	numVehicles, err := strconv.Atoi(row[5])
	if err != nil {
		return Household{}, fmt.Errorf("invalid NumberOfVehicles %q: %w", row[5], err)
	}
	income, err := strconv.Atoi(row[6])
	if err != nil {
		return Household{}, fmt.Errorf("invalid Income %q: %w", row[6], err)
	}

	return Household{
		HouseholdID:      id,
		HouseholdPD:      pd,
		ExpansionFactor:  exp,
		DwellingType:     dwelling,
		NumberOfPersons:  numPersons,
		NumberOfVehicles: numVehicles,
		Income:           income,
	}, nil
}

func parsePerson(row []string) (int, Person, error) {
	hhID, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, Person{}, fmt.Errorf("invalid HouseholdID %q: %w", row[0], err)
	}
	// row[1] is PersonNumber: positional within the household, not stored —
	// file order within the household's group already preserves it.
	age, err := strconv.Atoi(row[2])
	if err != nil {
		return 0, Person{}, fmt.Errorf("invalid Age %q: %w", row[2], err)
	}
	employmentPD, err := strconv.Atoi(row[10])
	if err != nil {
		return 0, Person{}, fmt.Errorf("invalid EmploymentPD %q: %w", row[10], err)
	}
	schoolPD, err := strconv.Atoi(row[11])
	if err != nil {
		return 0, Person{}, fmt.Errorf("invalid SchoolPD %q: %w", row[11], err)
	}
	exp, err := strconv.ParseFloat(row[12], 64)
	if err != nil {
		return 0, Person{}, fmt.Errorf("invalid ExpansionFactor %q: %w", row[12], err)
	}

	p := Person{
		Age:              age,
		Sex:              row[3],
		License:          row[4],
		TransitPass:      row[5],
		EmploymentStatus: row[6],
		Occupation:       row[7],
		FreeParking:      row[8] == "Y",
		StudentStatus:    row[9],
		EmploymentPD:     employmentPD,
		SchoolPD:         schoolPD,
		ExpansionFactor:  exp,
	}
	return hhID, p, nil
}

// Household returns the seed household for id, and whether it exists.
func (s *Store) Household(id int) (Household, bool) {
	hh, ok := s.households[id]
	return hh, ok
}

// HouseholdsInPD returns the PD's seed households, sorted ascending by
// HouseholdID. The returned slice is a private copy safe to mutate.
func (s *Store) HouseholdsInPD(pd int) []Household {
	src := s.pdHouseholds[pd]
	out := make([]Household, len(src))
	copy(out, src)
	return out
}

// PersonsOf returns the seed persons belonging to householdID, in file
// order. Households with no persons return nil.
func (s *Store) PersonsOf(householdID int) []Person {
	return s.persons[householdID]
}

// HouseholdCount returns the number of distinct household keys loaded.
func (s *Store) HouseholdCount() int {
	return len(s.households)
}

// PersonGroupCount returns the number of distinct household-id keys the
// persons table groups under (including orphan groups with no matching
// seed household).
func (s *Store) PersonGroupCount() int {
	return len(s.persons)
}
