package seedstore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoad_Households(t *testing.T) {
	dir := t.TempDir()
	hhPath := writeCSV(t, dir, "SeedHouseholds.csv",
		"HouseholdID,HouseholdPD,ExpansionFactor,DwellingType,NumberOfPersons,NumberOfVehicles,Income\n"+
			"1,1,10.5,1,2,1,3\n"+
			"2,1,1.0,2,3,2,4\n"+
			"3,4,5.0,1,1,0,1\n")
	personsPath := writeCSV(t, dir, "SeedPersons.csv",
		"HouseholdID,PersonNumber,Age,Sex,License,TransitPass,EmploymentStatus,Occupation,FreeParking,StudentStatus,EmploymentPD,SchoolPD,ExpansionFactor\n")

	store, err := Load(hhPath, personsPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if store.HouseholdCount() != 3 {
		t.Fatalf("expected 3 households, got %d", store.HouseholdCount())
	}
	for _, id := range []int{1, 2, 3} {
		if _, ok := store.Household(id); !ok {
			t.Errorf("expected household %d to exist", id)
		}
	}
}

func TestLoad_Persons(t *testing.T) {
	dir := t.TempDir()
	hhPath := writeCSV(t, dir, "SeedHouseholds.csv",
		"HouseholdID,HouseholdPD,ExpansionFactor,DwellingType,NumberOfPersons,NumberOfVehicles,Income\n"+
			"1,1,10.5,1,2,1,3\n")
	personsPath := writeCSV(t, dir, "SeedPersons.csv",
		"HouseholdID,PersonNumber,Age,Sex,License,TransitPass,EmploymentStatus,Occupation,FreeParking,StudentStatus,EmploymentPD,SchoolPD,ExpansionFactor\n"+
			"1,1,34,M,Y,Y,F,P,Y,O,10,0,5.0\n"+
			"1,2,32,F,N,N,H,G,N,O,0,0,5.0\n"+
			"2,1,40,M,Y,Y,F,S,Y,O,20,0,2.0\n"+
			"3,1,12,F,N,N,O,O,N,F,0,10,1.0\n")

	store, err := Load(hhPath, personsPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if store.PersonGroupCount() != 3 {
		t.Fatalf("expected 3 household-id keys, got %d", store.PersonGroupCount())
	}
	total := 0
	for _, hhID := range []int{1, 2, 3} {
		total += len(store.PersonsOf(hhID))
	}
	if total != 4 {
		t.Fatalf("expected 4 total person rows, got %d", total)
	}
}

func TestLoad_OrphanPersonsAreGroupedButHarmless(t *testing.T) {
	dir := t.TempDir()
	hhPath := writeCSV(t, dir, "SeedHouseholds.csv",
		"HouseholdID,HouseholdPD,ExpansionFactor,DwellingType,NumberOfPersons,NumberOfVehicles,Income\n"+
			"1,1,10.5,1,2,1,3\n")
	personsPath := writeCSV(t, dir, "SeedPersons.csv",
		"HouseholdID,PersonNumber,Age,Sex,License,TransitPass,EmploymentStatus,Occupation,FreeParking,StudentStatus,EmploymentPD,SchoolPD,ExpansionFactor\n"+
			"99,1,34,M,Y,Y,F,P,Y,O,10,0,5.0\n")

	store, err := Load(hhPath, personsPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(store.PersonsOf(99)) != 1 {
		t.Fatalf("expected the orphan group to still be retrievable")
	}
	if _, ok := store.Household(99); ok {
		t.Fatalf("household 99 should not exist")
	}
}

func TestLoad_DropsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	hhPath := writeCSV(t, dir, "SeedHouseholds.csv",
		"HouseholdID,HouseholdPD,ExpansionFactor,DwellingType,NumberOfPersons,NumberOfVehicles,Income\n"+
			"1,1,10.5,1,2,1,3\n"+
			"2,1,1.0,2,3,2\n") // missing a column
	personsPath := writeCSV(t, dir, "SeedPersons.csv",
		"HouseholdID,PersonNumber,Age,Sex,License,TransitPass,EmploymentStatus,Occupation,FreeParking,StudentStatus,EmploymentPD,SchoolPD,ExpansionFactor\n"+
			"1,1,34,M,Y,Y,F,P,Y,O,10,0\n") // 12 cols, missing ExpansionFactor

	store, err := Load(hhPath, personsPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if store.HouseholdCount() != 1 {
		t.Fatalf("expected ragged household row to be dropped, got count %d", store.HouseholdCount())
	}
	if store.PersonGroupCount() != 0 {
		t.Fatalf("expected ragged person row (12 cols) to be dropped, got count %d", store.PersonGroupCount())
	}
}

func TestHouseholdsInPD_SortedByID(t *testing.T) {
	dir := t.TempDir()
	hhPath := writeCSV(t, dir, "SeedHouseholds.csv",
		"HouseholdID,HouseholdPD,ExpansionFactor,DwellingType,NumberOfPersons,NumberOfVehicles,Income\n"+
			"3,1,1.0,1,2,1,3\n"+
			"1,1,2.0,1,2,1,3\n"+
			"2,1,3.0,1,2,1,3\n")
	personsPath := writeCSV(t, dir, "SeedPersons.csv",
		"HouseholdID,PersonNumber,Age,Sex,License,TransitPass,EmploymentStatus,Occupation,FreeParking,StudentStatus,EmploymentPD,SchoolPD,ExpansionFactor\n")

	store, err := Load(hhPath, personsPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	pool := store.HouseholdsInPD(1)
	if len(pool) != 3 {
		t.Fatalf("expected 3 households in PD 1, got %d", len(pool))
	}
	for i, want := range []int{1, 2, 3} {
		if pool[i].HouseholdID != want {
			t.Errorf("pool[%d].HouseholdID = %d, want %d", i, pool[i].HouseholdID, want)
		}
	}
}
