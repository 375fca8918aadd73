package workercat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/transportmodeling/popsynth/internal/seedstore"
)

func TestMobilityClass(t *testing.T) {
	cases := []struct {
		vehicles, licenses, want int
	}{
		{0, 2, 0},
		{2, 0, 0},
		{1, 2, 1},
		{2, 2, 2},
		{3, 2, 2},
	}
	for _, c := range cases {
		if got := MobilityClass(c.vehicles, c.licenses); got != c.want {
			t.Errorf("MobilityClass(%d, %d) = %d, want %d", c.vehicles, c.licenses, got, c.want)
		}
	}
}

func readCells(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		if l == "" {
			continue
		}
		rows = append(rows, strings.Split(l, ","))
	}
	return rows
}

func TestRecordAndWriteAll_ScenarioSix(t *testing.T) {
	agg := New()
	persons := []seedstore.Person{
		{Occupation: "P", EmploymentStatus: "F"},
	}
	agg.Record(500, 0, 2, persons, 7)

	dir := t.TempDir()
	if err := agg.WriteAll(dir); err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}

	residence := readCells(t, filepath.Join(dir, "ZonalResidence", "PF.csv"))
	if len(residence) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows: %v", len(residence), residence)
	}
	if residence[1][0] != "500" || residence[1][1] != "7" {
		t.Errorf("ZonalResidence/PF.csv row = %v, want [500 7]", residence[1])
	}

	categories := readCells(t, filepath.Join(dir, "WorkerCategories", "PF.csv"))
	if len(categories) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows: %v", len(categories), categories)
	}
	if categories[1][0] != "500" || categories[1][1] != "1" || categories[1][2] != "1" {
		t.Errorf("WorkerCategories/PF.csv row = %v, want [500 1 1]", categories[1])
	}
}

func TestRecord_SkipsWorkFromHomeAndUnemployed(t *testing.T) {
	agg := New()
	persons := []seedstore.Person{
		{Occupation: "P", EmploymentStatus: "H"},
		{Occupation: "P", EmploymentStatus: "O"},
	}
	agg.Record(1, 1, 1, persons, 99)

	if len(agg.zones()) != 0 {
		t.Error("expected zone to never materialize when no person has a tracked (occupation, employment) pair")
	}
}

func TestRecord_SkipsOtherOccupation(t *testing.T) {
	agg := New()
	persons := []seedstore.Person{
		{Occupation: "O", EmploymentStatus: "F"},
	}
	agg.Record(1, 1, 1, persons, 99)

	if len(agg.zones()) != 0 {
		t.Error("expected zone to never materialize for an untracked occupation")
	}
}

func TestWriteAll_ZoneWithZeroTotalEmitsNoWorkerCategoryRows(t *testing.T) {
	agg := New()
	// Contribute to a different (o,e) cell only, so PF's total is zero for this zone.
	agg.Record(42, 1, 1, []seedstore.Person{{Occupation: "G", EmploymentStatus: "F"}}, 3)

	dir := t.TempDir()
	if err := agg.WriteAll(dir); err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}

	categories := readCells(t, filepath.Join(dir, "WorkerCategories", "PF.csv"))
	if len(categories) != 1 {
		t.Fatalf("expected only the header row for a zero-total zone, got %v", categories)
	}
}
