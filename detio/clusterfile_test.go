package detio_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skytrack/detio"
)

func TestWriteClusterAnalysisAppendsWithSingleHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clusters.csv")
	row := detio.ClusterRow{
		ObsFile: "run1.csv", AstromRMS: 0.3, UniquePoints: 6, ObsNights: 3,
		A: 2.5, E: 0.1, Incl: 5, Rating: "PURE",
		Top5Arcs: []float64{1, 2, 3},
	}
	if err := detio.WriteClusterAnalysis(path, []detio.ClusterRow{row}); err != nil {
		t.Fatal(err)
	}
	if err := detio.WriteClusterAnalysis(path, []detio.ClusterRow{row}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 1 header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "#") {
		t.Errorf("first line should be header, got %q", lines[0])
	}
	if strings.Contains(lines[1], "#") {
		t.Errorf("data line should not contain #: %q", lines[1])
	}
}
