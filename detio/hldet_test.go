package detio_test

import (
	"os"
	"path/filepath"
	"testing"

	"skytrack/detio"
)

func TestHldetRoundTrip(t *testing.T) {
	dets := []detio.Detection{
		{MJD: 60000.1234567, RA: 10.1234567, Dec: -5.1234567, Mag: 20.1234,
			TrailLen: 1.23, TrailPA: 45.67, SigMag: 0.1234, SigAcross: 0.123,
			SigAlong: 0.234, Image: 0, IDString: "2024 AB", Band: "r",
			Obscode: "568", KnownObj: 0, DetQual: 1},
		{MJD: 60000.2234567, RA: 10.2234567, Dec: -5.2234567, Mag: 20.5,
			Image: 1, IDString: "2024 AB", Obscode: "568", DetQual: 1},
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "dets.csv")
	if err := detio.WriteHldet(path, dets); err != nil {
		t.Fatal(err)
	}
	got, err := detio.ReadHldet(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(dets) {
		t.Fatalf("got %d detections, want %d", len(got), len(dets))
	}
	for i := range dets {
		if got[i].IDString != dets[i].IDString || got[i].Obscode != dets[i].Obscode {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], dets[i])
		}
		if got[i].OrigIndex != i {
			t.Errorf("row %d: OrigIndex = %d, want %d", i, got[i].OrigIndex, i)
		}
	}
}

func TestReadHldetMissingHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(path, []byte("1,2,3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := detio.ReadHldet(path); err == nil {
		t.Error("expected an error for a missing header line")
	}
}
