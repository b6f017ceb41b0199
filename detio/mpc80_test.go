package detio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soniakeys/observation"

	"skytrack/detio"
)

func TestFromMPC80ParsesSiteObservation(t *testing.T) {
	const line = "     K11Q14F  C2014 09 03.40285 02 53 00.70 +10 38 30.3          19.2 VqER031703"
	ocd := observation.ParallaxMap{"703": nil}

	dir := t.TempDir()
	path := filepath.Join(dir, "obs80.txt")
	if err := os.WriteFile(path, []byte(line+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dets, err := detio.FromMPC80(path, ocd)
	if err != nil {
		t.Fatal(err)
	}
	if len(dets) != 1 {
		t.Fatalf("got %d detections, want 1", len(dets))
	}
	if dets[0].Obscode != "703" {
		t.Errorf("obscode = %q, want 703", dets[0].Obscode)
	}
	if dets[0].IDString != "K11Q14F" {
		t.Errorf("idstring = %q, want K11Q14F", dets[0].IDString)
	}
}
