package detio_test

import (
	"path/filepath"
	"testing"

	"github.com/soniakeys/coord"

	"skytrack/detio"
)

func TestImagesRoundTrip(t *testing.T) {
	images := []detio.Image{
		{MJD: 60000.5, RA: 180, Dec: 0, Obscode: "568",
			Observer: coord.Cart{X: 1, Y: 2, Z: 3},
			ObsVel:   coord.Cart{X: 0.1, Y: 0.2, Z: 0.3},
			StartInd: 0, EndInd: 5, ExpTime: 30},
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "images.txt")
	if err := detio.WriteImages(path, images); err != nil {
		t.Fatal(err)
	}
	got, err := detio.ReadImages(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d images, want 1", len(got))
	}
	if got[0].Obscode != "568" || got[0].StartInd != 0 || got[0].EndInd != 5 {
		t.Errorf("got %+v", got[0])
	}
	if got[0].Observer.X != 1 || got[0].Observer.Z != 3 {
		t.Errorf("observer position mismatch: %+v", got[0].Observer)
	}
}

func TestTrackletsRoundTrip(t *testing.T) {
	trks := []detio.Tracklet{
		{ID: 0, Image1: 0, Image2: 1, RA1: 10, Dec1: 1, RA2: 10.1, Dec2: 1.1, Npts: 2},
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "trk.csv")
	if err := detio.WriteTracklets(path, trks); err != nil {
		t.Fatal(err)
	}
	got, err := detio.ReadTracklets(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 0 || got[0].Npts != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestTrk2DetRoundTrip(t *testing.T) {
	td := []detio.TrkDet{{TrkID: 0, DetNum: 3}, {TrkID: 0, DetNum: 7}}
	dir := t.TempDir()
	path := filepath.Join(dir, "t2d.csv")
	if err := detio.WriteTrk2Det(path, td); err != nil {
		t.Fatal(err)
	}
	got, err := detio.ReadTrk2Det(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].DetNum != 7 {
		t.Errorf("got %+v", got)
	}
}
