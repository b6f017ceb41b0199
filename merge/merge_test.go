package merge_test

import (
	"testing"

	"skytrack/detio"
	"skytrack/merge"
)

func TestMergeCombinesImagesByTolerance(t *testing.T) {
	run1 := merge.Run{
		Images:     []detio.Image{{MJD: 60000.0, Obscode: "568"}},
		Detections: []detio.Detection{{MJD: 60000.0, RA: 10, Dec: 0, Obscode: "568", Image: 0}},
		Tracklets:  nil,
		Trk2Det:    nil,
	}
	run2 := merge.Run{
		Images:     []detio.Image{{MJD: 60000.0 + 0.1/86400, Obscode: "568"}},
		Detections: []detio.Detection{{MJD: 60000.0 + 0.1/86400, RA: 10.01, Dec: 0, Obscode: "568", Image: 0}},
		Tracklets:  nil,
		Trk2Det:    nil,
	}
	result := merge.Merge([]merge.Run{run1, run2}, merge.Config{MatchRadDeg: 0})
	if len(result.Images) != 1 {
		t.Fatalf("expected images to merge into 1, got %d", len(result.Images))
	}
	if len(result.Detections) != 2 {
		t.Fatalf("expected 2 detections with no dedup, got %d", len(result.Detections))
	}
	if result.SessionID == "" {
		t.Error("expected a non-empty session id")
	}
}

func TestMergeDedupsCloseDetections(t *testing.T) {
	run1 := merge.Run{
		Images:     []detio.Image{{MJD: 60000.0, Obscode: "568"}},
		Detections: []detio.Detection{{MJD: 60000.0, RA: 10.0, Dec: 0, Obscode: "568", Image: 0}},
	}
	run2 := merge.Run{
		Images:     []detio.Image{{MJD: 60000.0, Obscode: "568"}},
		Detections: []detio.Detection{{MJD: 60000.0, RA: 10.0001, Dec: 0, Obscode: "568", Image: 0}},
	}
	result := merge.Merge([]merge.Run{run1, run2}, merge.Config{MatchRadDeg: 0.01})
	if len(result.Detections) != 1 {
		t.Fatalf("expected duplicate detections collapsed to 1, got %d", len(result.Detections))
	}
}

func TestMergeCollapsesDuplicateTracklets(t *testing.T) {
	dets := []detio.Detection{
		{MJD: 60000.0, RA: 10, Dec: 0, Obscode: "568", Image: 0},
		{MJD: 60000.02, RA: 10.1, Dec: 0, Obscode: "568", Image: 1},
	}
	run1 := merge.Run{
		Images:     []detio.Image{{MJD: 60000.0, Obscode: "568"}, {MJD: 60000.02, Obscode: "568"}},
		Detections: dets,
		Tracklets:  []detio.Tracklet{{ID: 0, Image1: 0, Image2: 1, Npts: 2}},
		Trk2Det:    []detio.TrkDet{{TrkID: 0, DetNum: 0}, {TrkID: 0, DetNum: 1}},
	}
	run2 := merge.Run{
		Images:     []detio.Image{{MJD: 60000.0, Obscode: "568"}, {MJD: 60000.02, Obscode: "568"}},
		Detections: dets,
		Tracklets:  []detio.Tracklet{{ID: 0, Image1: 0, Image2: 1, Npts: 2}},
		Trk2Det:    []detio.TrkDet{{TrkID: 0, DetNum: 0}, {TrkID: 0, DetNum: 1}},
	}
	result := merge.Merge([]merge.Run{run1, run2}, merge.Config{MatchRadDeg: 1e-6})
	if len(result.Tracklets) != 1 {
		t.Errorf("expected duplicate tracklets collapsed to 1, got %d", len(result.Tracklets))
	}
}
