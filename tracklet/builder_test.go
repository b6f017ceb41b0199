package tracklet_test

import (
	"testing"

	"skytrack/detio"
	"skytrack/tracklet"
)

func det(mjd, ra, dec float64, obscode string) detio.Detection {
	return detio.Detection{MJD: mjd, RA: ra, Dec: dec, Obscode: obscode}
}

func TestPartitionImagesGroupsByTimeAndObscode(t *testing.T) {
	dets := []detio.Detection{
		det(60000.0, 10, 0, "568"),
		det(60000.0+1.0/86400/2, 10.001, 0, "568"),
		det(60000.1, 11, 0, "568"),
		det(60000.1, 30, 0, "W84"),
	}
	images := tracklet.PartitionImages(dets)
	if len(images) != 3 {
		t.Fatalf("got %d images, want 3", len(images))
	}
	if images[0].EndInd-images[0].StartInd != 2 {
		t.Errorf("expected first image to absorb 2 near-simultaneous detections, got %d", images[0].EndInd-images[0].StartInd)
	}
}

func TestBuildLinksLinearMotionTracklet(t *testing.T) {
	var dets []detio.Detection
	for i := 0; i < 4; i++ {
		mjd := 60000.0 + float64(i)*0.02
		dets = append(dets, det(mjd, 10+float64(i)*0.01, 0, "568"))
	}
	images := tracklet.PartitionImages(dets)
	cfg := tracklet.Config{
		MinTrkPts: 3,
		MinArc:    0.01,
		MaxVel:    5,
		MinVel:    0.01,
		MinTime:   0.001,
		MaxTime:   1,
		ImageRad:  5,
		MaxGCR:    0.01,
	}
	trks, trk2det := tracklet.Build(dets, images, cfg)
	if len(trks) == 0 {
		t.Fatal("expected at least one tracklet")
	}
	if len(detio.DetsForTracklet(trk2det, trks[0].ID)) < cfg.MinTrkPts {
		t.Errorf("tracklet has fewer than mintrkpts detections")
	}
}

func TestBuildRejectsBelowMinTrkPts(t *testing.T) {
	dets := []detio.Detection{
		det(60000.0, 10, 0, "568"),
		det(60000.02, 10.2, 0, "568"),
	}
	images := tracklet.PartitionImages(dets)
	cfg := tracklet.Config{
		MinTrkPts: 3,
		MaxVel:    50,
		MinVel:    0.01,
		MinTime:   0.001,
		MaxTime:   1,
		ImageRad:  5,
		MaxGCR:    0.01,
	}
	trks, _ := tracklet.Build(dets, images, cfg)
	if len(trks) != 0 {
		t.Errorf("expected no tracklets below mintrkpts, got %d", len(trks))
	}
}
