package detio_test

import (
	"testing"

	"skytrack/detio"
)

func TestLabelMatchesWithinRadius(t *testing.T) {
	dets := []detio.Detection{
		{MJD: 60000.0, RA: 10.0, Dec: 5.0, IDString: ""},
		{MJD: 60000.0, RA: 50.0, Dec: -5.0, IDString: ""},
	}
	labels := []detio.LabelPoint{
		{MJD: 60000.0, RA: 10.0001, Dec: 5.0001, IDString: "2024 AB"},
	}
	out := detio.Label(dets, labels, detio.LabelConfig{MatchRadAsec: 5})
	if len(out) != 2 {
		t.Fatalf("expected 2 rows out, got %d", len(out))
	}
	if out[0].IDString != "2024 AB" {
		t.Errorf("expected detection 0 labeled, got %q", out[0].IDString)
	}
	if out[1].IDString != "" {
		t.Errorf("expected detection 1 untouched, got %q", out[1].IDString)
	}
}

func TestLabelLeavesUnmatchedUntouched(t *testing.T) {
	dets := []detio.Detection{{MJD: 60000.0, RA: 10.0, Dec: 5.0, IDString: "orig"}}
	labels := []detio.LabelPoint{{MJD: 60000.0, RA: 90.0, Dec: -10.0, IDString: "2024 XY"}}
	out := detio.Label(dets, labels, detio.LabelConfig{MatchRadAsec: 1})
	if out[0].IDString != "orig" {
		t.Errorf("expected unmatched detection untouched, got %q", out[0].IDString)
	}
}
