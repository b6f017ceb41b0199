package purify_test

import (
	"testing"

	"skytrack/astro"
	"skytrack/everhart"
	"skytrack/purify"
)

func TestAnalyzeRatesPureLinkage(t *testing.T) {
	obs := syntheticCluster(t, 0)
	for i := range obs {
		obs[i].IDString = "2024 AB"
	}
	cfg := purify.Config{
		MaxAstromRMS: 5.0,
		Force:        &everhart.ForceModel{GMSun: astro.U},
		StepDays:     1,
		HNum:         8,
	}
	report, err := purify.Analyze(obs, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if report.Rating != "PURE" {
		t.Errorf("got rating %q, want PURE", report.Rating)
	}
}

func TestAnalyzeRatesMixedLinkage(t *testing.T) {
	obs := syntheticCluster(t, 0)
	for i := range obs {
		obs[i].IDString = "2024 AB"
	}
	obs[2].IDString = "2024 CD"
	cfg := purify.Config{
		MaxAstromRMS: 5.0,
		Force:        &everhart.ForceModel{GMSun: astro.U},
		StepDays:     1,
		HNum:         8,
	}
	report, err := purify.Analyze(obs, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if report.Rating != "MIXED" {
		t.Errorf("got rating %q, want MIXED", report.Rating)
	}
}
