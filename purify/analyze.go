package purify

import (
	"skytrack/detio"
	"skytrack/linker"
)

// Report is the supplemental linkage-analysis output: a fit (via
// fitAndReject's same herget-then-orbitfit pipeline, but without
// rejection) plus a purity rating derived from provenance identifiers,
// useful when analyzing synthetic test linkages where the true parent
// object of each detection is known in advance.
type Report struct {
	Orbit   Purified
	Rating  string // "PURE" if every observation shares the first's IDString, else "MIXED"
	Count   int
}

// Analyze fits obs as a single candidate linkage (no outlier rejection)
// and labels it PURE or MIXED by provenance identifier agreement: a
// diagnostic over an already-assembled linkage, not part of the main
// build-link-purify pipeline.
func Analyze(obs []CandidateObservation, cfg Config) (Report, error) {
	noReject := cfg
	noReject.MaxRejNum = 0
	noReject.RejFrac = 0
	p, ok := fitAndReject(linker.Cluster{}, obs, noReject)
	if !ok {
		return Report{}, detio.Newf(detio.NON_CONVERGENT, "purify.Analyze", "orbit fit did not converge for %d observations", len(obs))
	}
	rating := "PURE"
	if len(obs) > 0 {
		first := obs[0].IDString
		for _, o := range obs {
			if o.IDString != first {
				rating = "MIXED"
				break
			}
		}
	}
	return Report{Orbit: p, Rating: rating, Count: len(p.Observations)}, nil
}
