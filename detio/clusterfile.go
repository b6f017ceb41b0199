package detio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// clusterHeader lists the cluster analysis file's columns in write
// order.
var clusterHeader = []string{
	"obsfile", "astrometricRMS", "chisq", "timespan", "uniquepoints",
	"obsnights", "metric", "a", "e", "incl", "orbit_MJD", "X", "Y", "Z",
	"VX", "VY", "VZ", "iter", "avg_det_qual", "max_known_obj",
	"minvel", "maxvel", "minGCR", "maxGCR", "minPA", "maxPA",
	"mintimespan", "maxtimespan", "top5arcs", "stringID",
	"minnightstep", "maxnightstep", "magmean", "magrms", "magrange",
	"rating", "crossquad", "alongquad", "totalquad",
}

// ClusterRow is one linkage's worth of summary statistics, matching the
// cluster analysis file columns. This is the record type the
// build-link-purify pipeline (cmd/linker, cmd/purify) populates before
// appending to the analysis file; cmd/analyzelinkage prints its own
// summary line instead.
type ClusterRow struct {
	ObsFile        string
	AstromRMS      float64
	ChiSq          float64
	TimeSpan       float64
	UniquePoints   int
	ObsNights      int
	Metric         float64
	A, E, Incl     float64
	OrbitMJD       float64
	X, Y, Z        float64
	VX, VY, VZ     float64
	Iter           int
	AvgDetQual     float64
	MaxKnownObj    int
	MinVel, MaxVel float64
	MinGCR, MaxGCR float64
	MinPA, MaxPA   float64
	MinTimeSpan    float64
	MaxTimeSpan    float64
	Top5Arcs       []float64
	StringID       string
	MinNightStep   float64
	MaxNightStep   float64
	MagMean        float64
	MagRMS         float64
	MagRange       float64
	Rating         string
	CrossQuad      float64
	AlongQuad      float64
	TotalQuad      float64
}

// WriteClusterAnalysis appends rows to path, writing the header only if
// the file does not already exist, so repeated pipeline runs accumulate
// one CSV row per successful linkage in a single growing file.
func WriteClusterAnalysis(path string, rows []ClusterRow) error {
	_, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return Wrap(IO, "detio.WriteClusterAnalysis", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if needHeader {
		if _, err := fmt.Fprintln(w, "#"+strings.Join(clusterHeader, ",")); err != nil {
			return Wrap(IO, "detio.WriteClusterAnalysis", err)
		}
	}
	for _, row := range rows {
		if err := writeClusterRow(w, row); err != nil {
			return err
		}
	}
	return Wrap(IO, "detio.WriteClusterAnalysis", w.Flush())
}

func writeClusterRow(w io.Writer, row ClusterRow) error {
	top5 := make([]string, 5)
	for i := range top5 {
		if i < len(row.Top5Arcs) {
			top5[i] = fmt.Sprintf("%.4f", row.Top5Arcs[i])
		} else {
			top5[i] = "0.0000"
		}
	}
	_, err := fmt.Fprintf(w,
		"%s,%.4f,%.4f,%.4f,%d,%d,%.6e,%.8f,%.8f,%.6f,%.7f,%.6f,%.6f,%.6f,%.8f,%.8f,%.8f,%d,%.3f,%d,"+
			"%.6f,%.6f,%.4f,%.4f,%.3f,%.3f,%.4f,%.4f,%s,%s,%.4f,%.4f,%.4f,%.4f,%.4f,%s,%.6f,%.6f,%.6f\n",
		row.ObsFile, row.AstromRMS, row.ChiSq, row.TimeSpan, row.UniquePoints,
		row.ObsNights, row.Metric, row.A, row.E, row.Incl, row.OrbitMJD,
		row.X, row.Y, row.Z, row.VX, row.VY, row.VZ, row.Iter, row.AvgDetQual,
		row.MaxKnownObj, row.MinVel, row.MaxVel, row.MinGCR, row.MaxGCR,
		row.MinPA, row.MaxPA, row.MinTimeSpan, row.MaxTimeSpan,
		strings.Join(top5, "|"), row.StringID, row.MinNightStep, row.MaxNightStep,
		row.MagMean, row.MagRMS, row.MagRange, row.Rating,
		row.CrossQuad, row.AlongQuad, row.TotalQuad)
	if err != nil {
		return Wrap(IO, "detio.WriteClusterAnalysis", err)
	}
	return nil
}
