package detio

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// hldetColumns is the canonical column order written by WriteHldet. A
// file being read may list its columns in any order; unknown column
// names in the header are logged and skipped rather than treated as a
// fatal parse error.
var hldetColumns = []string{
	"MJD", "RA", "Dec", "mag", "trail_len", "trail_PA", "sigmag",
	"sig_across", "sig_along", "image", "idstring", "band", "obscode",
	"known_obj", "det_qual", "origindex",
}

// ReadHldet reads a detection file: one `#`-prefixed header line naming
// columns, then comma-separated rows in the order given by the header
// (not necessarily hldetColumns' canonical order). Detection.Image is
// left as the raw column value; callers that need image-grouped data
// should build it with tracklet.PartitionImages or similar.
func ReadHldet(path string) ([]Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(IO, "detio.ReadHldet", err)
	}
	defer f.Close()
	return readHldet(f)
}

func readHldet(r io.Reader) ([]Detection, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var header []string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			header = strings.Split(strings.TrimPrefix(line, "#"), ",")
			for i := range header {
				header[i] = strings.TrimSpace(header[i])
			}
			break
		}
	}
	if header == nil {
		return nil, Newf(PARSE, "detio.ReadHldet", "missing header line")
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		if !knownHldetColumn(name) {
			log.Printf("detio.ReadHldet: unknown column %q, ignoring", name)
			continue
		}
		colIdx[name] = i
	}

	var dets []Detection
	origIdx := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		d, err := parseHldetRow(fields, colIdx)
		if err != nil {
			log.Printf("detio.ReadHldet: skipping malformed row: %v", err)
			continue
		}
		d.OrigIndex = origIdx
		dets = append(dets, d)
		origIdx++
	}
	if err := sc.Err(); err != nil {
		return nil, Wrap(IO, "detio.ReadHldet", err)
	}
	return dets, nil
}

func knownHldetColumn(name string) bool {
	for _, c := range hldetColumns {
		if c == name {
			return true
		}
	}
	return false
}

func parseHldetRow(fields []string, colIdx map[string]int) (Detection, error) {
	var d Detection
	get := func(col string) (string, bool) {
		i, ok := colIdx[col]
		if !ok || i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}
	getFloat := func(col string) (float64, error) {
		s, ok := get(col)
		if !ok {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}
	getInt := func(col string) (int, error) {
		s, ok := get(col)
		if !ok {
			return 0, nil
		}
		return strconv.Atoi(s)
	}

	var err error
	if d.MJD, err = getFloat("MJD"); err != nil {
		return d, fmt.Errorf("MJD: %w", err)
	}
	if d.RA, err = getFloat("RA"); err != nil {
		return d, fmt.Errorf("RA: %w", err)
	}
	if d.Dec, err = getFloat("Dec"); err != nil {
		return d, fmt.Errorf("Dec: %w", err)
	}
	if d.Mag, err = getFloat("mag"); err != nil {
		return d, fmt.Errorf("mag: %w", err)
	}
	if d.TrailLen, err = getFloat("trail_len"); err != nil {
		return d, fmt.Errorf("trail_len: %w", err)
	}
	if d.TrailPA, err = getFloat("trail_PA"); err != nil {
		return d, fmt.Errorf("trail_PA: %w", err)
	}
	if d.SigMag, err = getFloat("sigmag"); err != nil {
		return d, fmt.Errorf("sigmag: %w", err)
	}
	if d.SigAcross, err = getFloat("sig_across"); err != nil {
		return d, fmt.Errorf("sig_across: %w", err)
	}
	if d.SigAlong, err = getFloat("sig_along"); err != nil {
		return d, fmt.Errorf("sig_along: %w", err)
	}
	if d.Image, err = getInt("image"); err != nil {
		return d, fmt.Errorf("image: %w", err)
	}
	if s, ok := get("idstring"); ok {
		if len(s) > ShortStringLen {
			s = s[:ShortStringLen]
		}
		d.IDString = s
	}
	if s, ok := get("band"); ok {
		if len(s) > 2 {
			s = s[:2]
		}
		d.Band = s
	}
	if s, ok := get("obscode"); ok {
		if len(s) > 3 {
			s = s[:3]
		}
		d.Obscode = s
	}
	if d.KnownObj, err = getInt("known_obj"); err != nil {
		return d, fmt.Errorf("known_obj: %w", err)
	}
	if d.DetQual, err = getInt("det_qual"); err != nil {
		return d, fmt.Errorf("det_qual: %w", err)
	}
	return d, nil
}

// WriteHldet writes dets to path in the canonical hldetColumns order,
// with fixed field precision (7 decimal digits for MJD, RA and Dec, 4 for
// magnitudes, 2-3 for trail and sigma fields).
func WriteHldet(path string, dets []Detection) error {
	f, err := os.Create(path)
	if err != nil {
		return Wrap(IO, "detio.WriteHldet", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := writeHldet(w, dets); err != nil {
		return err
	}
	return Wrap(IO, "detio.WriteHldet", w.Flush())
}

func writeHldet(w io.Writer, dets []Detection) error {
	if _, err := fmt.Fprintln(w, "#"+strings.Join(hldetColumns, ",")); err != nil {
		return Wrap(IO, "detio.WriteHldet", err)
	}
	for _, d := range dets {
		_, err := fmt.Fprintf(w, "%.7f,%.7f,%.7f,%.4f,%.2f,%.2f,%.4f,%.3f,%.3f,%d,%s,%s,%s,%d,%d,%d\n",
			d.MJD, d.RA, d.Dec, d.Mag, d.TrailLen, d.TrailPA, d.SigMag,
			d.SigAcross, d.SigAlong, d.Image, d.IDString, d.Band, d.Obscode,
			d.KnownObj, d.DetQual, d.OrigIndex)
		if err != nil {
			return Wrap(IO, "detio.WriteHldet", err)
		}
	}
	return nil
}
