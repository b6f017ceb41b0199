package detio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// trackletHeader is the fixed header line written and expected for
// tracklet files.
const trackletHeader = "#Image1,RA1,Dec1,Image2,RA2,Dec2,npts,trk_ID"

// ReadTracklets reads a tracklet file (header + CSV rows matching
// trackletHeader's column order).
func ReadTracklets(path string) ([]Tracklet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(IO, "detio.ReadTracklets", err)
	}
	defer f.Close()
	return readTracklets(f)
}

func readTracklets(r io.Reader) ([]Tracklet, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, Newf(PARSE, "detio.ReadTracklets", "missing header line")
	}
	var out []Tracklet
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 8 {
			return nil, Newf(PARSE, "detio.ReadTracklets", "expected 8 fields, got %d", len(fields))
		}
		var tk Tracklet
		var err error
		if tk.Image1, err = strconv.Atoi(strings.TrimSpace(fields[0])); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		if tk.RA1, err = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		if tk.Dec1, err = strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		if tk.Image2, err = strconv.Atoi(strings.TrimSpace(fields[3])); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		if tk.RA2, err = strconv.ParseFloat(strings.TrimSpace(fields[4]), 64); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		if tk.Dec2, err = strconv.ParseFloat(strings.TrimSpace(fields[5]), 64); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		if tk.Npts, err = strconv.Atoi(strings.TrimSpace(fields[6])); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		if tk.ID, err = strconv.Atoi(strings.TrimSpace(fields[7])); err != nil {
			return nil, Wrap(PARSE, "detio.ReadTracklets", err)
		}
		out = append(out, tk)
	}
	if err := sc.Err(); err != nil {
		return nil, Wrap(IO, "detio.ReadTracklets", err)
	}
	return out, nil
}

// WriteTracklets writes tracklets to path with the trackletHeader.
func WriteTracklets(path string, trks []Tracklet) error {
	f, err := os.Create(path)
	if err != nil {
		return Wrap(IO, "detio.WriteTracklets", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, trackletHeader); err != nil {
		return Wrap(IO, "detio.WriteTracklets", err)
	}
	for _, tk := range trks {
		_, err := fmt.Fprintf(w, "%d,%.7f,%.7f,%d,%.7f,%.7f,%d,%d\n",
			tk.Image1, tk.RA1, tk.Dec1, tk.Image2, tk.RA2, tk.Dec2, tk.Npts, tk.ID)
		if err != nil {
			return Wrap(IO, "detio.WriteTracklets", err)
		}
	}
	return Wrap(IO, "detio.WriteTracklets", w.Flush())
}

// trk2detHeader is the fixed header line for tracklet-to-detection files.
const trk2detHeader = "#trk_ID,detnum"

// ReadTrk2Det reads a tracklet-to-detection file.
func ReadTrk2Det(path string) ([]TrkDet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(IO, "detio.ReadTrk2Det", err)
	}
	defer f.Close()
	return readTrk2Det(f)
}

func readTrk2Det(r io.Reader) ([]TrkDet, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, Newf(PARSE, "detio.ReadTrk2Det", "missing header line")
	}
	var out []TrkDet
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, Newf(PARSE, "detio.ReadTrk2Det", "expected 2 fields, got %d", len(fields))
		}
		trkID, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, Wrap(PARSE, "detio.ReadTrk2Det", err)
		}
		detNum, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, Wrap(PARSE, "detio.ReadTrk2Det", err)
		}
		out = append(out, TrkDet{TrkID: trkID, DetNum: detNum})
	}
	if err := sc.Err(); err != nil {
		return nil, Wrap(IO, "detio.ReadTrk2Det", err)
	}
	return out, nil
}

// WriteTrk2Det writes a tracklet-to-detection relation to path.
func WriteTrk2Det(path string, td []TrkDet) error {
	f, err := os.Create(path)
	if err != nil {
		return Wrap(IO, "detio.WriteTrk2Det", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, trk2detHeader); err != nil {
		return Wrap(IO, "detio.WriteTrk2Det", err)
	}
	for _, row := range td {
		if _, err := fmt.Fprintf(w, "%d,%d\n", row.TrkID, row.DetNum); err != nil {
			return Wrap(IO, "detio.WriteTrk2Det", err)
		}
	}
	return Wrap(IO, "detio.WriteTrk2Det", w.Flush())
}
