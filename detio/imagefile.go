package detio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/soniakeys/coord"
)

// ReadImages reads an image file: whitespace-separated rows of
// "MJD RA Dec obscode X Y Z VX VY VZ startind endind exptime". No
// header line.
func ReadImages(path string) ([]Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(IO, "detio.ReadImages", err)
	}
	defer f.Close()
	return readImages(f)
}

func readImages(r io.Reader) ([]Image, error) {
	sc := bufio.NewScanner(r)
	var out []Image
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 13 {
			return nil, Newf(PARSE, "detio.ReadImages", "expected 13 fields, got %d", len(fields))
		}
		var img Image
		vals := make([]float64, 9)
		for i := 0; i < 3; i++ {
			var err error
			vals[i], err = strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, Wrap(PARSE, "detio.ReadImages", err)
			}
		}
		img.MJD, img.RA, img.Dec = vals[0], vals[1], vals[2]
		img.Obscode = fields[3]
		for i, col := range fields[4:10] {
			f64, err := strconv.ParseFloat(col, 64)
			if err != nil {
				return nil, Wrap(PARSE, "detio.ReadImages", err)
			}
			vals[i] = f64
		}
		img.Observer = coord.Cart{X: vals[0], Y: vals[1], Z: vals[2]}
		img.ObsVel = coord.Cart{X: vals[3], Y: vals[4], Z: vals[5]}
		si, err := strconv.Atoi(fields[10])
		if err != nil {
			return nil, Wrap(PARSE, "detio.ReadImages", err)
		}
		ei, err := strconv.Atoi(fields[11])
		if err != nil {
			return nil, Wrap(PARSE, "detio.ReadImages", err)
		}
		img.StartInd, img.EndInd = si, ei
		img.ExpTime, err = strconv.ParseFloat(fields[12], 64)
		if err != nil {
			return nil, Wrap(PARSE, "detio.ReadImages", err)
		}
		out = append(out, img)
	}
	if err := sc.Err(); err != nil {
		return nil, Wrap(IO, "detio.ReadImages", err)
	}
	return out, nil
}

// WriteImages writes images to path in the column order ReadImages expects.
func WriteImages(path string, images []Image) error {
	f, err := os.Create(path)
	if err != nil {
		return Wrap(IO, "detio.WriteImages", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, img := range images {
		_, err := fmt.Fprintf(w, "%.7f %.7f %.7f %s %.6f %.6f %.6f %.6f %.6f %.6f %d %d %.3f\n",
			img.MJD, img.RA, img.Dec, img.Obscode,
			img.Observer.X, img.Observer.Y, img.Observer.Z,
			img.ObsVel.X, img.ObsVel.Y, img.ObsVel.Z,
			img.StartInd, img.EndInd, img.ExpTime)
		if err != nil {
			return Wrap(IO, "detio.WriteImages", err)
		}
	}
	return Wrap(IO, "detio.WriteImages", w.Flush())
}
