// Copyright 2012 Sonia Keys
// Adapted for skytrack.

package detio

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// ParallaxConst is one observatory's parallax constants: east longitude
// as a fraction of a full turn (0-1), and the cosine/sine of geocentric
// latitude scaled by parallax radius (Earth radii).
type ParallaxConst struct {
	Longitude float64 // turns, 0-1, east positive
	RhoCosPhi float64
	RhoSinPhi float64
}

// ParallaxMap maps a 3-character observatory code to its parallax
// constants. A nil value (present key, nil constant) marks a space-based
// or otherwise non-topocentric site.
type ParallaxMap map[string]*ParallaxConst

// ReadObscodes reads an observatory code file: one non-comment line per
// site, "obscode longitude_deg parallax_cos parallax_sin" whitespace
// separated.
func ReadObscodes(path string) (ParallaxMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(IO, "detio.ReadObscodes", err)
	}
	defer f.Close()

	m := make(ParallaxMap)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			continue
		}
		code := fields[0]
		if len(code) > 3 {
			code = code[:3]
		}
		if len(fields) < 4 {
			m[code] = nil
			continue
		}
		lonDeg, err1 := strconv.ParseFloat(fields[1], 64)
		cosPhi, err2 := strconv.ParseFloat(fields[2], 64)
		sinPhi, err3 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue // quietly ignore malformed lines, matching mpc.ReadOcd
		}
		if cosPhi == 0 && sinPhi == 0 {
			m[code] = nil
			continue
		}
		m[code] = &ParallaxConst{
			Longitude: lonDeg / 360,
			RhoCosPhi: cosPhi,
			RhoSinPhi: sinPhi,
		}
	}
	if err := sc.Err(); err != nil {
		return nil, Wrap(IO, "detio.ReadObscodes", err)
	}
	if len(m) == 0 {
		return nil, Newf(LOOKUP_FAIL, "detio.ReadObscodes", "no usable observatory codes in %s", path)
	}
	return m, nil
}
