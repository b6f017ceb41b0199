package detio

import (
	"bufio"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// PlanetConfig is one perturbing body's GM and forward/backward
// ephemeris table paths, one line of the configuration file's
// per-planet block.
type PlanetConfig struct {
	Name               string
	GMKm3Sec2          float64
	ForwardEphemPath   string
	BackwardEphemPath  string
}

// IntegratorConfig is the whitespace-tokenized configuration file read
// by ReadIntegratorConfig: HNUM, timestep_days, Sun/Earth ephemeris
// paths, planet count, then one PlanetConfig per planet.
type IntegratorConfig struct {
	HNum              int
	TimestepDays      float64
	SunEphemPath      string
	EarthEphemPath    string
	Planets           []PlanetConfig
}

// ReadIntegratorConfig parses path as a whitespace-tokenized,
// "#"-commented-line file. A malformed planet line is logged and skipped;
// a missing or malformed HNUM, timestep, ephemeris path or planet count
// line is a PARSE error.
func ReadIntegratorConfig(path string) (IntegratorConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return IntegratorConfig{}, Wrap(IO, "detio.ReadIntegratorConfig", err)
	}
	defer f.Close()
	return readIntegratorConfig(f)
}

func readIntegratorConfig(r io.Reader) (IntegratorConfig, error) {
	var cfg IntegratorConfig
	sc := bufio.NewScanner(r)

	readLine := func(label string) ([]string, bool) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return strings.Fields(line), true
		}
		return nil, false
	}

	fields, ok := readLine("HNUM")
	if !ok || len(fields) < 1 {
		return cfg, Newf(PARSE, "detio.ReadIntegratorConfig", "missing HNUM line")
	}
	hnum, err := strconv.Atoi(fields[0])
	if err != nil {
		return cfg, Wrap(PARSE, "detio.ReadIntegratorConfig", err)
	}
	cfg.HNum = hnum

	fields, ok = readLine("timestep_days")
	if !ok || len(fields) < 1 {
		return cfg, Newf(PARSE, "detio.ReadIntegratorConfig", "missing timestep_days line")
	}
	cfg.TimestepDays, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return cfg, Wrap(PARSE, "detio.ReadIntegratorConfig", err)
	}

	fields, ok = readLine("Sun_ephemeris_path")
	if !ok || len(fields) < 1 {
		return cfg, Newf(PARSE, "detio.ReadIntegratorConfig", "missing Sun_ephemeris_path line")
	}
	cfg.SunEphemPath = fields[0]

	fields, ok = readLine("Earth_ephemeris_path")
	if !ok || len(fields) < 1 {
		return cfg, Newf(PARSE, "detio.ReadIntegratorConfig", "missing Earth_ephemeris_path line")
	}
	cfg.EarthEphemPath = fields[0]

	fields, ok = readLine("planet_count")
	if !ok || len(fields) < 1 {
		return cfg, Newf(PARSE, "detio.ReadIntegratorConfig", "missing planet_count line")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return cfg, Wrap(PARSE, "detio.ReadIntegratorConfig", err)
	}

	for i := 0; i < n; i++ {
		fields, ok = readLine("planet")
		if !ok {
			return cfg, Newf(PARSE, "detio.ReadIntegratorConfig", "expected %d planet lines, found %d", n, i)
		}
		if len(fields) < 4 {
			log.Printf("detio.ReadIntegratorConfig: skipping malformed planet line %q", strings.Join(fields, " "))
			continue
		}
		gm, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			log.Printf("detio.ReadIntegratorConfig: skipping planet line with bad GM: %v", err)
			continue
		}
		cfg.Planets = append(cfg.Planets, PlanetConfig{
			Name:              fields[0],
			GMKm3Sec2:         gm,
			ForwardEphemPath:  fields[2],
			BackwardEphemPath: fields[3],
		})
	}
	if err := sc.Err(); err != nil {
		return cfg, Wrap(IO, "detio.ReadIntegratorConfig", err)
	}
	return cfg, nil
}
