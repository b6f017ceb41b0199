package detio_test

import (
	"os"
	"path/filepath"
	"testing"

	"skytrack/detio"
)

func TestReadIntegratorConfig(t *testing.T) {
	content := `# sample config
8
0.1
sun.ephem
earth.ephem
2
Jupiter 1.26686534e8 jup_fwd.ephem jup_bwd.ephem
Saturn 3.7931187e7 sat_fwd.ephem sat_bwd.ephem
`
	dir := t.TempDir()
	path := filepath.Join(dir, "integrator.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := detio.ReadIntegratorConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HNum != 8 {
		t.Errorf("HNum = %d, want 8", cfg.HNum)
	}
	if cfg.TimestepDays != 0.1 {
		t.Errorf("TimestepDays = %v, want 0.1", cfg.TimestepDays)
	}
	if len(cfg.Planets) != 2 {
		t.Fatalf("got %d planets, want 2", len(cfg.Planets))
	}
	if cfg.Planets[0].Name != "Jupiter" || cfg.Planets[1].Name != "Saturn" {
		t.Errorf("got planets %+v", cfg.Planets)
	}
}
