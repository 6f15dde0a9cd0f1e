package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShamylZakariya/Surfacer-sub000/creature"
	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/liquid"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Physics.Engine != "chipmunk" {
		t.Errorf("engine = %q", cfg.Physics.Engine)
	}
	if cfg.Derived.Gravity.Y >= 0 {
		t.Errorf("gravity should point down, got %v", cfg.Derived.Gravity)
	}
	for _, name := range []string{"acid", "lava"} {
		if _, ok := cfg.Liquids[name]; !ok {
			t.Errorf("missing default liquid %q", name)
		}
	}
	if got := strings.Join(cfg.Derived.CreatureNames, ","); got != "amorphous,protoplasmic" {
		t.Errorf("creature names = %q", got)
	}
}

func TestConversions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	fc, err := cfg.Liquids["lava"].FieldConfig()
	if err != nil {
		t.Fatal(err)
	}
	if fc.Attack.Injury != liquid.InjuryFire || fc.Attack.Strength <= 0 {
		t.Errorf("lava attack = %+v", fc.Attack)
	}

	p, err := cfg.Creatures["amorphous"].Params()
	if err != nil {
		t.Fatal(err)
	}
	if p.Topology != creature.ChainMotorized {
		t.Errorf("amorphous topology = %v", p.Topology)
	}
	if p.Lifecycle.Kind != lifecycle.KindSelfTimed || p.Lifecycle.Intro != 2 || p.Lifecycle.Extro != 1 {
		t.Errorf("amorphous lifecycle = %+v", p.Lifecycle)
	}
	if p.NumParticles != 8 {
		t.Errorf("num particles = %d, want 8", p.NumParticles)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesUserFile(t *testing.T) {
	path := writeConfig(t, `
physics:
  engine: box2d
liquids:
  slime:
    clumping_force: 5
level:
  pools:
    - {liquid: slime, x: 0, y: 2, radius: 1}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Physics.Engine != "box2d" {
		t.Errorf("engine = %q, want box2d", cfg.Physics.Engine)
	}
	if cfg.Physics.DT == 0 {
		t.Error("dt from defaults should survive the merge")
	}
	slime := cfg.Liquids["slime"]
	if slime.Density != 1 || slime.Particle.Radius == 0 {
		t.Errorf("zero liquid fields should be defaulted, got %+v", slime)
	}
	if _, ok := cfg.Liquids["acid"]; !ok {
		t.Error("default liquids should survive the merge")
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"engine", "physics:\n  engine: havok\n"},
		{"topology", "creatures:\n  blob:\n    topology: cube\n"},
		{"injury", "liquids:\n  ice:\n    attack: {injury: frostbite}\n"},
		{"pool liquid", "level:\n  pools:\n    - {liquid: mercury, radius: 1}\n"},
		{"spawn kind", "level:\n  creatures:\n    - {kind: dragon}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if back.Tuning != cfg.Tuning || back.Physics != cfg.Physics {
		t.Error("written config did not reload to the same values")
	}
}
