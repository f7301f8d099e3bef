package config

import (
	"os"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL || cfg.Storage.Driver != DriverSQLite || cfg.Web.Addr != DefaultWebAddr {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Storage.Redis.Addr != DefaultRedisAddr || cfg.Storage.Redis.Prefix != DefaultPrefix {
		t.Fatalf("unexpected redis defaults %+v", cfg.Storage.Redis)
	}
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("storage:\n  driver: memory\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.API.BaseURL != DefaultBaseURL || cfg.Web.Addr != DefaultWebAddr {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"unknown driver": "storage:\n  driver: postgres\n",
		"relative url":   "api:\n  base_url: /dev\n",
		"bad scheme":     "api:\n  base_url: ftp://example.com\n",
		"redis no addr":  "storage:\n  driver: redis\n  redis:\n    addr: \"\"\n",
		"bad yaml":       "api: [\n",
	}
	for name, doc := range cases {
		if _, err := FromYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "tt config init") {
		t.Fatalf("expected not-found hint, got %v", err)
	}
	cfg, err := LoadOptional(dir)
	if err != nil || cfg != nil {
		t.Fatalf("LoadOptional = %v, %v; want nil, nil", cfg, err)
	}
}

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, false)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != Path(dir) {
		t.Fatalf("unexpected path %s", path)
	}
	if _, err := Write(dir, false); err == nil {
		t.Fatalf("second write without force should fail")
	}
	if _, err := Write(dir, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Fatalf("unexpected driver %q", cfg.Storage.Driver)
	}

	if err := os.WriteFile(Path(dir), []byte("storage:\n  driver: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOptional(dir); err == nil {
		t.Fatalf("LoadOptional should surface validation errors")
	}
}
