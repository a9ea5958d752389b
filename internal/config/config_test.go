package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	raw := `
server:
  port: 9090
database:
  driver: mysql
  host: db.local
  port: 3306
  user: app
  password: s3cret
  name: sentinel
ai:
  provider: openai
  model: gpt-4o-mini
auth:
  keys:
    - key: alice-key
      user: alice
      role: user
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("driver = %s", cfg.Database.Driver)
	}
	if len(cfg.Auth.Keys) != 1 || cfg.Auth.Keys[0].User != "alice" {
		t.Errorf("auth keys = %+v", cfg.Auth.Keys)
	}

	wantDSN := "app:s3cret@tcp(db.local:3306)/sentinel?parseTime=true&charset=utf8mb4&loc=UTC"
	if got := cfg.MySQLDSN(); got != wantDSN {
		t.Errorf("dsn = %s", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.AI.Provider != "mock" {
		t.Errorf("default ai provider = %s", cfg.AI.Provider)
	}
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ai:\n  apiKey: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.APIKey != "from-env" {
		t.Errorf("apiKey = %s", cfg.AI.APIKey)
	}
}
