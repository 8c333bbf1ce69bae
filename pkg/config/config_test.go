package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes yamlContent as config.yaml in a temp dir and chdirs
// there so Load() picks it up.
func writeConfig(t *testing.T, yamlContent string) {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeConfig(t, `
port: "8080"
env: "test"
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
`)

	// Clear env vars that might interfere with test
	os.Unsetenv("PGHOST")

	// Set env vars to override YAML values
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected Port=9090 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}

	// Verify YAML value used for database host (proves YAML was read)
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host=db.example.com (from yaml), got %s", cfg.Database.Host)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	if _, err := Load("v"); err == nil {
		t.Error("expected error when config.yaml is missing")
	}
}

func TestLoad_ParsesJWKSEndpoints(t *testing.T) {
	writeConfig(t, `
auth:
  jwks_endpoints: "https://id.example.com=https://id.example.com/.well-known/jwks.json"
`)

	cfg, err := Load("v")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	url, ok := cfg.Auth.JWKSEndpoints["https://id.example.com"]
	if !ok {
		t.Fatal("expected issuer in parsed JWKS endpoints")
	}
	if url != "https://id.example.com/.well-known/jwks.json" {
		t.Errorf("unexpected JWKS URL %q", url)
	}
}

func TestLoad_ParsesKafkaBrokers(t *testing.T) {
	writeConfig(t, `
kafka:
  brokers: "broker-1:9092, broker-2:9092"
  topic: "audit.test"
`)

	cfg, err := Load("v")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.Kafka.Enabled() {
		t.Fatal("expected kafka enabled with brokers configured")
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %d", len(cfg.Kafka.Brokers))
	}
	if cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("expected trimmed broker address, got %q", cfg.Kafka.Brokers[1])
	}
}

func TestLoad_KafkaDisabledByDefault(t *testing.T) {
	writeConfig(t, "env: test\n")
	os.Unsetenv("KAFKA_BROKERS")

	cfg, err := Load("v")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Kafka.Enabled() {
		t.Error("expected kafka disabled with no brokers")
	}
}

func TestConnectionString(t *testing.T) {
	dbCfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "planora",
		Password: "secret",
		Database: "planora_engine",
		SSLMode:  "disable",
	}

	got := dbCfg.ConnectionString()
	want := "host=localhost port=5432 user=planora password=secret dbname=planora_engine sslmode=disable"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
