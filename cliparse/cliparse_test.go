// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
)

func setTestSecrets(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-jwt-secret")
	os.Setenv("SESSION_SECRET", "test-session-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("DATABASE_TYPE", "postgres")
	setTestSecrets(t)
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-jwt-secret", "s1", "-session-secret", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_DefaultsToSqlite(t *testing.T) {
	os.Clearenv()
	setTestSecrets(t)
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-d", "file:dev.db"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite default, got %s", cfg.DatabaseType)
	}
	if cfg.Port != 3418 {
		t.Errorf("expected default port 3418, got %d", cfg.Port)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-d", "file:dev.db"}); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}

	os.Setenv("JWT_SECRET", "s1")
	defer os.Clearenv()
	if _, err := ParseFlags([]string{"-d", "file:dev.db"}); err == nil {
		t.Error("expected error when SESSION_SECRET is missing")
	}
}

func TestParseFlags_MissingDatabaseURL(t *testing.T) {
	os.Clearenv()
	setTestSecrets(t)
	defer os.Clearenv()

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error when database URL is missing")
	}
}

func TestParseFlags_BadDatabaseType(t *testing.T) {
	os.Clearenv()
	setTestSecrets(t)
	defer os.Clearenv()

	if _, err := ParseFlags([]string{"-d", "x", "-t", "mongodb"}); err == nil {
		t.Error("expected error for unsupported database type")
	}
}
