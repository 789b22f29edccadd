package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "SERVER_ADDR", "DATABASE_URL",
		"GSHEETS_SERVICE_ACCOUNT_JSON_B64",
		"REMOVE_EMPTY_MIN", "REMOVE_MIN_SAMPLE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.ServerAddr != ":3000" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, ":3000")
	}
	if cfg.RemoveEmptyMin != 6 {
		t.Errorf("RemoveEmptyMin = %d, want 6", cfg.RemoveEmptyMin)
	}
	if cfg.RemoveMinSample != 10 {
		t.Errorf("RemoveMinSample = %d, want 10", cfg.RemoveMinSample)
	}
	if cfg.SheetsEnabled() {
		t.Error("SheetsEnabled() = true without credentials")
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false for default environment")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("REMOVE_EMPTY_MIN", "3")
	t.Setenv("REMOVE_MIN_SAMPLE", "5")
	t.Setenv("GSHEETS_SERVICE_ACCOUNT_JSON_B64", "e30=")

	cfg := Load()

	if cfg.IsDev() {
		t.Error("IsDev() = true for production")
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, ":8080")
	}
	if cfg.RemoveEmptyMin != 3 || cfg.RemoveMinSample != 5 {
		t.Errorf("thresholds = %d/%d, want 3/5", cfg.RemoveEmptyMin, cfg.RemoveMinSample)
	}
	if !cfg.SheetsEnabled() {
		t.Error("SheetsEnabled() = false with credentials set")
	}
}

func TestGetEnvInt_BadValue(t *testing.T) {
	t.Setenv("REMOVE_EMPTY_MIN", "not-a-number")

	cfg := Load()
	if cfg.RemoveEmptyMin != 6 {
		t.Errorf("RemoveEmptyMin = %d, want fallback 6", cfg.RemoveEmptyMin)
	}
}
