package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test-none")
	t.Setenv("PORT", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("port: got %q, want 8081", cfg.Port)
	}
	if cfg.Timezone != "America/Mexico_City" {
		t.Errorf("timezone: got %q", cfg.Timezone)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
	if !cfg.MigrateOnStart {
		t.Error("expected MigrateOnStart by default")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("APP_ENV", "test-none")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty DATABASE_URL")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a , ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList: got %v", got)
	}
}
