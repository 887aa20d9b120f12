package config

import "testing"

func TestDefaultProducesABootableConfig(t *testing.T) {
	cfg := Default()
	if cfg.HTTP.Port == 0 {
		t.Fatalf("expected a non-zero default HTTP port")
	}
	if cfg.Trading.DefaultFeeRate == "" {
		t.Fatalf("expected a non-empty default fee rate")
	}
	if cfg.Auth.JWTSecret == "" {
		t.Fatalf("expected a non-empty default JWT secret")
	}
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load("/nonexistent/path/vegaexchange.toml")
	if err != nil {
		t.Fatalf("Load with a missing file should not error: %v", err)
	}
	want := Default()
	if cfg.HTTP.Port != want.HTTP.Port || cfg.Database.DSN != want.Database.DSN {
		t.Fatalf("Load without a config file should return Default(), got %+v", cfg)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("VEGA_HTTP_PORT", "9999")
	t.Setenv("VEGA_AUTH_JWT_SECRET", "from-env")

	cfg, err := Load("/nonexistent/path/vegaexchange.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9999 {
		t.Fatalf("HTTP.Port = %d, want 9999 from VEGA_HTTP_PORT", cfg.HTTP.Port)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("Auth.JWTSecret = %q, want %q from VEGA_AUTH_JWT_SECRET", cfg.Auth.JWTSecret, "from-env")
	}
}
