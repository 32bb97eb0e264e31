package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.Data.Backend != DataBackendLocalStore {
		t.Fatalf("expected default backend localstore, got %q", cfg.Data.Backend)
	}
	if cfg.Data.LocalStoreDriver != LocalStoreDriverBolt {
		t.Fatalf("expected default driver bolt, got %q", cfg.Data.LocalStoreDriver)
	}
	if got := cfg.Cart.SessionTTL; got != 72*time.Hour {
		t.Fatalf("expected cart ttl 72h, got %v", got)
	}
	if cfg.Checkout.WhatsAppNumber != "919744083698" {
		t.Fatalf("unexpected whatsapp number %q", cfg.Checkout.WhatsAppNumber)
	}
	if cfg.NeedsDB() {
		t.Fatal("localstore backend should not require a database")
	}
	if cfg.Housekeeping.Interval != 15*time.Minute || cfg.Housekeeping.ReloadBindings {
		t.Fatalf("unexpected housekeeping defaults %+v", cfg.Housekeeping)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_ProxyBackendRequiresURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDataBackend, "proxy")

	if _, err := Load(); err == nil {
		t.Fatal("expected proxy backend without url to fail")
	}

	t.Setenv(EnvProxyURL, "http://localhost:8080/api/data-proxy")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Data.Backend != DataBackendProxy {
		t.Fatalf("expected proxy backend, got %q", cfg.Data.Backend)
	}
}

func TestLoad_DirectBackendBuildsLegacyDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDataBackend, "DIRECT")

	if _, err := Load(); err == nil {
		t.Fatal("expected direct backend without db settings to fail")
	}

	t.Setenv(EnvDBHost, "db.local")
	t.Setenv(EnvDBUser, "mart")
	t.Setenv(EnvDBName, "grameen")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://mart@db.local:5432/grameen?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDataBackend, "firestore")

	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported backend to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvDataBackend, "")
	t.Setenv(EnvLocalStoreDriver, "")
	t.Setenv(EnvProxyURL, "")
	t.Setenv(EnvDBDSN, "")
	t.Setenv(EnvDBHost, "")
	t.Setenv(EnvDBUser, "")
	t.Setenv(EnvDBName, "")
	for _, key := range []string{EnvDataBackend, EnvLocalStoreDriver, EnvProxyURL, EnvDBDSN, EnvDBHost, EnvDBUser, EnvDBName} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func TestMediaConfigMaxImageBytes(t *testing.T) {
	if got := (MediaConfig{}).MaxImageBytes(); got != 5<<20 {
		t.Fatalf("expected 5MB default, got %d", got)
	}
	if got := (MediaConfig{MaxImageMB: 2}).MaxImageBytes(); got != 2<<20 {
		t.Fatalf("expected 2MB, got %d", got)
	}
}

func TestLoad_SQLiteSkipsDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDataBackend, "direct")
	t.Setenv(EnvUseSQLite, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.NeedsDB() {
		t.Fatal("direct backend should open a database")
	}
	if len(cfg.App.CORSOrigins) != 1 || cfg.App.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.App.CORSOrigins)
	}
}
