package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_APIFootballRequiresKeyWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APIFOOTBALL_ENABLED", "true")
	t.Setenv("APIFOOTBALL_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APIFOOTBALL_ENABLED=true without APIFOOTBALL_KEY")
	}
}

func TestLoad_LeagueListParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APIFOOTBALL_LEAGUES", "Liga MX:262, Premier League:39")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Leagues) != 2 {
		t.Fatalf("expected 2 leagues, got %d", len(cfg.Leagues))
	}
	if cfg.Leagues[0].Name != "Liga MX" || cfg.Leagues[0].RefID != 262 {
		t.Fatalf("unexpected first league: %+v", cfg.Leagues[0])
	}
	if cfg.Leagues[1].Name != "Premier League" || cfg.Leagues[1].RefID != 39 {
		t.Fatalf("unexpected second league: %+v", cfg.Leagues[1])
	}
}

func TestLoad_LeagueListRejectsMalformedItems(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APIFOOTBALL_LEAGUES", "Liga MX")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for league item without ref id")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.DBURL != "" {
		t.Fatalf("expected empty DBURL by default, got %q", cfg.DBURL)
	}
	if cfg.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}
	wantLeagues := []string{"Liga MX", "CONCACAF Champions Cup", "Premier League", "La Liga", "Serie A", "Bundesliga", "Ligue 1"}
	if len(cfg.Leagues) != len(wantLeagues) {
		t.Fatalf("expected %d default leagues, got %d", len(wantLeagues), len(cfg.Leagues))
	}
	for idx, want := range wantLeagues {
		if cfg.Leagues[idx].Name != want {
			t.Fatalf("expected league %d to be %q, got %q", idx, want, cfg.Leagues[idx].Name)
		}
	}
	if cfg.RefreshWorkers != 8 {
		t.Fatalf("unexpected RefreshWorkers: %d", cfg.RefreshWorkers)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}
