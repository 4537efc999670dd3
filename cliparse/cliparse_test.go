// cliparse/cliparse_test.go
package cliparse

import (
	"strings"
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.VenueSource != SourceMock {
		t.Errorf("expected mock source, got %s", cfg.VenueSource)
	}
	if cfg.DebounceWindow != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.DebounceWindow)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected 10s fetch timeout, got %v", cfg.FetchTimeout)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Errorf("expected 15m cache TTL, got %v", cfg.CacheTTL)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DEBOUNCE_WINDOW", "250ms")
	t.Setenv("CACHE_TTL", "0s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://test" {
		t.Errorf("expected env database URL, got %s", cfg.DatabaseURL)
	}
	if cfg.DebounceWindow != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.DebounceWindow)
	}
	if cfg.CacheTTL != 0 {
		t.Errorf("expected cache disabled, got %v", cfg.CacheTTL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "file:env.db")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:test.db" {
		t.Errorf("CLI should override env: expected file:test.db, got %s", cfg.DatabaseURL)
	}
}

func TestParseFlags_FoursquareNeedsCredentials(t *testing.T) {
	_, err := ParseFlags([]string{"-source", "foursquare"})
	if err == nil || !strings.Contains(err.Error(), "FOURSQUARE_CLIENT_ID") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	t.Setenv("FOURSQUARE_CLIENT_SECRET", "secret")
	cfg, err := ParseFlags([]string{"-source", "foursquare", "-fsq-id", "id"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FoursquareClientID != "id" || cfg.FoursquareClientSecret != "secret" {
		t.Errorf("unexpected credentials: %+v", cfg)
	}
}

func TestConfig_SearchCacheEnabled(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ttl    time.Duration
		want   bool
	}{
		{"mock is never cached", SourceMock, 15 * time.Minute, false},
		{"foursquare with ttl", SourceFoursquare, 15 * time.Minute, true},
		{"foursquare with zero ttl", SourceFoursquare, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{VenueSource: tt.source, CacheTTL: tt.ttl}
			if got := cfg.SearchCacheEnabled(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseFlags_MockIgnoresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatalf("mock source should not need a database: %v", err)
	}
	if cfg.SearchCacheEnabled() {
		t.Error("expected search cache disabled for the default mock source")
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"unknown source", nil, []string{"-source", "yelp"}},
		{"unknown db type", nil, []string{"-t", "mysql"}},
		{"bad port", nil, []string{"-p", "70000"}},
		{"bad port env", map[string]string{"PORT": "abc"}, nil},
		{"zero debounce", map[string]string{"DEBOUNCE_WINDOW": "0s"}, nil},
		{"bad duration", map[string]string{"FETCH_TIMEOUT": "soon"}, nil},
		{"negative cache ttl", map[string]string{"CACHE_TTL": "-1m"}, nil},
		{"zero burst", map[string]string{"UPSTREAM_BURST": "0"}, nil},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, nil},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, nil},
		{"unknown flag", nil, []string{"-verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
