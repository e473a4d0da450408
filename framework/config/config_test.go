package config_test

import (
	"testing"

	"github.com/loomkit/loom/framework/config"
)

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "loom"},
		{"App.Env", cfg.App.Env, "local"},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "console"},
		{"Inspect.Addr", cfg.Inspect.Addr, ":8090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if !cfg.App.Debug {
		t.Error("App.Debug default should be true")
	}
	if !cfg.Inspect.Enabled {
		t.Error("Inspect.Enabled default should be true")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("INSPECT_ENABLED", "false")

	cfg := config.Load("testdata/empty.env")

	if cfg.App.Name != "MyApp" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "MyApp")
	}
	if cfg.App.Env != "production" {
		t.Errorf("App.Env: got %q want %q", cfg.App.Env, "production")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q want %q", cfg.Log.Level, "debug")
	}
	if cfg.Inspect.Enabled {
		t.Error("Inspect.Enabled should be overridden to false")
	}
}

// ── Typed getters ────────────────────────────────────────────────────────────

func TestGet(t *testing.T) {
	t.Setenv("SOME_KEY", "value")

	if got := config.Get("SOME_KEY", "fallback"); got != "value" {
		t.Errorf("Get: got %q want %q", got, "value")
	}
	if got := config.Get("MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("Get fallback: got %q want %q", got, "fallback")
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("INT_KEY", "42")
	t.Setenv("BAD_INT", "abc")

	if got := config.GetInt("INT_KEY", 7); got != 42 {
		t.Errorf("GetInt: got %d want 42", got)
	}
	if got := config.GetInt("MISSING_INT", 7); got != 7 {
		t.Errorf("GetInt fallback: got %d want 7", got)
	}
	if got := config.GetInt("BAD_INT", 7); got != 7 {
		t.Errorf("GetInt malformed: got %d want 7", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("BOOL_KEY", "true")
	t.Setenv("BAD_BOOL", "yep")

	if !config.GetBool("BOOL_KEY", false) {
		t.Error("GetBool: got false want true")
	}
	if config.GetBool("MISSING_BOOL", false) {
		t.Error("GetBool fallback: got true want false")
	}
	if config.GetBool("BAD_BOOL", false) {
		t.Error("GetBool malformed: got true want false")
	}
}
