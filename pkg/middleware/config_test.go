package middleware_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/pdf-image-server/pkg/middleware"
)

var testCORSEnv = &middleware.CORSEnv{
	Enabled:          "TEST_CORS_ENABLED",
	Origins:          "TEST_CORS_ORIGINS",
	AllowedMethods:   "TEST_CORS_METHODS",
	AllowedHeaders:   "TEST_CORS_HEADERS",
	AllowCredentials: "TEST_CORS_CREDENTIALS",
	MaxAge:           "TEST_CORS_MAX_AGE",
}

func TestCORSConfigDefaults(t *testing.T) {
	var cfg middleware.CORSConfig
	if err := cfg.Finalize(testCORSEnv); err != nil {
		t.Fatal(err)
	}

	want := middleware.CORSConfig{
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         3600,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestCORSConfigEnv(t *testing.T) {
	t.Setenv(testCORSEnv.Enabled, "true")
	t.Setenv(testCORSEnv.Origins, "https://a.example, https://b.example,")
	t.Setenv(testCORSEnv.AllowCredentials, "yes-please")
	t.Setenv(testCORSEnv.MaxAge, "60")

	var cfg middleware.CORSConfig
	if err := cfg.Finalize(testCORSEnv); err != nil {
		t.Fatal(err)
	}

	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Origins); diff != "" {
		t.Errorf("Origins mismatch (-want +got):\n%s", diff)
	}
	if cfg.AllowCredentials {
		t.Error("unparsable boolean should leave AllowCredentials false")
	}
	if cfg.MaxAge != 60 {
		t.Errorf("MaxAge = %d, want 60", cfg.MaxAge)
	}
}

func TestCORSConfigMerge(t *testing.T) {
	cfg := middleware.CORSConfig{Origins: []string{"https://a.example"}, MaxAge: 10}
	cfg.Merge(&middleware.CORSConfig{Enabled: true, AllowedHeaders: []string{"X-Request-ID"}})

	if !cfg.Enabled {
		t.Error("Enabled not merged")
	}
	if diff := cmp.Diff([]string{"https://a.example"}, cfg.Origins); diff != "" {
		t.Errorf("Origins changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"X-Request-ID"}, cfg.AllowedHeaders); diff != "" {
		t.Errorf("AllowedHeaders mismatch (-want +got):\n%s", diff)
	}
	if cfg.MaxAge != 10 {
		t.Errorf("MaxAge = %d, want 10", cfg.MaxAge)
	}
}
