package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PageSize != 10 {
		t.Fatalf("expected default page size 10 got %d", cfg.PageSize)
	}
	if cfg.SessionBackend != BackendFile {
		t.Fatalf("expected default backend %q got %q", BackendFile, cfg.SessionBackend)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected default timeout %v", cfg.HTTPTimeout)
	}
	if cfg.SessionPath == "" {
		t.Fatal("expected a session path")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LIENZO_API_URL", "http://localhost:9000/api/v1")
	t.Setenv("LIENZO_PAGE_SIZE", "20")
	t.Setenv("LIENZO_SESSION_BACKEND", BackendMemory)
	t.Setenv("LIENZO_HTTP_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:9000/api/v1" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
	if cfg.PageSize != 20 {
		t.Fatalf("expected page size 20 got %d", cfg.PageSize)
	}
	if cfg.SessionBackend != BackendMemory {
		t.Fatalf("unexpected backend %q", cfg.SessionBackend)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LIENZO_PAGE_SIZE", "not-a-number")
	t.Setenv("LIENZO_HTTP_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PageSize != 10 {
		t.Fatalf("expected fallback page size got %d", cfg.PageSize)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("expected fallback timeout got %v", cfg.HTTPTimeout)
	}
}
