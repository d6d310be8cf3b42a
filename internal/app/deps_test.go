package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/lienzo/lienzo-go/internal/config"
)

func TestBuildStoreBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{SessionBackend: config.BackendMemory}},
		{"file", config.Config{SessionBackend: config.BackendFile, SessionPath: filepath.Join(dir, "session.json")}},
		{"sqlite", config.Config{SessionBackend: config.BackendSQLite, SessionPath: filepath.Join(dir, "session.db")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, closer, err := buildStore(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("build store: %v", err)
			}
			if store == nil {
				t.Fatal("expected a store")
			}
			if closer != nil {
				if err := closer.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}
		})
	}
}

func TestBuildStoreRejectsUnknownBackend(t *testing.T) {
	if _, _, err := buildStore(context.Background(), config.Config{SessionBackend: "vault"}); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		APIBaseURL:     "http://localhost:0",
		SessionBackend: config.BackendMemory,
		PageSize:       10,
	}

	deps, err := buildDependencies(context.Background(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	defer deps.close()

	svc := deps.services
	if svc.Session == nil || svc.Auth == nil || svc.Publications == nil || svc.Users == nil ||
		svc.Directory == nil || svc.Comments == nil || svc.Notifications == nil ||
		svc.Reports == nil || svc.Maps == nil || svc.Admin == nil ||
		svc.Loader == nil || svc.Poller == nil {
		t.Fatalf("incomplete wiring: %+v", svc)
	}
}
