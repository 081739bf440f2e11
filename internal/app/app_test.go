package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/router-for-me/InvoiceDrafter/internal/config"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
	"github.com/router-for-me/InvoiceDrafter/internal/settings"
	log "github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WRITABLE_PATH", dir)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	content := "database:\n  dsn: " + filepath.Join(dir, "data", "settings.db") + "\n" +
		"logging:\n  level: debug\n  file: logs/app.log\n" +
		"output:\n  directory: invoices\n"
	path := filepath.Join(dir, "config.yaml")
	if errWrite := os.WriteFile(path, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return dir, path
}

func TestOpenWiresPipelineAndBridge(t *testing.T) {
	dir, path := writeConfig(t)

	a, err := Open(context.Background(), config.AppConfig{ConfigPath: path})
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if got := a.Config().Output.Directory; got != filepath.Join(dir, "invoices") {
		t.Fatalf("output directory = %q", got)
	}

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v0/draft", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"nextFilename":"INV_0"`) {
		t.Fatalf("GET /v0/draft status %d: %s", rec.Code, rec.Body.String())
	}

	saved, err := a.Pipeline().SaveInvoice(context.Background(), schema.InvoiceDraft{
		ClientName:         "Acme Corp",
		ClientAddressLine1: "500 Market Street",
		ServiceDescription: "Consulting",
		HourlyRate:         90,
		HoursWorked:        2,
		FilenameTemplate:   "INV_{sequence}",
	})
	if err != nil {
		t.Fatalf("save invoice: %v", err)
	}
	if saved.ExportPath != filepath.Join(dir, "invoices", "INV_0.json") {
		t.Fatalf("export path = %q", saved.ExportPath)
	}
	if _, errStat := os.Stat(saved.ExportPath); errStat != nil {
		t.Fatalf("exported file missing: %v", errStat)
	}
	if _, errStat := os.Stat(filepath.Join(dir, "logs", "app.log")); errStat != nil {
		t.Fatalf("log file missing: %v", errStat)
	}
}

func TestOpenSurvivesRestart(t *testing.T) {
	_, path := writeConfig(t)
	ctx := context.Background()

	first, err := Open(ctx, config.AppConfig{ConfigPath: path})
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	if _, errSave := first.Pipeline().SaveSystemPreferences(ctx, schema.SystemPreferences{Theme: schema.ThemeDark}); errSave != nil {
		t.Fatalf("save preferences: %v", errSave)
	}
	if errClose := first.Close(); errClose != nil {
		t.Fatalf("close app: %v", errClose)
	}

	second, err := Open(ctx, config.AppConfig{ConfigPath: path})
	if err != nil {
		t.Fatalf("reopen app: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	view, err := second.Pipeline().LoadSystemPreferences(ctx)
	if err != nil {
		t.Fatalf("load preferences: %v", err)
	}
	if !view.Present || view.Record.Theme != schema.ThemeDark {
		t.Fatalf("unexpected preferences %+v", view)
	}
}

func TestMigrateCreatesDatabase(t *testing.T) {
	dir, path := writeConfig(t)
	if err := Migrate(context.Background(), config.AppConfig{ConfigPath: path}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, errStat := os.Stat(filepath.Join(dir, "data", "settings.db")); errStat != nil {
		t.Fatalf("database file missing: %v", errStat)
	}
}

func TestOpenHonoursCancelledContext(t *testing.T) {
	_, path := writeConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, config.AppConfig{ConfigPath: path})
	if !errors.Is(err, settings.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation in %v", err)
	}

	if errMigrate := Migrate(ctx, config.AppConfig{ConfigPath: path}); !errors.Is(errMigrate, context.Canceled) {
		t.Fatalf("expected migrate to stop on cancellation, got %v", errMigrate)
	}
}
