package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WRITABLE_PATH", dir)
	t.Setenv("INVOICE_DRAFTER_CONFIG", "")
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLIInvoiceLifecycle(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, "", "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, `"ok": true`) {
		t.Fatalf("unexpected migrate output %s", out)
	}

	out, err = runCLI(t, "", "draft", "show")
	if err != nil {
		t.Fatalf("draft show: %v", err)
	}
	if !strings.Contains(out, `"nextFilename": "INV_0"`) || !strings.Contains(out, `"source": "builtin"`) {
		t.Fatalf("unexpected draft output %s", out)
	}

	draftFile := filepath.Join(dir, "draft.json")
	body := `{"clientName":"Acme Corp","clientAddressLine1":"500 Market Street","serviceDescription":"Consulting","hourlyRate":120,"hoursWorked":3,"filenameTemplate":"ACME-{sequence}"}`
	if errWrite := os.WriteFile(draftFile, []byte(body), 0o600); errWrite != nil {
		t.Fatalf("write draft: %v", errWrite)
	}
	out, err = runCLI(t, "", "invoice", "save", "--from", draftFile)
	if err != nil {
		t.Fatalf("invoice save: %v", err)
	}
	var saved struct {
		Filename    string `json:"filename"`
		NewSequence int64  `json:"newSequence"`
		ExportPath  string `json:"exportPath"`
	}
	if errDecode := json.Unmarshal([]byte(out), &saved); errDecode != nil {
		t.Fatalf("decode save output %q: %v", out, errDecode)
	}
	if saved.Filename != "ACME-0" || saved.NewSequence != 1 {
		t.Fatalf("unexpected save output %+v", saved)
	}
	if _, errStat := os.Stat(saved.ExportPath); errStat != nil {
		t.Fatalf("export missing: %v", errStat)
	}

	out, err = runCLI(t, "", "sequence", "show")
	if err != nil {
		t.Fatalf("sequence show: %v", err)
	}
	if !strings.Contains(out, `"current": 1`) {
		t.Fatalf("unexpected sequence output %s", out)
	}

	out, err = runCLI(t, "", "draft", "show")
	if err != nil {
		t.Fatalf("draft show: %v", err)
	}
	if !strings.Contains(out, `"source": "lastClient"`) || !strings.Contains(out, `"nextFilename": "ACME-1"`) {
		t.Fatalf("last client data not reused: %s", out)
	}
}

func TestCLISettingsFieldErrors(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, `{"theme":"sepia"}`, "settings", "system", "set", "--from", "-")
	if !errors.Is(err, errFieldErrors) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if !strings.Contains(out, `"theme"`) {
		t.Fatalf("field errors not printed: %s", out)
	}

	_, err = runCLI(t, `{"theme":"dark"}`, "settings", "system", "set", "--from", "-")
	if err != nil {
		t.Fatalf("settings system set: %v", err)
	}
	out, err = runCLI(t, "", "settings", "system", "show")
	if err != nil {
		t.Fatalf("settings system show: %v", err)
	}
	if !strings.Contains(out, `"present": true`) || !strings.Contains(out, `"theme": "dark"`) {
		t.Fatalf("unexpected system output %s", out)
	}
}

func TestCLIRequiresFrom(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "", "settings", "bank", "set"); err == nil {
		t.Fatalf("expected error without --from")
	}
}
