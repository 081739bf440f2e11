package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/router-for-me/InvoiceDrafter/internal/filename"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
	log "github.com/sirupsen/logrus"
)

// Document is everything a renderer needs to produce one finalized invoice.
type Document struct {
	Number      int64                  `json:"number"`
	Filename    string                 `json:"filename"`
	Date        string                 `json:"date"`
	Client      schema.InvoiceDraft    `json:"client"`
	Bank        *schema.BankProfile    `json:"bank,omitempty"`
	Address     *schema.AddressProfile `json:"address,omitempty"`
	HourlyRate  float64                `json:"hourlyRate"`
	HoursWorked float64                `json:"hoursWorked"`
	Total       float64                `json:"total"`
}

// Exporter hands a finalized document to whatever renders or stores it.
type Exporter interface {
	Export(ctx context.Context, doc Document) (string, error)
}

// ErrExportFailed wraps exporter failures; the counter is not advanced when it occurs.
var ErrExportFailed = errors.New("draft: export failed")

// JSONExporter writes each document as <filename>.json under Dir.
type JSONExporter struct {
	Dir string
}

// Export writes doc atomically and returns the written path. A name already taken by an earlier
// export gets a numeric suffix instead of replacing it.
func (e JSONExporter) Export(ctx context.Context, doc Document) (string, error) {
	if ctx != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	dir := strings.TrimSpace(e.Dir)
	if dir == "" {
		return "", errors.New("draft: export directory not configured")
	}
	if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
		return "", fmt.Errorf("draft: create export dir: %w", errMkdir)
	}

	base := safeBaseName(doc.Filename)

	payload, errMarshal := json.MarshalIndent(doc, "", "  ")
	if errMarshal != nil {
		return "", fmt.Errorf("draft: encode document: %w", errMarshal)
	}

	tmp, errTemp := os.CreateTemp(dir, ".export-*")
	if errTemp != nil {
		return "", fmt.Errorf("draft: create temp file: %w", errTemp)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, errWrite := tmp.Write(payload); errWrite != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("draft: write document: %w", errWrite)
	}
	if errSync := tmp.Sync(); errSync != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("draft: sync document: %w", errSync)
	}
	if errClose := tmp.Close(); errClose != nil {
		return "", fmt.Errorf("draft: close document: %w", errClose)
	}
	return publish(tmpName, dir, base)
}

// maxNameCollisions bounds the suffixes tried when a template expands to a name already on disk.
const maxNameCollisions = 1000

// publish links the finished temp file under the first free name: <base>.json, then
// <base>-1.json and so on. An existing export is never replaced.
func publish(tmpName, dir, base string) (string, error) {
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".json") {
		base = strings.TrimSuffix(base, ext)
	}
	for i := 0; i < maxNameCollisions; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		path := filepath.Join(dir, filename.WithExtension(name, ".json"))
		errLink := os.Link(tmpName, path)
		if errLink == nil {
			if i > 0 {
				log.WithFields(log.Fields{"wanted": base, "written": path}).Warn("draft: export name taken, wrote under a new name")
			}
			return path, nil
		}
		if !errors.Is(errLink, fs.ErrExist) {
			return "", fmt.Errorf("draft: publish document: %w", errLink)
		}
	}
	return "", fmt.Errorf("draft: publish document: no free name for %s", base)
}

// safeBaseName keeps an expanded template inside the export directory.
func safeBaseName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "invoice"
	}
	return name
}

func newDocument(number int64, name string, d schema.InvoiceDraft, bank *schema.BankProfile, addr *schema.AddressProfile, now time.Time) Document {
	return Document{
		Number:      number,
		Filename:    name,
		Date:        now.Format("2006-01-02"),
		Client:      d,
		Bank:        bank,
		Address:     addr,
		HourlyRate:  d.HourlyRate,
		HoursWorked: d.HoursWorked,
		Total:       d.Total(),
	}
}
