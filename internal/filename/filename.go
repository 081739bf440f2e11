// Package filename expands user-defined output filename templates.
package filename

import (
	"strconv"
	"strings"
)

// SequencePlaceholder is replaced by the invoice sequence value.
const SequencePlaceholder = "{sequence}"

// DefaultTemplate is the template used when the user never chose one.
const DefaultTemplate = "INV_" + SequencePlaceholder

// Expand replaces every occurrence of the sequence placeholder with seq in plain decimal form.
// Templates without the placeholder are returned unchanged.
func Expand(template string, seq int64) string {
	if !strings.Contains(template, SequencePlaceholder) {
		return template
	}
	return strings.ReplaceAll(template, SequencePlaceholder, strconv.FormatInt(seq, 10))
}

// WithExtension appends ext (".pdf", ".json") unless name already ends with it.
func WithExtension(name, ext string) string {
	if ext == "" {
		return name
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}
