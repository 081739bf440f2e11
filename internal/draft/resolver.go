package draft

import (
	"github.com/router-for-me/InvoiceDrafter/internal/filename"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
)

// Source tells where a resolved draft came from.
type Source string

const (
	// SourceLastClient means the persisted last client draft was used as is.
	SourceLastClient Source = "lastClient"
	// SourceBuiltin means the built-in default record was used.
	SourceBuiltin Source = "builtin"
)

// DefaultServiceDescription pre-fills the service line of a fresh draft.
const DefaultServiceDescription = "Professional Services"

// DefaultInvoiceDraft returns the built-in draft used when no usable client data is persisted.
func DefaultInvoiceDraft() schema.InvoiceDraft {
	return schema.InvoiceDraft{
		ServiceDescription: DefaultServiceDescription,
		FilenameTemplate:   filename.DefaultTemplate,
	}
}

// ResolveInvoiceDefaults picks one whole record: the persisted draft when it is present and
// valid, otherwise the built-in default. Fields are never merged across the two.
func ResolveInvoiceDefaults(stored *schema.InvoiceDraft) (schema.InvoiceDraft, Source) {
	if stored != nil && schema.ValidateInvoiceDraft(*stored).OK() {
		return *stored, SourceLastClient
	}
	return DefaultInvoiceDraft(), SourceBuiltin
}
