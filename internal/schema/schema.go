// Package schema holds the typed records persisted in the settings container and one explicit
// validation function per record kind.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a record field (by its JSON name) to a user-facing message.
type FieldErrors map[string]string

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for field := range fe {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Result is the outcome of validating one record: the record itself plus every field error.
type Result[T any] struct {
	Value  T
	Errors FieldErrors
}

// OK reports whether the record passed every field check.
func (r Result[T]) OK() bool {
	return len(r.Errors) == 0
}

// Err returns a *ValidationError for failed results and nil otherwise.
func (r Result[T]) Err(kind string) error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Kind: kind, Fields: r.Errors}
}

// ValidationError carries the field errors of a rejected record across API boundaries.
type ValidationError struct {
	Kind   string
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: invalid %s: %s", e.Kind, strings.Join(e.Fields.Fields(), ", "))
}

// Record kinds used in ValidationError.Kind.
const (
	KindInvoiceDraft      = "invoice draft"
	KindBankProfile       = "bank profile"
	KindAddressProfile    = "address profile"
	KindSystemPreferences = "system preferences"
)

// validate runs single-value checks; records are never validated through struct tags.
var validate = validator.New()

// check records msg under field when value fails the validator tag.
func (fe FieldErrors) check(field string, value any, tag, msg string) {
	if errVar := validate.Var(value, tag); errVar != nil {
		fe[field] = msg
	}
}

func newResult[T any](value T, errs FieldErrors) Result[T] {
	if len(errs) == 0 {
		errs = nil
	}
	return Result[T]{Value: value, Errors: errs}
}
