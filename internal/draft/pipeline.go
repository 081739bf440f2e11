// Package draft assembles invoice drafts and settings pages from the settings store and
// finalizes invoices against the sequence counter.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/router-for-me/InvoiceDrafter/internal/filename"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
	"github.com/router-for-me/InvoiceDrafter/internal/sequence"
	"github.com/router-for-me/InvoiceDrafter/internal/settings"
	"github.com/router-for-me/InvoiceDrafter/internal/util"
	log "github.com/sirupsen/logrus"
)

// Store is the settings store surface used by the pipeline.
type Store interface {
	sequence.Store
	Get(ctx context.Context, key string, dst any) (bool, error)
}

// DraftView is what the invoice page receives on each "start new invoice".
type DraftView struct {
	State           State                  `json:"state"`
	Draft           schema.InvoiceDraft    `json:"draft"`
	Source          Source                 `json:"source"`
	Errors          schema.FieldErrors     `json:"errors,omitempty"`
	BankProfile     *schema.BankProfile    `json:"bankProfile"`
	AddressProfile  *schema.AddressProfile `json:"addressProfile"`
	CurrentSequence int64                  `json:"currentSequence"`
	NextFilename    string                 `json:"nextFilename"`
}

// ProfileView is what a settings page receives. Present is false when nothing was persisted;
// the record is then empty and carries no field errors.
type ProfileView[T any] struct {
	State   State              `json:"state"`
	Record  T                  `json:"record"`
	Present bool               `json:"present"`
	Errors  schema.FieldErrors `json:"errors,omitempty"`
}

// SavedInvoice is the outcome of finalizing a draft.
type SavedInvoice struct {
	Filename      string `json:"filename"`
	InvoiceNumber int64  `json:"invoiceNumber"`
	NewSequence   int64  `json:"newSequence"`
	ExportPath    string `json:"exportPath,omitempty"`
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithExporter hands every finalized invoice to exp before the counter advances.
func WithExporter(exp Exporter) Option {
	return func(p *Pipeline) { p.exporter = exp }
}

// WithClock overrides the clock used to date documents.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline runs the load → resolve → validate flow for each page visit and the save flows.
type Pipeline struct {
	store    Store
	counter  *sequence.Counter
	exporter Exporter
	now      func() time.Time

	// saveMu serialises SaveInvoice from reading the counter to advancing it.
	saveMu sync.Mutex
}

// NewPipeline builds a pipeline over store.
func NewPipeline(store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		counter: sequence.NewCounter(store),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// visit tracks the state of one page load.
type visit struct {
	page  string
	state State
}

func (v *visit) to(next State) {
	log.WithFields(log.Fields{"page": v.page, "from": v.state.String(), "to": next.String()}).Debug("draft: state")
	v.state = next
}

func (v *visit) fail(err error) error {
	v.to(StateFailed)
	log.WithError(err).WithField("page", v.page).Warn("draft: load failed")
	return err
}

// LoadDraft assembles the invoice page. Store and decode failures end in StateFailed with an
// error and no draft. When nothing usable was persisted the built-in default is presented as a
// blank form: StateReady with no field errors. Field errors are reported once the user submits.
func (p *Pipeline) LoadDraft(ctx context.Context) (DraftView, error) {
	v := &visit{page: "draft"}
	v.to(StateLoading)

	bank, errBank := optional[schema.BankProfile](ctx, p.store, settings.BankDataKey)
	if errBank != nil {
		return DraftView{State: StateFailed}, v.fail(errBank)
	}
	addr, errAddr := optional[schema.AddressProfile](ctx, p.store, settings.AddressSettingsKey)
	if errAddr != nil {
		return DraftView{State: StateFailed}, v.fail(errAddr)
	}
	current, errSeq := p.counter.Current(ctx)
	if errSeq != nil {
		return DraftView{State: StateFailed}, v.fail(errSeq)
	}
	lastClient, errLast := p.lastClientData(ctx)
	if errLast != nil {
		return DraftView{State: StateFailed}, v.fail(errLast)
	}

	v.to(StateResolving)
	resolved, source := ResolveInvoiceDefaults(lastClient)

	v.to(StateValidating)
	res := schema.ValidateInvoiceDraft(resolved)

	fieldErrors := res.Errors
	if source == SourceBuiltin {
		fieldErrors = nil
	}
	view := DraftView{
		Draft:           res.Value,
		Source:          source,
		Errors:          fieldErrors,
		BankProfile:     bank,
		AddressProfile:  addr,
		CurrentSequence: current,
		NextFilename:    filename.Expand(res.Value.FilenameTemplate, current),
	}
	if len(fieldErrors) == 0 {
		v.to(StateReady)
	} else {
		v.to(StateFailed)
	}
	view.State = v.state
	return view, nil
}

// lastClientData reads the persisted draft. A value that no longer decodes is treated like an
// invalid one: the resolver falls back to the built-in default.
func (p *Pipeline) lastClientData(ctx context.Context) (*schema.InvoiceDraft, error) {
	stored, err := optional[schema.InvoiceDraft](ctx, p.store, settings.LastClientDataKey)
	if errors.Is(err, settings.ErrMalformedValue) {
		log.WithError(err).Warn("draft: ignoring unreadable last client data")
		return nil, nil
	}
	return stored, err
}

// LoadBankProfile assembles the bank settings page.
func (p *Pipeline) LoadBankProfile(ctx context.Context) (ProfileView[schema.BankProfile], error) {
	return loadProfile(ctx, p.store, "bank", settings.BankDataKey, schema.ValidateBankProfile)
}

// LoadAddressProfile assembles the address settings page.
func (p *Pipeline) LoadAddressProfile(ctx context.Context) (ProfileView[schema.AddressProfile], error) {
	return loadProfile(ctx, p.store, "address", settings.AddressSettingsKey, schema.ValidateAddressProfile)
}

// LoadSystemPreferences assembles the system settings page.
func (p *Pipeline) LoadSystemPreferences(ctx context.Context) (ProfileView[schema.SystemPreferences], error) {
	return loadProfile(ctx, p.store, "system", settings.SystemSettingsKey, schema.ValidateSystemPreferences)
}

func loadProfile[T any](ctx context.Context, store Store, page, key string, validateFn func(T) schema.Result[T]) (ProfileView[T], error) {
	v := &visit{page: page}
	v.to(StateLoading)

	stored, err := optional[T](ctx, store, key)
	if err != nil {
		return ProfileView[T]{State: StateFailed}, v.fail(err)
	}

	v.to(StateResolving)
	if stored == nil {
		var zero T
		v.to(StateReady)
		return ProfileView[T]{State: v.state, Record: zero}, nil
	}

	v.to(StateValidating)
	res := validateFn(*stored)
	if res.OK() {
		v.to(StateReady)
	} else {
		v.to(StateFailed)
	}
	return ProfileView[T]{State: v.state, Record: res.Value, Present: true, Errors: res.Errors}, nil
}

// SaveInvoice finalizes d: it validates the draft, names it after the current counter value,
// hands it to the exporter, then advances the counter and stores d as the last client data in
// one save. Nothing is advanced when validation, export or the save fails. Concurrent calls are
// serialised, so each invoice gets its own number and the advance always starts from the number
// the invoice was named after.
func (p *Pipeline) SaveInvoice(ctx context.Context, d schema.InvoiceDraft) (SavedInvoice, error) {
	res := schema.ValidateInvoiceDraft(d)
	if errValidate := res.Err(schema.KindInvoiceDraft); errValidate != nil {
		return SavedInvoice{}, errValidate
	}

	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	current, err := p.counter.Current(ctx)
	if err != nil {
		return SavedInvoice{}, err
	}
	saved := SavedInvoice{
		Filename:      filename.Expand(d.FilenameTemplate, current),
		InvoiceNumber: current,
	}

	if p.exporter != nil {
		bank, errBank := optional[schema.BankProfile](ctx, p.store, settings.BankDataKey)
		if errBank != nil {
			return SavedInvoice{}, errBank
		}
		addr, errAddr := optional[schema.AddressProfile](ctx, p.store, settings.AddressSettingsKey)
		if errAddr != nil {
			return SavedInvoice{}, errAddr
		}
		doc := newDocument(current, saved.Filename, res.Value, bank, addr, p.now())
		path, errExport := p.exporter.Export(ctx, doc)
		if errExport != nil {
			return SavedInvoice{}, fmt.Errorf("%w: %w", ErrExportFailed, errExport)
		}
		saved.ExportPath = path
	}

	next, errAdvance := p.counter.AdvanceFrom(ctx, current, settings.Entry{Key: settings.LastClientDataKey, Value: res.Value})
	if errAdvance != nil {
		return SavedInvoice{}, errAdvance
	}
	saved.NewSequence = next

	log.WithFields(log.Fields{
		"filename": saved.Filename,
		"sequence": next,
		"total":    res.Value.Total(),
	}).Info("draft: invoice saved")
	return saved, nil
}

// SaveBankProfile validates and persists the bank settings page.
func (p *Pipeline) SaveBankProfile(ctx context.Context, profile schema.BankProfile) (schema.BankProfile, error) {
	saved, err := saveProfile(ctx, p.store, settings.BankDataKey, schema.KindBankProfile, profile, schema.ValidateBankProfile)
	if err == nil {
		log.WithField("account", util.MaskAccountNumber(saved.AccountNumber)).Info("draft: bank profile saved")
	}
	return saved, err
}

// SaveAddressProfile validates and persists the address settings page.
func (p *Pipeline) SaveAddressProfile(ctx context.Context, profile schema.AddressProfile) (schema.AddressProfile, error) {
	saved, err := saveProfile(ctx, p.store, settings.AddressSettingsKey, schema.KindAddressProfile, profile, schema.ValidateAddressProfile)
	if err == nil {
		log.WithField("state", saved.BeneficiaryAddressState).Info("draft: address profile saved")
	}
	return saved, err
}

// SaveSystemPreferences validates and persists the system settings page.
func (p *Pipeline) SaveSystemPreferences(ctx context.Context, prefs schema.SystemPreferences) (schema.SystemPreferences, error) {
	saved, err := saveProfile(ctx, p.store, settings.SystemSettingsKey, schema.KindSystemPreferences, prefs, schema.ValidateSystemPreferences)
	if err == nil {
		log.WithField("theme", saved.Theme).Info("draft: system preferences saved")
	}
	return saved, err
}

// CurrentSequence returns the counter value the next invoice will be named after.
func (p *Pipeline) CurrentSequence(ctx context.Context) (int64, error) {
	return p.counter.Current(ctx)
}

func saveProfile[T any](ctx context.Context, store Store, key, kind string, record T, validateFn func(T) schema.Result[T]) (T, error) {
	var zero T
	res := validateFn(record)
	if errValidate := res.Err(kind); errValidate != nil {
		return zero, errValidate
	}
	errUpdate := store.Update(ctx, func(tx settings.Tx) error {
		return tx.Set(key, res.Value)
	})
	if errUpdate != nil {
		return zero, errUpdate
	}
	return res.Value, nil
}

// optional reads key into a fresh T, returning nil when the key is absent.
func optional[T any](ctx context.Context, store Store, key string) (*T, error) {
	var out T
	found, err := store.Get(ctx, key, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}
