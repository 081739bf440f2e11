package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/router-for-me/InvoiceDrafter/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrStoreUnavailable reports that the settings container could not be opened or read.
	ErrStoreUnavailable = errors.New("settings: store unavailable")
	// ErrPersistFailed reports that staged values were not durably written.
	ErrPersistFailed = errors.New("settings: persist failed")
	// ErrMalformedValue reports a persisted value that does not decode into the requested type.
	ErrMalformedValue = errors.New("settings: malformed value")
	// ErrClosed reports use of a store after Close.
	ErrClosed = errors.New("settings: store closed")
)

// Entry is a single key/value pair staged for persistence.
type Entry struct {
	Key   string
	Value any
}

// Store is the single persisted key/value settings container.
//
// The container is read from the database in one pass on first access and kept as an in-memory
// snapshot. Set only stages values; nothing reaches the database until Save, which writes every
// staged key in one transaction. All methods are serialised on one mutex.
type Store struct {
	mu sync.Mutex

	db     *gorm.DB
	closed bool

	loaded    bool
	updatedAt time.Time
	values    map[string]json.RawMessage // durable values, as last loaded or saved
	pending   map[string]json.RawMessage // staged by Set, not yet saved
}

// Open wraps conn as a settings store. The container itself is loaded lazily.
func Open(conn *gorm.DB) (*Store, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: nil db", ErrStoreUnavailable)
	}
	return &Store{
		db:      conn,
		pending: make(map[string]json.RawMessage),
	}, nil
}

// Get decodes the value stored under key into dst. found is false when the key is absent or
// holds JSON null; absence is never an error.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.GetRaw(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if errUnmarshal := json.Unmarshal(raw, dst); errUnmarshal != nil {
		return false, fmt.Errorf("%w: key %s: %w", ErrMalformedValue, key, errUnmarshal)
	}
	return true, nil
}

// GetRaw returns a copy of the raw JSON stored under key, including staged values.
func (s *Store) GetRaw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errLoad := s.ensureLoadedLocked(ctx); errLoad != nil {
		return nil, false, errLoad
	}

	raw, ok := s.lookupLocked(key)
	if !ok || isNull(raw) {
		return nil, false, nil
	}
	return cloneRaw(raw), true, nil
}

// lookupLocked returns the staged value for key, falling back to the durable one.
func (s *Store) lookupLocked(key string) (json.RawMessage, bool) {
	if raw, ok := s.pending[key]; ok {
		return raw, true
	}
	raw, ok := s.values[key]
	return raw, ok
}

// Set stages value under key. It is visible to Get immediately and durable after Save.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	return s.SetMany(ctx, Entry{Key: key, Value: value})
}

// SetMany stages several entries at once; either all are staged or none.
func (s *Store) SetMany(ctx context.Context, entries ...Entry) error {
	encoded := make(map[string]json.RawMessage, len(entries))
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return errors.New("settings: empty key")
		}
		raw, errMarshal := json.Marshal(entry.Value)
		if errMarshal != nil {
			return fmt.Errorf("settings: encode %s: %w", key, errMarshal)
		}
		encoded[key] = raw
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errLoad := s.ensureLoadedLocked(ctx); errLoad != nil {
		return errLoad
	}
	for key, raw := range encoded {
		s.pending[key] = raw
	}
	return nil
}

// Save writes all staged values in a single transaction. On failure the staged values are kept
// so the caller can retry or Rollback; nothing is reported as durable.
func (s *Store) Save(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if len(s.pending) == 0 {
		return nil
	}

	if errCommit := s.commitLocked(ctx, s.pending); errCommit != nil {
		return errCommit
	}
	s.pending = make(map[string]json.RawMessage)
	return nil
}

// Tx is the view of the store handed to an Update callback.
type Tx interface {
	// GetRaw returns the raw JSON under key, including values set earlier in the same Tx.
	GetRaw(key string) (json.RawMessage, bool)
	// Get decodes the value under key into dst.
	Get(key string, dst any) (bool, error)
	// Set stages value under key for this Tx only.
	Set(key string, value any) error
}

// Update runs fn with the store lock held from the first read to the commit, so the values fn
// reads cannot change before its writes land. Only the keys fn sets are written, in one
// transaction; values staged by Set elsewhere are neither flushed nor dropped. When fn or the
// commit fails nothing is applied.
func (s *Store) Update(ctx context.Context, fn func(tx Tx) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errLoad := s.ensureLoadedLocked(ctx); errLoad != nil {
		return errLoad
	}
	tx := &txn{store: s, staged: make(map[string]json.RawMessage)}
	if errFn := fn(tx); errFn != nil {
		return errFn
	}
	if len(tx.staged) == 0 {
		return nil
	}
	if errCommit := s.commitLocked(ctx, tx.staged); errCommit != nil {
		return errCommit
	}
	for key := range tx.staged {
		delete(s.pending, key)
	}
	return nil
}

type txn struct {
	store  *Store
	staged map[string]json.RawMessage
}

func (t *txn) GetRaw(key string) (json.RawMessage, bool) {
	key = strings.TrimSpace(key)
	raw, ok := t.staged[key]
	if !ok {
		raw, ok = t.store.lookupLocked(key)
	}
	if !ok || isNull(raw) {
		return nil, false
	}
	return cloneRaw(raw), true
}

func (t *txn) Get(key string, dst any) (bool, error) {
	raw, found := t.GetRaw(key)
	if !found {
		return false, nil
	}
	if errUnmarshal := json.Unmarshal(raw, dst); errUnmarshal != nil {
		return false, fmt.Errorf("%w: key %s: %w", ErrMalformedValue, key, errUnmarshal)
	}
	return true, nil
}

func (t *txn) Set(key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings: empty key")
	}
	raw, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("settings: encode %s: %w", key, errMarshal)
	}
	t.staged[key] = raw
	return nil
}

// commitLocked upserts entries in one transaction and merges them into the durable snapshot.
func (s *Store) commitLocked(ctx context.Context, entries map[string]json.RawMessage) error {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	rows := make([]models.Setting, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, models.Setting{
			Key:       key,
			Value:     datatypes.JSON(cloneRaw(entries[key])),
			UpdatedAt: now,
		})
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if errTx != nil {
		log.WithError(errTx).WithField("keys", strings.Join(keys, ",")).Warn("settings: save failed")
		return fmt.Errorf("%w: %w", ErrPersistFailed, errTx)
	}

	for _, key := range keys {
		s.values[key] = entries[key]
	}
	s.updatedAt = now
	log.WithField("keys", strings.Join(keys, ",")).Debug("settings: saved")
	return nil
}

// Rollback discards every staged value that has not been saved.
func (s *Store) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]json.RawMessage)
}

// Dirty reports whether there are staged values awaiting Save.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// UpdatedAt returns the latest durable update timestamp known to the store.
func (s *Store) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Close releases the in-memory snapshot. Unsaved values are discarded, never flushed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if len(s.pending) > 0 {
		log.Warnf("settings: discarding %d unsaved value(s) on close", len(s.pending))
	}
	s.closed = true
	s.loaded = false
	s.values = nil
	s.pending = nil
	return nil
}

// ensureLoadedLocked reads the container on first access. A failed or cancelled load leaves the
// store unloaded so the next access tries again.
func (s *Store) ensureLoadedLocked(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.loaded {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	values, updatedAt, errLoad := loadRows(ctx, s.db)
	if errLoad != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, errLoad)
	}
	s.values = values
	s.updatedAt = updatedAt
	s.loaded = true
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
