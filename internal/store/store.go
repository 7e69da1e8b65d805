// Package store implements the JSON-file-backed record store behind every
// entity collection: generic CRUD with filtering, pagination and field
// search, an audit trail in the reserved "auditoria" collection, and
// whole-state persistence rewritten after each mutation.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Audit actions recorded in the "auditoria" collection.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionClear  = "CLEAR"
)

// FirehoseTopic receives every change event regardless of collection.
const FirehoseTopic = "tables"

// TableTopic returns the event topic for a single collection.
func TableTopic(table string) string { return "table:" + table }

// Event is the change notification published after each successful mutation.
type Event struct {
	Acao       string `json:"acao"`
	Tabela     string `json:"tabela"`
	RegistroID int    `json:"registroId"`
	Registro   Record `json:"registro,omitempty"`
}

// Publisher receives change events. Implemented by events.Bus.
type Publisher interface {
	Publish(topic string, payload []byte)
}

// Pagination describes one page of a filtered listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is the result of ReadPaginated.
type Page struct {
	Records    []Record
	Pagination Pagination
}

// Store holds every collection in memory and mirrors the full state to a
// single JSON file after each mutation. The in-memory state is authoritative;
// the file is read once at startup. All operations are safe for concurrent
// use; mutations hold a write lock across the whole
// read-modify-persist-audit sequence.
type Store struct {
	mu        sync.RWMutex
	data      map[string][]Record
	path      string
	backupDir string
	events    Publisher

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithEvents sets the publisher receiving change events.
func WithEvents(p Publisher) Option {
	return func(s *Store) { s.events = p }
}

// WithBackupDir sets the directory Backup writes to. Defaults to the data
// file's directory.
func WithBackupDir(dir string) Option {
	return func(s *Store) { s.backupDir = dir }
}

// Open loads the store from path, or seeds it with the built-in default
// dataset (and persists it immediately) when the file is absent or unreadable.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backupDir == "" {
		s.backupDir = filepath.Dir(path)
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Loaded verbatim; the file's keys define the known collections.
		if jsonErr := json.Unmarshal(raw, &s.data); jsonErr != nil {
			log.Warn().Err(jsonErr).Str("path", path).Msg("store: data file corrupt, reseeding")
			return s.seed()
		}
		log.Info().Str("path", path).Msg("store: data loaded from file")
		return s, nil
	case os.IsNotExist(err):
		log.Info().Str("path", path).Msg("store: no data file, seeding defaults")
		return s.seed()
	default:
		log.Warn().Err(err).Str("path", path).Msg("store: data file unreadable, reseeding")
		return s.seed()
	}
}

func (s *Store) seed() (*Store, error) {
	s.data = defaultData(s.timestamp())
	if err := s.persist(); err != nil {
		return nil, fmt.Errorf("store.Open: %w", err)
	}
	return s, nil
}

// Path returns the primary data file path.
func (s *Store) Path() string { return s.path }

func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// persist rewrites the full state to the data file. Caller must hold at
// least a read lock.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPersistence, err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Store) collection(table string) ([]Record, error) {
	records, ok := s.data[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, table)
	}
	return records, nil
}

func (s *Store) nextID(table string) int {
	maxID := 0
	for _, rec := range s.data[table] {
		if id := rec.ID(); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Create appends a new record with a store-assigned id and timestamps,
// persists, and audits. Returns the created record.
func (s *Store) Create(ctx context.Context, table string, fields Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.collection(table); err != nil {
		return nil, fmt.Errorf("store.Create: %w", err)
	}

	now := s.timestamp()
	rec := fields.Clone()
	if rec == nil {
		rec = Record{}
	}
	rec["id"] = s.nextID(table)
	rec["createdAt"] = now
	rec["updatedAt"] = now

	s.data[table] = append(s.data[table], rec)
	if err := s.persist(); err != nil {
		s.data[table] = s.data[table][:len(s.data[table])-1]
		return nil, fmt.Errorf("store.Create: %w", err)
	}

	s.audit(ctx, ActionCreate, table, rec.ID(), nil, rec)
	s.publish(ActionCreate, table, rec.ID(), rec)
	return rec.Clone(), nil
}

// Read returns every record matching all filter pairs, in insertion order.
// An empty filter set returns all records.
func (s *Store) Read(table string, filters map[string]any) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.collection(table)
	if err != nil {
		return nil, fmt.Errorf("store.Read: %w", err)
	}
	return filterRecords(records, filters), nil
}

func filterRecords(records []Record, filters map[string]any) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if recordMatches(rec, filters) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func recordMatches(rec Record, filters map[string]any) bool {
	for key, want := range filters {
		if !matches(rec[key], want) {
			return false
		}
	}
	return true
}

// ReadByID returns the record with the given id.
func (s *Store) ReadByID(table string, id int) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.collection(table)
	if err != nil {
		return nil, fmt.Errorf("store.ReadByID: %w", err)
	}
	for _, rec := range records {
		if rec.ID() == id {
			return rec.Clone(), nil
		}
	}
	return nil, fmt.Errorf("store.ReadByID: %s/%d: %w", table, id, ErrNotFound)
}

// Update shallow-merges fields into the record with the given id, refreshes
// updatedAt, persists, and audits. Returns the updated record.
func (s *Store) Update(ctx context.Context, table string, id int, fields Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.collection(table)
	if err != nil {
		return nil, fmt.Errorf("store.Update: %w", err)
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return nil, fmt.Errorf("store.Update: %s/%d: %w", table, id, ErrNotFound)
	}

	before := records[idx].Clone()
	merged := records[idx].Clone()
	for k, v := range fields {
		merged[k] = cloneValue(v)
	}
	merged["updatedAt"] = s.timestamp()

	records[idx] = merged
	if err := s.persist(); err != nil {
		records[idx] = before
		return nil, fmt.Errorf("store.Update: %w", err)
	}

	s.audit(ctx, ActionUpdate, table, id, before, merged)
	s.publish(ActionUpdate, table, id, merged)
	return merged.Clone(), nil
}

// Delete removes the record with the given id, persists, and audits. Returns
// the removed record.
func (s *Store) Delete(ctx context.Context, table string, id int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.collection(table)
	if err != nil {
		return nil, fmt.Errorf("store.Delete: %w", err)
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return nil, fmt.Errorf("store.Delete: %s/%d: %w", table, id, ErrNotFound)
	}

	removed := records[idx]
	s.data[table] = append(records[:idx:idx], records[idx+1:]...)
	if err := s.persist(); err != nil {
		restored := make([]Record, 0, len(records))
		restored = append(restored, records[:idx]...)
		restored = append(restored, removed)
		restored = append(restored, records[idx+1:]...)
		s.data[table] = restored
		return nil, fmt.Errorf("store.Delete: %w", err)
	}

	s.audit(ctx, ActionDelete, table, id, removed, nil)
	s.publish(ActionDelete, table, id, nil)
	return removed.Clone(), nil
}

func indexOf(records []Record, id int) int {
	for i, rec := range records {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

// ReadPaginated filters like Read, then slices the result with a 1-based
// page of fixed size limit.
func (s *Store) ReadPaginated(table string, page, limit int, filters map[string]any) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	matched, err := s.Read(table, filters)
	if err != nil {
		return nil, fmt.Errorf("store.ReadPaginated: %w", err)
	}

	total := len(matched)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Page{
		Records: matched[start:end],
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
			HasNext:    start+limit < total,
			HasPrev:    page > 1,
		},
	}, nil
}

// Count returns the number of records matching the filters.
func (s *Store) Count(table string, filters map[string]any) (int, error) {
	matched, err := s.Read(table, filters)
	if err != nil {
		return 0, fmt.Errorf("store.Count: %w", err)
	}
	return len(matched), nil
}

// FindByField returns records whose field matches value, with the same
// matching semantics as a single-key Read filter.
func (s *Store) FindByField(table, field string, value any) ([]Record, error) {
	matched, err := s.Read(table, map[string]any{field: value})
	if err != nil {
		return nil, fmt.Errorf("store.FindByField: %w", err)
	}
	return matched, nil
}

// Tables returns the known collection names: canonical order first, then any
// extra keys the loaded data file carried, sorted.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.data))
	out := make([]string, 0, len(s.data))
	for _, name := range Collections {
		if _, ok := s.data[name]; ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	extras := make([]string, 0)
	for name := range s.data {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(out, extras...)
}

// Stats returns the record count per collection.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int, len(s.data))
	for name, records := range s.data {
		stats[name] = len(records)
	}
	return stats
}

// ClearAll empties every collection and persists. The wipe itself is audited
// with a single CLEAR entry so the destructive operation leaves a trace.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data
	cleared := make(map[string][]Record, len(snapshot))
	for name := range snapshot {
		cleared[name] = []Record{}
	}
	s.data = cleared

	actor := ActorFromContext(ctx)
	if _, ok := s.data[AuditCollection]; ok {
		s.data[AuditCollection] = append(s.data[AuditCollection], Record{
			"id":           1,
			"usuarioId":    actor.UserID,
			"acao":         ActionClear,
			"tabela":       "*",
			"registroId":   nil,
			"dadosAntigos": nil,
			"dadosNovos":   nil,
			"ip":           actor.IP,
			"userAgent":    actor.UserAgent,
			"createdAt":    s.timestamp(),
		})
	}

	if err := s.persist(); err != nil {
		s.data = snapshot
		return fmt.Errorf("store.ClearAll: %w", err)
	}

	s.publish(ActionClear, "*", 0, nil)
	return nil
}

// Backup writes the full current state to a timestamped file alongside the
// primary data file, which is left untouched. Returns the backup path.
func (s *Store) Backup() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store.Backup: %w: marshal: %v", ErrPersistence, err)
	}

	path := filepath.Join(s.backupDir, fmt.Sprintf("backup_%d.json", s.now().UnixMilli()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("store.Backup: %w: %v", ErrPersistence, err)
	}
	return path, nil
}

// audit appends one entry to the reserved audit collection and persists it.
// The data mutation is already on disk at this point; an audit persist
// failure is logged and the entry stays in memory for the next rewrite.
func (s *Store) audit(ctx context.Context, action, table string, recordID int, before, after Record) {
	if _, ok := s.data[AuditCollection]; !ok {
		return
	}

	actor := ActorFromContext(ctx)
	entry := Record{
		"id":           s.nextID(AuditCollection),
		"usuarioId":    actor.UserID,
		"acao":         action,
		"tabela":       table,
		"registroId":   recordID,
		"dadosAntigos": snapshotJSON(before),
		"dadosNovos":   snapshotJSON(after),
		"ip":           actor.IP,
		"userAgent":    actor.UserAgent,
		"createdAt":    s.timestamp(),
	}

	s.data[AuditCollection] = append(s.data[AuditCollection], entry)
	if err := s.persist(); err != nil {
		log.Warn().Err(err).Str("tabela", table).Str("acao", action).Msg("store: audit entry not yet persisted")
	}
}

func snapshotJSON(rec Record) any {
	if rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	return string(raw)
}

func (s *Store) publish(action, table string, id int, rec Record) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(Event{Acao: action, Tabela: table, RegistroID: id, Registro: rec})
	if err != nil {
		return
	}
	s.events.Publish(TableTopic(table), payload)
	s.events.Publish(FirehoseTopic, payload)
}
