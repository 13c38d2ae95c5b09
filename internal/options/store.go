package options

import (
	"context"
	"log"
	"net/url"
	"sync"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
)

// partition is one table's slice of the cache. Tables are independent: an
// in-flight fetch for one never blocks operations on another.
type partition struct {
	Options []models.Option `json:"options"`
	Loading bool            `json:"-"`

	// generation guards against a slow response landing after a newer fetch
	// for the same table already finished.
	generation uint64
}

// Store caches the lookup tables (companies, projects, hour types, task
// types). Mutations are server-first: the in-memory slice only changes after
// the backend confirms.
type Store struct {
	gateway *api.Client
	backend persist.Backend

	mu     sync.Mutex
	tables map[string]*partition
	err    error
}

// New creates the options store, restoring persisted tables.
func New(gateway *api.Client, backend persist.Backend) *Store {
	s := &Store{
		gateway: gateway,
		backend: backend,
		tables:  make(map[string]*partition),
	}
	restored, err := persist.LoadJSON[map[string][]models.Option](backend, persist.KeyOptions)
	if err != nil {
		log.Printf("options: could not restore persisted tables: %v", err)
		return s
	}
	for table, opts := range restored {
		s.tables[table] = &partition{Options: opts}
	}
	return s
}

// Get returns the cached options for a table.
func (s *Store) Get(table string) []models.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.tables[table]
	if !ok {
		return nil
	}
	return append([]models.Option(nil), p.Options...)
}

// Loading reports whether a fetch for the table is in flight.
func (s *Store) Loading(table string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.tables[table]
	return ok && p.Loading
}

// Err returns the last recorded error, shared across tables.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Fetch replaces the table's options wholesale. relationshipID scopes the
// query to a user/company relation when non-empty. The loading flag always
// clears, even when a concurrent fetch for the same table finished first.
func (s *Store) Fetch(ctx context.Context, table string, relationshipID models.FlexID) error {
	s.mu.Lock()
	p := s.partitionLocked(table)
	p.Loading = true
	p.generation++
	gen := p.generation
	s.mu.Unlock()

	params := url.Values{"table": {table}}
	if relationshipID != "" {
		params.Set("relationship_id", relationshipID.String())
	}

	var fetched []models.Option
	err := s.gateway.GetJSON(ctx, "/options", params, &fetched)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == p.generation {
		p.Loading = false
	}
	if err != nil {
		s.err = err
		return err
	}
	if gen != p.generation {
		// A newer fetch already replaced this table.
		return nil
	}
	p.Options = fetched
	s.err = nil
	s.persistLocked()
	return nil
}

// Add creates an option; the cache appends only after the server confirms.
func (s *Store) Add(ctx context.Context, table string, label string) error {
	var created models.Option
	body := map[string]string{"table": table, "option": label}
	if err := s.gateway.PostJSON(ctx, "/options", body, &created); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.partitionLocked(table)
	p.Options = append(p.Options, created)
	s.err = nil
	s.persistLocked()
	return nil
}

// Update renames an option; the cache entry is replaced only after the
// server confirms.
func (s *Store) Update(ctx context.Context, table string, id models.FlexID, label string) error {
	body := map[string]string{"table": table, "id": id.String(), "option": label}
	if err := s.gateway.PutJSON(ctx, "/options", body, nil); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.partitionLocked(table)
	for i := range p.Options {
		if p.Options[i].ID.Equals(id) {
			p.Options[i].Label = label
		}
	}
	s.err = nil
	s.persistLocked()
	return nil
}

// Delete removes an option; the cache entry is filtered out only after the
// server confirms.
func (s *Store) Delete(ctx context.Context, table string, id models.FlexID) error {
	params := url.Values{"table": {table}, "id": {id.String()}}
	if err := s.gateway.DeleteJSON(ctx, "/options", nil, params); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.partitionLocked(table)
	kept := p.Options[:0:0]
	for _, o := range p.Options {
		if !o.ID.Equals(id) {
			kept = append(kept, o)
		}
	}
	p.Options = kept
	s.err = nil
	s.persistLocked()
	return nil
}

func (s *Store) partitionLocked(table string) *partition {
	p, ok := s.tables[table]
	if !ok {
		p = &partition{}
		s.tables[table] = p
	}
	return p
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) persistLocked() {
	snapshot := make(map[string][]models.Option, len(s.tables))
	for table, p := range s.tables {
		snapshot[table] = p.Options
	}
	if err := persist.SaveJSON(s.backend, persist.KeyOptions, snapshot); err != nil {
		log.Printf("options: could not persist tables: %v", err)
	}
}
