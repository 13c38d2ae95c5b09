package status

import (
	"context"
	"log"
	"sync"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/apierrors"
	"github.com/rrhhdev/timesheet-client/internal/filter"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
	"github.com/rrhhdev/timesheet-client/internal/session"
)

// Export file formats accepted by the download endpoint.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Store is the admin-only mirror of reviewed/exported tasks. It is
// read-mostly: filtered refetches replace the list, nothing is predicted
// client-side, and exports stream back as blobs.
type Store struct {
	gateway *api.Client
	session *session.Store
	backend persist.Backend

	mu    sync.Mutex
	tasks []models.Task
	err   error
}

// New creates the status store, restoring the persisted mirror.
func New(gateway *api.Client, sess *session.Store, backend persist.Backend) *Store {
	s := &Store{gateway: gateway, session: sess, backend: backend}
	restored, err := persist.LoadJSON[[]models.Task](backend, persist.KeyStatus)
	if err != nil {
		log.Printf("status: could not restore persisted mirror: %v", err)
		return s
	}
	s.tasks = restored
	return s
}

// Tasks returns a copy of the mirrored list.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks...)
}

// Err returns the last recorded error.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Fetch replaces the mirror with the full reviewed-task collection.
func (s *Store) Fetch(ctx context.Context) error {
	return s.fetch(ctx, "/status", filter.Filter{})
}

// FetchFiltered replaces the mirror with the filtered collection.
func (s *Store) FetchFiltered(ctx context.Context, f filter.Filter) error {
	return s.fetch(ctx, "/status/filtertasks", f)
}

func (s *Store) fetch(ctx context.Context, path string, f filter.Filter) error {
	// Gate before any network call: the query never fires for a non-admin.
	if err := s.gate(); err != nil {
		return err
	}

	var fetched []models.Task
	if err := s.gateway.GetJSON(ctx, path, f.Values(), &fetched); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = fetched
	s.err = nil
	if err := persist.SaveJSON(s.backend, persist.KeyStatus, s.tasks); err != nil {
		log.Printf("status: could not persist mirror: %v", err)
	}
	return nil
}

// MarkRRHH flags the given tasks as processed by HR, then refetches.
func (s *Store) MarkRRHH(ctx context.Context, ids []models.FlexID) error {
	if err := s.gate(); err != nil {
		return err
	}
	body := map[string]any{"task_ids": ids}
	if err := s.gateway.PostJSON(ctx, "/status/rrhh", body, nil); err != nil {
		s.setErr(err)
		return err
	}
	return s.Fetch(ctx)
}

// Download exports the given tasks and returns the file blob plus its
// filename. Errors carry the server's payload text when present.
func (s *Store) Download(ctx context.Context, ids []models.FlexID, format string) ([]byte, string, error) {
	if err := s.gate(); err != nil {
		return nil, "", err
	}
	body := map[string]any{"task_ids": ids, "format": format}
	data, filename, err := s.gateway.Download(ctx, "/status/download", body)
	if err != nil {
		s.setErr(err)
		return nil, "", err
	}
	if filename == "" {
		filename = "tasks." + format
	}
	return data, filename, nil
}

func (s *Store) gate() error {
	if !s.session.IsAdmin() {
		return apierrors.ErrForbidden
	}
	return nil
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
