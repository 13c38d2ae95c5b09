package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/apierrors"
	"github.com/rrhhdev/timesheet-client/internal/filter"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/optimistic"
	"github.com/rrhhdev/timesheet-client/internal/persist"
	"github.com/rrhhdev/timesheet-client/internal/session"
)

// Phase is the lifecycle position of the current task-set fetch.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

// cache is the persisted mirror of the server's task collection. Tasks and
// Pages always describe the same response and are replaced together.
type cache struct {
	Tasks []models.Task     `json:"tasks"`
	Pages models.Pagination `json:"pages"`
}

// Store mirrors the paginated, filterable task collection. Mutations are
// optimistic where the source behavior is (create, update); deletes and
// status fetches are not.
type Store struct {
	gateway *api.Client
	session *session.Store
	backend persist.Backend

	mu    sync.Mutex
	state cache
	phase Phase
	err   error

	// generation versions the active fetch key. A response whose generation
	// is no longer current belongs to a superseded key and is discarded;
	// bumping it is also how mutations cancel in-flight list fetches before
	// an optimistic write.
	generation uint64
}

// New creates the task store, restoring the persisted mirror.
func New(gateway *api.Client, sess *session.Store, backend persist.Backend) *Store {
	s := &Store{gateway: gateway, session: sess, backend: backend}
	restored, err := persist.LoadJSON[cache](backend, persist.KeyTasks)
	if err != nil {
		log.Printf("tasks: could not restore persisted cache: %v", err)
		return s
	}
	s.state = restored
	return s
}

// Tasks returns a copy of the cached task list.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.state.Tasks...)
}

// Pages returns the pagination metadata for the cached list.
func (s *Store) Pages() models.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pages
}

// Phase returns the current fetch phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns the last recorded error.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Resolve fetches the view the filter selects: the filtered query when any
// criteria are set, the plain paginated listing otherwise.
func (s *Store) Resolve(ctx context.Context, f filter.Filter) ([]models.Task, models.Pagination, error) {
	if f.IsEmpty() {
		return s.List(ctx, f.Page)
	}
	return s.ListFiltered(ctx, f)
}

// List fetches one page of the unfiltered view. Admins see every user's
// entries; everyone else sees their own.
func (s *Store) List(ctx context.Context, page int) ([]models.Task, models.Pagination, error) {
	path := "/tasks/user/" + s.session.Identity().ID.String()
	if s.session.IsAdmin() {
		path = "/tasks"
	}
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return s.fetch(ctx, path, params)
}

// ListFiltered fetches one page of the filtered view.
func (s *Store) ListFiltered(ctx context.Context, f filter.Filter) ([]models.Task, models.Pagination, error) {
	return s.fetch(ctx, "/tasks/filtertasks", f.Values())
}

// fetch runs one keyed list query. The task slice and pagination metadata
// from a response are installed together or not at all, and only when the
// response's generation is still current.
func (s *Store) fetch(ctx context.Context, path string, params url.Values) ([]models.Task, models.Pagination, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.phase = PhaseLoading
	s.mu.Unlock()

	var page models.TaskPage
	err := s.gateway.GetJSON(ctx, path, params, &page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// A newer fetch or an optimistic write superseded this response;
		// applying it would clobber fresher state.
		return append([]models.Task(nil), s.state.Tasks...), s.state.Pages, nil
	}

	if err != nil {
		s.phase = PhaseError
		s.err = err
		return nil, models.Pagination{}, err
	}

	s.phase = PhaseSuccess
	s.err = nil
	s.state = cache{Tasks: page.Tasks, Pages: page.Pages}
	s.persistLocked()
	return append([]models.Task(nil), s.state.Tasks...), s.state.Pages, nil
}

// Get fetches a single task. A missing task is a soft empty result, not an
// error: routine "deleted elsewhere" races should not trip error surfaces.
func (s *Store) Get(ctx context.Context, id models.FlexID) (*models.Task, error) {
	var task models.Task
	err := s.gateway.GetJSON(ctx, "/tasks/task/"+id.String(), nil, &task)
	if err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// Add creates a task optimistically: in-flight list fetches are cancelled,
// a temporary entry with a locally generated id is appended immediately, and
// a failed server call rolls the cache back to the pre-insert snapshot.
func (s *Store) Add(ctx context.Context, task models.Task) error {
	if err := Validate(task); err != nil {
		return err
	}

	s.mu.Lock()
	// Cancel-before-mutate: any same-key response still in flight must not
	// land on top of the optimistic entry.
	s.generation++
	temp := task
	// uuid ids cannot collide with the server's numeric id space.
	temp.ID = models.FlexID("tmp-" + uuid.NewString())
	temp.Optimistic = true
	s.mu.Unlock()

	err := optimistic.Run(
		s.snapshot,
		func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.state.Tasks = append(s.state.Tasks, temp)
		},
		func() error {
			return s.gateway.PostJSON(ctx, "/tasks", task, nil)
		},
		s.restore,
	)
	if err != nil {
		s.recordErr(err)
		return err
	}

	// The authoritative listing supersedes the temporary entry.
	if _, _, err := s.List(ctx, s.Pages().Current); err != nil {
		log.Printf("tasks: refetch after create failed: %v", err)
	}
	return nil
}

// Update applies a partial edit optimistically. The target is matched by
// string-coerced id equality: ids arrive as numbers from some endpoints and
// strings from others.
func (s *Store) Update(ctx context.Context, id any, input UpdateInput) error {
	s.mu.Lock()
	s.generation++
	idx := s.indexLocked(id)
	s.mu.Unlock()
	if idx < 0 {
		return fmt.Errorf("task %v: %w", id, apierrors.ErrNotFound)
	}

	var payload models.Task
	err := optimistic.Run(
		s.snapshot,
		func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			input.apply(&s.state.Tasks[idx])
			payload = s.state.Tasks[idx]
		},
		func() error {
			return s.gateway.PutJSON(ctx, "/tasks/"+payload.ID.String(), payload, nil)
		},
		s.restore,
	)
	if err != nil {
		s.recordErr(err)
		return err
	}

	s.mu.Lock()
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// Delete removes a task, locally only after the server confirms.
func (s *Store) Delete(ctx context.Context, id any) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	s.mu.Unlock()
	if idx < 0 {
		return fmt.Errorf("task %v: %w", id, apierrors.ErrNotFound)
	}

	target := s.Tasks()[idx]
	if err := s.gateway.DeleteJSON(ctx, "/tasks/"+target.ID.String(), nil, nil); err != nil {
		s.recordErr(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.Tasks[:0:0]
	for _, t := range s.state.Tasks {
		if !t.ID.Equals(target.ID) {
			kept = append(kept, t)
		}
	}
	s.state.Tasks = kept
	s.persistLocked()
	return nil
}

// ToggleStatus cycles a task's status one step forward (pending → sent →
// done → pending) through the optimistic update path.
func (s *Store) ToggleStatus(ctx context.Context, id any) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	var next models.TaskStatus
	if idx >= 0 {
		next = s.state.Tasks[idx].Status.Next()
	}
	s.mu.Unlock()
	if idx < 0 {
		return fmt.Errorf("task %v: %w", id, apierrors.ErrNotFound)
	}
	return s.Update(ctx, id, UpdateInput{Status: &next})
}

func (s *Store) indexLocked(id any) int {
	for i, t := range s.state.Tasks {
		if t.ID.Equals(id) {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cache{
		Tasks: append([]models.Task(nil), s.state.Tasks...),
		Pages: s.state.Pages,
	}
}

func (s *Store) restore(before cache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = before
	s.persistLocked()
}

func (s *Store) recordErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) persistLocked() {
	if err := persist.SaveJSON(s.backend, persist.KeyTasks, s.state); err != nil {
		log.Printf("tasks: could not persist cache: %v", err)
	}
}
