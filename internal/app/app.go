package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/config"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/options"
	"github.com/rrhhdev/timesheet-client/internal/persist"
	"github.com/rrhhdev/timesheet-client/internal/relations"
	"github.com/rrhhdev/timesheet-client/internal/session"
	"github.com/rrhhdev/timesheet-client/internal/status"
	"github.com/rrhhdev/timesheet-client/internal/tasks"
	"github.com/rrhhdev/timesheet-client/internal/users"
)

// State aggregates every store over one gateway and one persistence backend.
// There are no package-level singletons; components receive the pieces they
// need from here.
type State struct {
	Config  *config.Config
	Backend persist.Backend
	Session *session.Store
	Gateway *api.Client

	Tasks     *tasks.Store
	Options   *options.Store
	Relations *relations.Store
	Status    *status.Store
	Users     *users.Service
}

// New wires a State from configuration: backend, session, gateway, stores,
// in that order.
func New(cfg *config.Config) (*State, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	sess := session.New(backend)
	gateway := api.New(cfg.BaseURL, cfg.HTTPTimeout, cfg.HTTPRetries, sess)

	return &State{
		Config:    cfg,
		Backend:   backend,
		Session:   sess,
		Gateway:   gateway,
		Tasks:     tasks.New(gateway, sess, backend),
		Options:   options.New(gateway, backend),
		Relations: relations.New(gateway),
		Status:    status.New(gateway, sess, backend),
		Users:     users.New(gateway, sess, backend),
	}, nil
}

func newBackend(cfg *config.Config) (persist.Backend, error) {
	switch cfg.StorageDriver {
	case "memory":
		return persist.NewMemoryBackend(), nil
	case "sqlite":
		return persist.NewGormBackend(filepath.Join(cfg.StoragePath, "rrhh.db"))
	case "file", "":
		return persist.NewFileBackend(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Login exchanges credentials for a token pair and installs the session.
func (s *State) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var creds models.Credentials
	if err := s.Gateway.PostJSON(ctx, "/login", body, &creds); err != nil {
		return err
	}

	s.Session.Login(creds)
	if !s.Session.IsAuthenticated() {
		return fmt.Errorf("login succeeded but returned no usable access token")
	}
	return nil
}

// Logout clears the session.
func (s *State) Logout() {
	s.Session.Logout()
}
