package users

import (
	"context"
	"errors"
	"log"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/apierrors"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
	"github.com/rrhhdev/timesheet-client/internal/session"
)

// Service wraps the user-management endpoints. Listing and mutation are
// admin-only and gated before dispatch; the password flows are open to any
// session.
type Service struct {
	gateway *api.Client
	session *session.Store
	backend persist.Backend
}

func New(gateway *api.Client, sess *session.Store, backend persist.Backend) *Service {
	return &Service{gateway: gateway, session: sess, backend: backend}
}

// CreateInput holds the fields for registering a user.
type CreateInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.gateway.GetJSON(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches one account; a missing one is a soft nil result.
func (s *Service) Get(ctx context.Context, id models.FlexID) (*models.User, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	var user models.User
	err := s.gateway.GetJSON(ctx, "/users/"+id.String(), nil, &user)
	if err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create registers a new account.
func (s *Service) Create(ctx context.Context, input CreateInput) error {
	if err := s.gate(); err != nil {
		return err
	}
	return s.gateway.PostJSON(ctx, "/users", input, nil)
}

// Update edits an account.
func (s *Service) Update(ctx context.Context, id models.FlexID, user models.User) error {
	if err := s.gate(); err != nil {
		return err
	}
	return s.gateway.PutJSON(ctx, "/users/"+id.String(), user, nil)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id models.FlexID) error {
	if err := s.gate(); err != nil {
		return err
	}
	return s.gateway.DeleteJSON(ctx, "/users/"+id.String(), nil, nil)
}

// RequestPasswordReset starts the reset flow. The email is persisted so the
// follow-up form can prefill it after a restart.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := s.gateway.PostJSON(ctx, "/users/newpassword", body, nil); err != nil {
		return err
	}
	if err := persist.SaveJSON(s.backend, persist.KeyEmail, email); err != nil {
		log.Printf("users: could not persist reset email: %v", err)
	}
	return nil
}

// PendingResetEmail returns the persisted email from an earlier reset
// request, empty when none.
func (s *Service) PendingResetEmail() string {
	email, err := persist.LoadJSON[string](s.backend, persist.KeyEmail)
	if err != nil {
		log.Printf("users: could not load reset email: %v", err)
		return ""
	}
	return email
}

// ChangePassword completes the reset flow and clears the persisted email.
func (s *Service) ChangePassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "password": newPassword}
	if err := s.gateway.PostJSON(ctx, "/users/changepassword", body, nil); err != nil {
		return err
	}
	if err := s.backend.Delete(persist.KeyEmail); err != nil {
		log.Printf("users: could not clear reset email: %v", err)
	}
	return nil
}

func (s *Service) gate() error {
	if !s.session.IsAdmin() {
		return apierrors.ErrForbidden
	}
	return nil
}
