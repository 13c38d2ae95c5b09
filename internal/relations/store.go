package relations

import (
	"context"
	"net/url"
	"sync"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/models"
)

// Snapshot is the full relation view for one user (and optionally one
// user+company pair). The four slices come from one Sync pass and replace
// prior state together.
type Snapshot struct {
	RelatedCompanies    []models.Option `json:"relatedCompanies"`
	NotRelatedCompanies []models.Option `json:"notRelatedCompanies"`
	RelatedProjects     []models.Option `json:"relatedProjects"`
	NotRelatedProjects  []models.Option `json:"notRelatedProjects"`
}

// Store manages user↔company, user↔project and company↔project edges.
// Consistency model is fetch-then-replace: every mutation re-syncs from the
// server instead of predicting the result locally, trading latency for
// correctness under concurrent edits.
type Store struct {
	gateway *api.Client

	mu        sync.Mutex
	view      Snapshot
	userID    models.FlexID
	companyID models.FlexID
}

func New(gateway *api.Client) *Store {
	return &Store{gateway: gateway}
}

// View returns the current relation snapshot.
func (s *Store) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Sync fetches related and not-related companies for the user and, when a
// company is given, related and not-related projects for the user+company
// pair. Results are installed atomically relative to each other once all
// fetches succeed; a partial failure leaves the previous snapshot in place
// and the caller retries.
func (s *Store) Sync(ctx context.Context, userID, companyID models.FlexID) error {
	var next Snapshot

	related, err := s.fetchOptions(ctx, "/options/relatedOptions", url.Values{
		"table":   {models.TableCompanies},
		"user_id": {userID.String()},
	})
	if err != nil {
		return err
	}
	next.RelatedCompanies = related

	notRelated, err := s.fetchOptions(ctx, "/options/notRelatedOptions", url.Values{
		"table":   {models.TableCompanies},
		"user_id": {userID.String()},
	})
	if err != nil {
		return err
	}
	next.NotRelatedCompanies = notRelated

	if companyID != "" {
		projectParams := url.Values{
			"table":      {models.TableProjects},
			"user_id":    {userID.String()},
			"company_id": {companyID.String()},
		}
		if next.RelatedProjects, err = s.fetchOptions(ctx, "/options/relatedOptions", projectParams); err != nil {
			return err
		}
		if next.NotRelatedProjects, err = s.fetchOptions(ctx, "/options/notRelatedOptions", projectParams); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = next
	s.userID = userID
	s.companyID = companyID
	return nil
}

func (s *Store) fetchOptions(ctx context.Context, path string, params url.Values) ([]models.Option, error) {
	var opts []models.Option
	if err := s.gateway.GetJSON(ctx, path, params, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// AddCompanyUser links a user to a company, then re-syncs.
func (s *Store) AddCompanyUser(ctx context.Context, userID, companyID models.FlexID) error {
	return s.mutate(ctx, "POST", "/companyUser", map[string]string{
		"user_id":    userID.String(),
		"company_id": companyID.String(),
	})
}

// DeleteCompanyUser unlinks a user from a company, then re-syncs.
func (s *Store) DeleteCompanyUser(ctx context.Context, relationshipID models.FlexID) error {
	return s.mutate(ctx, "DELETE", "/companyUser", map[string]string{
		"relationship_id": relationshipID.String(),
	})
}

// AddProjectUser links a user to a project, then re-syncs.
func (s *Store) AddProjectUser(ctx context.Context, userID, projectID models.FlexID) error {
	return s.mutate(ctx, "POST", "/projectUser", map[string]string{
		"user_id":    userID.String(),
		"project_id": projectID.String(),
	})
}

// DeleteProjectUser unlinks a user from a project, then re-syncs.
func (s *Store) DeleteProjectUser(ctx context.Context, relationshipID models.FlexID) error {
	return s.mutate(ctx, "DELETE", "/projectUser", map[string]string{
		"relationship_id": relationshipID.String(),
	})
}

// AddCompanyProject links a project to a company, then re-syncs.
func (s *Store) AddCompanyProject(ctx context.Context, companyID, projectID models.FlexID) error {
	return s.mutate(ctx, "POST", "/companyProject", map[string]string{
		"company_id": companyID.String(),
		"project_id": projectID.String(),
	})
}

// DeleteCompanyProject unlinks a project from a company, then re-syncs.
func (s *Store) DeleteCompanyProject(ctx context.Context, relationshipID models.FlexID) error {
	return s.mutate(ctx, "DELETE", "/companyProject", map[string]string{
		"relationship_id": relationshipID.String(),
	})
}

// mutate runs one edge mutation and unconditionally re-syncs the snapshot
// for the last synced scope.
func (s *Store) mutate(ctx context.Context, method, path string, body map[string]string) error {
	var err error
	switch method {
	case "POST":
		err = s.gateway.PostJSON(ctx, path, body, nil)
	case "DELETE":
		err = s.gateway.DeleteJSON(ctx, path, body, nil)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	userID, companyID := s.userID, s.companyID
	s.mu.Unlock()
	return s.Sync(ctx, userID, companyID)
}
