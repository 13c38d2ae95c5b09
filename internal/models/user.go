package models

// Role values carried in the access token's role claim.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the decoded owner of the current session.
type Identity struct {
	ID       FlexID `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Credentials is the token pair returned by login and refresh.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User is a managed account as the admin user-management endpoints expose it.
type User struct {
	ID       FlexID `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Relation is one many-to-many edge between a user and a company or project,
// or between a company and a project. Edges are created and deleted whole,
// never mutated.
type Relation struct {
	RelationshipID FlexID `json:"relationship_id"`
	UserID         FlexID `json:"user_id,omitempty"`
	CompanyID      FlexID `json:"company_id,omitempty"`
	ProjectID      FlexID `json:"project_id,omitempty"`
}
