package domain

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// Valid reports whether the role is one of the closed set. Anything else is
// treated as deny by the access layer.
func (r Role) Valid() bool {
	return r == RoleTrainer || r == RoleClient
}

// Actor is the authenticated caller of an access-control operation. It is
// built by the API layer from verified token claims and passed down
// explicitly; the access layer never reads identity from ambient state.
type Actor struct {
	MemberID string `json:"memberId"`
	Role     Role   `json:"role"`
}

func (a Actor) IsTrainer() bool {
	return a.Role == RoleTrainer
}

func (a Actor) IsClient() bool {
	return a.Role == RoleClient
}
