package domain

import "fitcoach-client/internal/api/apitime"

type Role string

const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// UserRecord is the server's representation of the authenticated
// identity. It is always replaced wholesale; nothing mutates a cached
// record in place.
type UserRecord struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Roles     []Role       `json:"roles"`
	CreatedAt apitime.Time `json:"createdAt"`

	// Linkage. A trainer lists managed client IDs; a client points at
	// its trainer. Not enforced locally.
	ClientIDs []string `json:"clientIds,omitempty"`
	TrainerID string   `json:"trainerId,omitempty"`
}

// HasRole reports whether the record carries the given role tag. A
// user may legitimately hold both trainer and client.
func (u UserRecord) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
