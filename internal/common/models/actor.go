package models

// Permission names match the rows seeded into the permissions table.
const (
	PermViewQueue        = "view queue"
	PermAddQueue         = "add queue"
	PermProcessQueue     = "process queue"
	PermCancelQueue      = "cancel queue"
	PermViewConsultation = "view consultation"
)

// Actor is the authenticated user as the service layer sees it: an id plus
// the permission names carried in the JWT.
type Actor struct {
	ID          int64
	Name        string
	Role        string
	Permissions []string
}

// Can reports whether the actor holds the named permission.
func (a Actor) Can(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
