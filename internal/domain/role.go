package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IsAdmin reports whether role carries the is-admin capability.
func IsAdmin(role string) bool { return role == RoleAdmin }

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   string
}

// CanManage reports whether the actor may modify the user with userID.
func (a Actor) CanManage(userID string) bool {
	return a.UserID == userID || IsAdmin(a.Role)
}
