package auth

// Role tags supplied by the identity layer. The core trusts these as given
// and receives them explicitly with every operation; nothing reads role
// state ambiently.
const (
	RoleStudent = "student"
	RoleWarden  = "warden"
	RoleGuard   = "guard"
)

// Identity is the authenticated caller of an operation.
type Identity struct {
	UserID   string
	Username string
	Role     string
}
