package domain

// Role is the capability bucket granted to a member (or promised to a
// pending invitation) within the marketing workspace. The set is closed and
// carries no privilege ordering; interpretation happens elsewhere.
type Role string

const (
	RoleEditor   Role = "editor"
	RoleReadOnly Role = "readonly"
	RoleNoAccess Role = "noaccess"
)

// Valid reports whether r is one of the closed role enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleEditor, RoleReadOnly, RoleNoAccess:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
