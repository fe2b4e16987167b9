package user

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors one identity-provider account. ID is the provider id, so there
// is at most one record per account.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal is the authenticated caller extracted from a verified token.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
