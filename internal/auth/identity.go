package auth

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Identity is the authenticated caller. Handlers receive it as an argument.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanActOn reports whether the caller may modify the user with id.
func (i Identity) CanActOn(userID int64) bool { return i.IsAdmin() || i.UserID == userID }
