package auth

// Principal is an authenticated caller. Token is kept so that calls made on
// the caller's behalf (sign-out) can forward it.
type Principal struct {
	Identity
	Role  Role
	Token string
}

func NewPrincipal(id Identity, role Role, token string) *Principal {
	return &Principal{Identity: id, Role: role, Token: token}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
