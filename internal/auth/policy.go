package auth

type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// Policy assigns roles from the configured administrator ids. Matching is by
// exact id equality.
type Policy struct {
	admins map[string]struct{}
}

func NewPolicy(adminIDs []string) *Policy {
	p := &Policy{admins: make(map[string]struct{}, len(adminIDs))}
	for _, id := range adminIDs {
		if id != "" {
			p.admins[id] = struct{}{}
		}
	}
	return p
}

func (p *Policy) RoleOf(userID string) Role {
	if p == nil || userID == "" {
		return RoleUser
	}
	if _, ok := p.admins[userID]; ok {
		return RoleAdmin
	}
	return RoleUser
}

func (p *Policy) IsAdmin(userID string) bool {
	return p.RoleOf(userID) == RoleAdmin
}
