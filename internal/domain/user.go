package domain

import "time"

// Role names a permission, e.g. "ROLE_ADMIN".
type Role struct {
	ID        int64
	Authority string
}

// Well-known authorities.
const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleOperator = "ROLE_OPERATOR"
)

// User is an application user. PasswordHash never leaves the system
// boundary; transport marshalling must not serialize it.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Roles        []Role
}

// HasAuthority reports whether the user carries the given authority.
func (u *User) HasAuthority(authority string) bool {
	for _, r := range u.Roles {
		if r.Authority == authority {
			return true
		}
	}
	return false
}

// UserAuth is the narrow aggregate built for authentication lookups:
// the login identifier, the stored hash, and the role set, flattened
// from one row per (user, role) pair.
type UserAuth struct {
	UserID       int64
	Email        string
	PasswordHash string
	Roles        []Role
}

// Authorities returns the role names carried by the aggregate.
func (a *UserAuth) Authorities() []string {
	out := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		out[i] = r.Authority
	}
	return out
}

// PasswordRecovery is a short-lived opaque credential-reset token.
// It is valid while now < Expiration and UsedAt is unset; a successful
// reset marks it consumed. Multiple tokens may coexist for one email.
type PasswordRecovery struct {
	ID         int64
	Email      string
	Token      string
	Expiration time.Time
	UsedAt     *time.Time
}

// IsValid reports whether the token can still be redeemed at the given
// instant.
func (p *PasswordRecovery) IsValid(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.Expiration)
}
