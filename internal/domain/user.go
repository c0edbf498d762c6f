package domain

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser    Role = "USER"
	RoleGuide   Role = "GUIDE"
	RoleDriver  Role = "DRIVER"
	RoleCompany Role = "COMPANY"
	RoleAdmin   Role = "ADMIN"
)

// roleLevels is the partial order used by "at least" checks.
// GUIDE and DRIVER share a level, so each satisfies AtLeast for the other.
var roleLevels = map[Role]int{
	RoleUser:    1,
	RoleGuide:   2,
	RoleDriver:  2,
	RoleCompany: 3,
	RoleAdmin:   4,
}

// ParseRole returns the role named by s or false if s is not a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleLevels[r]
	return r, ok
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the hierarchy level of r, zero for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether r sits at or above min in the hierarchy.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Level() >= min.Level()
}

func (r Role) String() string {
	return string(r)
}

// User represents a user in the system
type User struct {
	ID              string     `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	FirstName       *string    `json:"firstName" db:"first_name"`
	LastName        *string    `json:"lastName" db:"last_name"`
	Role            Role       `json:"role" db:"role"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	IsEmailVerified bool       `json:"isEmailVerified" db:"is_email_verified"`
	LastLoginAt     *time.Time `json:"lastLoginAt" db:"last_login_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}
