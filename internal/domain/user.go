package domain

import (
	"context"
	"time"
)

// Role is an administrative role code.
type Role string

const (
	RoleCountyAdmin Role = "county_admin"
	RoleChurchAdmin Role = "church_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCountyAdmin || r == RoleChurchAdmin
}

// User is an administrator account.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, fullName, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// RoleGrant is a role held by a user. ChurchID is set only for church admins.
type RoleGrant struct {
	Role     Role    `json:"role"`
	ChurchID *string `json:"church_id,omitempty"`
}

// UserWithRoles is a user listed together with its role grants.
// swagger:model UserWithRoles
type UserWithRoles struct {
	User
	Roles []RoleGrant `json:"roles"`
}

// Principal is the authenticated caller of an admin operation.
type Principal struct {
	UserID string
	Email  string
	Grants []RoleGrant
}

// IsCountyAdmin reports whether the principal administers the whole district.
func (p *Principal) IsCountyAdmin() bool {
	if p == nil {
		return false
	}
	for _, g := range p.Grants {
		if g.Role == RoleCountyAdmin {
			return true
		}
	}
	return false
}

// CanManageChurch reports whether the principal may manage data owned by churchID.
func (p *Principal) CanManageChurch(churchID string) bool {
	if p == nil {
		return false
	}
	for _, g := range p.Grants {
		if g.Role == RoleCountyAdmin {
			return true
		}
		if g.Role == RoleChurchAdmin && g.ChurchID != nil && *g.ChurchID == churchID {
			return true
		}
	}
	return false
}

// ManagedChurchIDs returns the churches a church admin manages. It returns nil
// for county admins, meaning every church.
func (p *Principal) ManagedChurchIDs() []string {
	if p.IsCountyAdmin() {
		return nil
	}
	ids := []string{}
	for _, g := range p.Grants {
		if g.Role == RoleChurchAdmin && g.ChurchID != nil {
			ids = append(ids, *g.ChurchID)
		}
	}
	return ids
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, grants []RoleGrant, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the principal it was issued to.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	AddRole(ctx context.Context, userID string, grant RoleGrant) error
	ListRoles(ctx context.Context, userID string) ([]RoleGrant, error)
	// List returns every user with its grants, ordered by email.
	List(ctx context.Context) ([]*UserWithRoles, error)
	// UpdateRole replaces all of the user's grants with grant.
	UpdateRole(ctx context.Context, userID string, grant RoleGrant) error
	// RemoveRole deletes all of the user's grants. The account itself is kept.
	RemoveRole(ctx context.Context, userID string) error
}

// UserService manages administrator accounts and their roles. Every method requires a county admin.
type UserService interface {
	List(ctx context.Context, p *Principal) ([]*UserWithRoles, error)
	UpdateRole(ctx context.Context, p *Principal, userID string, grant RoleGrant) (*UserWithRoles, error)
	RemoveRole(ctx context.Context, p *Principal, userID string) error
}

// AuthService authenticates administrators.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
