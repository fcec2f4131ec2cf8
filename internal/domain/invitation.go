package domain

import (
	"context"
	"time"
)

// Invitation is a pending offer of an admin role to an email address.
// The raw token is only known to the recipient; storage keeps its hash.
// swagger:model Invitation
type Invitation struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   *string    `json:"full_name,omitempty"`
	Role       Role       `json:"role"`
	ChurchID   *string    `json:"church_id,omitempty"`
	TokenHash  string     `json:"-"`
	InvitedBy  string     `json:"invited_by"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	// MarkAccepted sets accepted_at if it is still null. It returns false when
	// the invitation was already accepted.
	MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error)
	// ClearAccepted undoes MarkAccepted so the invitation can be accepted again.
	ClearAccepted(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Invitation, error)
}

// InviteTokenGenerator creates random invite tokens and hashes them for storage.
type InviteTokenGenerator interface {
	Generate() (token string, err error)
	Hash(token string) string
}

// InviteInput is the county admin payload for a new invitation.
type InviteInput struct {
	Email    string
	FullName *string
	Role     Role
	ChurchID *string
}

// InvitationService issues and accepts invitations.
type InvitationService interface {
	Invite(ctx context.Context, p *Principal, in InviteInput) (*Invitation, error)
	Lookup(ctx context.Context, token string) (*Invitation, error)
	Accept(ctx context.Context, token, password, fullName string) (*User, error)
	List(ctx context.Context, p *Principal) ([]*Invitation, error)
}
