package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"districtevents/internal/domain"
)

const (
	// DefaultInviteTTL is how long an invitation link stays valid.
	DefaultInviteTTL = 7 * 24 * time.Hour
	minPasswordLen   = 8
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var roleNames = map[domain.Role]string{
	domain.RoleCountyAdmin: "County Administrator",
	domain.RoleChurchAdmin: "Church Administrator",
}

type invitationService struct {
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	churchRepo     domain.ChurchRepository
	tokens         domain.InviteTokenGenerator
	hasher         domain.PasswordHasher
	emailService   domain.EmailService
	inviteTTL      time.Duration
	appBaseURL     string
	logger         *slog.Logger
	now            func() time.Time
}

// InvitationConfig holds the settings for NewInvitationService.
type InvitationConfig struct {
	InviteTTL  time.Duration
	AppBaseURL string
}

// NewInvitationService creates an InvitationService. emailService may be nil.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	churchRepo domain.ChurchRepository,
	tokens domain.InviteTokenGenerator,
	hasher domain.PasswordHasher,
	emailService domain.EmailService,
	cfg InvitationConfig,
	logger *slog.Logger,
) domain.InvitationService {
	if cfg.InviteTTL <= 0 {
		cfg.InviteTTL = DefaultInviteTTL
	}
	return &invitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		churchRepo:     churchRepo,
		tokens:         tokens,
		hasher:         hasher,
		emailService:   emailService,
		inviteTTL:      cfg.InviteTTL,
		appBaseURL:     strings.TrimRight(cfg.AppBaseURL, "/"),
		logger:         logger,
		now:            time.Now,
	}
}

// Invite stores a new invitation and emails its link. A failed email is logged;
// the invitation is still returned.
func (s *invitationService) Invite(ctx context.Context, p *domain.Principal, in domain.InviteInput) (*domain.Invitation, error) {
	if !p.IsCountyAdmin() {
		return nil, domain.ErrForbidden
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	errs := domain.ValidationErrors{}
	if !emailRegexp.MatchString(in.Email) {
		errs["email"] = "invalid email format"
	}
	if !in.Role.Valid() {
		errs["role"] = "role must be county_admin or church_admin"
	}
	if in.Role == domain.RoleChurchAdmin && (in.ChurchID == nil || *in.ChurchID == "") {
		errs["church_id"] = "church is required for church admins"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if in.Role == domain.RoleCountyAdmin {
		in.ChurchID = nil
	}

	churchName := ""
	if in.ChurchID != nil {
		church, err := s.churchRepo.GetByID(ctx, *in.ChurchID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ValidationErrors{"church_id": "church does not exist"}
			}
			return nil, fmt.Errorf("get church: %w", err)
		}
		churchName = church.Name
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}
	now := s.now()
	inv := &domain.Invitation{
		Email:     in.Email,
		FullName:  in.FullName,
		Role:      in.Role,
		ChurchID:  in.ChurchID,
		TokenHash: s.tokens.Hash(token),
		InvitedBy: p.UserID,
		ExpiresAt: now.Add(s.inviteTTL),
		CreatedAt: now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	if s.emailService != nil {
		data := &domain.UserInviteEmailData{
			Email:      inv.Email,
			RoleName:   roleNames[inv.Role],
			ChurchName: churchName,
			InviteURL:  s.appBaseURL + "/accept-invite?token=" + url.QueryEscape(token),
			ExpiresIn:  formatTTL(s.inviteTTL),
		}
		if inv.FullName != nil {
			data.FullName = *inv.FullName
		}
		if err := s.emailService.SendUserInvite(ctx, data); err != nil {
			s.logger.Warn("invite email not sent", "invitation_id", inv.ID, "error", err)
		}
	}
	return inv, nil
}

func formatTTL(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	switch {
	case days == 1:
		return "1 day"
	case days > 1:
		return fmt.Sprintf("%d days", days)
	default:
		return d.String()
	}
}

// Lookup returns the invitation for a raw token if it can still be accepted.
func (s *invitationService) Lookup(ctx context.Context, token string) (*domain.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInviteInvalid
	}
	inv, err := s.invitationRepo.GetByTokenHash(ctx, s.tokens.Hash(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInviteInvalid
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if inv.AcceptedAt != nil {
		return nil, domain.ErrInviteUsed
	}
	if !s.now().Before(inv.ExpiresAt) {
		return nil, domain.ErrInviteExpired
	}
	return inv, nil
}

// Accept consumes the invitation, then creates the account (or reuses an
// existing one with the same email) and grants the invited role. Password and
// full name only apply when a new account is created. If the account or the
// grant cannot be written the claim is released so the link can be retried.
func (s *invitationService) Accept(ctx context.Context, token, password, fullName string) (*domain.User, error) {
	inv, err := s.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, inv.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		fullName = strings.TrimSpace(fullName)
		if fullName == "" && inv.FullName != nil {
			fullName = *inv.FullName
		}
		errs := domain.ValidationErrors{}
		if len(password) < minPasswordLen {
			errs["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLen)
		}
		if fullName == "" {
			errs["full_name"] = "full name is required"
		}
		if len(errs) > 0 {
			return nil, errs
		}
	}

	now := s.now()
	claimed, err := s.invitationRepo.MarkAccepted(ctx, inv.ID, now)
	if err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}
	if !claimed {
		return nil, domain.ErrInviteUsed
	}

	user, err = s.grantInvitedRole(ctx, inv, user, password, fullName, now)
	if err != nil {
		s.releaseClaim(ctx, inv.ID)
		return nil, err
	}
	s.logger.Info("invitation accepted", "invitation_id", inv.ID, "user_id", user.ID, "role", string(inv.Role))
	return user, nil
}

func (s *invitationService) grantInvitedRole(ctx context.Context, inv *domain.Invitation, user *domain.User, password, fullName string, now time.Time) (*domain.User, error) {
	if user == nil {
		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(salt, password)
		if err != nil {
			return nil, err
		}
		user = domain.NewUser(inv.Email, fullName, hash, salt, now, now)
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	if err := s.userRepo.AddRole(ctx, user.ID, domain.RoleGrant{Role: inv.Role, ChurchID: inv.ChurchID}); err != nil {
		return nil, fmt.Errorf("grant role: %w", err)
	}
	return user, nil
}

// releaseClaim runs even if the request context was cancelled.
func (s *invitationService) releaseClaim(ctx context.Context, id string) {
	if err := s.invitationRepo.ClearAccepted(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Error("invitation claim not released", "invitation_id", id, "error", err)
	}
}

func (s *invitationService) List(ctx context.Context, p *domain.Principal) ([]*domain.Invitation, error) {
	if !p.IsCountyAdmin() {
		return nil, domain.ErrForbidden
	}
	invs, err := s.invitationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}
