package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"
)

// CreateInvitationRequest is the request body for POST /admin/invitations.
type CreateInvitationRequest struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`
	ChurchID *string `json:"church_id"`
}

// Validate implements Validator. Email format and role rules are checked by the service.
func (c CreateInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(c.Role) == "" {
		errs = append(errs, "role is required")
	}
	return errs
}

// AcceptInvitationRequest is the request body for POST /invitations/accept.
type AcceptInvitationRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Validate implements Validator.
func (a AcceptInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Token) == "" {
		errs = append(errs, "token is required")
	}
	if a.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// InvitationLookupResponse is the public view of a pending invitation.
type InvitationLookupResponse struct {
	Email    string      `json:"email"`
	FullName *string     `json:"full_name,omitempty"`
	Role     domain.Role `json:"role"`
	ChurchID *string     `json:"church_id,omitempty"`
}

// InvitationSuccessResponse is the success response envelope for POST /admin/invitations (201).
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateInvitation godoc
// @Summary Invite an administrator
// @Description Emails a one-time link that grants county_admin or church_admin. church_id is required for church_admin.
// @Tags admin-invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitation body CreateInvitationRequest true "Invitation data"
// @Success 201 {object} controllers.InvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /admin/invitations [post]
func (c *InvitationController) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Invite(r.Context(), p, domain.InviteInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     domain.Role(strings.TrimSpace(strings.ToLower(req.Role))),
		ChurchID: req.ChurchID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ListInvitations godoc
// @Summary List invitations
// @Tags admin-invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a list of invitations"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invs, err := c.Service.List(r.Context(), p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invs)
}

// LookupInvitation godoc
// @Summary Look up an invitation by token
// @Description Used by the accept page to show who the invitation is for.
// @Tags invitations
// @Produce json
// @Param token query string true "Invitation token"
// @Success 200 {object} helpers.APIResponse "data contains email, role, and church_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: gone"
// @Router /invitations/lookup [get]
func (c *InvitationController) LookupInvitation(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "token is required")
		return
	}
	inv, err := c.Service.Lookup(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InvitationLookupResponse{
		Email:    inv.Email,
		FullName: inv.FullName,
		Role:     inv.Role,
		ChurchID: inv.ChurchID,
	})
}

// AcceptInvitation godoc
// @Summary Accept an invitation
// @Description Creates the account (or reuses one with the same email) and grants the invited role. Each invitation can be used once.
// @Tags invitations
// @Accept json
// @Produce json
// @Param body body AcceptInvitationRequest true "Token and account details"
// @Success 201 {object} helpers.APIResponse "data contains the user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: gone"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /invitations/accept [post]
func (c *InvitationController) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req AcceptInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Accept(r.Context(), req.Token, req.Password, req.FullName)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}
