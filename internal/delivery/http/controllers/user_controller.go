package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"
)

// UpdateRoleRequest is the request body for PUT /admin/users/{userID}/role.
type UpdateRoleRequest struct {
	Role     string  `json:"role"`
	ChurchID *string `json:"church_id"`
}

// Validate implements Validator. Role values and church rules are checked by the service.
func (u UpdateRoleRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(u.Role) == "" {
		errs = append(errs, "role is required")
	}
	return errs
}

// UserSuccessResponse is the success response envelope for PUT /admin/users/{userID}/role (200).
type UserSuccessResponse struct {
	Data  *domain.UserWithRoles `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListUsersSuccessResponse is the success response envelope for GET /admin/users (200).
type ListUsersSuccessResponse struct {
	Data  []*domain.UserWithRoles `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// UserController handles county admin management of administrator roles.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

// NewUserController creates a UserController with the given logger and service.
func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// ListUsers godoc
// @Summary List administrators
// @Description Every account with its role grants. County admins only.
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListUsersSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/users [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	users, err := c.Service.List(r.Context(), p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// UpdateUserRole godoc
// @Summary Assign or change a user's role
// @Description Replaces the user's roles with the given one. church_id is required for church_admin.
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Param role body UpdateRoleRequest true "Role"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (own role)"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /admin/users/{userID}/role [put]
func (c *UserController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	userID, ok := helpers.PathUUID(w, r, "userID")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	grant := domain.RoleGrant{Role: domain.Role(strings.TrimSpace(strings.ToLower(req.Role))), ChurchID: req.ChurchID}
	user, err := c.Service.UpdateRole(r.Context(), p, userID, grant)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// RemoveUserRole godoc
// @Summary Remove a user's administrative role
// @Tags admin-users
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (own role)"
// @Router /admin/users/{userID}/role [delete]
func (c *UserController) RemoveUserRole(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	userID, ok := helpers.PathUUID(w, r, "userID")
	if !ok {
		return
	}
	if err := c.Service.RemoveRole(r.Context(), p, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
