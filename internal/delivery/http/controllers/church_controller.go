package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"
)

// ChurchRequest is the request body for creating or replacing a church.
type ChurchRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Pastor      *string `json:"pastor"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
}

// Validate implements Validator.
func (c ChurchRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

func (c ChurchRequest) toDomain(id string) *domain.Church {
	return &domain.Church{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		Pastor:      c.Pastor,
		Phone:       c.Phone,
		Website:     c.Website,
	}
}

// ChurchSuccessResponse is the success response envelope for single-church endpoints.
type ChurchSuccessResponse struct {
	Data  *domain.Church    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListChurchesSuccessResponse is the success response envelope for GET /churches.
type ListChurchesSuccessResponse struct {
	Data  []*domain.Church  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ChurchController struct {
	Logger  *slog.Logger
	Service domain.ChurchService
}

func NewChurchController(logger *slog.Logger, svc domain.ChurchService) *ChurchController {
	return &ChurchController{
		Logger:  logger,
		Service: svc,
	}
}

// ListChurches godoc
// @Summary List churches
// @Tags churches
// @Produce json
// @Success 200 {object} controllers.ListChurchesSuccessResponse
// @Router /churches [get]
func (c *ChurchController) ListChurches(w http.ResponseWriter, r *http.Request) {
	churches, err := c.Service.List(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, churches)
}

// GetChurch godoc
// @Summary Get a church
// @Tags churches
// @Produce json
// @Param churchID path string true "Church ID (UUID)"
// @Success 200 {object} controllers.ChurchSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /churches/{churchID} [get]
func (c *ChurchController) GetChurch(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "churchID")
	if !ok {
		return
	}
	church, err := c.Service.Get(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, church)
}

// CreateChurch godoc
// @Summary Create a church
// @Tags admin-churches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param church body ChurchRequest true "Church data"
// @Success 201 {object} controllers.ChurchSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/churches [post]
func (c *ChurchController) CreateChurch(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req ChurchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	church := req.toDomain("")
	if err := c.Service.Create(r.Context(), p, church); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, church)
}

// UpdateChurch godoc
// @Summary Replace a church's details
// @Tags admin-churches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param churchID path string true "Church ID (UUID)"
// @Param church body ChurchRequest true "Church data"
// @Success 200 {object} controllers.ChurchSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/churches/{churchID} [put]
func (c *ChurchController) UpdateChurch(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id, ok := helpers.PathUUID(w, r, "churchID")
	if !ok {
		return
	}
	var req ChurchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	church := req.toDomain(id)
	if err := c.Service.Update(r.Context(), p, church); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, church)
}

// DeleteChurch godoc
// @Summary Delete a church
// @Description Deletes the church together with its events and their registrations.
// @Tags admin-churches
// @Security BearerAuth
// @Param churchID path string true "Church ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/churches/{churchID} [delete]
func (c *ChurchController) DeleteChurch(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id, ok := helpers.PathUUID(w, r, "churchID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), p, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
