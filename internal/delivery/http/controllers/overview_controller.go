package controllers

import (
	"log/slog"
	"net/http"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"
)

// OverviewSuccessResponse is the success response envelope for GET /admin/overview (200).
type OverviewSuccessResponse struct {
	Data  *domain.OverviewStats `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type OverviewController struct {
	Logger  *slog.Logger
	Service domain.OverviewService
}

func NewOverviewController(logger *slog.Logger, svc domain.OverviewService) *OverviewController {
	return &OverviewController{
		Logger:  logger,
		Service: svc,
	}
}

// GetOverview godoc
// @Summary Dashboard totals
// @Description Event, church, registration and revenue totals. Church admins see their churches only. Cancelled registrations are excluded.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.OverviewSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/overview [get]
func (c *OverviewController) GetOverview(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	stats, err := c.Service.Stats(r.Context(), p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
