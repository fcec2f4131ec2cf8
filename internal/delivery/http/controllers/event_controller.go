package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"
)

// CreateEventRequest is the request body for POST /admin/events.
type CreateEventRequest struct {
	ChurchID                string     `json:"church_id"`
	Title                   string     `json:"title"`
	Description             *string    `json:"description"`
	Location                string     `json:"location"`
	EventDate               time.Time  `json:"event_date"`
	EndDate                 *time.Time `json:"end_date"`
	ImageURL                *string    `json:"image_url"`
	Capacity                int        `json:"capacity"`
	HasUnlimitedCapacity    bool       `json:"has_unlimited_capacity"`
	IsFree                  bool       `json:"is_free"`
	Price                   *float64   `json:"price"`
	IsPublished             bool       `json:"is_published"`
	ExternalRegistrationURL *string    `json:"external_registration_url"`
}

// Validate implements Validator. Field rules beyond presence live in the service.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.ChurchID) == "" {
		errs = append(errs, "church_id is required")
	}
	if c.EventDate.IsZero() {
		errs = append(errs, "event_date is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /admin/events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title                   *string    `json:"title"`
	Description             *string    `json:"description"`
	Location                *string    `json:"location"`
	EventDate               *time.Time `json:"event_date"`
	EndDate                 *time.Time `json:"end_date"`
	ImageURL                *string    `json:"image_url"`
	IsFree                  *bool      `json:"is_free"`
	Price                   *float64   `json:"price"`
	IsPublished             *bool      `json:"is_published"`
	ExternalRegistrationURL *string    `json:"external_registration_url"`
}

func (u UpdateEventRequest) toDomain() domain.EventUpdate {
	return domain.EventUpdate{
		Title:                   u.Title,
		Description:             u.Description,
		Location:                u.Location,
		EventDate:               u.EventDate,
		EndDate:                 u.EndDate,
		ImageURL:                u.ImageURL,
		IsFree:                  u.IsFree,
		Price:                   u.Price,
		IsPublished:             u.IsPublished,
		ExternalRegistrationURL: u.ExternalRegistrationURL,
	}
}

// UpdateCapacityRequest is the request body for PUT /admin/events/{eventID}/capacity.
type UpdateCapacityRequest struct {
	Capacity             int  `json:"capacity"`
	HasUnlimitedCapacity bool `json:"has_unlimited_capacity"`
}

// Validate implements Validator.
func (u UpdateCapacityRequest) Validate() []string {
	var errs []string
	if u.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is the data payload for paginated event lists.
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for event lists.
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List upcoming events
// @Description Published events whose date has not passed, soonest first. Includes spots_remaining for availability.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.EventPages.Parse(r)
	events, total, err := c.Service.ListUpcoming(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	meta := helpers.NewPaginationMeta(params, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Items: events, Pagination: meta})
}

// GetEvent godoc
// @Summary Get a published event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetPublic(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListManagedEvents godoc
// @Summary List events the caller manages
// @Description County admins see every event; church admins see their churches' events, drafts included.
// @Tags admin-events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /admin/events [get]
func (c *EventController) ListManagedEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.EventPages.Parse(r)
	events, total, err := c.Service.ListManaged(r.Context(), p, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	meta := helpers.NewPaginationMeta(params, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Items: events, Pagination: meta})
}

// CreateEvent godoc
// @Summary Create an event
// @Description New events start with spots_remaining equal to capacity.
// @Tags admin-events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /admin/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), p, domain.CreateEventInput{
		ChurchID:                req.ChurchID,
		Title:                   req.Title,
		Description:             req.Description,
		Location:                req.Location,
		EventDate:               req.EventDate,
		EndDate:                 req.EndDate,
		ImageURL:                req.ImageURL,
		Capacity:                req.Capacity,
		HasUnlimitedCapacity:    req.HasUnlimitedCapacity,
		IsFree:                  req.IsFree,
		Price:                   req.Price,
		IsPublished:             req.IsPublished,
		ExternalRegistrationURL: req.ExternalRegistrationURL,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetManagedEvent godoc
// @Summary Get an event (admin)
// @Tags admin-events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID} [get]
func (c *EventController) GetManagedEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.Get(r.Context(), p, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partial update of non-capacity fields. An empty external_registration_url clears the link.
// @Tags admin-events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /admin/events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), p, eventID, req.toDomain())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventCapacity godoc
// @Summary Change an event's capacity
// @Description Rejected with 409 when the new capacity is below the spots already held.
// @Tags admin-events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param capacity body UpdateCapacityRequest true "New capacity"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/events/{eventID}/capacity [put]
func (c *EventController) UpdateEventCapacity(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateCapacityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateCapacity(r.Context(), p, eventID, req.Capacity, req.HasUnlimitedCapacity)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its registrations.
// @Tags admin-events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), p, eventID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
