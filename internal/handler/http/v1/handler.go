package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	dispatchService service.DispatchService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(dispatchService service.DispatchService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		dispatchService: dispatchService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// statusFor сопоставляет вид ошибки сервиса с HTTP-статусом
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPersistence):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := statusFor(err)
	if service.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	switch status {
	case http.StatusInternalServerError:
		log.WithError(err).Error("Service call failed")
		c.JSON(status, gin.H{"error": "internal server error"})
	case http.StatusServiceUnavailable:
		log.WithError(err).Error("Storage unavailable")
		c.JSON(status, gin.H{"error": "storage temporarily unavailable, retry later"})
	default:
		log.WithError(err).Warn("Request rejected by service")
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// bindJSON разбирает и проверяет тело запроса; false - ответ уже отправлен
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindQuery(input); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Report a new incident
// @Description Register an emergency call. The incident starts in PENDING with a fresh code. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body ReportIncidentRequest true "Incident report"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /incidents [post]
func (h *Handler) reportIncident(c *gin.Context) {
	var input ReportIncidentRequest
	log := h.logger.WithField("method", "reportIncident")
	if !h.bindJSON(c, log, &input) {
		return
	}

	incident, err := h.dispatchService.ReportIncident(c.Request.Context(), DTOToReportRequest(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(incident))
}

// @Summary Get a list of incidents
// @Description Get a paginated list of incidents, newest first.
// @Tags Incidents
// @Produce json
// @Param status query string false "Status filter"
// @Param active query bool false "Only non-terminal incidents"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	var query ListIncidentsQuery
	log := h.logger.WithField("method", "listIncidents")
	if !h.bindQuery(c, log, &query) {
		return
	}

	incidents, err := h.dispatchService.ListIncidents(c.Request.Context(), service.IncidentFilter{
		Status:     models.IncidentStatus(models.NormalizeTag(query.Status)),
		ActiveOnly: query.Active,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID.
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.dispatchService.GetIncident(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Find candidate providers
// @Description Nearest available providers for the incident, closest first. Service type is derived from the category unless given.
// @Tags Dispatch
// @Produce json
// @Param id path string true "Incident ID"
// @Param limit query int false "Maximum number of candidates" default(10)
// @Param radius_meters query number false "Search radius in meters" default(5000)
// @Param service_type query string false "Service type override"
// @Success 200 {array} CandidateResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id}/candidates [get]
func (h *Handler) findCandidates(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "findCandidates").WithField("id", id)

	var query CandidatesQuery
	if !h.bindQuery(c, log, &query) {
		return
	}

	candidates, err := h.dispatchService.FindCandidates(c.Request.Context(), id, service.CandidateOptions{
		Limit:        query.Limit,
		RadiusMeters: query.RadiusMeters,
		ServiceType:  models.ServiceType(models.NormalizeTag(query.ServiceType)),
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, CandidatesToResponses(candidates))
}

// @Summary Assign a provider
// @Description Atomically link the incident and the provider. Requires API key.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param assignment body AssignRequest true "Provider to assign"
// @Success 200 {object} AssignmentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident or provider not found"
// @Failure 409 {object} map[string]string "Incident or provider is busy"
// @Failure 422 {object} map[string]string "Incident is closed"
// @Router /incidents/{id}/assign [post]
func (h *Handler) assignProvider(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "assignProvider").WithField("id", id)

	var input AssignRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	assignment, err := h.dispatchService.Assign(c.Request.Context(), id, input.ProviderID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AssignmentResponse{
		Incident: ModelToIncidentResponse(assignment.Incident),
		Provider: ModelToProviderResponse(assignment.Provider),
	})
}

// @Summary Advance incident status
// @Description Move the incident along its lifecycle. Closing it releases the provider. Requires API key.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param status body StatusRequest true "Target status"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Already in the requested status"
// @Failure 422 {object} map[string]string "Transition not allowed"
// @Router /incidents/{id}/status [post]
func (h *Handler) advanceStatus(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "advanceStatus").WithField("id", id)

	var input StatusRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	target := models.IncidentStatus(models.NormalizeTag(input.Status))
	incident, err := h.dispatchService.AdvanceStatus(c.Request.Context(), id, target)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Register a provider
// @Description Register a responder. New providers start OFFLINE. Requires API key.
// @Tags Providers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param provider body RegisterProviderRequest true "Provider registration"
// @Success 201 {object} ProviderResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Account already registered"
// @Router /providers [post]
func (h *Handler) registerProvider(c *gin.Context) {
	var input RegisterProviderRequest
	log := h.logger.WithField("method", "registerProvider")
	if !h.bindJSON(c, log, &input) {
		return
	}

	provider, err := h.dispatchService.RegisterProvider(c.Request.Context(), DTOToRegisterProviderRequest(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToProviderResponse(provider))
}

// @Summary Get provider by ID
// @Tags Providers
// @Produce json
// @Param id path string true "Provider ID"
// @Success 200 {object} ProviderResponse
// @Failure 400 {object} map[string]string "Invalid provider ID"
// @Failure 404 {object} map[string]string "Provider not found"
// @Router /providers/{id} [get]
func (h *Handler) getProvider(c *gin.Context) {
	id, ok := parseID(c, "provider")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getProvider").WithField("id", id)

	provider, err := h.dispatchService.GetProvider(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToProviderResponse(provider))
}

// @Summary Nearby providers
// @Description Available providers around an arbitrary point, closest first.
// @Tags Providers
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius_meters query number false "Search radius in meters" default(5000)
// @Param service_type query string false "Service type filter"
// @Param limit query int false "Maximum number of providers" default(10)
// @Success 200 {array} CandidateResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Router /providers/nearby [get]
func (h *Handler) nearbyProviders(c *gin.Context) {
	var query NearbyQuery
	log := h.logger.WithField("method", "nearbyProviders")
	if !h.bindQuery(c, log, &query) {
		return
	}

	candidates, err := h.dispatchService.NearbyProviders(c.Request.Context(), service.NearbyRequest{
		Location:     models.Location{Latitude: *query.Latitude, Longitude: *query.Longitude},
		RadiusMeters: query.RadiusMeters,
		ServiceType:  models.ServiceType(models.NormalizeTag(query.ServiceType)),
		Limit:        query.Limit,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, CandidatesToResponses(candidates))
}

// @Summary Update provider status
// @Description Provider-initiated availability change. IN_EMERGENCY is managed by dispatch only. Requires API key.
// @Tags Providers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Provider ID"
// @Param status body StatusRequest true "Target status"
// @Success 200 {object} ProviderResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Provider not found"
// @Failure 409 {object} map[string]string "Already in the requested status"
// @Failure 422 {object} map[string]string "Transition not allowed"
// @Router /providers/{id}/status [put]
func (h *Handler) updateProviderStatus(c *gin.Context) {
	id, ok := parseID(c, "provider")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateProviderStatus").WithField("id", id)

	var input StatusRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	status := models.ProviderStatus(models.NormalizeTag(input.Status))
	provider, err := h.dispatchService.UpdateProviderStatus(c.Request.Context(), id, status)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToProviderResponse(provider))
}

// @Summary Record a provider ping
// @Description Location and liveness feed. Pings older than the current position do not move it. Requires API key.
// @Tags Providers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Provider ID"
// @Param ping body PingRequest true "Ping"
// @Success 200 {object} ProviderResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Provider not found"
// @Router /providers/{id}/ping [post]
func (h *Handler) recordPing(c *gin.Context) {
	id, ok := parseID(c, "provider")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "recordPing").WithField("id", id)

	var input PingRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	req := service.PingRequest{
		ProviderID: id,
		Location:   models.Location{Latitude: *input.Latitude, Longitude: *input.Longitude},
		Status:     models.ProviderStatus(models.NormalizeTag(input.Status)),
	}
	if input.RecordedAt != nil {
		req.RecordedAt = input.RecordedAt.UTC()
	}

	provider, err := h.dispatchService.RecordPing(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToProviderResponse(provider))
}

// @Summary Verify a provider
// @Tags Providers
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Provider ID"
// @Success 200 {object} ProviderResponse
// @Failure 404 {object} map[string]string "Provider not found"
// @Router /providers/{id}/verify [post]
func (h *Handler) verifyProvider(c *gin.Context) {
	id, ok := parseID(c, "provider")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "verifyProvider").WithField("id", id)

	provider, err := h.dispatchService.VerifyProvider(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToProviderResponse(provider))
}

// @Summary Enable or disable a provider
// @Tags Providers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Provider ID"
// @Param active body ActiveRequest true "Activity flag"
// @Success 200 {object} ProviderResponse
// @Failure 404 {object} map[string]string "Provider not found"
// @Failure 409 {object} map[string]string "Provider holds an incident"
// @Router /providers/{id}/active [put]
func (h *Handler) setProviderActive(c *gin.Context) {
	id, ok := parseID(c, "provider")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "setProviderActive").WithField("id", id)

	var input ActiveRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	provider, err := h.dispatchService.SetProviderActive(c.Request.Context(), id, *input.Active)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToProviderResponse(provider))
}

// @Summary Rate a provider
// @Tags Providers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Provider ID"
// @Param rating body RatingRequest true "Score from 1 to 5"
// @Success 200 {object} ProviderResponse
// @Failure 400 {object} map[string]string "Invalid score"
// @Failure 404 {object} map[string]string "Provider not found"
// @Router /providers/{id}/rating [post]
func (h *Handler) rateProvider(c *gin.Context) {
	id, ok := parseID(c, "provider")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "rateProvider").WithField("id", id)

	var input RatingRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	provider, err := h.dispatchService.RateProvider(c.Request.Context(), id, input.Score)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToProviderResponse(provider))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
