package api

import (
	"errors"
	"net/http"
	"time"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dateLayout is the calendar date format used by session endpoints.
const dateLayout = "2006-01-02"

// SessionHandler exposes calendar session management for coaches and the
// composed schedule read for both roles.
type SessionHandler struct {
	sessionService  service.SessionService
	scheduleService service.ScheduleService
	rosterService   service.RosterService
}

func NewSessionHandler(
	sessionService service.SessionService,
	scheduleService service.ScheduleService,
	rosterService service.RosterService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		scheduleService: scheduleService,
		rosterService:   rosterService,
	}
}

// --- DTOs for Session Management ---

type ScheduleStrengthRequest struct {
	Date      string `json:"date" binding:"required"` // "2006-01-02"
	ProgramID string `json:"programId" binding:"required"`
	DayID     string `json:"dayId" binding:"required"`
}

type ScheduleCardioRequest struct {
	Date        string               `json:"date" binding:"required"` // "2006-01-02"
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description,omitempty"`
	Blocks      []domain.CardioBlock `json:"blocks" binding:"required,min=1"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"` // "2006-01-02"
}

// --- Handler Methods ---

// ScheduleStrength godoc
// @Summary Schedule a strength session
// @Description Puts one program day on the client's calendar. The day must exist in the program at scheduling time.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param session body ScheduleStrengthRequest true "Date and program day reference"
// @Success 201 {object} domain.Session
// @Failure 404 {object} gin.H "Program or day not found"
// @Router /coach/clients/{clientId}/sessions/strength [post]
func (h *SessionHandler) ScheduleStrength(c *gin.Context) {
	var req ScheduleStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid programId format.")
		return
	}
	dayID, err := primitive.ObjectIDFromHex(req.DayID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid dayId format.")
		return
	}

	session, err := h.sessionService.ScheduleStrength(c.Request.Context(), coachID, clientID, date, programID, dayID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ScheduleCardio godoc
// @Summary Schedule a cardio session
// @Description Creates a self-contained cardio session from typed blocks.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param session body ScheduleCardioRequest true "Date, name and blocks"
// @Success 201 {object} domain.Session
// @Failure 400 {object} gin.H "Block validation failed"
// @Router /coach/clients/{clientId}/sessions/cardio [post]
func (h *SessionHandler) ScheduleCardio(c *gin.Context) {
	var req ScheduleCardioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	session, err := h.sessionService.ScheduleCardio(c.Request.Context(), coachID, clientID, date, service.CardioSessionInput{
		Name:        req.Name,
		Description: req.Description,
		Blocks:      req.Blocks,
	})
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// UpdateCardio godoc
// @Summary Update a cardio session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param session body ScheduleCardioRequest true "Date, name and blocks"
// @Success 200 {object} domain.Session
// @Failure 404 {object} gin.H "Session not found"
// @Router /coach/sessions/{sessionId}/cardio [put]
func (h *SessionHandler) UpdateCardio(c *gin.Context) {
	var req ScheduleCardioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	session, err := h.sessionService.UpdateCardio(c.Request.Context(), coachID, sessionID, date, service.CardioSessionInput{
		Name:        req.Name,
		Description: req.Description,
		Blocks:      req.Blocks,
	})
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Reschedule godoc
// @Summary Move a session to another date
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param date body RescheduleRequest true "New date"
// @Success 200 {object} domain.Session
// @Failure 404 {object} gin.H "Session not found"
// @Router /coach/sessions/{sessionId}/date [put]
func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	session, err := h.sessionService.Reschedule(c.Request.Context(), coachID, sessionID, date)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession godoc
// @Summary Delete a session
// @Tags Sessions
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Session not found"
// @Router /coach/sessions/{sessionId} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), coachID, sessionID); err != nil {
		respondSessionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetClientSchedule godoc
// @Summary Get a client's composed schedule (coach view)
// @Description Strength entries resolve their day and program names; a day deleted after scheduling shows a placeholder title.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param start query string true "Window start (2006-01-02)"
// @Param end query string true "Window end (2006-01-02)"
// @Success 200 {array} service.ScheduleEntry
// @Router /coach/clients/{clientId}/schedule [get]
func (h *SessionHandler) GetClientSchedule(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	// The client must be on the coach's roster.
	if _, err := h.rosterService.VerifyClientManaged(c.Request.Context(), coachID, clientID); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotManaged) || errors.Is(err, service.ErrClientNotRole) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to verify client.")
		}
		return
	}

	h.respondSchedule(c, clientID)
}

// GetMySchedule godoc
// @Summary Get the authenticated client's schedule
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param start query string true "Window start (2006-01-02)"
// @Param end query string true "Window end (2006-01-02)"
// @Success 200 {array} service.ScheduleEntry
// @Router /client/schedule [get]
func (h *SessionHandler) GetMySchedule(c *gin.Context) {
	clientID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	h.respondSchedule(c, clientID)
}

func (h *SessionHandler) respondSchedule(c *gin.Context, clientID primitive.ObjectID) {
	start, ok := parseDate(c, c.Query("start"))
	if !ok {
		return
	}
	end, ok := parseDate(c, c.Query("end"))
	if !ok {
		return
	}

	entries, err := h.scheduleService.GetSchedule(c.Request.Context(), clientID, start, end)
	if err != nil {
		if abortValidationError(c, err) {
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load schedule.")
		return
	}

	if entries == nil {
		entries = []service.ScheduleEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// --- Helpers ---

func parseDate(c *gin.Context, value string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Dates must be in 2006-01-02 format.")
		return time.Time{}, false
	}
	return date, true
}

// respondSessionError maps session service errors to HTTP status codes.
func respondSessionError(c *gin.Context, err error) {
	if abortValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrDayNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanTypeMismatch):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
