package api

import (
	"errors"
	"net/http"

	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// CoachHandler exposes roster management for the authenticated coach.
type CoachHandler struct {
	rosterService service.RosterService
}

func NewCoachHandler(rosterService service.RosterService) *CoachHandler {
	return &CoachHandler{rosterService: rosterService}
}

// --- DTOs for Roster Management ---

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// --- Handler Methods ---

// AddClientByEmail godoc
// @Summary Add a client to the coach's roster by email
// @Description Associates an existing client user with the authenticated coach.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse "Client successfully added"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (user is not a client, or already managed)"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/clients [post]
func (h *CoachHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	client, err := h.rosterService.AddClientByEmail(c.Request.Context(), coachID, req.ClientEmail)
	if err != nil {
		// Map service errors to HTTP status codes
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotRole) || errors.Is(err, service.ErrClientManagedByOther) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrClientAlreadyManaged) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary Get the coach's managed clients
// @Description Retrieves a list of clients currently managed by the authenticated coach.
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse "List of managed clients"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/clients [get]
func (h *CoachHandler) GetManagedClients(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	clients, err := h.rosterService.GetManagedClients(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}

	if clients == nil {
		c.JSON(http.StatusOK, []UserResponse{}) // Return empty JSON array, not null
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}
