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

// PlanHandler exposes the plan lifecycle endpoints for coaches.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs for Plan Management ---

type CreatePlanRequest struct {
	Type          domain.PlanType      `json:"type" binding:"required,oneof=macro diet program"`
	Name          string               `json:"name" binding:"required"`
	Status        domain.PlanStatus    `json:"status" binding:"omitempty,oneof=draft active"`
	EffectiveFrom time.Time            `json:"effectiveFrom" binding:"required"`
	EffectiveTo   *time.Time           `json:"effectiveTo,omitempty"`
	Macros        *domain.MacroTargets `json:"macros,omitempty"`
	Weeks         int                  `json:"weeks,omitempty"`
}

type DuplicatePlanRequest struct {
	Name          *string            `json:"name,omitempty"`
	Status        *domain.PlanStatus `json:"status,omitempty"`
	EffectiveFrom *time.Time         `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time         `json:"effectiveTo,omitempty"`
	ClientID      *string            `json:"clientId,omitempty"`
}

// --- Handler Methods ---

// CreatePlan godoc
// @Summary Create a plan for a client
// @Description Creates a macro plan, diet plan, or training program. Creating it active archives any currently active plan of the same type.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param plan body CreatePlanRequest true "Plan details"
// @Success 201 {object} domain.Plan "Plan created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/clients/{clientId}/plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
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

	if req.Status == "" {
		req.Status = domain.PlanStatusDraft
	}

	plan, err := h.planService.Create(c.Request.Context(), coachID, service.CreatePlanInput{
		ClientID:      clientID,
		Type:          req.Type,
		Name:          req.Name,
		Status:        req.Status,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
		Macros:        req.Macros,
		Weeks:         req.Weeks,
	})
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlan godoc
// @Summary Get one plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} domain.Plan
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /coach/plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.Get(c.Request.Context(), coachID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ListPlansForClient godoc
// @Summary List plans of one type for a client
// @Description Active plan first, then drafts, then archived.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param type query string true "Plan type (macro, diet, program)"
// @Success 200 {array} domain.Plan
// @Failure 400 {object} gin.H "Invalid plan type"
// @Router /coach/clients/{clientId}/plans [get]
func (h *PlanHandler) ListPlansForClient(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	planType := domain.PlanType(c.Query("type"))
	if !domain.ValidPlanType(planType) {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'type' must be macro, diet or program.")
		return
	}

	plans, err := h.planService.ListForClient(c.Request.Context(), coachID, clientID, planType)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	if plans == nil {
		plans = []domain.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

// ActivatePlan godoc
// @Summary Activate a plan
// @Description Archives any currently active plan of the same (client, type) pair in the same transaction.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} domain.Plan
// @Failure 404 {object} gin.H "Plan not found"
// @Router /coach/plans/{planId}/activate [post]
func (h *PlanHandler) ActivatePlan(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.Activate(c.Request.Context(), coachID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ArchivePlan godoc
// @Summary Archive a plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} domain.Plan
// @Failure 409 {object} gin.H "Plan already archived"
// @Router /coach/plans/{planId}/archive [post]
func (h *PlanHandler) ArchivePlan(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.Archive(c.Request.Context(), coachID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DuplicatePlan godoc
// @Summary Duplicate a plan
// @Description Deep-copies the plan and its structure. The copy defaults to a draft effective from today; fields in the body override the defaults.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param overrides body DuplicatePlanRequest false "Override fields"
// @Success 201 {object} domain.Plan "The copy"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /coach/plans/{planId}/duplicate [post]
func (h *PlanHandler) DuplicatePlan(c *gin.Context) {
	var req DuplicatePlanRequest
	// The body is optional; an empty body duplicates with defaults.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	overrides := service.DuplicateOverrides{
		Name:          req.Name,
		Status:        req.Status,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
	}
	if req.ClientID != nil {
		clientID, err := primitive.ObjectIDFromHex(*req.ClientID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid clientId format.")
			return
		}
		overrides.ClientID = &clientID
	}

	plan, err := h.planService.Duplicate(c.Request.Context(), coachID, planID, overrides)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// DeletePlan godoc
// @Summary Delete a draft or archived plan
// @Description Removes the plan and its structure. Active plans cannot be deleted; archive them first.
// @Tags Plans
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 204 "Deleted"
// @Failure 409 {object} gin.H "Plan is active"
// @Router /coach/plans/{planId} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.Delete(c.Request.Context(), coachID, planID); err != nil {
		respondPlanError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// respondPlanError maps plan service errors to HTTP status codes.
func respondPlanError(c *gin.Context, err error) {
	if abortValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrActiveConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPlanTypeMismatch):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
