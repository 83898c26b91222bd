package api

import (
	"errors"
	"net/http"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// DietHandler exposes the meal tree of a diet plan.
type DietHandler struct {
	dietService service.DietService
}

func NewDietHandler(dietService service.DietService) *DietHandler {
	return &DietHandler{dietService: dietService}
}

// --- DTOs for Diet Structure ---

type SaveDietRequest struct {
	Meals []domain.Meal `json:"meals" binding:"required"`
}

// --- Handler Methods ---

// SaveStructure godoc
// @Summary Replace the diet plan's meal tree
// @Description Validates the whole tree before writing; a failure names the offending node path.
// @Tags Diet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Diet plan ID"
// @Param structure body SaveDietRequest true "Full meal tree"
// @Success 200 {object} domain.DietStructure
// @Failure 400 {object} gin.H "Tree validation failed (includes the node path)"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /coach/diets/{planId} [put]
func (h *DietHandler) SaveStructure(c *gin.Context) {
	var req SaveDietRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	structure, err := h.dietService.SaveStructure(c.Request.Context(), coachID, planID, req.Meals)
	if err != nil {
		respondDietError(c, err)
		return
	}

	c.JSON(http.StatusOK, structure)
}

// ReadStructure godoc
// @Summary Read the diet plan's meal tree
// @Description A plan whose tree was never saved reads as an empty tree, not an error.
// @Tags Diet
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Diet plan ID"
// @Success 200 {object} domain.DietStructure
// @Failure 404 {object} gin.H "Plan not found"
// @Router /coach/diets/{planId} [get]
func (h *DietHandler) ReadStructure(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	structure, err := h.dietService.ReadStructure(c.Request.Context(), coachID, planID)
	if err != nil {
		respondDietError(c, err)
		return
	}

	c.JSON(http.StatusOK, structure)
}

// respondDietError maps diet service errors to HTTP status codes.
func respondDietError(c *gin.Context, err error) {
	if abortValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrDietStructureNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanTypeMismatch):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
