package api

import (
	"errors"
	"net/http"

	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramHandler exposes the structural endpoints of a training program:
// days, exercises and matrix columns.
type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs for Program Structure ---

type ReplaceDaysRequest struct {
	DayNames []string `json:"dayNames" binding:"required,min=1"`
}

type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Sets        string `json:"sets,omitempty"`
	Reps        string `json:"reps,omitempty"`
	Rir         string `json:"rir,omitempty"`
	RestSeconds int    `json:"restSeconds,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type ReorderExercisesRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required,min=1"`
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:        r.Name,
		Sets:        r.Sets,
		Reps:        r.Reps,
		RIR:         r.Rir,
		RestSeconds: r.RestSeconds,
		Notes:       r.Notes,
	}
}

// --- Handler Methods ---

// BootstrapColumns godoc
// @Summary Create the default matrix columns for a program
// @Description Idempotent; returns the existing columns if the program already has any.
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Program plan ID"
// @Success 200 {array} domain.Column
// @Failure 404 {object} gin.H "Program not found"
// @Router /coach/programs/{planId}/columns [post]
func (h *ProgramHandler) BootstrapColumns(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	columns, err := h.programService.BootstrapColumns(c.Request.Context(), coachID, programID)
	if err != nil {
		respondProgramError(c, err)
		return
	}

	c.JSON(http.StatusOK, columns)
}

// ReplaceDays godoc
// @Summary Replace the program's day list
// @Description Drops the existing days together with their exercises and cells, then creates the named days in order.
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Program plan ID"
// @Param days body ReplaceDaysRequest true "Ordered day names"
// @Success 200 {array} domain.Day
// @Failure 400 {object} gin.H "Invalid input"
// @Router /coach/programs/{planId}/days [put]
func (h *ProgramHandler) ReplaceDays(c *gin.Context) {
	var req ReplaceDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	days, err := h.programService.ReplaceDays(c.Request.Context(), coachID, programID, req.DayNames)
	if err != nil {
		respondProgramError(c, err)
		return
	}

	c.JSON(http.StatusOK, days)
}

// GetStructure godoc
// @Summary Get the full structure of a program
// @Description Returns the plan header, its days with exercises, and the column definitions.
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Program plan ID"
// @Success 200 {object} service.ProgramStructure
// @Failure 404 {object} gin.H "Program not found"
// @Router /coach/programs/{planId} [get]
func (h *ProgramHandler) GetStructure(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	programID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	structure, err := h.programService.GetStructure(c.Request.Context(), coachID, programID)
	if err != nil {
		respondProgramError(c, err)
		return
	}

	c.JSON(http.StatusOK, structure)
}

// AddExercise godoc
// @Summary Append an exercise to a program day
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param exercise body ExerciseRequest true "Exercise fields"
// @Success 201 {object} domain.Exercise
// @Failure 404 {object} gin.H "Day not found"
// @Router /coach/days/{dayId}/exercises [post]
func (h *ProgramHandler) AddExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	dayID, ok := parseIDParam(c, "dayId")
	if !ok {
		return
	}

	exercise, err := h.programService.AddExercise(c.Request.Context(), coachID, dayID, req.toInput())
	if err != nil {
		respondProgramError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exercise)
}

// UpdateExercise godoc
// @Summary Update an exercise's prescription fields
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise fields"
// @Success 200 {object} domain.Exercise
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /coach/exercises/{exerciseId} [put]
func (h *ProgramHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	exerciseID, ok := parseIDParam(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.programService.UpdateExercise(c.Request.Context(), coachID, exerciseID, req.toInput())
	if err != nil {
		respondProgramError(c, err)
		return
	}

	c.JSON(http.StatusOK, exercise)
}

// RemoveExercise godoc
// @Summary Remove an exercise and its cells
// @Description Remaining exercises on the day are renumbered without gaps.
// @Tags Programs
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 204 "Removed"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /coach/exercises/{exerciseId} [delete]
func (h *ProgramHandler) RemoveExercise(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	exerciseID, ok := parseIDParam(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.programService.RemoveExercise(c.Request.Context(), coachID, exerciseID); err != nil {
		respondProgramError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderExercises godoc
// @Summary Reorder the exercises of a day
// @Description The body must list every exercise ID of the day exactly once, in the new order.
// @Tags Programs
// @Accept json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Param order body ReorderExercisesRequest true "New order"
// @Success 204 "Reordered"
// @Failure 400 {object} gin.H "ID set does not match the day's exercises"
// @Router /coach/days/{dayId}/exercises/order [put]
func (h *ProgramHandler) ReorderExercises(c *gin.Context) {
	var req ReorderExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	dayID, ok := parseIDParam(c, "dayId")
	if !ok {
		return
	}

	orderedIDs := make([]primitive.ObjectID, len(req.OrderedIDs))
	for i, idStr := range req.OrderedIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format in order list.")
			return
		}
		orderedIDs[i] = id
	}

	if err := h.programService.ReorderExercises(c.Request.Context(), coachID, dayID, orderedIDs); err != nil {
		respondProgramError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// respondProgramError maps program service errors to HTTP status codes.
func respondProgramError(c *gin.Context, err error) {
	if abortValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrDayNotFound),
		errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanTypeMismatch):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
