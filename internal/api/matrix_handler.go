package api

import (
	"errors"
	"net/http"
	"strconv"

	"titanfit/coach-app/internal/repository"
	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatrixHandler exposes the per-cell value store of a training program.
// Coaches and clients share these endpoints; column editor scope decides who
// may write where.
type MatrixHandler struct {
	matrixService service.MatrixService
}

func NewMatrixHandler(matrixService service.MatrixService) *MatrixHandler {
	return &MatrixHandler{matrixService: matrixService}
}

// --- DTOs for Cell Access ---

type SetCellRequest struct {
	ExerciseID string  `json:"exerciseId" binding:"required"`
	ColumnID   string  `json:"columnId" binding:"required"`
	Week       int     `json:"week" binding:"required,min=1"`
	Value      *string `json:"value"` // null clears the cell
}

// --- Handler Methods ---

// SetCell godoc
// @Summary Write one matrix cell
// @Description Upserts the cell value with last-write-wins semantics. A null value clears the cell but keeps it recorded.
// @Tags Matrix
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cell body SetCellRequest true "Cell coordinates and value"
// @Success 200 {object} domain.Cell
// @Failure 400 {object} gin.H "Invalid coordinates or non-numeric value for a number column"
// @Failure 403 {object} gin.H "Role may not edit this column"
// @Router /cells [put]
func (h *MatrixHandler) SetCell(c *gin.Context) {
	var req SetCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actorID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}

	key, ok := parseCellKey(c, req.ExerciseID, req.ColumnID, req.Week)
	if !ok {
		return
	}

	cell, err := h.matrixService.SetCell(c.Request.Context(), actorID, role, key, req.Value)
	if err != nil {
		respondMatrixError(c, err)
		return
	}

	c.JSON(http.StatusOK, cell)
}

// GetCell godoc
// @Summary Read one matrix cell
// @Description 404 means the cell was never touched; a cell with a null value was touched and cleared.
// @Tags Matrix
// @Produce json
// @Security BearerAuth
// @Param exerciseId query string true "Exercise ID"
// @Param columnId query string true "Column ID"
// @Param week query int true "Week number (1-based)"
// @Success 200 {object} domain.Cell
// @Failure 404 {object} gin.H "Cell never touched"
// @Router /cells [get]
func (h *MatrixHandler) GetCell(c *gin.Context) {
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'week' must be an integer.")
		return
	}

	key, ok := parseCellKey(c, c.Query("exerciseId"), c.Query("columnId"), week)
	if !ok {
		return
	}

	cell, err := h.matrixService.GetCell(c.Request.Context(), key)
	if err != nil {
		respondMatrixError(c, err)
		return
	}

	c.JSON(http.StatusOK, cell)
}

// BulkLoadCells godoc
// @Summary Load every cell of a program
// @Description One fetch for matrix hydration; callers index the result by (exerciseId, columnId, week).
// @Tags Matrix
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Program plan ID"
// @Success 200 {array} domain.Cell
// @Router /programs/{planId}/cells [get]
func (h *MatrixHandler) BulkLoadCells(c *gin.Context) {
	programID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	cells, err := h.matrixService.BulkLoad(c.Request.Context(), programID)
	if err != nil {
		respondMatrixError(c, err)
		return
	}

	c.JSON(http.StatusOK, cells)
}

// --- Helpers ---

func parseCellKey(c *gin.Context, exerciseID, columnID string, week int) (service.CellKey, bool) {
	exID, err := primitive.ObjectIDFromHex(exerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format.")
		return service.CellKey{}, false
	}
	colID, err := primitive.ObjectIDFromHex(columnID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid columnId format.")
		return service.CellKey{}, false
	}
	return service.CellKey{ExerciseID: exID, ColumnID: colID, Week: week}, true
}

// respondMatrixError maps matrix service errors to HTTP status codes.
func respondMatrixError(c *gin.Context, err error) {
	if abortValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrColumnNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCellEditDenied), errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCellNotInProgram):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
