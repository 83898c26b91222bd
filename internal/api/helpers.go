package api

import (
	"net/http"

	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// getUserObjectID extracts the authenticated user's ID from the context and
// parses it into an ObjectID. Aborts the request on failure.
func getUserObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseIDParam parses a path parameter as an ObjectID. Aborts on failure.
func parseIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// abortValidationError renders a service.ValidationError with its path so
// clients can point at the offending element. Returns false if err was not a
// validation error.
func abortValidationError(c *gin.Context, err error) bool {
	vErr, ok := service.AsValidationError(err)
	if !ok {
		return false
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": vErr.Reason,
		"path":  vErr.Path,
	})
	return true
}
