// Package respond maps handler failures onto the API's small error taxonomy:
// 400 validation, 401/403 auth, 404 not found, 409 conflict, 500 internal.
// Internal details go to the log, never to the client.
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const internalMessage = "Internal server error"

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func NotFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// Internal logs err with the route and answers with a generic 500.
func Internal(c *gin.Context, err error, msg string) {
	log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalMessage})
}

// DBError maps a gorm error: record not found -> 404, duplicate key -> 409,
// foreign key violation -> 400, anything else -> 500.
func DBError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": what + " already exists"})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		BadRequest(c, "Referenced record does not exist")
	default:
		Internal(c, err, "database error: "+what)
	}
}

// ValidationError answers 400 with the binding error text, which names the
// failing field and rule.
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
}

// ParamID reads a UUID path parameter. On a malformed value it answers 400
// and returns false.
func ParamID(c *gin.Context, name, what string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		BadRequest(c, "Invalid "+what+" id")
		return "", false
	}
	return id.String(), true
}
