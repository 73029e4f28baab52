package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/util"
	"go.uber.org/zap"
)

// parseUintParam parses a string into a uint.
func parseUintParam(param string) (uint, error) {
	parsed, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed > uint64(^uint(0)) {
		return 0, fmt.Errorf("value out of range for uint: %d", parsed)
	}
	return uint(parsed), nil
}

// pathID reads a positive numeric path parameter. It writes a 400 and
// returns false when the parameter is malformed.
func pathID(c *gin.Context, name, label string) (uint, bool) {
	id, err := parseUintParam(c.Param(name))
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID"})
		return 0, false
	}
	return id, true
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return user, true
}

// respondError maps a service error to a status code. Unknown errors are
// logged and reported as a generic 500 with fallback as the message.
func respondError(c *gin.Context, err error, fallback string, fields ...zap.Field) {
	var validation service.ValidationError
	var notFound repository.NotFoundError
	var conflict repository.ConflictError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	default:
		logger.Get().Error(fallback, append(fields, zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
