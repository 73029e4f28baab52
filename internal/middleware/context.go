package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/util"
)

// UserLoaderFunc loads the full user record for an authenticated request.
type UserLoaderFunc func(c *gin.Context, userID uint) (*models.User, error)

// AttachUserToContext loads the authenticated user and stores it in the context.
// Requests without a user ID, or whose user cannot be loaded, get a nil user.
func AttachUserToContext(load UserLoaderFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := util.GetUserIDFromContext(c)
		if err != nil {
			c.Set(util.UserKey, nil)
			c.Next()
			return
		}

		user, err := load(c, userID)
		if err != nil {
			c.Set(util.UserKey, nil)
		} else {
			c.Set(util.UserKey, user)
		}
		c.Next()
	}
}
