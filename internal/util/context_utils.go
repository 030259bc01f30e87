package util

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/models"
)

// GetUserFromContext gets the authenticated user from the context.
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	val, ok := c.Get("user")
	if !ok {
		return nil, errors.New("no user information")
	}

	user, ok := val.(*models.User)
	if !ok {
		return nil, errors.New("user information is of the wrong type")
	}

	return user, nil
}
