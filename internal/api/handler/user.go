package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type groupUser struct{}

// Me returns the owner of the bearer token.
func (gr *groupUser) Me(c echo.Context) error {
	user, err := ResolveValidUser(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUser(*user))
}
