// Package testutils exposes fixtures for end-to-end suites. The server only
// mounts it when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/techshelf/techshelf/pkg/users"
)

// RegisterRoutes mounts the /test fixture routes.
func RegisterRoutes(e *echo.Echo, userService *users.Service) {
	h := &handler{userService: userService}

	g := e.Group("/test")
	g.POST("/users", h.createUser)
	g.DELETE("/users", h.deleteAllUsers)
}
