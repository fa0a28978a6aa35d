package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/techshelf/techshelf/pkg/activity"
	"github.com/techshelf/techshelf/pkg/auth"
	"github.com/techshelf/techshelf/pkg/binder"
	"github.com/techshelf/techshelf/pkg/books"
	"github.com/techshelf/techshelf/pkg/catalog"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/techshelf/techshelf/pkg/profiles"
	"github.com/techshelf/techshelf/pkg/progress"
	"github.com/techshelf/techshelf/pkg/testutils"
	"github.com/techshelf/techshelf/pkg/users"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, searcher catalog.Searcher, storage *media.Storage) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Uploaded media is public and read-only.
	e.Static(storage.URLPath(), storage.Dir())

	// Register auth routes and get the auth service
	authService := auth.RegisterRoutes(e, db, cfg, storage)
	authMiddleware := auth.NewMiddleware(authService)

	// Registration and the caller's own profile
	userService := users.RegisterRoutes(e, db, storage, authMiddleware)

	// Register protected API routes
	registerProtectedRoutes(e, db, cfg, searcher, storage, authMiddleware)

	if cfg.IsTest() {
		testutils.RegisterRoutes(e, userService)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// registerProtectedRoutes registers the routes that need an authenticated
// user.
func registerProtectedRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, searcher catalog.Searcher, storage *media.Storage, authMiddleware *auth.Middleware) {
	// Books routes. /books/search is static so it wins over /books/:id.
	booksGroup := e.Group("/books")
	booksGroup.Use(authMiddleware.Authenticate)
	books.RegisterRoutesWithGroup(booksGroup, db, cfg)
	catalog.RegisterRoutesWithGroup(booksGroup, searcher)

	// Reading progress routes
	progressGroup := e.Group("/progress")
	progressGroup.Use(authMiddleware.Authenticate)
	progress.RegisterRoutesWithGroup(progressGroup, db)

	// Activity feed routes
	activityGroup := e.Group("/activity")
	activityGroup.Use(authMiddleware.Authenticate)
	activity.RegisterRoutesWithGroup(activityGroup, db)

	// Profile routes
	profileGroup := e.Group("/profile")
	profileGroup.Use(authMiddleware.Authenticate)
	profiles.RegisterRoutesWithGroup(profileGroup, db, cfg, storage)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
