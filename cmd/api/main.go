package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/techshelf/techshelf/pkg/catalog"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/database"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/techshelf/techshelf/pkg/migrations"
	"github.com/techshelf/techshelf/pkg/server"
	"github.com/techshelf/techshelf/pkg/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting techshelf", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	storage, err := initMedia(cfg)
	if err != nil {
		log.Err(err).Fatal("media directory error")
	}
	log.Info("media directory initialized", logger.Data{"path": storage.Dir(), "url": storage.URLPath()})

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	pending, err := migrations.Pending(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if len(pending) > 0 {
		log.Info("applying migrations", logger.Data{"pending": pending})
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	searcher := catalog.NewClientFromConfig(cfg)

	srv, err := server.New(cfg, db, searcher, storage)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	if err := db.Close(); err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}

// initMedia creates the media directory, verifies it is writable and makes
// sure the default avatar exists.
func initMedia(cfg *config.Config) (*media.Storage, error) {
	storage, err := media.NewStorageFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	probe := filepath.Join(storage.Dir(), ".write_test")
	if err := os.WriteFile(probe, nil, 0600); err != nil {
		return nil, errors.Wrapf(err, "media directory is not writable: %s", storage.Dir())
	}
	if err := os.Remove(probe); err != nil {
		return nil, errors.Wrapf(err, "failed to clean up write test file: %s", probe)
	}

	if err := storage.EnsureDefaultAvatar(); err != nil {
		return nil, err
	}
	return storage, nil
}
