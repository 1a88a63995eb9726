// Package app assembles the document service from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/config"
	"github.com/MrJamesThe3rd/dossier/internal/database"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/document/memstore"
	docStore "github.com/MrJamesThe3rd/dossier/internal/document/store"
	"github.com/MrJamesThe3rd/dossier/internal/logging"
	"github.com/MrJamesThe3rd/dossier/internal/metrics"
	"github.com/MrJamesThe3rd/dossier/internal/render"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

type App struct {
	Catalog   *catalog.Registry
	Documents *document.Service
	Files     storage.Store
	Metrics   *metrics.Metrics
	// DB is nil with the memory store driver.
	DB *sql.DB

	closers []io.Closer
}

// Open connects the configured record store and file storage. With the postgres driver
// the schema is migrated first.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Metrics: metrics.New()}

	reg, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	a.Catalog = reg

	repo, err := a.openRepository(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	files, err := a.openStorage(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Files = files

	renderer, err := render.New(files)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("loading layouts: %w", err)
	}

	a.Documents = document.NewService(repo, reg,
		document.WithRenderer(renderer),
		document.WithRecorder(a.Metrics),
		document.WithLogger(logging.New("document")),
	)

	return a, nil
}

func (a *App) openRepository(ctx context.Context, cfg *config.Config) (document.Repository, error) {
	if cfg.Store.Driver == "memory" {
		return memstore.New(), nil
	}

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.DBPool())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	a.DB = db
	a.closers = append(a.closers, db)

	if err := database.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return docStore.New(db), nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Driver == "gcs" {
		gcs, err := storage.NewGCS(ctx, cfg.Storage.Bucket, cfg.Storage.ProjectID,
			cfg.Storage.CredentialsFile, cfg.Storage.SignedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("opening bucket: %w", err)
		}

		a.closers = append(a.closers, gcs)

		return gcs, nil
	}

	local, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening storage dir: %w", err)
	}

	return local, nil
}

func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}

	a.closers = nil

	return errors.Join(errs...)
}
