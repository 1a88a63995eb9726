package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/dossier/internal/app"
	"github.com/MrJamesThe3rd/dossier/internal/auth"
	"github.com/MrJamesThe3rd/dossier/internal/config"
	"github.com/MrJamesThe3rd/dossier/internal/export"
	dossierHttp "github.com/MrJamesThe3rd/dossier/internal/http"
	catalogHandler "github.com/MrJamesThe3rd/dossier/internal/http/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/http/documents"
	exportHandler "github.com/MrJamesThe3rd/dossier/internal/http/export"
	"github.com/MrJamesThe3rd/dossier/internal/http/generated"
	"github.com/MrJamesThe3rd/dossier/internal/http/upload"
	"github.com/MrJamesThe3rd/dossier/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}

	logging.Init(level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var (
		exportService = export.NewService(a.Documents, a.Files)
		tokens        = auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	)

	var (
		catalogH   = catalogHandler.NewHandler(a.Catalog)
		generatedH = generated.NewHandler(a.Documents, a.Files, cfg.Documents.ExpiryWindowDays)
		uploadH    = upload.NewHandler(a.Documents, a.Files, cfg.Documents.MaxUploadBytes, cfg.Documents.ExpiryWindowDays)
		documentsH = documents.NewHandler(a.Documents)
		exportH    = exportHandler.NewHandler(exportService)
	)

	router := dossierHttp.New(dossierHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Tokens:         tokens,
		Metrics:        a.Metrics,
	}, catalogH, generatedH, uploadH, documentsH, exportH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "store", cfg.Store.Driver, "storage", cfg.Storage.Driver)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
