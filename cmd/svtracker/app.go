package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cschnabel/svtracker/internal/config"
	"github.com/cschnabel/svtracker/internal/db"
	"github.com/cschnabel/svtracker/internal/logger"
	"github.com/cschnabel/svtracker/internal/sheets"
	"github.com/cschnabel/svtracker/internal/store"
)

// app holds what every command needs: config, logger and the record store.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	loc   *time.Location
	store *store.Store
	db    *sql.DB
}

func setup(ctx context.Context) (*app, error) {
	if err := config.LoadDotenv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Auth.PasswordFallback {
		log.Warn("auth.password not set, using the built-in test password")
	}

	a := &app{cfg: cfg, log: log, loc: loc}
	switch cfg.Store.Backend {
	case config.BackendSheets:
		ws, err := sheets.Open(ctx, sheets.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			Worksheet:       cfg.Sheets.Worksheet,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
		})
		if err != nil {
			return nil, err
		}
		a.store = store.New(ws, log.Named("store"))
	case config.BackendSQLite:
		database, err := db.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.Init(ctx, database); err != nil {
			_ = database.Close()
			return nil, err
		}
		a.db = database
		a.store = store.New(db.NewStore(database).Worksheet(cfg.Sheets.Worksheet), log.Named("store"))
	}

	log.Info("record store ready",
		zap.String("backend", cfg.Store.Backend),
		zap.String("timezone", loc.String()),
	)
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.log.Sync()
}

// now is the current time in the configured timezone.
func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}
