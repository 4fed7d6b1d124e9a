package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/config"
	"github.com/sagarc03/bucketgate/database"
)

var errNoDatabase = errors.New("no user database configured (set auth.database.type or --db-type)")

// openUserRepo connects to the configured user database and migrates it.
func openUserRepo(ctx context.Context, cfg *config.Config) (bucketgate.UserRepo, func(), error) {
	dbCfg := cfg.Auth.Database
	if !dbCfg.Enabled() {
		return nil, nil, errNoDatabase
	}

	repo, closeDB, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	slog.Debug("connected to user database", "type", dbCfg.Type, "table", dbCfg.Tables.Users)
	return repo, closeDB, nil
}
