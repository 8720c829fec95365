package main

import (
	"context"
	"fmt"
	"log/slog"

	"qna/internal/config"
	"qna/internal/database"
	"qna/internal/repository"
)

// openStore connects the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Manager, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
			if cerr := db.Close(); cerr != nil {
				log.Warn("close postgres", "error", cerr)
			}
			return nil, err
		}
		return repository.NewPostgresManager(db), nil

	case config.StoreMongo:
		client, err := database.OpenMongo(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			if derr := client.Disconnect(ctx); derr != nil {
				log.Warn("disconnect mongo", "error", derr)
			}
			return nil, err
		}
		return repository.NewMongoManager(client, cfg.MongoDatabase), nil

	case config.StoreMemory:
		log.Warn("using the in-memory store; data is lost on restart")
		return repository.NewMemoryManager(), nil

	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}
