package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/config"
	obslog "github.com/bluemoxon/bluemoxon/internal/log"
)

// openStore builds a bookstore.Store for the configured driver.
// The returned closer releases the underlying connections.
func openStore(ctx context.Context, cfg config.Config, logger obslog.Logger) (*bookstore.Store, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPGX:
		return openPGXStore(ctx, cfg, logger)

	case config.DriverSQLDB:
		conn, err := config.OpenSQLDB(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database connection: %w", err)
		}

		store, err := bookstore.NewStoreFromSQLDB(conn, bookstore.WithLogger(logger))
		if err != nil {
			_ = conn.Close()

			return nil, nil, err
		}

		return store, func() { _ = conn.Close() }, nil

	case config.DriverSQLX:
		conn, err := config.OpenSQLX(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database connection: %w", err)
		}

		store, err := bookstore.NewStoreFromSQLX(conn, bookstore.WithLogger(logger))
		if err != nil {
			_ = conn.Close()

			return nil, nil, err
		}

		return store, func() { _ = conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownDriver, cfg.Database.Driver)
	}
}

func openPGXStore(ctx context.Context, cfg config.Config, logger obslog.Logger) (*bookstore.Store, func(), error) {
	poolConfig, err := config.PGXPoolConfig(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if cfg.Database.ReplicaDSN == "" {
		store, err := bookstore.NewStoreFromPGXPool(pool, bookstore.WithLogger(logger))
		if err != nil {
			pool.Close()

			return nil, nil, err
		}

		return store, pool.Close, nil
	}

	replicaConfig, err := config.PGXReplicaPoolConfig(cfg.Database)
	if err != nil {
		pool.Close()

		return nil, nil, fmt.Errorf("parsing replica config: %w", err)
	}

	replica, err := pgxpool.NewWithConfig(ctx, replicaConfig)
	if err != nil {
		pool.Close()

		return nil, nil, fmt.Errorf("creating replica pool: %w", err)
	}

	store, err := bookstore.NewStoreFromPGXPoolWithReplica(pool, replica, bookstore.WithLogger(logger))
	if err != nil {
		pool.Close()
		replica.Close()

		return nil, nil, err
	}

	closer := func() {
		pool.Close()
		replica.Close()
	}

	return store, closer, nil
}
