package config

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // database/sql driver for the sqldb and sqlx paths
)

// PGXPoolConfig creates a pgxpool.Config from the database settings.
func PGXPoolConfig(db Database) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(db.DSN)
	if err != nil {
		return nil, err
	}

	applyPoolTuning(poolConfig, db)

	return poolConfig, nil
}

// PGXReplicaPoolConfig creates a pgxpool.Config for the replica DSN.
func PGXReplicaPoolConfig(db Database) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(db.ReplicaDSN)
	if err != nil {
		return nil, err
	}

	applyPoolTuning(poolConfig, db)

	return poolConfig, nil
}

func applyPoolTuning(poolConfig *pgxpool.Config, db Database) {
	poolConfig.MaxConns = db.MaxConns
	poolConfig.MinConns = db.MinConns
	poolConfig.MaxConnLifetime = db.MaxConnLifetime.Std()
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime.Std()
	poolConfig.ConnConfig.ConnectTimeout = db.ConnectTimeout.Std()
}

// OpenSQLDB opens a database/sql connection via lib/pq with the configured tuning.
func OpenSQLDB(db Database) (*sql.DB, error) {
	conn, err := sql.Open("postgres", db.DSN)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(int(db.MaxConns))
	conn.SetMaxIdleConns(int(db.MinConns))
	conn.SetConnMaxLifetime(db.MaxConnLifetime.Std())
	conn.SetConnMaxIdleTime(db.MaxConnIdleTime.Std())

	return conn, nil
}

// OpenSQLX opens a sqlx connection via lib/pq with the configured tuning.
func OpenSQLX(db Database) (*sqlx.DB, error) {
	conn, err := sqlx.Open("postgres", db.DSN)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(int(db.MaxConns))
	conn.SetMaxIdleConns(int(db.MinConns))
	conn.SetConnMaxLifetime(db.MaxConnLifetime.Std())
	conn.SetConnMaxIdleTime(db.MaxConnIdleTime.Std())

	return conn, nil
}
