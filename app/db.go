package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/kingkey0101/mealmuse-api/app/config"
)

// ErrNotFound is returned by store lookups when no row matches.
var ErrNotFound = errors.New("not found")

// DB is the single shared store client. It is opened once at process start,
// injected into the API, and closed on shutdown.
type DB struct {
	conn *sql.DB
}

// OpenDB connects to Postgres and verifies the connection.
func OpenDB(cfg config.PostgresConfig) (*DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.Username,
		cfg.Password,
		cfg.URL,
		cfg.Port,
		cfg.Name,
	)

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	log.Println("Connected to Postgres")
	return &DB{conn: conn}, nil
}

// MustOpenDB opens the store and logs fatally on error.
func MustOpenDB(cfg config.PostgresConfig) *DB {
	db, err := OpenDB(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	return db
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	return d.conn.Close()
}
