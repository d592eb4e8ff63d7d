package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Settings describes one MySQL connection pool. Pool knobs come from
// configuration so the pool can be widened without a rebuild.
type Settings struct {
	User         string
	Pass         string // empty means no password in the DSN
	Host         string
	Port         string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// Open connects to MySQL and verifies the connection with a short
// ping. parseTime=true makes DATETIME columns scan into time.Time and
// loc=UTC keeps departure_at and occurred_at values timezone-free,
// which the display formatting and the ledger history rely on.
func Open(s Settings) (*sql.DB, error) {
	auth := s.User
	if s.Pass != "" {
		auth = fmt.Sprintf("%s:%s", s.User, s.Pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, s.Host, s.Port, s.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(s.MaxOpenConns)
	db.SetMaxIdleConns(s.MaxIdleConns)
	db.SetConnMaxLifetime(s.ConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
