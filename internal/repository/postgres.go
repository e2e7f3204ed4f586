package repository

import (
	"context"
	"fmt"
	"time"

	"standfinder/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const selectStandsQuery = `
	SELECT
		id, suburb, city, price, size, is_sold, stand_type, community
	FROM stands
	ORDER BY id
`

// PostgresRepository loads the stand fixture from PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// LoadStands implements StandSource
func (r *PostgresRepository) LoadStands(ctx context.Context) ([]model.Stand, error) {
	stands := []model.Stand{}
	if err := r.db.SelectContext(ctx, &stands, selectStandsQuery); err != nil {
		return nil, fmt.Errorf("failed to fetch stands: %w", err)
	}
	if err := validateStands(stands); err != nil {
		return nil, err
	}
	return stands, nil
}
