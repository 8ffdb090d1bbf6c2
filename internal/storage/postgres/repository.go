package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repository is the Postgres implementation of every storage interface the
// settlement services declare. One type backs them all because workflows
// routinely span orders, listings, escrow, and balances inside a single
// transaction; the narrow interfaces live with their consumers in the app
// package. Order and listing methods sit in order_repository.go, escrow,
// balance, and vendor methods in escrow_repository.go.
type Repository struct {
	conn
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{conn: conn{pool: pool}}
}
