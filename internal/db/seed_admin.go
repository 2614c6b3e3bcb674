package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/todovault/todovault/internal/config"
	"github.com/todovault/todovault/internal/security"
)

// EnsureAdminUser creates the bootstrap administrator on first start. Every
// other account is created through the admin API, so without this seed there
// would be no way to reach the user management routes at all.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminName == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE name = $1`, cfg.AdminName).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (public_id, name, password_hash, admin)
		VALUES ($1, $2, $3, TRUE)
		`,
		uuid.NewString(), cfg.AdminName, hash,
	)

	return err
}
