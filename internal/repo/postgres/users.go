package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/todovault/todovault/internal/domain/user"
	"github.com/todovault/todovault/internal/observability"
)

type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, metrics: metrics}
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.metrics.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, public_id, name, password_hash, admin
			 FROM users
			 ORDER BY id`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.PublicID, &u.Name, &u.PasswordHash, &u.Admin)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) GetByPublicID(ctx context.Context, publicID string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_public_id", `public_id`, publicID)
}

func (r *UsersRepo) GetByName(ctx context.Context, name string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_name", `name`, name)
}

func (r *UsersRepo) getOne(ctx context.Context, op, column, value string) (user.User, error) {
	var u user.User

	err := r.metrics.ObserveDB(op, func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, public_id, name, password_hash, admin
			 FROM users
			 WHERE `+column+` = $1`,
			value,
		).Scan(&u.ID, &u.PublicID, &u.Name, &u.PasswordHash, &u.Admin)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// Create inserts a non-admin user with a fresh public ID. Privilege is only
// ever granted afterwards through Promote.
func (r *UsersRepo) Create(ctx context.Context, name, passwordHash string) (user.User, error) {
	u := user.User{
		PublicID:     uuid.NewString(),
		Name:         name,
		PasswordHash: passwordHash,
		Admin:        false,
	}

	err := r.metrics.ObserveDB("users.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (public_id, name, password_hash, admin)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			u.PublicID, u.Name, u.PasswordHash, u.Admin,
		).Scan(&u.ID)
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrNameTaken
		}

		return user.User{}, err
	}

	return u, nil
}

// Promote flips the admin flag on. There is no demotion path.
func (r *UsersRepo) Promote(ctx context.Context, publicID string) error {
	return r.metrics.ObserveDB("users.promote", func() error {
		tag, err := r.pool.Exec(
			ctx,
			`UPDATE users SET admin = TRUE WHERE public_id = $1`,
			publicID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

// Delete removes the user row. Their todos are left in place on purpose; the
// schema carries no cascade.
func (r *UsersRepo) Delete(ctx context.Context, publicID string) error {
	return r.metrics.ObserveDB("users.delete", func() error {
		tag, err := r.pool.Exec(
			ctx,
			`DELETE FROM users WHERE public_id = $1`,
			publicID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}
