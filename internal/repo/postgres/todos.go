package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/todovault/todovault/internal/domain/todo"
	"github.com/todovault/todovault/internal/observability"
)

// TodosRepo scopes every operation to the owning user. The ownership filter
// rides in the WHERE clause of each statement, so a foreign-owned row and a
// missing row are indistinguishable by construction.
type TodosRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewTodosRepo(pool *pgxpool.Pool, metrics *observability.Prom) *TodosRepo {
	return &TodosRepo{pool: pool, metrics: metrics}
}

func (r *TodosRepo) ListByOwner(ctx context.Context, userID int64) ([]todo.Todo, error) {
	var out []todo.Todo

	err := r.metrics.ObserveDB("todos.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, text, complete, user_id
			 FROM todos
			 WHERE user_id = $1
			 ORDER BY id`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]todo.Todo, 0)

		for rows.Next() {
			var t todo.Todo

			err = rows.Scan(&t.ID, &t.Text, &t.Complete, &t.UserID)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TodosRepo) GetByID(ctx context.Context, userID, id int64) (todo.Todo, error) {
	var t todo.Todo

	err := r.metrics.ObserveDB("todos.get", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, text, complete, user_id
			 FROM todos
			 WHERE id = $1 AND user_id = $2`,
			id, userID,
		).Scan(&t.ID, &t.Text, &t.Complete, &t.UserID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}

		return todo.Todo{}, err
	}

	return t, nil
}

func (r *TodosRepo) Create(ctx context.Context, userID int64, text string) (todo.Todo, error) {
	t := todo.Todo{
		Text:     text,
		Complete: false,
		UserID:   userID,
	}

	err := r.metrics.ObserveDB("todos.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO todos (text, complete, user_id)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			t.Text, t.Complete, t.UserID,
		).Scan(&t.ID)
	})

	if err != nil {
		return todo.Todo{}, err
	}

	return t, nil
}

// Complete flips the flag false->true. Completing an already-complete todo
// reports ErrAlreadyComplete without touching the row.
func (r *TodosRepo) Complete(ctx context.Context, userID, id int64) error {
	return r.metrics.ObserveDB("todos.complete", func() error {
		tag, err := r.pool.Exec(
			ctx,
			`UPDATE todos
			 SET complete = TRUE
			 WHERE id = $1 AND user_id = $2 AND complete = FALSE`,
			id, userID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() > 0 {
			return nil
		}

		// Nothing updated: either the row is already complete or it does not
		// exist for this owner.
		var complete bool

		err = r.pool.QueryRow(
			ctx,
			`SELECT complete FROM todos WHERE id = $1 AND user_id = $2`,
			id, userID,
		).Scan(&complete)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return todo.ErrNotFound
			}

			return err
		}

		return todo.ErrAlreadyComplete
	})
}

func (r *TodosRepo) Delete(ctx context.Context, userID, id int64) error {
	return r.metrics.ObserveDB("todos.delete", func() error {
		tag, err := r.pool.Exec(
			ctx,
			`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
			id, userID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return todo.ErrNotFound
		}

		return nil
	})
}
