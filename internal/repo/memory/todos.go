package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/todovault/todovault/internal/domain/todo"
)

type TodosRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]todo.Todo
}

func NewTodosRepo() *TodosRepo {
	return &TodosRepo{
		items: make(map[int64]todo.Todo),
	}
}

func (r *TodosRepo) ListByOwner(ctx context.Context, userID int64) ([]todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]todo.Todo, 0)

	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TodosRepo) GetByID(ctx context.Context, userID, id int64) (todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return todo.Todo{}, todo.ErrNotFound
	}

	return t, nil
}

func (r *TodosRepo) Create(ctx context.Context, userID int64, text string) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++

	t := todo.Todo{
		ID:       r.nextID,
		Text:     text,
		Complete: false,
		UserID:   userID,
	}

	r.items[t.ID] = t

	return t, nil
}

func (r *TodosRepo) Complete(ctx context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return todo.ErrNotFound
	}

	if t.Complete {
		return todo.ErrAlreadyComplete
	}

	t.Complete = true
	r.items[id] = t

	return nil
}

func (r *TodosRepo) Delete(ctx context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return todo.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
