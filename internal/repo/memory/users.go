package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/todovault/todovault/internal/domain/user"
)

// UsersRepo is the in-memory twin of the postgres repo, used by router-level
// tests that should not need a database.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[string]user.User // keyed by public_id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) GetByPublicID(ctx context.Context, publicID string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[publicID]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByName(ctx context.Context, name string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Name == name {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Create(ctx context.Context, name, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == name {
			return user.User{}, user.ErrNameTaken
		}
	}

	r.nextID++

	u := user.User{
		ID:           r.nextID,
		PublicID:     uuid.NewString(),
		Name:         name,
		PasswordHash: passwordHash,
		Admin:        false,
	}

	r.items[u.PublicID] = u

	return u, nil
}

func (r *UsersRepo) Promote(ctx context.Context, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[publicID]

	if !ok {
		return user.ErrNotFound
	}

	u.Admin = true
	r.items[publicID] = u

	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[publicID]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, publicID)

	return nil
}
