package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

const (
	userKeyPrefix  = "identity:user:"
	emailKeyPrefix = "identity:email:"
)

// LocalUsers stores accounts in the local key-value store. Ids are generated
// by the caller with domain.NewLocalID so they never reach the remote backend.
type LocalUsers struct {
	kv ports.KeyValueStore
	mu sync.Mutex
}

func NewLocalUsers(kv ports.KeyValueStore) *LocalUsers {
	return &LocalUsers{kv: kv}
}

var _ ports.UserRepository = (*LocalUsers)(nil)

func (r *LocalUsers) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, err := r.kv.Get(ctx, emailKeyPrefix+email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, ports.ErrKeyNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	created := *user
	created.Email = email
	if err := r.put(ctx, &created); err != nil {
		return nil, err
	}
	if err := r.kv.Set(ctx, emailKeyPrefix+email, []byte(created.ID), 0); err != nil {
		return nil, fmt.Errorf("index email: %w", err)
	}
	return &created, nil
}

func (r *LocalUsers) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	updated := *user
	updated.Email = domain.NormalizeEmail(user.Email)
	if updated.Email != existing.Email {
		if raw, err := r.kv.Get(ctx, emailKeyPrefix+updated.Email); err == nil && string(raw) != user.ID {
			return nil, domain.ErrUserExists
		}
		if err := r.kv.Set(ctx, emailKeyPrefix+updated.Email, []byte(user.ID), 0); err != nil {
			return nil, fmt.Errorf("index email: %w", err)
		}
		_ = r.kv.Delete(ctx, emailKeyPrefix+existing.Email)
	}
	if err := r.put(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *LocalUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	raw, err := r.kv.Get(ctx, emailKeyPrefix+domain.NormalizeEmail(email))
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	return r.FindByID(ctx, string(raw))
}

func (r *LocalUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	raw, err := r.kv.Get(ctx, userKeyPrefix+id)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (r *LocalUsers) put(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := r.kv.Set(ctx, userKeyPrefix+u.ID, raw, 0); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}
