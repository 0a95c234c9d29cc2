// Package repofake provides an in-memory users.Repo for tests.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/users"
)

type FakeUserRepo struct {
	mu    sync.RWMutex
	users map[string]users.User

	// UpsertErr, when set, is returned by Upsert to exercise the
	// best-effort synchronization path.
	UpsertErr error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: make(map[string]users.User)}
}

func (r *FakeUserRepo) Upsert(_ context.Context, user users.UpsertUser) (*users.User, error) {
	if r.UpsertErr != nil {
		return nil, r.UpsertErr
	}
	if user.ID == "" {
		return nil, apperror.New(apperror.KindValidation, "user id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	record, exists := r.users[user.ID]
	if !exists {
		record = users.User{ID: user.ID, CreatedAt: now}
	}
	record.Email = user.Email
	record.FirstName = user.FirstName
	record.LastName = user.LastName
	record.ProfileImageURL = user.ProfileImageURL
	record.UpdatedAt = now

	r.users[user.ID] = record
	return &record, nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.users[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "user %q not found", id)
	}
	return &record, nil
}
