package users

import "context"

// Repo is the user-record store the gateway synchronizes identities into.
// Upsert is insert-or-update keyed by ID: created_at is preserved across
// upserts, updated_at is bumped on every one.
type Repo interface {
	Upsert(ctx context.Context, user UpsertUser) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
