package repository

import (
	"context"

	"github.com/snipseo/snipseo/internal/model"
)

// SnippetRepository is the storage interface for saved snippets.
//
// Every read and write is scoped to the owning user — there is deliberately
// no "GetByID" without a userID. A snippet belonging to someone else is
// indistinguishable from one that doesn't exist, which is exactly what the
// HTTP layer should report (404, never 403).
//
// There is no Update: snippets are immutable once saved. Regenerating
// content means creating a new snippet.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	ListByUser(ctx context.Context, userID string) ([]model.Snippet, error)
	GetForUser(ctx context.Context, id, userID string) (*model.Snippet, error)
	DeleteForUser(ctx context.Context, id, userID string) error
}

// UserRepository is the storage interface for accounts.
type UserRepository interface {
	// CreateEmailUser inserts a new email/password account.
	// Returns a conflict error if the email is already registered.
	CreateEmailUser(ctx context.Context, user *model.User) error

	// GetByEmail looks up an account by email address.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpsertGitHub inserts or updates an account keyed by its GitHub ID.
	UpsertGitHub(ctx context.Context, user *model.User) error

	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
