package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/snipseo/snipseo/internal/apperror"
	"github.com/snipseo/snipseo/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Fast (no disk I/O), isolated (each test gets its own database), and clean
// (destroyed when the connection closes).
//
// The `t.Helper()` call tells Go's test framework to report errors at the
// CALLER's line number, not inside this function.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts an account to own test snippets — the snippets
// table has a foreign key on user_id, so we need a real owner row.
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", Login: "tester"}
	if err := db.CreateEmailUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestSnippet(t *testing.T, db *DB, userID, title string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		UserID:      userID,
		Code:        "console.log(1)",
		Language:    "javascript",
		Title:       title,
		Description: "a description",
		Explanation: "an explanation",
		HTMLOutput:  "<html></html>",
		SchemaMarkup: map[string]any{
			"@context": "https://schema.org",
			"@type":    "TechArticle",
		},
	}
	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	snippet := createTestSnippet(t, db, user.ID, "Hello World")

	// Verify the snippet was modified in-place (pointer receiver!)
	if snippet.ID == "" {
		t.Error("Create() did not set snippet.ID")
	}
	if snippet.CreatedAt.IsZero() {
		t.Error("Create() did not set snippet.CreatedAt")
	}
	if snippet.UpdatedAt.IsZero() {
		t.Error("Create() did not set snippet.UpdatedAt")
	}
}

func TestCreate_SchemaMarkupRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	original := createTestSnippet(t, db, user.ID, "schema test")

	fetched, err := db.GetForUser(context.Background(), original.ID, user.ID)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}

	// The JSON-LD object survives the TEXT-column round trip intact.
	if fetched.SchemaMarkup["@type"] != "TechArticle" {
		t.Errorf("SchemaMarkup[@type] = %v, want TechArticle", fetched.SchemaMarkup["@type"])
	}
	if fetched.Title != original.Title {
		t.Errorf("Title = %q, want %q", fetched.Title, original.Title)
	}
}

func TestGetForUser_OtherOwnerLooksMissing(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	snippet := createTestSnippet(t, db, alice.ID, "alice's snippet")

	// Bob asks for Alice's snippet: not found, not forbidden.
	_, err := db.GetForUser(context.Background(), snippet.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetForUser() with wrong owner = %v, want ErrNotFound", err)
	}
}

func TestListByUser_NewestFirstAndScoped(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := createTestSnippet(t, db, alice.ID, "first")
	time.Sleep(5 * time.Millisecond) // ensure distinct created_at
	second := createTestSnippet(t, db, alice.ID, "second")
	createTestSnippet(t, db, bob.ID, "bob's")

	snippets, err := db.ListByUser(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(snippets) != 2 {
		t.Fatalf("ListByUser() returned %d snippets, want 2", len(snippets))
	}
	if snippets[0].ID != second.ID {
		t.Errorf("snippets[0] = %q, want newest snippet %q", snippets[0].ID, second.ID)
	}
	if snippets[1].ID != first.ID {
		t.Errorf("snippets[1] = %q, want oldest snippet %q", snippets[1].ID, first.ID)
	}
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	snippets, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	// The handler encodes this directly — an empty list must serialize as
	// [] rather than null.
	if snippets == nil {
		t.Error("ListByUser() returned nil slice, want empty slice")
	}
}

func TestDeleteForUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "a@example.com")
	snippet := createTestSnippet(t, db, user.ID, "doomed")

	if err := db.DeleteForUser(context.Background(), snippet.ID, user.ID); err != nil {
		t.Fatalf("DeleteForUser() error = %v", err)
	}

	_, err := db.GetForUser(context.Background(), snippet.ID, user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetForUser() after delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteForUser_WrongOwnerDoesNotDelete(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	snippet := createTestSnippet(t, db, alice.ID, "alice's snippet")

	// Bob tries to delete Alice's snippet.
	err := db.DeleteForUser(context.Background(), snippet.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteForUser() with wrong owner = %v, want ErrNotFound", err)
	}

	// The row must still exist for Alice.
	if _, err := db.GetForUser(context.Background(), snippet.ID, alice.ID); err != nil {
		t.Errorf("snippet was deleted by a non-owner: %v", err)
	}
}

func TestDeleteForUser_Missing(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "a@example.com")

	err := db.DeleteForUser(context.Background(), "no-such-id", user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteForUser() for missing id = %v, want ErrNotFound", err)
	}
}
