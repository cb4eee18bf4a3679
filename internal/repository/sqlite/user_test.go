package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/snipseo/snipseo/internal/apperror"
	"github.com/snipseo/snipseo/internal/model"
)

func TestCreateEmailUser_And_GetByEmail(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Email: "dev@example.com", PasswordHash: "$2a$04$fake", Login: "dev"}
	if err := db.CreateEmailUser(context.Background(), user); err != nil {
		t.Fatalf("CreateEmailUser() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("CreateEmailUser() did not set user.ID")
	}

	fetched, err := db.GetByEmail(context.Background(), "dev@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if fetched.ID != user.ID {
		t.Errorf("GetByEmail() ID = %q, want %q", fetched.ID, user.ID)
	}
	if fetched.PasswordHash != "$2a$04$fake" {
		t.Errorf("GetByEmail() did not return the stored password hash")
	}
}

func TestCreateEmailUser_DuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{Email: "dup@example.com", PasswordHash: "x", Login: "one"}
	if err := db.CreateEmailUser(context.Background(), first); err != nil {
		t.Fatalf("first CreateEmailUser() error = %v", err)
	}

	second := &model.User{Email: "dup@example.com", PasswordHash: "y", Login: "two"}
	err := db.CreateEmailUser(context.Background(), second)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate CreateEmailUser() = %v, want ErrConflict", err)
	}
}

func TestGetByEmail_Missing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() for unknown email = %v, want ErrNotFound", err)
	}
}

func TestUpsertGitHub_InsertsThenUpdates(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{GitHubID: 1234567, Login: "octocat", Email: "octo@example.com"}
	if err := db.UpsertGitHub(context.Background(), user); err != nil {
		t.Fatalf("first UpsertGitHub() error = %v", err)
	}
	firstID := user.ID
	if firstID == "" {
		t.Fatal("UpsertGitHub() did not set user.ID")
	}

	// Same GitHub account logs in again with a changed avatar. The internal
	// ID must be preserved — snippets reference it.
	again := &model.User{GitHubID: 1234567, Login: "octocat", AvatarURL: "https://example.com/new.png"}
	if err := db.UpsertGitHub(context.Background(), again); err != nil {
		t.Fatalf("second UpsertGitHub() error = %v", err)
	}
	if again.ID != firstID {
		t.Errorf("UpsertGitHub() changed internal ID: %q → %q", firstID, again.ID)
	}

	fetched, err := db.GetUserByID(context.Background(), firstID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if fetched.AvatarURL != "https://example.com/new.png" {
		t.Errorf("AvatarURL = %q, want the updated value", fetched.AvatarURL)
	}
}

func TestUpsertGitHub_TwoHiddenEmailsDoNotCollide(t *testing.T) {
	db := newTestDB(t)

	// GitHub users may hide their email — both rows get email = ''.
	// The partial unique index must not treat that as a duplicate.
	a := &model.User{GitHubID: 1, Login: "a"}
	b := &model.User{GitHubID: 2, Login: "b"}

	if err := db.UpsertGitHub(context.Background(), a); err != nil {
		t.Fatalf("UpsertGitHub(a) error = %v", err)
	}
	if err := db.UpsertGitHub(context.Background(), b); err != nil {
		t.Fatalf("UpsertGitHub(b) error = %v", err)
	}
}

func TestGetUserByID_Missing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() for unknown id = %v, want ErrNotFound", err)
	}
}
