package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipseo/snipseo/internal/auth"
	"github.com/snipseo/snipseo/internal/handler"
	"github.com/snipseo/snipseo/internal/model"
	"github.com/snipseo/snipseo/internal/repository/sqlite"
	"github.com/snipseo/snipseo/internal/service"
)

// snippetTestEnv wires the real stack — router, middleware, handler,
// service, in-memory SQLite — so these tests exercise the same path a
// browser hits, cookie validation included.
type snippetTestEnv struct {
	router *chi.Mux
	tokens *auth.TokenService
	db     *sqlite.DB
}

func newSnippetTestEnv(t *testing.T) *snippetTestEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	logger := testLogger()
	svc := service.NewSnippetService(db, logger)
	h := handler.NewSnippetHandler(svc, nil, logger)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/api/snippets", h.HandleList)
		r.Get("/api/snippets/{id}", h.HandleGet)
		r.Post("/api/snippets", h.HandleCreate)
		r.Delete("/api/snippets/{id}", h.HandleDelete)
	})

	return &snippetTestEnv{router: router, tokens: tokens, db: db}
}

// createUser inserts a user and returns their ID.
func (e *snippetTestEnv) createUser(t *testing.T, email string) string {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, e.db.CreateEmailUser(context.Background(), user))
	return user.ID
}

// do performs a request, attaching a session cookie when userID != "".
func (e *snippetTestEnv) do(t *testing.T, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := e.tokens.Generate(userID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

const validSnippetBody = `{
	"code": "print('hi')",
	"language": "python",
	"title": "Printing in Python",
	"description": "How print works.",
	"explanation": "The print builtin writes to stdout.",
	"html_output": "<html><body>print</body></html>",
	"schema_markup": {"@type": "TechArticle"}
}`

func TestSnippetEndpoints_RequireAuth(t *testing.T) {
	env := newSnippetTestEnv(t)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/snippets", ""},
		{http.MethodPost, "/api/snippets", validSnippetBody},
		{http.MethodDelete, "/api/snippets/some-id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.body, "")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestSnippetCreateAndList(t *testing.T) {
	env := newSnippetTestEnv(t)
	userID := env.createUser(t, "ada@example.com")

	rr := env.do(t, http.MethodPost, "/api/snippets", validSnippetBody, userID)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Snippet model.Snippet `json:"snippet"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NotEmpty(t, created.Snippet.ID)
	assert.Equal(t, userID, created.Snippet.UserID)

	rr = env.do(t, http.MethodGet, "/api/snippets", "", userID)
	require.Equal(t, http.StatusOK, rr.Code)

	var listed struct {
		Snippets []model.Snippet `json:"snippets"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&listed))
	require.Len(t, listed.Snippets, 1)
	assert.Equal(t, created.Snippet.ID, listed.Snippets[0].ID)
	assert.Equal(t, "TechArticle", listed.Snippets[0].SchemaMarkup["@type"])
}

// TestSnippetListScopedToOwner: user B never sees user A's snippets.
func TestSnippetListScopedToOwner(t *testing.T) {
	env := newSnippetTestEnv(t)
	userA := env.createUser(t, "a@example.com")
	userB := env.createUser(t, "b@example.com")

	rr := env.do(t, http.MethodPost, "/api/snippets", validSnippetBody, userA)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/snippets", "", userB)
	require.Equal(t, http.StatusOK, rr.Code)

	var listed struct {
		Snippets []model.Snippet `json:"snippets"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&listed))
	assert.Empty(t, listed.Snippets)
	assert.NotNil(t, listed.Snippets, "empty list must serialise as [] not null")
}

func TestSnippetCreateValidation(t *testing.T) {
	env := newSnippetTestEnv(t)
	userID := env.createUser(t, "ada@example.com")

	rr := env.do(t, http.MethodPost, "/api/snippets", `{"language":"go"}`, userID)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Error   string   `json:"error"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "validation_error", body.Error)
	assert.Equal(t, "Invalid request data", body.Message)
	assert.Contains(t, body.Details, "Code is required")
	assert.Contains(t, body.Details, "Title is required")
	assert.Contains(t, body.Details, "Description is required")
	assert.Contains(t, body.Details, "Explanation is required")
	assert.Contains(t, body.Details, "HTML output is required")
	assert.Contains(t, body.Details, "Schema markup is required")
}

func TestSnippetGet(t *testing.T) {
	env := newSnippetTestEnv(t)
	userA := env.createUser(t, "a@example.com")
	userB := env.createUser(t, "b@example.com")

	rr := env.do(t, http.MethodPost, "/api/snippets", validSnippetBody, userA)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		Snippet model.Snippet `json:"snippet"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	rr = env.do(t, http.MethodGet, "/api/snippets/"+created.Snippet.ID, "", userA)
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched struct {
		Snippet model.Snippet `json:"snippet"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&fetched))
	assert.Equal(t, created.Snippet.ID, fetched.Snippet.ID)

	// Not the owner: 404, same as a missing ID.
	rr = env.do(t, http.MethodGet, "/api/snippets/"+created.Snippet.ID, "", userB)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSnippetDelete(t *testing.T) {
	env := newSnippetTestEnv(t)
	userA := env.createUser(t, "a@example.com")
	userB := env.createUser(t, "b@example.com")

	rr := env.do(t, http.MethodPost, "/api/snippets", validSnippetBody, userA)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		Snippet model.Snippet `json:"snippet"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	id := created.Snippet.ID

	// Another user's delete answers 404, never 403, and leaves the row.
	rr = env.do(t, http.MethodDelete, "/api/snippets/"+id, "", userB)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var errBody struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errBody))
	assert.Equal(t, "Snippet not found", errBody.Message)

	// The owner's delete succeeds.
	rr = env.do(t, http.MethodDelete, "/api/snippets/"+id, "", userA)
	require.Equal(t, http.StatusOK, rr.Code)
	var ok struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ok))
	assert.True(t, ok.Success)

	// Deleting again is 404.
	rr = env.do(t, http.MethodDelete, "/api/snippets/"+id, "", userA)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
