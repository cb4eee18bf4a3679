package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/snipseo/snipseo/internal/apperror"
	"github.com/snipseo/snipseo/internal/model"
	"github.com/snipseo/snipseo/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` verifies at compile time that *DB implements
// repository.SnippetRepository. Without this, a missing method would only
// surface where *DB is passed to something expecting the interface.
var _ repository.SnippetRepository = (*DB)(nil)

// marshalSchema serializes the JSON-LD object for storage. A nil map is
// stored as "{}" so the column's NOT NULL invariant always holds.
func marshalSchema(schema map[string]any) (string, error) {
	if schema == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("marshaling schema_markup: %w", err)
	}
	return string(raw), nil
}

// Create inserts a new snippet owned by snippet.UserID.
//
// ID GENERATION WITH xid:
// xid produces 20-char URL-safe IDs that sort by creation time — handy since
// snippet listings are ordered newest-first anyway.
//
// The pointer receiver matters: after Create(), the caller's snippet has the
// generated ID and timestamps filled in.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	schema, err := marshalSchema(snippet.SchemaMarkup)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	// Parameterized query — the ? placeholders are filled in order and the
	// driver handles escaping. Never build SQL with string concatenation.
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO snippets
			(id, user_id, code, language, title, description, explanation,
			 html_output, schema_markup, github_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.UserID,
		snippet.Code,
		snippet.Language,
		snippet.Title,
		snippet.Description,
		snippet.Explanation,
		snippet.HTMLOutput,
		schema,
		snippet.GitHubURL,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	return nil
}

// scanSnippet reads one row into a model.Snippet. Shared by GetForUser and
// ListByUser so the column order lives in exactly one place per query shape.
func scanSnippet(scan func(dest ...any) error) (*model.Snippet, error) {
	var s model.Snippet
	var schema string

	if err := scan(
		&s.ID, &s.UserID, &s.Code, &s.Language, &s.Title, &s.Description,
		&s.Explanation, &s.HTMLOutput, &schema, &s.GitHubURL,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(schema), &s.SchemaMarkup); err != nil {
		return nil, fmt.Errorf("unmarshaling schema_markup for %s: %w", s.ID, err)
	}

	return &s, nil
}

const snippetColumns = `id, user_id, code, language, title, description,
	explanation, html_output, schema_markup, github_url, created_at, updated_at`

// GetForUser retrieves a single snippet, scoped to its owner.
//
// The WHERE clause filters on BOTH id and user_id. A snippet that exists but
// belongs to someone else produces sql.ErrNoRows, which we translate to the
// same not-found error as a genuinely missing row. The caller learns nothing
// about other users' data.
func (db *DB) GetForUser(ctx context.Context, id, userID string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	snippet, err := scanSnippet(row.Scan)
	if err != nil {
		// sql.ErrNoRows is a sentinel — database/sql doesn't wrap it,
		// so a plain == comparison is fine.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("Snippet not found")
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	return snippet, nil
}

// ListByUser returns all snippets owned by userID, newest first.
//
// defer rows.Close() is critical: sql.Rows holds a connection from the pool
// until closed. Leak enough of them and the app hangs waiting for a free
// connection.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Snippet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := []model.Snippet{}
	for rows.Next() {
		s, err := scanSnippet(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}

	// rows.Err() catches errors that happened DURING iteration — e.g. the
	// connection dropping mid-scan.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// DeleteForUser removes a snippet, scoped to its owner.
//
// Same ownership rule as GetForUser: the DELETE filters on id AND user_id,
// and zero affected rows means "not found" — whether the row never existed
// or belongs to another user. The other user's row is untouched either way.
func (db *DB) DeleteForUser(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("Snippet not found")
	}

	return nil
}
