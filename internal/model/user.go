package model

import "time"

// User represents a registered account.
//
// Two sign-in paths exist: email/password (bcrypt hash stored in
// PasswordHash) and GitHub OAuth (GitHubID set, PasswordHash empty). We
// always generate our own internal string ID (xid) so primary keys are never
// tied to a third party's numbering scheme.
//
// WHY GitHubID int64?
// GitHub user IDs are integers (e.g. 1234567). Using int64 avoids overflow
// for large account numbers. Zero means "no linked GitHub account". The
// partial UNIQUE index on github_id ensures one GitHub account maps to
// exactly one app account.
//
// PasswordHash never leaves the server — the `json:"-"` tag excludes it from
// every JSON response.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`                // Empty for OAuth-only accounts that hide their email
	PasswordHash string    `json:"-"`                    // bcrypt hash; empty for OAuth-only accounts
	GitHubID     int64     `json:"github_id,omitempty"`  // GitHub's numeric user ID; 0 = not linked
	Login        string    `json:"login"`                // Display name / GitHub username
	AvatarURL    string    `json:"avatar_url,omitempty"` // Profile picture URL
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
