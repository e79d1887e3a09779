package sessions

import "time"

// Repo defines the interface for session storage operations
type Repo interface {
	// Upsert creates or replaces a session
	Upsert(sessionID string, session UserSession) error

	// Get retrieves a session by ID. Missing and expired sessions both
	// return an error.
	Get(sessionID string) (UserSession, error)

	// Update applies fn to an existing session atomically
	Update(sessionID string, fn func(*UserSession)) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(sessionID string) error

	// DeleteExpiredSessions removes sessions that expired before now and
	// returns how many were removed
	DeleteExpiredSessions(now time.Time) (int, error)
}
