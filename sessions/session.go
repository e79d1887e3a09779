package sessions

import "time"

// GuestUserID identifies a browser session that has not logged in
const GuestUserID = "guest_user"

// UserSession is the server-side state behind one session cookie.
// The access token is held here and nowhere else.
type UserSession struct {
	ID          string    // Unique session identifier (UUID)
	UserID      string    // Authenticated user, empty until login
	AccessToken string    // Aggregator access token, set by a completed link
	ItemID      string    // Aggregator item the access token belongs to
	LinkState   string    // Last link flow transition recorded for this session
	CreatedAt   time.Time // When the session was created
	ExpiresAt   time.Time // When the session expires
}

// Identity returns the user id, or GuestUserID when nobody is logged in
func (s UserSession) Identity() string {
	if s.UserID == "" {
		return GuestUserID
	}
	return s.UserID
}

func (s UserSession) IsAuthenticated() bool {
	return s.UserID != ""
}

func (s UserSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
