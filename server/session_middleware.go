package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-plaid-link/sessions"
)

// SessionMiddleware resolves the session cookie and, when it names a live
// session, puts the session id into the request context. A missing or bad
// cookie is not an error; the request simply has no session.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.config.GetSessionCookieName())
		if err != nil || c.Value == "" {
			next(w, r)
			return
		}

		sessionID, err := s.cookies.Decode(c.Value)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Ignoring invalid session cookie")
			next(w, r)
			return
		}

		if _, err := s.sessions.Get(sessionID); err != nil {
			s.logger.Debug().Err(err).Msg("Session cookie names no live session")
			next(w, r)
			return
		}

		next(w, r.WithContext(sessions.WithID(r.Context(), sessionID)))
	}
}

// currentSession returns the session for r, if it has one
func (s *Server) currentSession(r *http.Request) (sessions.UserSession, bool) {
	id, ok := sessions.IDFromContext(r.Context())
	if !ok {
		return sessions.UserSession{}, false
	}
	session, err := s.sessions.Get(id)
	if err != nil {
		return sessions.UserSession{}, false
	}
	return session, true
}

// ensureSession returns r bound to a session, creating one and setting its
// cookie when r has none
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	if _, ok := s.currentSession(r); ok {
		return r, nil
	}
	return s.startSession(w, r, sessions.UserSession{})
}

// startSession stores seed under a fresh id, sets the cookie and returns r
// bound to the new session
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, seed sessions.UserSession) (*http.Request, error) {
	now := s.now()
	seed.CreatedAt = now
	seed.ExpiresAt = now.Add(s.config.GetMaxSessionAge())

	sessionID := uuid.New().String()
	if err := s.sessions.Upsert(sessionID, seed); err != nil {
		return r, err
	}

	value, err := s.cookies.Encode(sessionID)
	if err != nil {
		_ = s.sessions.Delete(sessionID)
		return r, err
	}
	s.setSessionCookie(w, r, value, int(s.config.GetMaxSessionAge().Seconds()))

	return r.WithContext(sessions.WithID(r.Context(), sessionID)), nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) expireSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, r, "", -1)
}
