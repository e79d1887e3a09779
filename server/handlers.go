package server

import (
	"net/http"

	"github.com/jrsteele09/go-plaid-link/aggregator"
	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	"github.com/jrsteele09/go-plaid-link/sessions"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type exchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// exchangeResponse is what the client sees after a successful exchange.
// The access token stays in the session.
type exchangeResponse struct {
	ItemID    string `json:"item_id"`
	RequestID string `json:"request_id"`
}

// IndexHandler describes the service
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"app":    s.config.GetAppName(),
			"routes": s.Routes(),
		})
	}
}

func (s *Server) FaviconHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// LoginHandler checks the credential pair with the identity provider and
// binds the identity to a fresh session (POST /login)
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		id, err := s.identity.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}

		// New session id on login; link state from the previous session
		// carries over so a link started as guest survives.
		seed := sessions.UserSession{UserID: id.UserID}
		if previous, ok := s.currentSession(r); ok {
			seed.AccessToken = previous.AccessToken
			seed.ItemID = previous.ItemID
			seed.LinkState = previous.LinkState
			if err := s.sessions.Delete(previous.ID); err != nil {
				s.logger.Err(err).Msg("Failed to delete previous session")
			}
		}

		if _, err := s.startSession(w, r, seed); err != nil {
			s.writeError(w, apperrors.Wrapf(err, "failed to start session"))
			return
		}

		s.logger.Info().Str("user_id", id.UserID).Msg("Login successful")
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful"})
	}
}

// LogoutHandler drops the whole session, identity and access token alike
// (POST /logout). It always succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := sessions.IDFromContext(r.Context()); ok {
			if err := s.credentials.Clear(r.Context()); err != nil {
				s.logger.Err(err).Msg("Failed to clear access token")
			}
			if err := s.sessions.Delete(id); err != nil {
				s.logger.Err(err).Msg("Failed to delete session")
			}
		}
		s.expireSessionCookie(w, r)
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
	}
}

// CreateLinkTokenHandler returns the vendor link token payload verbatim
// (POST /create_link_token)
func (s *Server) CreateLinkTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, err := s.ensureSession(w, r)
		if err != nil {
			s.writeError(w, apperrors.Wrapf(err, "failed to start session"))
			return
		}

		identity := sessions.GuestUserID
		if session, ok := s.currentSession(r); ok {
			identity = session.Identity()
		}

		token, err := s.link.Initiate(r.Context(), identity)
		if err != nil {
			s.writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(token.Raw); err != nil {
			s.logger.Err(err).Msg("Failed to write link token response")
		}
	}
}

// ExchangePublicTokenHandler stores the access token for the public token
// in the session (POST /exchange_public_token)
func (s *Server) ExchangePublicTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exchangeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		r, err := s.ensureSession(w, r)
		if err != nil {
			s.writeError(w, apperrors.Wrapf(err, "failed to start session"))
			return
		}

		result, err := s.link.Complete(r.Context(), req.PublicToken)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, exchangeResponse{
			ItemID:    result.ItemID,
			RequestID: result.RequestID,
		})
	}
}

// TransactionsHandler returns the linked account's transactions for the
// trailing window (GET /transactions)
func (s *Server) TransactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.transactions.Fetch(r.Context(), s.now())
		if err != nil {
			s.writeError(w, err)
			return
		}
		if records == nil {
			records = []aggregator.TransactionRecord{}
		}
		s.writeJSON(w, http.StatusOK, records)
	}
}
