package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/storefront-api/auth"
	"github.com/jrsteele09/storefront-api/internal/errors"
)

// RegisterHandler creates a local account from JSON or form fields
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := bindRequest(w, r, maxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "All fields are required")
			return
		}

		_, err := s.auth.Register(r.Context(), req)
		switch {
		case err == nil:
			writeMessage(w, http.StatusOK, "User registered successfully")
		case errors.Is(err, errors.ErrValidation):
			writeError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, errors.ErrDuplicateAccount):
			writeError(w, http.StatusBadRequest, "Email already exists")
		default:
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
	}
}

// LoginHandler exchanges an email and password for a session token
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := bindRequest(w, r, maxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		session, err := s.auth.Login(r.Context(), req)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, session)
		case errors.Is(err, errors.ErrValidation):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, errors.ErrInvalidCredentials):
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			writeError(w, http.StatusInternalServerError, "Login failed")
		}
	}
}

// LoginWithGoogleHandler verifies a Google ID token (or authorization code)
// and issues a session token for the matching account.
func (s *Server) LoginWithGoogleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.GoogleLoginRequest
		if err := bindRequest(w, r, maxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "ID token is required")
			return
		}

		session, err := s.auth.LoginWithGoogle(r.Context(), req)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, session)
		case errors.Is(err, errors.ErrValidation):
			// An absent token is a client error. Only verification and store
			// failures get the generic 500.
			writeError(w, http.StatusBadRequest, "ID token is required")
		case errors.Is(err, errors.ErrFederatedAccountConflict):
			writeError(w, http.StatusConflict, "Account already exists with a different sign-in method")
		default:
			if errors.Is(err, errors.ErrInvalidFederatedToken) {
				log.Warn().Err(err).Msg("google token rejected")
			}
			writeError(w, http.StatusInternalServerError, "Login failed")
		}
	}
}

// LogoutHandler revokes the presented session token
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if err := s.auth.Logout(r.Context(), session); err != nil {
			log.Error().Err(err).Msg("logout failed")
			writeError(w, http.StatusInternalServerError, "Logout failed")
			return
		}
		writeMessage(w, http.StatusOK, "Logged out successfully")
	}
}

// MeHandler returns the profile of the account the token is bound to
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		account, err := s.auth.Account(r.Context(), session.Subject)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, account.Profile())
		case errors.Is(err, errors.ErrNotFound):
			writeError(w, http.StatusUnauthorized, "Invalid token")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to fetch account")
		}
	}
}
