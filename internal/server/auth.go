package server

import (
	"errors"
	"net/http"
	"strings"

	"cupboard/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string        `json:"message"`
	User    types.Session `json:"user"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.internalServerError(w, err, "failed to fetch user during login")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	role := user.Role
	if types.IsReservedUsername(username) {
		role = types.RoleManager
	}

	session := types.Session{Username: user.Username, Role: role}
	if err := s.setSessionCookie(w, session); err != nil {
		s.internalServerError(w, err, "failed to encode session cookie")
		return
	}

	if err := s.users.TouchLastLogin(ctx, user.Username); err != nil {
		// Login already succeeded; a stale last_login is not worth a 500.
		s.logger.WithError(err).Warn("failed to update last login")
	}

	s.respondJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		User:    session,
	})
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if types.IsReservedUsername(username) {
		s.respondError(w, http.StatusBadRequest, "Username is reserved")
		return
	}

	if len(req.Password) < minPasswordLength {
		s.respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	if _, err := s.users.UserByUsername(ctx, username); err == nil {
		s.respondError(w, http.StatusBadRequest, "Username already taken")
		return
	} else if !errors.Is(err, types.ErrUserNotFound) {
		s.internalServerError(w, err, "failed to check username availability")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalServerError(w, err, "failed to hash password")
		return
	}

	user := &types.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         types.RoleHelper,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, types.ErrUsernameTaken) {
			s.respondError(w, http.StatusBadRequest, "Username already taken")
			return
		}
		s.internalServerError(w, err, "failed to create user")
		return
	}

	s.respondJSON(w, http.StatusCreated, sessionResponse{
		Message: "Registration successful",
		User:    types.Session{Username: user.Username, Role: user.Role},
	})
}

func (s *Service) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearSessionCookie(w)
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Service) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]types.Session{"user": session})
}

func (s *Service) setSessionCookie(w http.ResponseWriter, session types.Session) error {
	encoded, err := s.cookie.Encode(s.config.CookieName, session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}
