package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/edgard/lifesync/internal/auth"
	"github.com/edgard/lifesync/internal/database"
)

type ctxKey struct{}

func userID(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxKey{}).(int64)
	return id
}

// bearer returns the token from the Authorization header or the cookie.
func (s *Server) bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(s.deps.Auth.CookieName); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.tokens.Verify(s.bearer(r))
		if err != nil {
			s.log.DebugContext(r.Context(), "Rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess.UserID)))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.deps.Auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.tokens.TTL().Seconds()),
	})
}

type tokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt string         `json:"expires_at"`
	User      *database.User `json:"user"`
}

// startSession issues a token for u and writes it as body and cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int, u *database.User) {
	token, sess, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.internalError(w, r, "issue token", err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, status, tokenResponse{Token: token, ExpiresAt: sess.ExpiresAt.UTC().Format(http.TimeFormat), User: u})
}

type registerRequest struct {
	Name     string   `json:"name"      validate:"required,max=100"`
	Email    string   `json:"email"     validate:"required,email,max=120"`
	Password string   `json:"password"  validate:"required,min=6,max=72"`
	Gender   string   `json:"gender"    validate:"omitempty,max=10"`
	Age      *int     `json:"age"       validate:"omitempty,gt=0,lt=150"`
	HeightCm *float64 `json:"height_cm" validate:"omitempty,gt=0,lt=300"`
	WeightKg *float64 `json:"weight_kg" validate:"omitempty,gt=0,lt=700"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, r, "hash password", err)
		return
	}
	u := &database.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Gender:       req.Gender,
		Age:          req.Age,
		HeightCm:     req.HeightCm,
		WeightKg:     req.WeightKg,
	}
	if err := s.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		s.internalError(w, r, "register", err)
		return
	}
	s.log.InfoContext(r.Context(), "User registered", "user_id", u.ID)
	s.startSession(w, r, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	u, err := s.store.UserByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	case err != nil:
		s.internalError(w, r, "login", err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		s.log.InfoContext(r.Context(), "Login failed", "user_id", u.ID)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	s.startSession(w, r, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.deps.Auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*database.User, bool) {
	u, err := s.store.UserByID(r.Context(), userID(r.Context()))
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return nil, false
	case err != nil:
		s.internalError(w, r, "load user", err)
		return nil, false
	}
	return u, true
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if u, ok := s.currentUser(w, r); ok {
		writeJSON(w, http.StatusOK, u)
	}
}

// profileRequest only changes the fields that are present.
type profileRequest struct {
	Name           *string  `json:"name"             validate:"omitempty,min=1,max=100"`
	Gender         *string  `json:"gender"           validate:"omitempty,max=10"`
	Age            *int     `json:"age"              validate:"omitempty,gt=0,lt=150"`
	HeightCm       *float64 `json:"height_cm"        validate:"omitempty,gt=0,lt=300"`
	WeightKg       *float64 `json:"weight_kg"        validate:"omitempty,gt=0,lt=700"`
	TelegramChatID *int64   `json:"telegram_chat_id"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Gender != nil {
		u.Gender = *req.Gender
	}
	if req.Age != nil {
		u.Age = req.Age
	}
	if req.HeightCm != nil {
		u.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		u.WeightKg = req.WeightKg
	}
	if req.TelegramChatID != nil {
		if *req.TelegramChatID == 0 {
			u.TelegramChatID = nil
		} else {
			u.TelegramChatID = req.TelegramChatID
		}
	}
	if err := s.store.UpdateProfile(r.Context(), u); err != nil {
		s.internalError(w, r, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
