package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-orders-api/internal/auth"
	"github.com/ariefcatur/go-orders-api/internal/users"
	"github.com/rs/zerolog"
)

type Tokens interface {
	Issue(auth.Identity) (string, error)
	Verify(token string) (auth.Identity, error)
}

type PasswordChecker interface {
	Check(hash, password string) bool
}

// identityHandler receives the verified caller as an argument.
type identityHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

type Authenticator struct {
	Tokens Tokens
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	tok, ok := strings.CutPrefix(h, "Bearer ")
	tok = strings.TrimSpace(tok)
	return tok, ok && tok != ""
}

// Require answers 401 without a token and 403 for a bad one.
func (a *Authenticator) Require(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearer(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		id, err := a.Tokens.Verify(tok)
		if err != nil {
			writeMessage(w, http.StatusForbidden, "invalid token")
			return
		}
		next(w, r, id)
	}
}

// Optional passes the zero Identity when no token is sent.
func (a *Authenticator) Optional(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearer(r); !ok {
			next(w, r, auth.Identity{})
			return
		}
		a.Require(next)(w, r)
	}
}

func requireAdmin(w http.ResponseWriter, id auth.Identity) bool {
	if !id.IsAdmin() {
		writeMessage(w, http.StatusForbidden, "Forbidden: Not an admin")
		return false
	}
	return true
}

type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

type AuthHandler struct {
	Users  UserLookup
	Hasher PasswordChecker
	Tokens Tokens
	Log    zerolog.Logger
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	User    users.User `json:"user"`
	Token   string     `json:"token"`
	Message string     `json:"message"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		h.Log.Error().Err(err).Msg("login lookup failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err != nil || !h.Hasher.Check(u.Password, req.Password) {
		writeMessage(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := h.Tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		h.Log.Error().Err(err).Int64("user_id", u.ID).Msg("issue token")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{User: u, Token: token, Message: "Login successful"})
}

func (h *AuthHandler) me(w http.ResponseWriter, _ *http.Request, id auth.Identity) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "token ok", "user": id})
}
