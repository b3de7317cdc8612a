package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-orders-api/internal/auth"
	"github.com/ariefcatur/go-orders-api/internal/users"
	"github.com/rs/zerolog"
)

type UserStore interface {
	UserLookup
	List(ctx context.Context) ([]users.User, error)
	FindByID(ctx context.Context, id int64) (users.User, error)
	Create(ctx context.Context, nu users.NewUser) (int64, error)
	Update(ctx context.Context, id int64, p users.Patch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type UsersHandler struct {
	Repo UserStore
	Log  zerolog.Logger
}

type createUserResp struct {
	Message string     `json:"message"`
	ID      int64      `json:"id"`
	User    users.User `json:"user"`
}

type userIDResp struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.Repo.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list users")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(all) == 0 {
		writeMessage(w, http.StatusNotFound, "No users found")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	u, err := h.Repo.FindByID(r.Context(), id)
	if errors.Is(err, users.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Int64("user_id", id).Msg("find user")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// create is open for sign-up; only an admin may create another admin.
func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var nu users.NewUser
	if err := decodeJSON(r, &nu); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if nu.Role == auth.RoleAdmin && !requireAdmin(w, caller) {
		return
	}

	id, err := h.Repo.Create(r.Context(), nu)
	if err != nil {
		h.Log.Warn().Err(err).Msg("create user")
		writeMessage(w, http.StatusBadRequest, "Failed to create user")
		return
	}
	if nu.Role == "" {
		nu.Role = auth.RoleCustomer
	}
	writeJSON(w, http.StatusCreated, createUserResp{
		Message: "User created",
		ID:      id,
		User: users.User{
			ID: id, FirstName: nu.FirstName, LastName: nu.LastName, Email: nu.Email,
			Phone: nu.Phone, Address: nu.Address, Role: nu.Role,
		},
	})
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !caller.CanActOn(id) {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}
	var p users.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.Role != nil && !requireAdmin(w, caller) {
		return
	}

	updated, err := h.Repo.Update(r.Context(), id, p)
	if err != nil || !updated {
		writeMessage(w, http.StatusBadRequest, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, userIDResp{Message: "User updated", ID: id})
}

func (h *UsersHandler) remove(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !caller.CanActOn(id) {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	deleted, err := h.Repo.Delete(r.Context(), id)
	if err != nil || !deleted {
		writeMessage(w, http.StatusBadRequest, "Failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, userIDResp{Message: "User deleted", ID: id})
}
