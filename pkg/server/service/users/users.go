package users

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/utils"
)

func NewHandler(mux *http.ServeMux, users UserLister, timeout time.Duration) *Handler {
	h := &Handler{
		users:   users,
		timeout: timeout,
	}
	h.RegisterRoutes(mux)

	return h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users/{$}", h.handlerUsersGet)
	mux.HandleFunc("GET /users/display-names", h.handlerDisplayNamesGet)
	mux.HandleFunc("GET /users/ids", h.handlerIDsGet)
	mux.HandleFunc("GET /users/user-principal-names", h.handlerPrincipalNamesGet)
}

func (h *Handler) handlerUsersGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerUsersGet")
	defer slog.Debug("<<handlerUsersGet")

	users, ok := h.listUsers(w, r)
	if !ok {
		return
	}

	response := struct {
		Users []directory.User `json:"users"`
	}{
		Users: users,
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handlerDisplayNamesGet(w http.ResponseWriter, r *http.Request) {
	users, ok := h.listUsers(w, r)
	if !ok {
		return
	}

	response := struct {
		Users []string `json:"users"`
	}{
		Users: project(users, func(u directory.User) string { return u.DisplayName }),
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handlerIDsGet(w http.ResponseWriter, r *http.Request) {
	users, ok := h.listUsers(w, r)
	if !ok {
		return
	}

	response := struct {
		UserIDs []string `json:"user_ids"`
	}{
		UserIDs: project(users, func(u directory.User) string { return u.ID }),
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handlerPrincipalNamesGet(w http.ResponseWriter, r *http.Request) {
	users, ok := h.listUsers(w, r)
	if !ok {
		return
	}

	response := struct {
		UserPrincipalNames []string `json:"user_principal_names"`
	}{
		UserPrincipalNames: project(users, func(u directory.User) string { return u.UserPrincipalName }),
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

// listUsers writes the error response itself and reports whether the caller should continue.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) ([]directory.User, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to list users", err)
		return nil, false
	}

	if users == nil {
		users = []directory.User{}
	}

	return users, true
}

// project keeps the non-empty values of field, in user order.
func project(users []directory.User, field func(directory.User) string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		if v := field(u); v != "" {
			out = append(out, v)
		}
	}

	return out
}
