package controllers

import (
	"net/http"

	accountsvc "github.com/GooseXRL8/flowerlove/internal/services/accounts"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// AccountsController serves session and user management endpoints.
type AccountsController struct {
	svc    *accountsvc.Service
	auth   *Authenticator
	logger logpkg.Logger
}

func NewAccountsController(svc *accountsvc.Service, auth *Authenticator, logger logpkg.Logger) *AccountsController {
	return &AccountsController{svc: svc, auth: auth, logger: logger}
}

// RegisterRoutes registers auth and user routes with the given mux.
func (c *AccountsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/auth/login", c.handleLogin)
	mux.HandleFunc("POST /v1/auth/logout", c.auth.Require(c.handleLogout))
	mux.HandleFunc("GET /v1/auth/me", c.auth.Require(c.handleMe))
	mux.HandleFunc("POST /v1/auth/password", c.auth.Require(c.handleChangePassword))

	mux.HandleFunc("GET /v1/users", c.auth.Require(c.handleListUsers))
	mux.HandleFunc("POST /v1/users", c.auth.Require(c.handleCreateUser))
	mux.HandleFunc("DELETE /v1/users/{id}", c.auth.Require(c.handleDeleteUser))
	mux.HandleFunc("POST /v1/users/{id}/assign", c.auth.Require(c.handleAssign))
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin exchanges credentials for a bearer token.
func (c *AccountsController) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sess, u, err := c.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, map[string]any{
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
		"user":      viewUser(u),
	})
}

func (c *AccountsController) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Logout(r.Context(), bearerToken(r)); err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeNoContent(w)
}

func (c *AccountsController) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, viewUser(currentUser(r)))
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (c *AccountsController) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.svc.ChangePassword(r.Context(), currentUser(r), req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeNoContent(w)
}

func (c *AccountsController) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.svc.ListUsers(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, viewUser(u))
	}
	writeJSON(w, map[string]any{"users": out})
}

// handleCreateUser creates an account. The generated password is returned
// once in the response.
func (c *AccountsController) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req accountsvc.CreateUserInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, password, err := c.svc.CreateUser(r.Context(), currentUser(r), req)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeCreated(w, map[string]any{"user": viewUser(u), "password": password})
}

func (c *AccountsController) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.DeleteUser(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeNoContent(w)
}

type assignReq struct {
	ProfileID string `json:"profileId"`
}

// handleAssign links the user to a profile; an empty profileId unassigns.
func (c *AccountsController) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, err := c.svc.AssignUserToProfile(r.Context(), currentUser(r), r.PathValue("id"), req.ProfileID)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, viewUser(u))
}
