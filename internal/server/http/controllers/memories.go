package controllers

import (
	"net/http"

	memorysvc "github.com/GooseXRL8/flowerlove/internal/services/memories"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// MemoriesController serves a profile's memories.
type MemoriesController struct {
	svc    *memorysvc.Service
	auth   *Authenticator
	logger logpkg.Logger
}

func NewMemoriesController(svc *memorysvc.Service, auth *Authenticator, logger logpkg.Logger) *MemoriesController {
	return &MemoriesController{svc: svc, auth: auth, logger: logger}
}

// RegisterRoutes registers memory routes with the given mux.
func (c *MemoriesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/profiles/{id}/memories", c.auth.Require(c.handleList))
	mux.HandleFunc("POST /v1/profiles/{id}/memories", c.auth.Require(c.handleCreate))
	mux.HandleFunc("GET /v1/profiles/{id}/memories/{mid}", c.auth.Require(c.handleGet))
	mux.HandleFunc("PUT /v1/profiles/{id}/memories/{mid}", c.auth.Require(c.handleUpdate))
	mux.HandleFunc("DELETE /v1/profiles/{id}/memories/{mid}", c.auth.Require(c.handleDelete))
	mux.HandleFunc("POST /v1/profiles/{id}/memories/{mid}/favorite", c.auth.Require(c.handleToggleFavorite))
}

// handleList returns memories newest first.
//
// Query: filter (CEL expression over `memory`), favorites ("true" or "1").
func (c *MemoriesController) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := c.svc.List(r.Context(), currentUser(r), r.PathValue("id"), memorysvc.ListOptions{
		Filter:        q.Get("filter"),
		FavoritesOnly: parseBool(q.Get("favorites")),
	})
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, map[string]any{"memories": list})
}

func (c *MemoriesController) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in memorysvc.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	m, err := c.svc.Create(r.Context(), currentUser(r), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeCreated(w, m)
}

func (c *MemoriesController) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := c.svc.Get(r.Context(), currentUser(r), r.PathValue("id"), r.PathValue("mid"))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, m)
}

func (c *MemoriesController) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in memorysvc.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	m, err := c.svc.Update(r.Context(), currentUser(r), r.PathValue("id"), r.PathValue("mid"), in)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, m)
}

func (c *MemoriesController) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Delete(r.Context(), currentUser(r), r.PathValue("id"), r.PathValue("mid")); err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeNoContent(w)
}

func (c *MemoriesController) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	m, err := c.svc.ToggleFavorite(r.Context(), currentUser(r), r.PathValue("id"), r.PathValue("mid"))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, m)
}
