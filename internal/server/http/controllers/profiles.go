package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/elapsed"
	"github.com/GooseXRL8/flowerlove/internal/observability"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	profilesvc "github.com/GooseXRL8/flowerlove/internal/services/profiles"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// defaultActivityLimit caps activity pages when no limit is given.
const defaultActivityLimit = 50

// ProfilesController serves profiles, their settings, the live counter,
// the photo gallery and the activity feed.
type ProfilesController struct {
	rt     *runtime.Runtime
	svc    *profilesvc.Service
	auth   *Authenticator
	logger logpkg.Logger
}

func NewProfilesController(rt *runtime.Runtime, svc *profilesvc.Service, auth *Authenticator, logger logpkg.Logger) *ProfilesController {
	return &ProfilesController{rt: rt, svc: svc, auth: auth, logger: logger}
}

// RegisterRoutes registers all profile routes with the given mux.
//
// Every route requires a session; admin-only operations are enforced by
// the service.
func (c *ProfilesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/profiles", c.auth.Require(c.handleList))
	mux.HandleFunc("POST /v1/profiles", c.auth.Require(c.handleCreate))
	mux.HandleFunc("GET /v1/profiles/{id}", c.auth.Require(c.handleGet))
	mux.HandleFunc("PATCH /v1/profiles/{id}", c.auth.Require(c.handleUpdate))
	mux.HandleFunc("DELETE /v1/profiles/{id}", c.auth.Require(c.handleDelete))

	mux.HandleFunc("GET /v1/profiles/{id}/counter", c.auth.Require(c.handleCounter))
	mux.HandleFunc("GET /v1/profiles/{id}/counter/stream", c.auth.Require(c.handleCounterStream))

	mux.HandleFunc("GET /v1/profiles/{id}/photos", c.auth.Require(c.handleListPhotos))
	mux.HandleFunc("POST /v1/profiles/{id}/photos", c.auth.Require(c.handleAddPhoto))
	mux.HandleFunc("DELETE /v1/profiles/{id}/photos/{pid}", c.auth.Require(c.handleDeletePhoto))

	mux.HandleFunc("GET /v1/profiles/{id}/activity", c.auth.Require(c.handleActivity))
}

func (c *ProfilesController) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := c.svc.List(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, map[string]any{"profiles": list})
}

type createProfileReq struct {
	Name string `json:"name"`
}

func (c *ProfilesController) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProfileReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := c.svc.Create(r.Context(), currentUser(r), req.Name)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeCreated(w, p)
}

func (c *ProfilesController) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := c.svc.Get(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, p)
}

// handleUpdate applies a settings patch. Absent fields are left unchanged.
func (c *ProfilesController) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch profilesvc.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := c.svc.UpdateSettings(r.Context(), currentUser(r), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, p)
}

func (c *ProfilesController) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Delete(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeNoContent(w)
}

func (c *ProfilesController) handleCounter(w http.ResponseWriter, r *http.Request) {
	snap, err := c.svc.Counter(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, snapshotView(snap))
}

// handleCounterStream pushes a "counter" SSE event immediately and then on
// every tick until the client disconnects.
func (c *ProfilesController) handleCounterStream(w http.ResponseWriter, r *http.Request) {
	actor, id := currentUser(r), r.PathValue("id")
	if _, err := c.svc.Get(r.Context(), actor, id); err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	sink := newSSEWriter(w)
	sink.Start()
	closed := observability.CounterStreamOpened()
	defer closed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sub, err := c.svc.Watch(ctx, actor, id, func(snap elapsed.Snapshot) {
		if err := sink.Event("counter", snapshotView(snap)); err != nil {
			cancel()
		}
	}, elapsed.WithPanicHook(observability.TickPanicHook("counter_stream")))
	if err != nil {
		_ = sink.Event("error", map[string]string{"error": err.Error()})
		return
	}
	<-sub.Done()
}

type addPhotoReq struct {
	URL string `json:"url"`
}

func (c *ProfilesController) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := c.svc.ListPhotos(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeJSON(w, map[string]any{
		"photos": photos,
		"limit":  c.rt.Config().Profiles.MaxPhotosPerProfile,
	})
}

func (c *ProfilesController) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	var req addPhotoReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	ph, err := c.svc.AddPhoto(r.Context(), currentUser(r), r.PathValue("id"), req.URL)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeCreated(w, ph)
}

func (c *ProfilesController) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.DeletePhoto(r.Context(), currentUser(r), r.PathValue("id"), r.PathValue("pid")); err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	writeNoContent(w)
}

// handleActivity pages through the profile's activity feed, newest first.
//
// Query: limit (default 50), start (sequence to resume from, as returned in
// "next"), order ("asc" for oldest first).
func (c *ProfilesController) handleActivity(w http.ResponseWriter, r *http.Request) {
	p, err := c.svc.Get(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	q := r.URL.Query()
	opts := activity.ReadOptions{
		Limit:   parseLimit(q.Get("limit")),
		Reverse: q.Get("order") != "asc",
	}
	if opts.Limit == 0 {
		opts.Limit = defaultActivityLimit
	}
	if s := q.Get("start"); s != "" {
		if opts.Start = uint64(parseLimit(s)); opts.Start == 0 {
			writeError(w, http.StatusBadRequest, "invalid start")
			return
		}
	}
	items, next, err := c.rt.Activity().Read(p.ID, opts)
	if err != nil {
		writeServiceError(w, c.logger, err)
		return
	}
	if items == nil {
		items = []activity.Item{}
	}
	writeJSON(w, map[string]any{"items": items, "next": next})
}

type stageView struct {
	Level       int    `json:"level"`
	Size        int    `json:"size"`
	Petals      int    `json:"petals"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type snapshotJSON struct {
	Start      time.Time         `json:"start"`
	Now        time.Time         `json:"now"`
	Breakdown  elapsed.Breakdown `json:"breakdown"`
	ApproxDays int               `json:"approxDays"`
	Stage      stageView         `json:"stage"`
	Milestone  string            `json:"milestone"`
	Text       string            `json:"text"`
}

func snapshotView(s elapsed.Snapshot) snapshotJSON {
	return snapshotJSON{
		Start:      s.Start,
		Now:        s.Now,
		Breakdown:  s.Breakdown,
		ApproxDays: s.ApproxDays,
		Stage: stageView{
			Level:       int(s.Stage),
			Size:        s.Stage.Size(),
			Petals:      s.Stage.PetalCount(),
			Color:       s.Stage.Color(),
			Description: s.Stage.Description(),
		},
		Milestone: s.Milestone,
		Text:      s.Text,
	}
}
