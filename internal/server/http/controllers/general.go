package controllers

import (
	"net/http"

	"github.com/GooseXRL8/flowerlove/internal/elapsed"
	"github.com/GooseXRL8/flowerlove/internal/observability"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	profilesvc "github.com/GooseXRL8/flowerlove/internal/services/profiles"
)

// GeneralController handles endpoints that need no session: health,
// metrics, the milestone tables and the public counter.
type GeneralController struct {
	rt *runtime.Runtime
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime) *GeneralController {
	return &GeneralController{rt: rt}
}

// RegisterRoutes registers general routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Health checks (/v1/healthz)
// - Prometheus metrics (/metrics)
// - Milestone tables and themes (/v1/milestones, /v1/themes)
// - The public engine endpoint (/v1/counter?start=)
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/healthz", c.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /v1/milestones", c.handleMilestones)
	mux.HandleFunc("GET /v1/themes", c.handleThemes)
	mux.HandleFunc("GET /v1/counter", c.handleCounter)
}

// handleHealth returns the health status of the service.
//
// Returns 200 OK with {"status": "ok"} if healthy, 503 Service Unavailable otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (c *GeneralController) handleMilestones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"monthly":  elapsed.MonthlyMilestones(),
		"yearly":   elapsed.YearlyMilestones(),
		"fallback": elapsed.DefaultMilestone,
	})
}

func (c *GeneralController) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"themes": profilesvc.Themes})
}

// handleCounter computes a snapshot for an arbitrary start instant.
//
// Query: start (RFC3339, YYYY-MM-DD or Unix ms), optional scheme
// ("flower" or "rose", default from config).
func (c *GeneralController) handleCounter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseTimestamp(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	scheme := c.rt.Config().Scheme()
	if name := q.Get("scheme"); name != "" {
		if scheme, err = elapsed.SchemeByName(name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	writeJSON(w, snapshotView(elapsed.Compute(start, c.rt.Clock().Now(), scheme)))
}
