package host

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/appfx/pkg/app"
	"github.com/marmos91/appfx/pkg/meta/command"
	"github.com/marmos91/appfx/pkg/meta/view"
)

type handlers struct {
	app     *app.App
	started time.Time
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	InstanceID string    `json:"instance_id"`
	Phase      string    `json:"phase"`
	Topology   string    `json:"topology"`
	Uptime     string    `json:"uptime"`
}

// health reports 200 while the application is running and 503 otherwise.
func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	phase := h.app.Phase()
	resp := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		InstanceID: h.app.InstanceID(),
		Phase:      phase.String(),
		Topology:   h.app.Environment().Topology().String(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
	}
	status := http.StatusOK
	if phase != app.PhaseRunning {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// webCommands prefers the frozen snapshot so readers never take the
// builder's lock once startup is complete.
func (h *handlers) webCommands() []command.WebCommand {
	repo := h.app.Store().WebCommands()
	if snap := repo.Snapshot(); snap != nil {
		return snap.All()
	}
	return repo.List()
}

func (h *handlers) listWebCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.webCommands())
}

func (h *handlers) getWebCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	repo := h.app.Store().WebCommands()

	var (
		cmd command.WebCommand
		ok  bool
	)
	if snap := repo.Snapshot(); snap != nil {
		cmd, ok = snap.Get(name)
	} else {
		cmd, ok = repo.Get(name)
	}
	if !ok {
		notFound(w, fmt.Sprintf("web command %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func (h *handlers) listDesktopCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Store().DesktopCommands().List())
}

// PluginInfo describes a loaded plugin.
type PluginInfo struct {
	ID     string `json:"id"`
	Module string `json:"module,omitempty"`
}

func (h *handlers) listPlugins(w http.ResponseWriter, _ *http.Request) {
	plugins := h.app.Plugins().AllPlugins()
	out := make([]PluginInfo, 0, len(plugins))
	for _, p := range plugins {
		info := PluginInfo{ID: p.ID()}
		if mod := p.Module(); mod != nil {
			info.Module = mod.Name()
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getBlock(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	b, ok := h.app.Store().AggtBlocks().Get(name)
	if !ok {
		notFound(w, fmt.Sprintf("block %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handlers) getView(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	m, err := h.app.Store().Views().Create(entity)
	switch {
	case errors.Is(err, view.ErrUnknownEntity):
		notFound(w, fmt.Sprintf("entity %q not found", entity))
		return
	case err != nil:
		internalServerError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// WhoAmIResponse is the body of GET /whoami.
type WhoAmIResponse struct {
	ID        string    `json:"id"`
	Principal string    `json:"principal,omitempty"`
	Created   time.Time `json:"created"`
	Strategy  string    `json:"strategy"`
}

func (h *handlers) whoami(w http.ResponseWriter, r *http.Request) {
	p := h.app.Environment().IdentityProvider()
	if p == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "identity strategy not initialized")
		return
	}
	c := p.Current(r.Context())
	writeJSON(w, http.StatusOK, WhoAmIResponse{
		ID:        c.ID(),
		Principal: c.Principal(),
		Created:   c.Created().UTC(),
		Strategy:  p.Kind().String(),
	})
}
