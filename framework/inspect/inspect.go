// Package inspect exposes a container's registrations over HTTP for
// operational diagnostics.
package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/loomkit/loom/framework/registry"
)

// containerView is the JSON shape of one container in the chain.
type containerView struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description,omitempty"`
	Services    []registry.ServiceInfo `json:"services"`
}

// Handler serves the inspection API for c:
//
//	GET /services  — registrations of c and every ancestor, child first
//	GET /healthz   — liveness probe
func Handler(c *registry.Container) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/services", func(w http.ResponseWriter, req *http.Request) {
		var chain []containerView
		for node := c; node != nil; node = node.Parent() {
			chain = append(chain, containerView{
				ID:          node.ID(),
				Description: node.Description(),
				Services:    node.Snapshot(),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"containers": chain})
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
