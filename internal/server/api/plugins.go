package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/spatialtouch/internal/plugin"
)

// PluginHandler lists the discovered plugins so clients can offer them when
// creating bindings.
type PluginHandler struct {
	plugins PluginCatalog
}

// NewPluginHandler creates a handler over plugins.
func NewPluginHandler(plugins PluginCatalog) *PluginHandler {
	return &PluginHandler{plugins: plugins}
}

// Register adds the plugin routes to r.
func (h *PluginHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/plugins", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/plugins/{name}", h.get).Methods(http.MethodGet)
}

type pluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

func (h *PluginHandler) list(w http.ResponseWriter, r *http.Request) {
	list := h.plugins.List()
	manifests := make([]plugin.Manifest, 0, len(list))
	for _, p := range list {
		manifests = append(manifests, p.Manifest)
	}
	writeJSON(w, http.StatusOK, pluginsResponse{Plugins: manifests})
}

func (h *PluginHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.plugins.Get(mux.Vars(r)["name"])
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get plugin")
		return
	}
	writeJSON(w, http.StatusOK, p.Manifest)
}
