package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/api/v1/auth/login", methodOnly(http.MethodPost, h.Login))
}

// RegisterFacilityRoutes mounts the reference data endpoints behind auth.
func (r *Router) RegisterFacilityRoutes(h *FacilityHandler, auth func(http.HandlerFunc) http.HandlerFunc) {
	r.Handle(facilitiesPath, auth(h.ServeHTTP))
	r.Handle(facilitiesPath+"/", auth(h.ServeHTTP))
}

func (r *Router) RegisterSyncRoutes(h *SyncHandler, auth func(http.HandlerFunc) http.HandlerFunc) {
	r.Handle("/api/v1/pregled/sync", methodOnly(http.MethodPost, auth(h.Sync)))
}
