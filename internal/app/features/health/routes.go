package health

import "github.com/go-chi/chi/v5"

// Routes is mounted at /health, outside /api and without sessions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}
