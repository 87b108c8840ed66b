package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cajabooks/internal/logger"
)

// NewRouter wires the JSON API routes and middleware stack.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/closures", func(r chi.Router) {
			r.Get("/", h.ClosuresList)
			r.Post("/", h.ClosuresCreate)
			r.Put("/{id}", h.ClosuresUpdate)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ExpensesList)
			r.Get("/stats", h.ExpensesStats)
			r.Get("/categories", h.ExpensesCategories)
			r.Post("/import", h.ExpensesImport)
			r.Post("/preview", h.ExpensesPreview)
		})

		r.Get("/cashiers", h.CashiersList)
		r.Post("/cashiers", h.CashiersCreate)
		r.Get("/stores", h.StoresList)
		r.Post("/stores", h.StoresCreate)

		r.Get("/jobs/{id}", h.JobStatus)
		r.Get("/version", h.APIVersion)
	})

	return r
}
