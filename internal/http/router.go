package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/karimelh/salespoint/internal/http/auth"
	"github.com/karimelh/salespoint/internal/http/customer"
	"github.com/karimelh/salespoint/internal/http/dashboard"
	"github.com/karimelh/salespoint/internal/http/importcsv"
	"github.com/karimelh/salespoint/internal/http/product"
	"github.com/karimelh/salespoint/internal/http/sale"
	"github.com/karimelh/salespoint/internal/http/settings"
)

func New(
	tokens *auth.Tokens,
	authV1 *auth.Handler,
	productsV1 *product.Handler,
	customersV1 *customer.Handler,
	salesV1 *sale.Handler,
	settingsV1 *settings.Handler,
	dashboardV1 *dashboard.Handler,
	importV1 *importcsv.Handler,
	uploadsDir string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Uploaded product images and logos are served as-is.
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			authV1.Routes(r)

			r.Group(func(r chi.Router) {
				r.Use(tokens.Middleware)
				authV1.ProtectedRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware)

			r.Route("/products", productsV1.Routes)
			r.Route("/customers", customersV1.Routes)

			r.Route("/sales", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				salesV1.Routes(r)
			})

			r.Route("/dashboard", dashboardV1.Routes)
			r.Route("/import", importV1.Routes)

			r.Route("/settings", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				settingsV1.Routes(r)
			})
		})
	})

	return router
}
