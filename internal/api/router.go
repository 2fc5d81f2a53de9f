package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/libms/library-backend/internal/api/handlers"
	"github.com/libms/library-backend/internal/auth"
	"github.com/libms/library-backend/internal/config"
	"github.com/libms/library-backend/internal/middleware"
	"github.com/libms/library-backend/internal/models"
	"github.com/libms/library-backend/internal/services"
)

type Deps struct {
	Cfg       config.Config
	TM        *auth.TokenManager
	AuthSvc   *services.AuthService
	BookSvc   *services.BookService
	UserSvc   *services.UserService
	BorrowSvc *services.BorrowService
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	authmw := middleware.NewAuthMiddleware(d.TM)
	librarian := middleware.RequireRole(string(models.RoleLibrarian))
	patron := middleware.RequireRole(string(models.RolePatron))

	ah := handlers.NewAuthHandler(d.AuthSvc)
	bh := handlers.NewBookHandler(d.BookSvc)
	uh := handlers.NewUserHandler(d.UserSvc)
	brh := handlers.NewBorrowHandler(d.BorrowSvc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bh.List)
			r.Get("/search", bh.Search)
			r.Get("/{id}", bh.Get)

			r.Group(func(r chi.Router) {
				r.Use(authmw.Auth, librarian)
				r.Get("/reports/overdue", bh.OverdueReport)
				r.Post("/", bh.Create)
				r.Put("/{id}", bh.Update)
				r.Delete("/{id}", bh.Delete)
			})
		})

		r.Route("/borrow", func(r chi.Router) {
			r.Use(authmw.Auth)

			r.Group(func(r chi.Router) {
				r.Use(patron)
				r.Post("/{bookId}", brh.Borrow)
				r.Post("/return/{bookId}", brh.Return)
				r.Get("/history", brh.OwnHistory)
			})

			r.Group(func(r chi.Router) {
				r.Use(librarian)
				r.Get("/history/{userId}", brh.UserHistory)
				r.Get("/overdue", brh.Overdue)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authmw.Auth, librarian)
			r.Get("/", uh.List)
			r.Get("/{id}", uh.Get)
			r.Put("/{id}", uh.Update)
			r.Delete("/{id}", uh.Delete)
		})
	})

	return r
}
