package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	authsvc "github.com/webnexa/studio-api/internal/auth"
	authhttp "github.com/webnexa/studio-api/internal/http/auth"
	inquiryhttp "github.com/webnexa/studio-api/internal/http/inquiry"
	invoicehttp "github.com/webnexa/studio-api/internal/http/invoice"
	"github.com/webnexa/studio-api/internal/http/middleware"
	notificationhttp "github.com/webnexa/studio-api/internal/http/notification"
	tickethttp "github.com/webnexa/studio-api/internal/http/ticket"
	userhttp "github.com/webnexa/studio-api/internal/http/user"
	"github.com/webnexa/studio-api/internal/user"
)

type Handlers struct {
	Auth          *authhttp.Handler
	Users         *userhttp.Handler
	Invoices      *invoicehttp.Handler
	Notifications *notificationhttp.Handler
	Inquiries     *inquiryhttp.Handler
	Tickets       *tickethttp.Handler
}

func New(h Handlers, tokens *authsvc.TokenProvider, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 req/s with a burst of 10, per IP, on the unauthenticated surface.
	public := middleware.NewRateLimiter(rate.Limit(5), 10)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))

		r.Group(func(r chi.Router) {
			r.Use(public.Limit)
			r.Route("/auth", h.Auth.Routes)
			r.Route("/inquiries", h.Inquiries.PublicRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))

			r.Route("/notifications", h.Notifications.Routes)
			r.Route("/invoices", func(r chi.Router) {
				h.Invoices.SharedRoutes(r)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleClient))
					h.Invoices.ClientRoutes(r)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleAdmin))
					h.Invoices.AdminRoutes(r)
				})
			})

			r.Route("/tickets", func(r chi.Router) {
				h.Tickets.SharedRoutes(r)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleClient))
					h.Tickets.ClientRoutes(r)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleAdmin))
					h.Tickets.AdminRoutes(r)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(user.RoleAdmin))

				r.Route("/users", h.Users.AdminRoutes)
				r.Route("/admin/inquiries", h.Inquiries.AdminRoutes)
			})
		})
	})

	return router
}
