package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kiva-console/internal/config"
	"kiva-console/internal/guard"
	"kiva-console/internal/handler"
	"kiva-console/internal/middleware"
	"kiva-console/internal/model"
	"kiva-console/internal/view"
)

type Handlers struct {
	Presenter *handler.Presenter
	Auth      *handler.AuthHandler
	Screens   *handler.ScreenHandler
	Users     *handler.UserHandler
	QR        *handler.QRHandler
	// Session streams session events; mounted outside the request timeout.
	Session http.HandlerFunc
}

func New(cfg *config.Config, session guard.StateSource, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(0, cfg.LoginRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(func() string { return session.State().Username() }))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.SameOrigin(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/static/*", view.Static())
	if h.Session != nil {
		r.Get("/ws/session", h.Session)
	}

	r.Group(func(console chi.Router) {
		console.Use(middleware.Timeout(cfg.RequestTimeout))

		console.Get("/login", h.Auth.LoginForm)
		console.Post("/login", h.Auth.Login)
		console.Post("/logout", h.Auth.Logout)
		console.Get("/api/session", h.Auth.Session)

		console.Get("/qr/{token}", h.QR.Redirect)
		console.Get("/order-status/{token}", h.QR.Status)

		signedIn := guard.Require(session, h.Presenter, "")
		console.With(signedIn).Get("/", h.Screens.Dashboard)
		console.With(signedIn).Get("/dashboard", h.Screens.Dashboard)
		console.With(signedIn).Get("/orders", h.Screens.Orders)
		console.With(signedIn).Get("/orders/{id}", h.Screens.Order)
		console.With(signedIn).Get("/clients", h.Screens.Clients)
		console.With(signedIn).Get("/devices", h.Screens.Devices)
		console.With(signedIn).Get("/reports", h.Screens.Reports)

		adminOnly := guard.Require(session, h.Presenter, model.RoleAdmin)
		console.With(adminOnly).Get("/users", h.Users.List)
		console.With(adminOnly).Post("/users", h.Users.Register)

		console.NotFound(h.Presenter.NotFound)
	})

	return r
}
