package routes

import (
	"net/http"

	_ "github.com/Dosada05/async-tournament/docs"
	"github.com/Dosada05/async-tournament/handlers"
	"github.com/Dosada05/async-tournament/middleware"
	"github.com/Dosada05/async-tournament/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Security collects what the route groups need to authenticate callers.
type Security struct {
	Sessions       *middleware.SessionTokens
	Users          middleware.UserResolver
	APIKeys        middleware.APIKeyVerifier
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	security Security,
	apiHandler *handlers.APIHandler,
	reviewHandler *handlers.ReviewHandler,
	authHandler *handlers.AuthHandler,
	feedHandler *handlers.FeedHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Get("/healthz", healthHandler.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/login", authHandler.Login)
	router.Get("/callback", authHandler.Callback)
	router.Get("/logout", authHandler.Logout)

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: security.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(security.RateLimiter.PerAddress)
		r.Use(middleware.RequireAPIKey(security.APIKeys, services.APIScopeAsyncTournament))
		r.Use(security.RateLimiter.Middleware)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", apiHandler.ListTournaments)
			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/", apiHandler.GetTournament)
				r.Get("/races", apiHandler.ListRaces)
				r.Get("/pools", apiHandler.ListPools)
				r.Get("/pools/{pool_id:[0-9]+}", apiHandler.GetPool)
				r.Get("/permalinks", apiHandler.ListPermalinks)
				r.Get("/permalinks/{permalink_id:[0-9]+}", apiHandler.GetPermalink)
				r.Get("/whitelist", apiHandler.ListWhitelist)
			})
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(security.Sessions))
		r.Use(middleware.LoadUser(security.Users))

		r.Get("/me", authHandler.Me)
		r.Route("/races/{tournament_id:[0-9]+}", func(r chi.Router) {
			r.Get("/", reviewHandler.Queue)
			r.Get("/feed", feedHandler.ServeWs)
			r.Get("/review/{race_id:[0-9]+}", reviewHandler.Review)
			r.Post("/review/{race_id:[0-9]+}", reviewHandler.Submit)
		})
	})
}
