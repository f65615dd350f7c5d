package routes

import (
	"github.com/dartclub/league-system/handlers"
	"github.com/dartclub/league-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes mounts the full API surface. Reads are public so that league
// pages and the browser extension work without a login; everything that
// mutates state sits behind the admin JWT, except the autodarts ingest
// endpoint which the extension calls unauthenticated.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	fixtureHandler *handlers.FixtureHandler,
	autodartsHandler *handlers.AutodartsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	requireAdmin := middleware.RequireAdmin(jwtSecret)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.ListHandler)
			r.Get("/{playerID}", playerHandler.GetByIDHandler)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", playerHandler.CreateHandler)
				r.Delete("/{playerID}", playerHandler.DeleteHandler)
				r.Post("/{playerID}/avatar", playerHandler.UploadAvatarHandler)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
			r.Get("/{tournamentID}/overview", tournamentHandler.OverviewHandler)
			r.Get("/{tournamentID}/fixtures", tournamentHandler.FixturesHandler)
			r.Get("/{tournamentID}/fixtures/round/{roundNumber}", tournamentHandler.FixturesByRoundHandler)
			r.Get("/{tournamentID}/next-fixture", tournamentHandler.NextFixtureHandler)
			r.Get("/{tournamentID}/standings", tournamentHandler.StandingsHandler)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", tournamentHandler.CreateHandler)
				r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
				r.Post("/{tournamentID}/start", tournamentHandler.StartHandler)
				r.Post("/{tournamentID}/end", tournamentHandler.EndHandler)
			})
		})

		r.Route("/fixtures", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/{fixtureID}/start", fixtureHandler.StartHandler)
			r.Post("/{fixtureID}/result", fixtureHandler.SubmitResultHandler)
		})

		r.Post("/autodarts/game-result", autodartsHandler.SubmitGameResultHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
