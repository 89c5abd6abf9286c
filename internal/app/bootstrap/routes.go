// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	clubmembershipsfeature "github.com/ridehubhq/ridehub/internal/app/features/clubmemberships"
	clubsfeature "github.com/ridehubhq/ridehub/internal/app/features/clubs"
	eventsfeature "github.com/ridehubhq/ridehub/internal/app/features/events"
	healthfeature "github.com/ridehubhq/ridehub/internal/app/features/health"
	loginfeature "github.com/ridehubhq/ridehub/internal/app/features/login"
	profilefeature "github.com/ridehubhq/ridehub/internal/app/features/profile"
	registrationsfeature "github.com/ridehubhq/ridehub/internal/app/features/registrations"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. RideHub is a JSON API for an external
// SPA: every surface is a feature package with its own subrouter, and
// the token middleware runs globally so any handler can ask for the
// current user.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	tokens, err := auth.NewManager(appCfg.TokenSecret, appCfg.TokenTTL, secure, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.RideHubMongoDatabase

	r := chi.NewRouter()

	// Global auth middleware: loads the verified token user into
	// context so handlers can call auth.CurrentUser(r).
	r.Use(tokens.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.RideHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, tokens, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))

	// Rider profiles (public sign-up, token-guarded edit)
	profileHandler := profilefeature.NewHandler(db, deps.Media, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	// Event and community registrations
	registrationsHandler := registrationsfeature.NewHandler(db, deps.Media, deps.Notifier, logger)
	r.Mount("/registrations", registrationsfeature.Routes(registrationsHandler))

	// Clubs and club moderation
	clubsHandler := clubsfeature.NewHandler(db, deps.Media, deps.Notifier, logger)
	r.Mount("/clubs", clubsfeature.Routes(clubsHandler))

	// Club membership join/leave
	membershipsHandler := clubmembershipsfeature.NewHandler(db, logger)
	r.Mount("/club-memberships", clubmembershipsfeature.Routes(membershipsHandler))

	// Events (public listing, admin CRUD)
	eventsHandler := eventsfeature.NewHandler(db, deps.Media, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))

	return r, nil
}
