// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports,
// TLS, logging level, CORS, body limits). AppConfig is everything
// specific to RideHub: backends, token signing, the media host and the
// notification broker.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// API token configuration. The SPA authenticates with an HS256
	// token carried in an HTTP-only cookie or an Authorization header.
	TokenSecret string        // Signing key (must be strong in production)
	TokenTTL    time.Duration // Token lifetime (e.g., 72h)

	// Media host configuration (S3-compatible object storage for
	// licence images, profile photos, club logos and event banners).
	MediaEndpoint  string
	MediaAccessKey string
	MediaSecretKey string
	MediaBucket    string
	MediaUseSSL    bool

	// Notification broker (optional). Blank URI disables publishing.
	AMQPURI   string
	AMQPQueue string

	// Initial admin bootstrap: created at startup when no admin
	// account exists yet. Blank values skip the bootstrap.
	AdminEmail    string
	AdminPassword string
}
