// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for RideHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_secret, etc.
//   - Environment variables: RIDEHUB_MONGO_URI, RIDEHUB_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ridehub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "token_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HS256 token signing key (must be strong in production)"},
	{Name: "token_ttl", Default: "72h", Desc: "API token lifetime (e.g., 24h, 72h)"},

	// Media host (S3-compatible)
	{Name: "media_endpoint", Default: "localhost:9000", Desc: "Media host endpoint (host:port)"},
	{Name: "media_access_key", Default: "minioadmin", Desc: "Media host access key"},
	{Name: "media_secret_key", Default: "minioadmin", Desc: "Media host secret key"},
	{Name: "media_bucket", Default: "ridehub-media", Desc: "Media host bucket name"},
	{Name: "media_use_ssl", Default: false, Desc: "Use TLS when talking to the media host"},

	// Notification broker
	{Name: "amqp_uri", Default: "", Desc: "AMQP broker URI (blank disables notifications)"},
	{Name: "amqp_queue", Default: "ridehub.notifications", Desc: "AMQP queue name for notification events"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Initial admin email (created on startup when no admin exists)"},
	{Name: "admin_password", Default: "", Desc: "Initial admin password"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, RIDEHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "RIDEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", 72*time.Hour),

		MediaEndpoint:  appValues.String("media_endpoint"),
		MediaAccessKey: appValues.String("media_access_key"),
		MediaSecretKey: appValues.String("media_secret_key"),
		MediaBucket:    appValues.String("media_bucket"),
		MediaUseSSL:    appValues.Bool("media_use_ssl"),

		AMQPURI:   appValues.String("amqp_uri"),
		AMQPQueue: appValues.String("amqp_queue"),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked up front so configuration errors surface
// before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MediaEndpoint == "" || appCfg.MediaBucket == "" {
		return fmt.Errorf("media_endpoint and media_bucket must be set")
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if coreCfg.Env == "prod" && appCfg.TokenSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("token_secret must be changed for production")
	}
	return nil
}
