// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/ridehubhq/ridehub/internal/app/system/media"
	"github.com/ridehubhq/ridehub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	RideHubMongoClient   *mongo.Client
	RideHubMongoDatabase *mongo.Database

	// Media is the S3-compatible object store for uploaded images.
	Media media.Store

	// Notifier publishes domain events to the AMQP queue.
	// Nil when no broker is configured; Publish on nil is a no-op.
	Notifier *notify.Publisher
}
