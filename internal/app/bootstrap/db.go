// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/ridehubhq/ridehub/internal/app/system/indexes"
	"github.com/ridehubhq/ridehub/internal/app/system/media"
	"github.com/ridehubhq/ridehub/internal/app/system/notify"
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB establishes connections to MongoDB, the media host and the
// notification broker. The broker is optional; Mongo and the media
// host are not.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	mediaStore, err := media.NewMinioStore(ctx, media.Config{
		Endpoint:  appCfg.MediaEndpoint,
		AccessKey: appCfg.MediaAccessKey,
		SecretKey: appCfg.MediaSecretKey,
		Bucket:    appCfg.MediaBucket,
		UseSSL:    appCfg.MediaUseSSL,
	}, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("media host: %w", err)
	}

	var notifier *notify.Publisher
	if appCfg.AMQPURI != "" {
		notifier, err = notify.Connect(appCfg.AMQPURI, appCfg.AMQPQueue, logger)
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("notification broker: %w", err)
		}
	} else {
		logger.Info("no AMQP broker configured, notifications disabled")
	}

	return DBDeps{
		RideHubMongoClient:   client,
		RideHubMongoDatabase: client.Database(appCfg.MongoDatabase),
		Media:                mediaStore,
		Notifier:             notifier,
	}, nil
}

// EnsureSchema declares every index the domain's uniqueness rules
// depend on. Startup fails loudly when an index cannot be built.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.RideHubMongoDatabase); err != nil {
		logger.Error("index reconciliation failed", zap.Error(err))
		return err
	}
	logger.Info("indexes reconciled")
	return nil
}
