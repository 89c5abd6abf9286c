// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/ridehubhq/ridehub/internal/app/store/users"
	"github.com/ridehubhq/ridehub/internal/app/system/authutil"
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// RideHub uses it to seed the first admin account: when no admin exists
// and admin_email/admin_password are configured, one is created so the
// admin surface is reachable on a fresh database.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	users := userstore.New(deps.RideHubMongoDatabase)
	n, err := users.CountAdmins(opCtx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if err := authutil.ValidatePassword(appCfg.AdminPassword); err != nil {
		logger.Error("admin bootstrap password rejected", zap.Error(err))
		return err
	}
	hash, err := authutil.HashPassword(appCfg.AdminPassword)
	if err != nil {
		return err
	}

	admin, err := users.Create(opCtx, models.User{
		FullName:     "Administrator",
		Email:        appCfg.AdminEmail,
		Phone:        "0000000000",
		PasswordHash: hash,
		Role:         "admin",
	})
	if err != nil {
		return err
	}
	logger.Info("bootstrapped initial admin",
		zap.String("id", admin.ID.Hex()),
		zap.String("email", admin.Email))
	return nil
}
