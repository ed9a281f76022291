package router

import (
	userapp "github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/container"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/router/modules"
)

// InitModules builds all application modules from container singletons and
// registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	service := userapp.NewService(
		repo,
		container.GetJWT(),
		cfg.PasswordSalt,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetRabbitPub(),
	)

	userHandler := handlers.NewUserHandler(
		service,
		container.GetJWT(),
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)
	authHandler := handlers.NewAuthHandler(
		repo,
		service,
		container.GetRedis(),
		container.GetLogger(),
		cfg,
		container.GetRabbitPub(),
		container.GetPGPool(),
	)
	emailHandler := handlers.NewEmailHandler(
		container.GetRabbitPub(),
		container.GetLogger(),
		cfg,
	)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewEmailModule(emailHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
