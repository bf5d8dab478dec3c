package main

import (
	"context"
	"log/slog"
	"os"

	"quizdash/config"
	"quizdash/internal/delivery"
	"quizdash/internal/delivery/api"
	"quizdash/internal/delivery/api/middleware"
	"quizdash/internal/delivery/api/router/handler"
	"quizdash/internal/infra/auth"
	"quizdash/internal/infra/firebase"
	identity "quizdash/internal/infra/identity/firebase"
	logs "quizdash/internal/infra/log"
	"quizdash/internal/infra/persistence"
	"quizdash/internal/infra/pubsub"
	"quizdash/internal/infra/qrcode"
	"quizdash/internal/usecase/impl"
	"quizdash/internal/usecase/session"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		persistence.Module,
		pubsub.Module,
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		firebase.NewApp,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			identity.NewProviderFactory,
			auth.NewJWTService,
			qrcode.NewFromConfig,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			session.NewRegistryFromConfig,
			impl.NewSessionService,
			impl.NewStreakService,
			impl.NewProgressService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewHealthHandler,
			handler.NewSessionHandler,
			handler.NewStreakHandler,
			handler.NewProgressHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
