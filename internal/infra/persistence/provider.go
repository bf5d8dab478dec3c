// Package persistence selects the profile store backend.
package persistence

import (
	"context"
	"log/slog"

	"quizdash/config"
	"quizdash/internal/domain/constants"
	"quizdash/internal/domain/repository"
	"quizdash/internal/errors"
	"quizdash/internal/infra/persistence/firestore"
	"quizdash/internal/infra/persistence/postgres"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/fx"
)

// Params holds dependencies for the profile store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	App    *firebase.App
}

// NewProfileRepository builds the ProfileRepository of the configured backend.
// Firestore is the default, matching where client apps keep the users collection.
func NewProfileRepository(params Params) (repository.ProfileRepository, error) {
	backend, collection := constants.ProfileStoreFirestore, "users"
	if store := params.Config.ProfileStore; store != nil {
		if store.Backend != "" {
			backend = store.Backend
		}
		if store.Collection != "" {
			collection = store.Collection
		}
	}

	switch backend {
	case constants.ProfileStoreFirestore:
		client, err := params.App.Firestore(params.Ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Firestore client")
		}

		params.Lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})

		params.Logger.Info("Using Firestore profile store",
			slog.String("collection", collection),
		)

		return firestore.NewProfileRepository(client, collection), nil

	case constants.ProfileStorePostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		params.Logger.Info("Using PostgreSQL profile store")

		return postgres.NewProfileRepository(db), nil

	default:
		return nil, errors.Errorf("unknown profile store backend: %s", backend)
	}
}

// Module provides the persistence FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewProfileRepository),
)
