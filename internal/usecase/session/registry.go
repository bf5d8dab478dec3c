package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quizdash/config"
	"quizdash/internal/domain/entity"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/lifecycle"
	"quizdash/internal/domain/repository"
	"quizdash/internal/domain/service"
	"quizdash/internal/domain/streak"
	"quizdash/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// Entry is one client session: its store, its milestone detector and the streak
// last seen for the user, which the detector compares against.
type Entry struct {
	ID       uuid.UUID
	Store    *Store
	Detector *streak.Detector

	mu             sync.Mutex
	lastSeen       time.Time
	observedUID    string
	previousStreak int
}

// Observation is the result of feeding a session's current user to its detector.
type Observation struct {
	Snapshot  entity.SessionSnapshot
	Previous  int
	Milestone int
	Reached   bool
}

// ObserveCurrent snapshots the store and feeds the user's streak to the detector.
// Both happen under the entry lock so concurrent callers observe streaks in the
// order the store held them. The first observation of a user only records the streak.
func (e *Entry) ObserveCurrent() Observation {
	e.mu.Lock()
	defer e.mu.Unlock()

	obs := Observation{Snapshot: e.Store.Snapshot()}
	if obs.Snapshot.CurrentUser != nil {
		obs.Previous, obs.Milestone, obs.Reached = e.observeLocked(obs.Snapshot.CurrentUser)
	}

	return obs
}

// observeLocked advances the previous streak. Callers hold e.mu.
func (e *Entry) observeLocked(user *entity.User) (previous, milestone int, reached bool) {
	if e.observedUID != user.UID {
		e.observedUID = user.UID
		e.previousStreak = user.CurrentStreak

		return user.CurrentStreak, 0, false
	}

	previous = e.previousStreak
	milestone, reached = e.Detector.Observe(previous, user.CurrentStreak)
	e.previousStreak = user.CurrentStreak

	return previous, milestone, reached
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastSeen
}

// RegistryOptions configures sessions and their expiry.
type RegistryOptions struct {
	Guest         GuestOptions
	Milestones    []int
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Registry holds the open client sessions of this process.
type Registry struct {
	factory  service.IdentityProviderFactory
	profiles repository.ProfileRepository
	opts     RegistryOptions
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry

	stopSweep chan struct{}
	sweepDone chan struct{}
}

// NewRegistry creates an empty registry. Nil milestones select the defaults.
func NewRegistry(factory service.IdentityProviderFactory, profiles repository.ProfileRepository, opts RegistryOptions, logger *slog.Logger) (*Registry, error) {
	if len(opts.Milestones) == 0 {
		opts.Milestones = streak.DefaultMilestones
	}

	if err := streak.ValidateMilestones(opts.Milestones); err != nil {
		return nil, err
	}

	return &Registry{
		factory:  factory,
		profiles: profiles,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[uuid.UUID]*Entry),
	}, nil
}

// Open creates a session with its own identity provider subscription.
func (r *Registry) Open() (*Entry, error) {
	detector, err := streak.NewDetector(r.opts.Milestones)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	logger := r.logger.With(slog.String("session_id", id.String()))

	entry := &Entry{
		ID:       id,
		Store:    NewStore(r.factory.NewSession(), r.profiles, r.opts.Guest, logger),
		Detector: detector,
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.mu.Unlock()

	return entry, nil
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id uuid.UUID) (*Entry, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domainerrors.ErrSessionNotFound
	}

	entry.touch(r.now())

	return entry, nil
}

// Close forgets the session and releases its identity subscription.
func (r *Registry) Close(id uuid.UUID) error {
	r.mu.Lock()
	entry, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if !ok {
		return domainerrors.ErrSessionNotFound
	}

	entry.Store.Close()

	return nil
}

// Sweep closes sessions idle for longer than the idle timeout and returns how many it closed.
func (r *Registry) Sweep() int {
	if r.opts.IdleTimeout <= 0 {
		return 0
	}

	now := r.now()

	r.mu.Lock()
	var expired []*Entry
	for id, entry := range r.entries {
		if now.Sub(entry.idleSince()) > r.opts.IdleTimeout {
			expired = append(expired, entry)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, entry := range expired {
		entry.Store.Close()
		r.logger.Info("Idle session closed",
			slog.String("session_id", entry.ID.String()),
			slog.String("idle", util.FormatDuration(now.Sub(entry.idleSince()))),
		)
	}

	return len(expired)
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[uuid.UUID]*Entry)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.Store.Close()
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// StartSweeper runs Sweep every sweep interval until StopSweeper.
func (r *Registry) StartSweeper() {
	if r.opts.SweepInterval <= 0 || r.stopSweep != nil {
		return
	}

	r.stopSweep = make(chan struct{})
	r.sweepDone = make(chan struct{})

	go func() {
		defer close(r.sweepDone)

		ticker := time.NewTicker(r.opts.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stopSweep:
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// StopSweeper stops the sweeper goroutine and waits for it.
func (r *Registry) StopSweeper(ctx context.Context) error {
	if r.stopSweep == nil {
		return nil
	}

	close(r.stopSweep)

	select {
	case <-r.sweepDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegistryParams defines the dependencies of the registry, injected by Fx
type RegistryParams struct {
	fx.In

	Lc       fx.Lifecycle
	Config   *config.Config
	Logger   *slog.Logger
	Factory  service.IdentityProviderFactory
	Profiles repository.ProfileRepository
}

// NewRegistryFromConfig builds the registry and ties the sweeper and session
// teardown to the application lifecycle.
func NewRegistryFromConfig(params RegistryParams) (*Registry, error) {
	cfg := params.Config

	opts := RegistryOptions{}
	if cfg.Guest != nil {
		opts.Guest = GuestOptions{IDPrefix: cfg.Guest.IDPrefix, Email: cfg.Guest.Email}
	}
	if cfg.Streak != nil {
		opts.Milestones = cfg.Streak.Milestones
	}
	if cfg.Session != nil {
		opts.IdleTimeout = cfg.Session.IdleTimeout
		opts.SweepInterval = cfg.Session.SweepInterval
	}

	registry, err := NewRegistry(params.Factory, params.Profiles, opts, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			registry.StartSweeper()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			ctx, cancel := context.WithTimeout(stopCtx, lifecycle.DefaultTimeout)
			defer cancel()

			err := registry.StopSweeper(ctx)
			registry.CloseAll()

			return err
		},
	})

	return registry, nil
}
