// Package session owns the authenticated identity of each client session and
// reconciles identity provider events with stored profiles.
package session

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "quizdash/internal/delivery/context"
	"quizdash/internal/domain/entity"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/repository"
	"quizdash/internal/domain/service"
	"quizdash/internal/errors"

	"github.com/rs/xid"
)

// GuestOptions controls how guest identities are synthesized.
type GuestOptions struct {
	IDPrefix string
	Email    string
}

// Store holds the single current user of one client session.
//
// Mutating operations are serialized: a call made while another is in flight
// fails with ErrSessionBusy. Identity events are queued and reconciled one at a
// time by a dedicated goroutine, on a context detached from any request.
type Store struct {
	identity service.IdentityProvider
	profiles repository.ProfileRepository
	guest    GuestOptions
	logger   *slog.Logger

	mu       sync.Mutex
	user     *entity.User
	state    entity.SessionState
	inflight int
	busy     bool

	queue   []*entity.Identity
	pending int
	idle    chan struct{}
	wake    chan struct{}

	unsubscribe service.Unsubscribe
	closeOnce   sync.Once
	done        chan struct{}
	loopDone    chan struct{}
}

// NewStore subscribes to the identity stream; Close releases the subscription.
func NewStore(identity service.IdentityProvider, profiles repository.ProfileRepository, guest GuestOptions, logger *slog.Logger) *Store {
	s := &Store{
		identity: identity,
		profiles: profiles,
		guest:    guest,
		logger:   logger,
		state:    entity.SessionUnauthenticated,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	s.unsubscribe = identity.OnChange(s.enqueue)
	go s.loop()

	return s
}

// Snapshot returns a consistent copy of the session state.
func (s *Store) Snapshot() entity.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return entity.SessionSnapshot{
		CurrentUser: s.user.Clone(),
		Loading:     s.inflight > 0,
		State:       s.state,
	}
}

// CurrentUser returns a copy of the current user, or nil.
func (s *Store) CurrentUser() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.user.Clone()
}

// Loading reports whether a reconciliation or operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inflight > 0
}

// Login signs in with email and password, then fetches or creates the profile.
func (s *Store) Login(ctx context.Context, credential entity.Credential) (*entity.User, error) {
	return s.authenticate(ctx, "login", false, func(ctx context.Context) (*entity.Identity, error) {
		return s.identity.SignIn(ctx, credential)
	})
}

// Register creates the account, then stores a default profile for it.
func (s *Store) Register(ctx context.Context, credential entity.Credential) (*entity.User, error) {
	return s.authenticate(ctx, "register", true, func(ctx context.Context) (*entity.Identity, error) {
		return s.identity.SignUp(ctx, credential)
	})
}

// LoginWithGoogle signs in with a Google ID token, then fetches or creates the profile.
func (s *Store) LoginWithGoogle(ctx context.Context, credential entity.GoogleCredential) (*entity.User, error) {
	return s.authenticate(ctx, "google login", false, func(ctx context.Context) (*entity.Identity, error) {
		return s.identity.SignInWithGoogle(ctx, credential)
	})
}

// Restore re-establishes a provider session from an ID token kept by the client.
func (s *Store) Restore(ctx context.Context, idToken string) (*entity.User, error) {
	return s.authenticate(ctx, "restore", false, func(ctx context.Context) (*entity.Identity, error) {
		return s.identity.Restore(ctx, idToken)
	})
}

// Logout signs out of the provider and clears the user. When sign-out fails the
// user is kept. A guest logout still signs the provider out, since an earlier
// login may be alive underneath the guest.
func (s *Store) Logout(ctx context.Context) error {
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.identity.SignOut(ctx); err != nil {
		logger.Error("Logout failed", slog.Any("error", err))

		return identityError(err)
	}
	s.awaitQueue(ctx)

	s.setUser(nil)

	return nil
}

// LoginAsGuest replaces the current user with a fresh guest. Nothing is persisted.
func (s *Store) LoginAsGuest(ctx context.Context) (*entity.User, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	guest := entity.NewGuestUser(s.guest.IDPrefix+xid.New().String(), s.guest.Email)
	s.setUser(guest)

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("Guest session started",
		slog.String("uid", guest.UID),
	)

	return guest.Clone(), nil
}

// Refresh re-reads the stored profile of the current non-guest user.
func (s *Store) Refresh(ctx context.Context) (*entity.User, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	current := s.CurrentUser()
	if current == nil || current.IsGuest {
		return current, nil
	}

	stored, err := s.profiles.Get(ctx, current.UID)
	if err != nil {
		return nil, profileError(err)
	}

	refreshed := entity.MergeIdentity(stored, &entity.Identity{
		UID:         current.UID,
		Email:       current.Email,
		DisplayName: current.DisplayName,
		PhotoURL:    current.PhotoURL,
	})
	s.setUser(refreshed)

	return refreshed.Clone(), nil
}

// Update applies fn to a copy of the current user and stores the result.
// Guest changes stay in memory; other users are persisted before the swap.
func (s *Store) Update(ctx context.Context, fn func(user *entity.User) error) (*entity.User, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	updated := s.CurrentUser()
	if updated == nil {
		return nil, domainerrors.ErrNotAuthenticated
	}

	if err := fn(updated); err != nil {
		if errors.Is(err, entity.ErrInvariantViolation) {
			return nil, errors.Join(domainerrors.ErrInvariantViolation, err)
		}

		return nil, err
	}

	if !updated.IsGuest {
		if err := s.profiles.Set(ctx, updated.UID, updated); err != nil {
			return nil, profileError(err)
		}
	}

	s.setUser(updated)

	return updated.Clone(), nil
}

// WaitIdle blocks until no identity event is queued or being reconciled.
func (s *Store) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == 0 {
		s.mu.Unlock()

		return nil
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

// Close releases the identity subscription and stops the event goroutine.
// Queued events are dropped.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		close(s.done)
		<-s.loopDone

		s.mu.Lock()
		s.queue = nil
		s.settle()
		s.mu.Unlock()
	})
}

func (s *Store) authenticate(
	ctx context.Context,
	op string,
	alwaysCreate bool,
	signIn func(ctx context.Context) (*entity.Identity, error),
) (*entity.User, error) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	identity, err := signIn(ctx)
	if err != nil {
		logger.Warn("Authentication failed", slog.String("op", op), slog.Any("error", err))

		return nil, identityError(err)
	}

	// let the reconciliation triggered by this sign-in settle so it cannot overwrite the result
	s.awaitQueue(ctx)

	var user *entity.User
	if alwaysCreate {
		user, err = s.createProfile(ctx, identity)
	} else {
		user, err = s.fetchOrCreate(ctx, identity)
	}
	if err != nil {
		logger.Error("Profile setup failed",
			slog.String("op", op),
			slog.String("uid", identity.UID),
			slog.Any("error", err),
		)

		return nil, err
	}

	s.setUser(user)
	logger.Info("User authenticated", slog.String("op", op), slog.String("uid", user.UID))

	return user.Clone(), nil
}

func (s *Store) fetchOrCreate(ctx context.Context, identity *entity.Identity) (*entity.User, error) {
	stored, err := s.profiles.Get(ctx, identity.UID)
	switch {
	case err == nil:
		return entity.MergeIdentity(stored, identity), nil
	case errors.Is(err, repository.ErrProfileNotFound):
		return s.createProfile(ctx, identity)
	default:
		return nil, profileError(err)
	}
}

func (s *Store) createProfile(ctx context.Context, identity *entity.Identity) (*entity.User, error) {
	user := entity.NewDefaultUser(identity)
	if err := user.Validate(); err != nil {
		return nil, errors.Join(domainerrors.ErrInvariantViolation, err)
	}

	if err := s.profiles.Set(ctx, user.UID, user); err != nil {
		return nil, profileError(err)
	}

	return user, nil
}

// enqueue is the identity stream handler. It never blocks the provider.
func (s *Store) enqueue(identity *entity.Identity) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()

		return
	default:
	}

	s.queue = append(s.queue, identity)
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) loop() {
	defer close(s.loopDone)

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()

				break
			}
			identity := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			s.reconcile(identity)

			s.mu.Lock()
			s.pending--
			if s.pending == 0 {
				s.settle()
			}
			s.mu.Unlock()

			select {
			case <-s.done:
				return
			default:
			}
		}
	}
}

// reconcile applies one identity event. Failures resolve to a signed-out session.
func (s *Store) reconcile(identity *entity.Identity) {
	ctx := context.Background()

	s.mu.Lock()
	s.inflight++
	s.state = entity.SessionReconciling
	s.mu.Unlock()

	var user *entity.User
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Identity reconciliation panicked", slog.Any("panic", r))
			user = nil
		}

		s.mu.Lock()
		s.user = user
		s.inflight--
		s.state = stateFor(user)
		s.mu.Unlock()
	}()

	if identity == nil {
		s.logger.Debug("Identity cleared")

		return
	}

	merged, err := s.fetchOrCreate(ctx, identity)
	if err != nil {
		s.logger.Error("Identity reconciliation failed",
			slog.String("uid", identity.UID),
			slog.Any("error", err),
		)

		return
	}

	user = merged
	s.logger.Debug("Identity reconciled", slog.String("uid", identity.UID))
}

// awaitQueue waits for queued identity events, giving up when ctx ends.
func (s *Store) awaitQueue(ctx context.Context) {
	if err := s.WaitIdle(ctx); err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Stopped waiting for identity reconciliation",
			slog.Any("error", err),
		)
	}
}

func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return domainerrors.ErrSessionBusy
	}

	s.busy = true
	s.inflight++

	return nil
}

func (s *Store) end() {
	s.mu.Lock()
	s.busy = false
	s.inflight--
	s.mu.Unlock()
}

func (s *Store) setUser(user *entity.User) {
	s.mu.Lock()
	s.user = user.Clone()
	s.state = stateFor(user)
	s.mu.Unlock()
}

// settle releases WaitIdle callers. Callers hold s.mu.
func (s *Store) settle() {
	s.pending = 0
	if s.idle != nil {
		close(s.idle)
		s.idle = nil
	}
}

func stateFor(user *entity.User) entity.SessionState {
	if user == nil {
		return entity.SessionUnauthenticated
	}

	return entity.SessionAuthenticated
}

func identityError(err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return errors.Join(domainerrors.ErrIdentityProvider, err)
}

func profileError(err error) error {
	if errors.Is(err, entity.ErrInvariantViolation) {
		return errors.Join(domainerrors.ErrInvariantViolation, err)
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return errors.Join(domainerrors.ErrProfileStorage, err)
}
