package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"quizdash/internal/domain/entity"
	"quizdash/internal/domain/service"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIdentity is an in-memory identity provider that announces like the real one.
type fakeIdentity struct {
	mu       sync.Mutex
	handlers map[int]service.IdentityHandler
	nextID   int

	identity   *entity.Identity
	signInErr  error
	signOutErr error
	signOuts   int

	// when set, SignIn signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newFakeIdentity(identity *entity.Identity) *fakeIdentity {
	return &fakeIdentity{
		handlers: make(map[int]service.IdentityHandler),
		identity: identity,
	}
}

func (f *fakeIdentity) SignIn(_ context.Context, _ entity.Credential) (*entity.Identity, error) {
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}

	return f.signIn()
}

func (f *fakeIdentity) SignUp(_ context.Context, _ entity.Credential) (*entity.Identity, error) {
	return f.signIn()
}

func (f *fakeIdentity) SignInWithGoogle(_ context.Context, _ entity.GoogleCredential) (*entity.Identity, error) {
	return f.signIn()
}

func (f *fakeIdentity) Restore(_ context.Context, _ string) (*entity.Identity, error) {
	return f.signIn()
}

func (f *fakeIdentity) SignOut(_ context.Context) error {
	f.mu.Lock()
	f.signOuts++
	err := f.signOutErr
	f.mu.Unlock()

	if err != nil {
		return err
	}

	f.emit(nil)

	return nil
}

func (f *fakeIdentity) OnChange(handler service.IdentityHandler) service.Unsubscribe {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = handler
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.handlers, id)
		f.mu.Unlock()
	}
}

func (f *fakeIdentity) signIn() (*entity.Identity, error) {
	f.mu.Lock()
	err := f.signInErr
	identity := f.identity
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	announced := *identity
	f.emit(&announced)

	return &announced, nil
}

// emit delivers an identity event to every subscriber.
func (f *fakeIdentity) emit(identity *entity.Identity) {
	f.mu.Lock()
	handlers := make([]service.IdentityHandler, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(identity)
	}
}

func (f *fakeIdentity) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.handlers)
}

func (f *fakeIdentity) signOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.signOuts
}
