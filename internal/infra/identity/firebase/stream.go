package firebase

import (
	"sync"

	"quizdash/internal/domain/entity"
	"quizdash/internal/domain/service"
)

// identityStream fans identity changes out to subscribers in registration order.
type identityStream struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]service.IdentityHandler
	order    []int
}

func newIdentityStream() *identityStream {
	return &identityStream{handlers: make(map[int]service.IdentityHandler)}
}

func (s *identityStream) subscribe(handler service.IdentityHandler) service.Unsubscribe {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.handlers, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)

					break
				}
			}
		})
	}
}

// publish calls every handler outside the lock, so handlers may unsubscribe.
func (s *identityStream) publish(identity *entity.Identity) {
	s.mu.Lock()
	handlers := make([]service.IdentityHandler, 0, len(s.order))
	for _, id := range s.order {
		handlers = append(handlers, s.handlers[id])
	}
	s.mu.Unlock()

	for _, handler := range handlers {
		var copied *entity.Identity
		if identity != nil {
			c := *identity
			copied = &c
		}
		handler(copied)
	}
}

func (s *identityStream) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}
