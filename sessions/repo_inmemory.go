package sessions

import (
	"errors"
	"sync"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. State is ephemeral by design; nothing survives a restart.
type InMemoryRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*Session),
	}
}

// Get retrieves a session, creating an empty one on first access
func (r *InMemoryRepo) Get(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, errors.New("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getOrCreate(sessionID).clone(), nil
}

// Update applies mutate to the session under the store lock and returns a
// copy of the result. The closure must not block; outbound calls belong
// outside the mutation.
func (r *InMemoryRepo) Update(sessionID string, mutate func(*Session)) (Session, error) {
	if sessionID == "" {
		return Session{}, errors.New("sessionID is required")
	}
	if mutate == nil {
		return Session{}, errors.New("mutate is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.getOrCreate(sessionID)
	mutate(session)
	return session.clone(), nil
}

// Destroy removes a session and all its associated state irrevocably
func (r *InMemoryRepo) Destroy(sessionID string) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func (r *InMemoryRepo) getOrCreate(sessionID string) *Session {
	session, ok := r.sessions[sessionID]
	if !ok {
		session = &Session{ID: sessionID}
		r.sessions[sessionID] = session
	}
	return session
}
