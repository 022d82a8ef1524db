package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frahmantamala/expense-tracker-client/internal/core/events"
)

// Store owns the current session. It is the only writer of the persisted
// entries; readers such as the request gateway only call Token/Get.
type Store struct {
	mu        sync.RWMutex
	current   *Session
	persister Persister
	sealer    Sealer
	bus       *events.EventBus
	logger    *slog.Logger
}

type Option func(*Store)

func WithSealer(s Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

func WithEventBus(bus *events.EventBus) Option {
	return func(st *Store) { st.bus = bus }
}

func NewStore(persister Persister, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = events.NewEventBus(logger)
	}
	return s
}

// Events exposes the bus on which session.established and session.cleared
// are published.
func (s *Store) Events() *events.EventBus {
	return s.bus
}

func (s *Store) Get() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Restore loads the persisted session. Missing, partial or malformed entries
// leave the store empty; it never fails.
func (s *Store) Restore(ctx context.Context) {
	sess, ok := s.load(ctx)

	s.mu.Lock()
	if ok {
		s.current = &sess
	} else {
		s.current = nil
	}
	s.mu.Unlock()

	if ok {
		s.logger.Debug("session restored", "user_id", sess.Identity.ID, "username", sess.Identity.Username)
	} else {
		s.logger.Debug("no persisted session")
	}
}

// Resync re-reads persisted state and publishes a change when another
// process has logged in or out since this store last looked.
func (s *Store) Resync(ctx context.Context) {
	sess, ok := s.load(ctx)

	s.mu.Lock()
	prev := s.current
	changed := (prev == nil) != !ok || (ok && prev != nil && *prev != sess)
	if ok {
		s.current = &sess
	} else {
		s.current = nil
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	if ok {
		s.publish(ctx, events.NewSessionEstablishedEvent(sess.Identity.ID, sess.Identity.Username))
	} else {
		s.publish(ctx, events.NewSessionClearedEvent(events.ClearReasonResync))
	}
}

func (s *Store) load(ctx context.Context) (Session, bool) {
	entries, err := s.persister.Load(ctx, KeyToken, KeyUser)
	if err != nil {
		s.logger.Warn("failed to read persisted session, treating as absent", "error", err)
		return Session{}, false
	}

	token, hasToken := entries[KeyToken]
	rawUser, hasUser := entries[KeyUser]
	if !hasToken || !hasUser {
		return Session{}, false
	}

	if s.sealer != nil {
		if token, err = s.sealer.Open(token); err != nil {
			s.logger.Warn("persisted token could not be opened, treating as absent")
			return Session{}, false
		}
		if rawUser, err = s.sealer.Open(rawUser); err != nil {
			s.logger.Warn("persisted identity could not be opened, treating as absent")
			return Session{}, false
		}
	}

	if token == "" {
		return Session{}, false
	}
	identity, ok := decodeIdentity(rawUser)
	if !ok {
		s.logger.Warn("persisted identity is malformed, treating as absent")
		return Session{}, false
	}

	return Session{Token: token, Identity: identity}, true
}

// Set persists token and identity together and then makes them current.
// On a persistence failure the previous session is left untouched.
func (s *Store) Set(ctx context.Context, token string, identity Identity) error {
	rawUser, err := encodeIdentity(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	storedToken := token
	if s.sealer != nil {
		if storedToken, err = s.sealer.Seal(token); err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
		if rawUser, err = s.sealer.Seal(rawUser); err != nil {
			return fmt.Errorf("failed to seal identity: %w", err)
		}
	}

	if err := s.persister.SaveAll(ctx, map[string]string{
		KeyToken: storedToken,
		KeyUser:  rawUser,
	}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &Session{Token: token, Identity: identity}
	s.mu.Unlock()

	s.logger.Info("session established", "user_id", identity.ID, "username", identity.Username)
	s.publish(ctx, events.NewSessionEstablishedEvent(identity.ID, identity.Username))
	return nil
}

// Clear ends the session on an explicit logout.
func (s *Store) Clear(ctx context.Context) {
	s.clear(ctx, events.ClearReasonLogout)
}

// Expire ends the session after the server rejected the credential.
func (s *Store) Expire(ctx context.Context) {
	s.clear(ctx, events.ClearReasonExpired)
}

func (s *Store) clear(ctx context.Context, reason string) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.persister.DeleteAll(ctx, KeyToken, KeyUser); err != nil {
		s.logger.Error("failed to remove persisted session", "error", err, "reason", reason)
	}

	s.logger.Info("session cleared", "reason", reason)
	s.publish(ctx, events.NewSessionClearedEvent(reason))
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Warn("session listener failed", "event_type", event.EventType(), "error", err)
	}
}
