// Package entitystore provides the single access point through which
// handlers and other collaborators reach user records.
//
// A Store keeps records in process memory only. It is normally built once
// with New and handed to whoever needs it; Default returns a lazily created
// process-wide instance for callers that cannot be given one.
package entitystore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/socialgood/internal/logger"
	"github.com/patric-chuzhbe/socialgood/internal/user"
)

var (
	// ErrUserNotFound is returned when no user has the requested id.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when registering an id that is already taken.
	ErrUserExists = errors.New("user already exists")
)

// Store holds user records keyed by user id. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	users map[string]user.User
}

// Option configures a Store.
type Option func(*Store)

// WithUsers seeds the store with records. Seeded records are not validated
// and later duplicates of an id replace earlier ones.
func WithUsers(users ...user.User) Option {
	return func(s *Store) {
		for _, u := range users {
			s.users[u.ID] = u
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		users: map[string]user.User{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

var (
	defaultStore     *Store
	defaultStoreOnce sync.Once
)

// Default returns the process-wide Store, creating it on first use.
// Concurrent first calls all get the same instance.
func Default() *Store {
	defaultStoreOnce.Do(func() {
		defaultStore = New()
	})

	return defaultStore
}

// Register validates u and adds it to the store.
// Validation failures are *user.InputError values.
func (s *Store) Register(ctx context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("%w: %q", ErrUserExists, u.ID)
	}
	s.users[u.ID] = u
	logger.Log.Debugw("user registered", "id", u.ID, "role", u.UserRole)

	return nil
}

// Get returns a copy of the user with the given id.
func (s *Store) Get(ctx context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, found := s.users[id]
	if !found {
		return user.User{}, fmt.Errorf("%w: %q", ErrUserNotFound, id)
	}

	return u, nil
}

// Update validates u and replaces the stored record with the same id.
func (s *Store) Update(ctx context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.users[u.ID]; !found {
		return fmt.Errorf("%w: %q", ErrUserNotFound, u.ID)
	}
	s.users[u.ID] = u
	logger.Log.Debugw("user updated", "id", u.ID)

	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.users[id]; !found {
		return fmt.Errorf("%w: %q", ErrUserNotFound, id)
	}
	delete(s.users, id)
	logger.Log.Debugw("user deleted", "id", id)

	return nil
}

// List returns copies of all users ordered by id.
func (s *Store) List(ctx context.Context) []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := funk.Keys(s.users).([]string)
	sort.Strings(ids)

	result := make([]user.User, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.users[id])
	}

	return result
}

func (s *Store) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users)
}

// Login looks up the user by id and checks password against it.
// Password problems are *user.InputError values; an unknown id is ErrUserNotFound.
func (s *Store) Login(ctx context.Context, id, password string) (user.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if err := u.CheckPassword(password); err != nil {
		logger.Log.Debugw("password check failed", "id", id, "reason", err.Error())
		return user.User{}, err
	}

	return u, nil
}
