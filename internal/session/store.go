// Package session provides durable, observable auth session state for the client.
//
// The in-memory snapshot is authoritative after hydration; durable storage is
// write-through. Saves and logouts update the three persisted keys in one
// transaction, then the observables, so memory never runs ahead of disk.
package session

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"kotekapu/client/internal/security"
)

// Persisted keys. access_token, is_logged_in, and user_id always change together.
const (
	keyAccessToken = "access_token"
	keyIsLoggedIn  = "is_logged_in"
	keyUserID      = "user_id"
	keyDeviceID    = "device_id"
)

// KV is the minimal key-value storage needed by the session store.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, kv map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// Snapshot is an immutable view of the session state at one observable point.
// IsLoggedIn is true exactly when AccessToken and UserID are both present.
type Snapshot struct {
	AccessToken string
	UserID      int
	IsLoggedIn  bool
}

// Store holds the current session and publishes every committed change to subscribers.
type Store struct {
	kv   KV
	nowF func() time.Time

	mu       sync.RWMutex
	state    Snapshot
	deviceID string
	subs     map[int]chan Snapshot
	nextSub  int
}

// New hydrates a Store from storage. A storage read failure leaves the store
// logged out (fail open to logged out); it is logged, not returned. An access
// token whose expiry is already past is discarded during hydration.
func New(ctx context.Context, kv KV) *Store {
	s := &Store{
		kv:   kv,
		nowF: time.Now,
		subs: make(map[int]chan Snapshot),
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	s.ensureDeviceID(ctx)

	token, _, err := s.kv.Get(ctx, keyAccessToken)
	if err != nil {
		log.Printf("session: load auth data: %v", err)
		return
	}
	loggedInRaw, _, err := s.kv.Get(ctx, keyIsLoggedIn)
	if err != nil {
		log.Printf("session: load auth data: %v", err)
		return
	}
	userIDRaw, _, err := s.kv.Get(ctx, keyUserID)
	if err != nil {
		log.Printf("session: load auth data: %v", err)
		return
	}

	loggedIn, _ := strconv.ParseBool(loggedInRaw)
	userID, _ := strconv.Atoi(userIDRaw)
	if !loggedIn || token == "" || userID == 0 {
		return
	}

	if claims, err := security.ParseClaims(token); err == nil && claims.Expired(s.nowF()) {
		log.Printf("session: stored token expired at %v, discarding", claims.ExpiresAt)
		if err := s.kv.DeleteMany(ctx, keyAccessToken, keyIsLoggedIn, keyUserID); err != nil {
			log.Printf("session: discard expired token: %v", err)
		}
		return
	}

	s.mu.Lock()
	s.state = Snapshot{AccessToken: token, UserID: userID, IsLoggedIn: true}
	s.mu.Unlock()
}

func (s *Store) ensureDeviceID(ctx context.Context) {
	id, ok, err := s.kv.Get(ctx, keyDeviceID)
	if err == nil && ok && id != "" {
		s.mu.Lock()
		s.deviceID = id
		s.mu.Unlock()
		return
	}
	if err != nil {
		log.Printf("session: load device id: %v", err)
	}
	id = uuid.NewString()
	if err := s.kv.Set(ctx, keyDeviceID, id); err != nil {
		// Keep the in-memory id; the next launch generates a fresh one.
		log.Printf("session: persist device id: %v", err)
	}
	s.mu.Lock()
	s.deviceID = id
	s.mu.Unlock()
}

// SaveAuthData persists the token and user id and marks the session logged in.
// The three keys are written in one transaction; observables update only after
// the write succeeds, so a failed save leaves both disk and memory unchanged.
func (s *Store) SaveAuthData(ctx context.Context, token string, userID int) error {
	if token == "" || userID <= 0 {
		return errors.New("session: token and user id are required")
	}
	err := s.kv.SetMany(ctx, map[string]string{
		keyAccessToken: token,
		keyIsLoggedIn:  "true",
		keyUserID:      strconv.Itoa(userID),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = Snapshot{AccessToken: token, UserID: userID, IsLoggedIn: true}
	s.publishLocked()
	s.mu.Unlock()
	return nil
}

// Logout removes the persisted session and resets observables. Idempotent:
// logging out an already logged-out store succeeds and changes nothing on disk.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.DeleteMany(ctx, keyAccessToken, keyIsLoggedIn, keyUserID); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = Snapshot{}
	s.publishLocked()
	s.mu.Unlock()
	return nil
}

// IsLoggedIn reports the in-memory login flag without touching storage.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoggedIn
}

// Token returns the in-memory access token, or empty when logged out.
// Safe for call sites that must not block, e.g. decorating outgoing requests.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// UserID returns the in-memory user id, or 0 when logged out.
func (s *Store) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UserID
}

// DeviceID returns the per-install device id generated at first launch.
func (s *Store) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

// Current returns the full session snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers for session changes. Every committed SaveAuthData or
// Logout publishes a Snapshot; a subscriber whose buffer is full misses that
// update rather than blocking the writer. cancel unregisters and closes the channel.
func (s *Store) Subscribe(buffer int) (updates <-chan Snapshot, cancel func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// publishLocked fans the current state out to subscribers. Caller holds mu.
func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
		}
	}
}
