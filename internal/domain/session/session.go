package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

const terminatedKey = "terminated"
const jwtKeyPrefix = "jwt:"

// Session is a handle onto one session's keyspace within a KVStore: every
// user-space key is namespaced under "session:{id}:{user-key}" (the C2
// keyspace convention). Session itself holds no state beyond its id and
// bucket; all reads/writes go straight through to the store.
type Session struct {
	ID     string
	Bucket string
	store  KVStore
}

// sessionKey builds the namespaced key for a user-space key within one
// session's keyspace.
func sessionKey(id, userKey string) string {
	return "session:" + id + ":" + userKey
}

// sessionPrefix builds the prefix shared by every key belonging to session
// id, used by Open to test existence.
func sessionPrefix(id string) string {
	return "session:" + id + ":"
}

// New returns a handle onto session id within bucket, without checking
// whether it already has any keys. Used at initialize time, when a session
// is created implicitly by its first write.
func New(store KVStore, bucket, id string) *Session {
	return &Session{ID: id, Bucket: bucket, store: store}
}

// Open returns a handle onto an existing session, or ErrNoSuchSession if no
// key exists under its prefix.
func Open(ctx context.Context, store KVStore, bucket, id string) (*Session, error) {
	exists, err := store.HasPrefix(ctx, bucket, sessionPrefix(id))
	if err != nil {
		return nil, fmt.Errorf("session: open: %w", err)
	}
	if !exists {
		return nil, ErrNoSuchSession
	}
	return &Session{ID: id, Bucket: bucket, store: store}, nil
}

// Get reads the typed value stored under key within this session's
// keyspace. ok is false if the key is absent. Returns ErrTerminated if the
// session has been terminated; a terminated session answers no reads.
func (s *Session) Get(ctx context.Context, key string) (TypedValue, bool, error) {
	terminated, err := s.IsTerminated(ctx)
	if err != nil {
		return TypedValue{}, false, err
	}
	if terminated {
		return TypedValue{}, false, ErrTerminated
	}
	raw, ok, err := s.store.Get(ctx, s.Bucket, sessionKey(s.ID, key))
	if err != nil || !ok {
		return TypedValue{}, ok, err
	}
	v, err := DecodeTypedValue(raw)
	if err != nil {
		return TypedValue{}, false, err
	}
	return v, true, nil
}

// Set writes a typed value under key within this session's keyspace.
// Returns ErrTerminated if the session has been terminated.
func (s *Session) Set(ctx context.Context, key string, v TypedValue) error {
	terminated, err := s.IsTerminated(ctx)
	if err != nil {
		return err
	}
	if terminated {
		return ErrTerminated
	}
	return s.store.Set(ctx, s.Bucket, sessionKey(s.ID, key), v.Encode())
}

// IsTerminated reports whether this session's termination flag is set.
func (s *Session) IsTerminated(ctx context.Context) (bool, error) {
	return s.store.Exists(ctx, s.Bucket, sessionKey(s.ID, terminatedKey))
}

// Terminate sets this session's termination flag. A terminated session
// remains present in the store (its keys are not swept until Delete) but
// answers no further reads or writes.
func (s *Session) Terminate(ctx context.Context, reason string) error {
	return s.store.Set(ctx, s.Bucket, sessionKey(s.ID, terminatedKey), StringValue(reason).Encode())
}

// Delete clears this session's termination flag only: the user-space keys
// under its prefix are reclaimed by the store's own sweeper, not by this
// call (Open Question (a), resolved in DESIGN.md: termination is itself
// just a data key, not a distinct lifecycle state the store tracks).
func (s *Session) Delete(ctx context.Context) error {
	return s.store.Delete(ctx, s.Bucket, sessionKey(s.ID, terminatedKey))
}

// BindIdentity writes a set of JWT claims into this session's keyspace
// under the "jwt:" prefix, binding an Identity to the session at initialize
// time. If any claim write fails partway through, BindIdentity attempts to
// delete the session (clearing its termination flag so a half-bound session
// cannot be mistaken for a terminated one) and logs the cleanup failure, if
// any, before returning the original error (Open Question (b)).
func (s *Session) BindIdentity(ctx context.Context, claims map[string]string) error {
	for k, v := range claims {
		if err := s.Set(ctx, jwtKeyPrefix+k, StringValue(v)); err != nil {
			if derr := s.Delete(ctx); derr != nil {
				slog.Error("session: failed to clean up half-bound session", "session_id", s.ID, "claim", k, "error", derr)
			}
			return fmt.Errorf("session: bind identity: %w", err)
		}
	}
	return nil
}

// Claim reads a single bound JWT claim, stripping the "jwt:" prefix
// internally so callers pass bare claim names ("sub", "scope", ...).
func (s *Session) Claim(ctx context.Context, name string) (string, bool, error) {
	v, ok, err := s.Get(ctx, jwtKeyPrefix+name)
	if err != nil || !ok {
		return "", ok, err
	}
	val, err := v.AsStringVal()
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// HasClaimPrefix reports whether any bound claim name starts with prefix,
// e.g. for scope-namespace checks.
func (s *Session) HasClaimPrefix(ctx context.Context, prefix string) (bool, error) {
	return s.store.HasPrefix(ctx, s.Bucket, sessionKey(s.ID, jwtKeyPrefix+prefix))
}

// GenerateSessionID creates a cryptographically random session ID: 32 bytes
// of crypto/rand, hex-encoded to 64 characters.
func GenerateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
