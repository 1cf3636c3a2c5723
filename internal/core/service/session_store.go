package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/storage"
	"github.com/yndnr/authclient/internal/telemetry/logger"
	"github.com/yndnr/authclient/internal/telemetry/metric"
	"github.com/yndnr/authclient/pkg/crypto/adaptive"
)

// Token value tags. A token written with one session.encrypt setting reads
// as absent under the other.
const (
	tokenPlain  byte = 0x00
	tokenSealed byte = 0x01
)

// ErrIncompleteSession is returned by Save for a session missing either half.
var ErrIncompleteSession = errors.New("session: token and user are both required")

// SessionStoreConfig holds configuration for SessionStore.
type SessionStoreConfig struct {
	// Origin scopes the stored keys, e.g. "http://localhost:5000".
	Origin string

	// Sealer encrypts the token at rest. Nil stores it in the clear.
	Sealer *adaptive.Sealer

	Metrics *metric.Registry
	Logger  logger.Logger
}

// SessionStore owns the durable session pair.
//
// It keeps no in-memory copy: every Load reads the engine, so the engine is
// the single source of truth even when several processes share it.
type SessionStore struct {
	kv       storage.KVEngine
	tokenKey string
	userKey  string
	sealer   *adaptive.Sealer
	metrics  *metric.Registry
	logger   logger.Logger
}

// NewSessionStore creates a SessionStore on top of kv.
func NewSessionStore(kv storage.KVEngine, cfg SessionStoreConfig) *SessionStore {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	prefix := "session/" + cfg.Origin + "/"
	return &SessionStore{
		kv:       kv,
		tokenKey: prefix + "token",
		userKey:  prefix + "user",
		sealer:   cfg.Sealer,
		metrics:  cfg.Metrics,
		logger:   log.With("component", "session_store", "origin", cfg.Origin),
	}
}

// Origin returns the scheme://host part of an API base URL, lower-cased.
func Origin(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("server url %q: scheme must be http or https", serverURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q: missing host", serverURL)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

// Save persists token and user as one batch, replacing any prior session.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	if !sess.Valid() {
		return ErrIncompleteSession
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	token, err := s.encodeToken(sess.Token)
	if err != nil {
		return err
	}

	b := storage.NewBatch().Set(s.tokenKey, token).Set(s.userKey, userJSON)
	if err := s.kv.Apply(ctx, b); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.metrics.SessionWrite("save")
	s.logger.Debug("session saved", "username", sess.User.Username, "role", sess.User.Role)
	return nil
}

// Load returns the current session. Missing, partial or malformed data
// reports absent; it never fails.
func (s *SessionStore) Load(ctx context.Context) (domain.Session, bool) {
	vals, err := s.kv.GetMany(ctx, s.tokenKey, s.userKey)
	if err != nil {
		s.logger.Warn("session read failed", "error", err)
		return domain.Session{}, false
	}

	rawToken, okT := vals[s.tokenKey]
	rawUser, okU := vals[s.userKey]
	if !okT || !okU {
		return domain.Session{}, false
	}

	token, ok := s.decodeToken(rawToken)
	if !ok {
		return domain.Session{}, false
	}

	var user domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.logger.Debug("stored user is malformed", "error", err)
		return domain.Session{}, false
	}
	if user.Username == "" || !user.Role.Valid() {
		s.logger.Debug("stored user is incomplete")
		return domain.Session{}, false
	}

	sess := domain.Session{Token: token, User: user}
	return sess, sess.Valid()
}

// Clear removes both halves of the session. Clearing an empty store is
// not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	b := storage.NewBatch().Delete(s.tokenKey).Delete(s.userKey)
	if err := s.kv.Apply(ctx, b); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.metrics.SessionWrite("clear")
	s.logger.Debug("session cleared")
	return nil
}

// IsAuthenticated reports whether a well-formed session is stored.
func (s *SessionStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Load(ctx)
	return ok
}

// CurrentRole returns the role of the stored session's user.
func (s *SessionStore) CurrentRole(ctx context.Context) (domain.Role, bool) {
	sess, ok := s.Load(ctx)
	if !ok {
		return "", false
	}
	return sess.User.Role, true
}

func (s *SessionStore) encodeToken(token string) ([]byte, error) {
	if s.sealer == nil {
		return append([]byte{tokenPlain}, token...), nil
	}
	sealed, err := s.sealer.Seal([]byte(token), []byte(s.tokenKey))
	if err != nil {
		return nil, fmt.Errorf("seal token: %w", err)
	}
	return append([]byte{tokenSealed}, sealed...), nil
}

func (s *SessionStore) decodeToken(raw []byte) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	switch raw[0] {
	case tokenPlain:
		if s.sealer != nil {
			s.logger.Debug("stored token is not sealed, ignoring")
			return "", false
		}
		return string(raw[1:]), true
	case tokenSealed:
		if s.sealer == nil {
			s.logger.Debug("stored token is sealed but encryption is off")
			return "", false
		}
		plain, err := s.sealer.Open(raw[1:], []byte(s.tokenKey))
		if err != nil {
			s.logger.Warn("stored token could not be opened", "error", err)
			return "", false
		}
		return string(plain), true
	default:
		return "", false
	}
}
