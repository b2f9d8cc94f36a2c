package redis

// Package redis provides Redis-based adapters for the escola gateway.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	"github.com/escolanet/escola-ui-api/internal/ports"
)

// DefaultPrefix namespaces all gateway session keys.
const DefaultPrefix = "escola:session:"

// DefaultTTL bounds how long credentials survive without activity. Every
// write renews it; the token's own expiry still governs trust.
const DefaultTTL = 7 * 24 * time.Hour

// Key suffixes for the three values persisted per gateway session.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyIdentity     = "identity"
)

// CredentialStore persists one gateway session's credentials in Redis under
// three distinct keys, so a page reload or gateway restart reconstructs the
// session without re-authenticating. Absent keys read as zero values.
type CredentialStore struct {
	client    redis.UniversalClient
	sessionID string
	prefix    string
	ttl       time.Duration
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// CredentialStoreOptions tunes key layout and retention.
type CredentialStoreOptions struct {
	Prefix string
	TTL    time.Duration
}

// NewCredentialStore creates a store bound to one gateway session id.
func NewCredentialStore(client redis.UniversalClient, sessionID string) *CredentialStore {
	return NewCredentialStoreWithOptions(client, sessionID, CredentialStoreOptions{})
}

// NewCredentialStoreWithOptions creates a store with a custom prefix or TTL.
func NewCredentialStoreWithOptions(
	client redis.UniversalClient,
	sessionID string,
	opts CredentialStoreOptions,
) *CredentialStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CredentialStore{
		client:    client,
		sessionID: sessionID,
		prefix:    prefix,
		ttl:       ttl,
	}
}

func (s *CredentialStore) key(suffix string) string {
	return s.prefix + s.sessionID + ":" + suffix
}

func (s *CredentialStore) SaveTokens(ctx context.Context, access, refresh string) error {
	if s.sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(keyAccessToken), access, s.ttl)
	pipe.Set(ctx, s.key(keyRefreshToken), refresh, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set tokens: %w", err)
	}
	return nil
}

func (s *CredentialStore) SaveIdentity(ctx context.Context, identity domainauth.Identity) error {
	if s.sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.client.Set(ctx, s.key(keyIdentity), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set identity: %w", err)
	}
	return nil
}

func (s *CredentialStore) AccessToken(ctx context.Context) (string, error) {
	return s.getString(ctx, keyAccessToken)
}

func (s *CredentialStore) RefreshToken(ctx context.Context) (string, error) {
	return s.getString(ctx, keyRefreshToken)
}

func (s *CredentialStore) getString(ctx context.Context, suffix string) (string, error) {
	val, err := s.client.Get(ctx, s.key(suffix)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *CredentialStore) Identity(ctx context.Context) (*domainauth.Identity, error) {
	data, err := s.client.Get(ctx, s.key(keyIdentity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get identity: %w", err)
	}

	var identity domainauth.Identity
	if unmarshalErr := json.Unmarshal([]byte(data), &identity); unmarshalErr != nil {
		// A corrupted record is useless; drop it and report absence so the
		// session manager re-resolves the identity.
		if delErr := s.client.Del(ctx, s.key(keyIdentity)).Err(); delErr != nil {
			return nil, fmt.Errorf("cleanup corrupted identity: %w", delErr)
		}
		return nil, nil
	}
	return &identity, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	keys := []string{
		s.key(keyAccessToken),
		s.key(keyRefreshToken),
		s.key(keyIdentity),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
