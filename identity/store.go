// Package identity gives unauthenticated commenters a stable pseudo-identity
// across a session. This is a UX convenience, not a security boundary: any
// client can claim any email and nothing here must ever be treated as
// authentication.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	usersKey      = "anon:users"
	currentPrefix = "anon:current:"
)

// Identity is a persisted pseudo-user. SecretHash holds the bcrypt hash of a
// generated placeholder string; the plaintext is never stored and never
// checked as a credential.
type Identity struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	SecretHash string    `json:"secret_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists identities in Redis: an append-only list of identities plus
// one current-identity marker per client. With no Redis it degrades to an
// in-memory map, which only suits tests and single-instance runs.
// Writes are last-write-wins; concurrent clients may race, which is
// acceptable for single-tab usage.
type Store struct {
	rdb *redis.Client

	mu         sync.Mutex
	memUsers   []Identity
	memCurrent map[string]string
}

// NewStore creates a Store. rdb may be nil for the in-memory fallback.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, memCurrent: map[string]string{}}
}

// RegisterOrLogin finds an identity by case-insensitive email match or
// synthesizes a new one, then marks it current for the client. The second
// return value reports whether a new identity was created.
func (s *Store) RegisterOrLogin(ctx context.Context, clientID, name, email string) (Identity, bool, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return Identity{}, false, fmt.Errorf("name and email are required")
	}

	users, err := s.list(ctx)
	if err != nil {
		return Identity{}, false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			if err := s.setCurrent(ctx, clientID, u.ID); err != nil {
				return Identity{}, false, err
			}
			return u, false, nil
		}
	}

	id := Identity{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(placeholderSecret(name, email)), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, false, fmt.Errorf("hash placeholder secret: %w", err)
	}
	id.SecretHash = string(hash)

	if err := s.append(ctx, id); err != nil {
		return Identity{}, false, err
	}
	if err := s.setCurrent(ctx, clientID, id.ID); err != nil {
		return Identity{}, false, err
	}
	return id, true, nil
}

// Current returns the client's persisted identity, or nil when none is set.
func (s *Store) Current(ctx context.Context, clientID string) (*Identity, error) {
	var currentID string
	if s.rdb != nil {
		v, err := s.rdb.Get(ctx, currentPrefix+clientID).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read current identity: %w", err)
		}
		currentID = v
	} else {
		s.mu.Lock()
		currentID = s.memCurrent[clientID]
		s.mu.Unlock()
		if currentID == "" {
			return nil, nil
		}
	}

	users, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == currentID {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Logout clears the client's current-identity marker. The identity record
// itself stays in the list.
func (s *Store) Logout(ctx context.Context, clientID string) error {
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, currentPrefix+clientID).Err(); err != nil {
			return fmt.Errorf("clear current identity: %w", err)
		}
		return nil
	}
	s.mu.Lock()
	delete(s.memCurrent, clientID)
	s.mu.Unlock()
	return nil
}

func (s *Store) list(ctx context.Context) ([]Identity, error) {
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := make([]Identity, len(s.memUsers))
		copy(out, s.memUsers)
		return out, nil
	}
	raw, err := s.rdb.LRange(ctx, usersKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read identity list: %w", err)
	}
	users := make([]Identity, 0, len(raw))
	for _, r := range raw {
		var id Identity
		if err := json.Unmarshal([]byte(r), &id); err != nil {
			continue // skip unreadable entries rather than failing the login
		}
		users = append(users, id)
	}
	return users, nil
}

func (s *Store) append(ctx context.Context, id Identity) error {
	if s.rdb == nil {
		s.mu.Lock()
		s.memUsers = append(s.memUsers, id)
		s.mu.Unlock()
		return nil
	}
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := s.rdb.RPush(ctx, usersKey, b).Err(); err != nil {
		return fmt.Errorf("append identity: %w", err)
	}
	return nil
}

func (s *Store) setCurrent(ctx context.Context, clientID, identityID string) error {
	if s.rdb == nil {
		s.mu.Lock()
		s.memCurrent[clientID] = identityID
		s.mu.Unlock()
		return nil
	}
	if err := s.rdb.Set(ctx, currentPrefix+clientID, identityID, 0).Err(); err != nil {
		return fmt.Errorf("mark current identity: %w", err)
	}
	return nil
}

// placeholderSecret builds the throwaway string hashed into SecretHash from
// name/email fragments plus a random suffix.
func placeholderSecret(name, email string) string {
	n := name
	if len(n) > 4 {
		n = n[:4]
	}
	e := email
	if at := strings.IndexByte(e, '@'); at > 0 {
		e = e[:at]
	}
	if len(e) > 4 {
		e = e[:4]
	}
	return n + e + uuid.NewString()[:8]
}
