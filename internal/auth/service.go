// Package auth guards the API with a shared bearer token.
package auth

import (
	"crypto/sha256"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/cleanline/opsdesk/internal/shared"
)

// ActorHeader names the operator acting through the shared token.
const ActorHeader = "X-Actor"

// Service verifies bearer tokens against a bcrypt hash.
type Service struct {
	hash []byte

	mu       sync.RWMutex
	verified map[[sha256.Size]byte]struct{}
}

// NewService constructs a Service for the given bcrypt hash. An empty hash
// rejects every token.
func NewService(hash string) (*Service, error) {
	hash = strings.TrimSpace(hash)
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.New("auth: api token hash is not a bcrypt hash")
		}
	}
	return &Service{hash: []byte(hash), verified: make(map[[sha256.Size]byte]struct{})}, nil
}

// Verify checks a raw token. Tokens that passed once are remembered by
// digest so bcrypt only runs on first use.
func (s *Service) Verify(token string) error {
	if len(s.hash) == 0 || token == "" {
		return shared.ErrInvalidToken
	}
	digest := sha256.Sum256([]byte(token))
	s.mu.RLock()
	_, ok := s.verified[digest]
	s.mu.RUnlock()
	if ok {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(token)); err != nil {
		return shared.ErrInvalidToken
	}
	s.mu.Lock()
	s.verified[digest] = struct{}{}
	s.mu.Unlock()
	return nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
