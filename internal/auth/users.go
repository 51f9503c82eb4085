// Package auth keeps process-lifetime accounts and signs session tokens.
package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Service owns the in-memory user table. Accounts vanish on restart.
type Service struct {
	mu        sync.RWMutex
	users     map[string]User
	passwords *Passwords
	tokens    *Tokens

	// compared against on unknown usernames so a miss costs one bcrypt run
	dummyOnce sync.Once
	dummyHash string
}

func NewService(passwords *Passwords, tokens *Tokens) *Service {
	return &Service{
		users:     make(map[string]User),
		passwords: passwords,
		tokens:    tokens,
	}
}

func (s *Service) Tokens() *Tokens {
	return s.tokens
}

func (s *Service) SignUp(username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return User{}, ErrUserExists
	}

	u := User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[username] = u
	return u, nil
}

// SignIn checks the credentials and issues a session token.
func (s *Service) SignIn(username, password string) (User, string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, "", time.Time{}, ErrMissingCredentials
	}

	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		_ = s.passwords.Verify(password, s.missHash())
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}
	if !s.passwords.Verify(password, u.PasswordHash) {
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	return u, token, expiresAt, nil
}

func (s *Service) missHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwords.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
