// Package auth issues and verifies access tokens for the REST surface.
// Passwords are bcrypt-hashed; tokens are stateless JWTs, so nothing
// per-session is kept server-side. The whole surface is optional and
// gated by configuration; when disabled, every route is open.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

const minPasswordLength = 6

var (
	// ErrInvalidCredentials covers both unknown-user and bad-password
	// so login failures don't reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken reports a missing, malformed or expired token.
	ErrInvalidToken = errors.New("invalid or expired token")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Principal identifies the authenticated caller.
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Service registers users and issues/verifies tokens.
type Service struct {
	users  store.UserCollection
	secret []byte
	ttl    time.Duration
}

// NewService builds the auth service. ttl bounds token lifetime.
func NewService(users store.UserCollection, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

// Register creates an account and returns it with a fresh token.
// Username/email uniqueness is enforced by the user collection.
func (s *Service) Register(ctx context.Context, username, email, password string) (*store.User, string, error) {
	if username == "" {
		return nil, "", &item.ValidationError{Field: "username", Message: "required"}
	}
	if !emailRe.MatchString(email) {
		return nil, "", &item.ValidationError{Field: "email", Message: "invalid email format"}
	}
	if len(password) < minPasswordLength {
		return nil, "", &item.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters long", minPasswordLength),
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &store.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.users.Insert(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials and returns the account with a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (*store.User, string, error) {
	if username == "" || password == "" {
		return nil, "", &item.ValidationError{Field: "username", Message: "username and password are required"}
	}

	user, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile loads the account behind a principal.
func (s *Service) Profile(ctx context.Context, userID string) (*store.User, error) {
	return s.users.ByID(ctx, userID)
}

func (s *Service) issueToken(user *store.User) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and extracts the principal. Stateless:
// no lookup, no session.
func (s *Service) Verify(token string) (*Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: c.Subject, Username: c.Username, Email: c.Email}, nil
}
