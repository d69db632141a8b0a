package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 characters")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrOIDCDisabled       = errors.New("external sign-in is not configured")
)

// Session is what login hands back to the client.
type Session struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type Service struct {
	users    *store.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenManager
	identity IdentityVerifier
}

// NewService wires the auth service. identity may be nil, which disables
// external sign-in.
func NewService(users *store.UserRepository, hasher *PasswordHasher, tokens *TokenManager, identity IdentityVerifier) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, identity: identity}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	return s.register(ctx, email, password, models.RoleCustomer)
}

func (s *Service) register(ctx context.Context, email, password, role string) (*models.User, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// LoginWithIDToken exchanges a verified external ID token for a local
// session, creating a Customer account on first use.
func (s *Service) LoginWithIDToken(ctx context.Context, rawIDToken string) (*Session, error) {
	if s.identity == nil {
		return nil, ErrOIDCDisabled
	}
	email, err := s.identity.VerifyEmail(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// External accounts get an unusable random password.
		user, err = s.register(ctx, email, randomPassword(), models.RoleCustomer)
		if errors.Is(err, ErrUserExists) {
			user, err = s.users.FindByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Authenticate validates an access token and returns its claims.
func (s *Service) Authenticate(token string) (*Claims, error) {
	return s.tokens.Validate(token)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// EnsureAdmin makes sure an Admin account exists for email, promoting an
// existing user if needed.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.register(ctx, email, password, models.RoleAdmin)
	case err != nil:
		return nil, err
	case user.Role != models.RoleAdmin:
		if err := s.users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		user.Role = models.RoleAdmin
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

func randomPassword() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
