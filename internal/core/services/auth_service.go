package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type AuthService struct {
	userRepo  ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenService
	denylist  ports.TokenDenylist
	dummyHash func() (string, error)
}

func NewAuthService(userRepo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, denylist ports.TokenDenylist) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(uuid.NewString())
		}),
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCredentials checks a username/password pair. Unknown usernames are
// still run through the hasher so both failure paths cost about the same.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (uuid.UUID, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return uuid.Nil, fmt.Errorf("failed to get user: %w", err)
		}
		dummy, hashErr := s.dummyHash()
		if hashErr == nil {
			_ = s.hasher.Compare(password, dummy)
		}
		return uuid.Nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(password, user.PasswordHash); err != nil {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	return user.ID, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	userID, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(userID, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to a user id. Every failure is
// reported as domain.ErrUnauthorized with the underlying cause kept in the
// chain.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (uuid.UUID, error) {
	claims, err := s.verify(ctx, rawToken)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.verify(ctx, rawToken)
	if err != nil {
		return err
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) verify(ctx context.Context, rawToken string) (*domain.TokenClaims, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}

	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthorized)
	}
	return claims, nil
}
