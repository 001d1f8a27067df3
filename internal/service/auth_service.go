package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

const TokenTypeBearer = "bearer"

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type AuthService struct {
	users  UserStore
	tokens *TokenService
}

func NewAuthService(users UserStore, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	User        *domain.User
	AccessToken string
	TokenType   string
}

// Signup creates an active user. Email is checked before username so the
// reported conflict is deterministic.
func (s *AuthService) Signup(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return nil, fmt.Errorf("%w: email and username are required", ErrValidation)
	}
	if len(username) > 255 || len(email) > 255 {
		return nil, fmt.Errorf("%w: email and username must be at most 255 characters", ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// a concurrent signup can win the race between the probes and the insert
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if dup.Constraint == repository.ConstraintUsersUsername {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login matches identifier against email first and falls back to username
// only when no account has that email.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		u, err = s.users.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, repository.ErrNotFound) {
		_ = compareDigest(missDigest(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(u.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: u, AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// ResolveUser turns a bearer token into an active user.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}
