package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the validated content of an access token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// TokenService issues and validates HS256 access tokens. It keeps no state
// besides the secret, so tokens cannot be revoked before they expire.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source; used to simulate expiry.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a token for userID valid for the configured TTL.
func (s *TokenService) Issue(userID int64) (string, error) {
	return s.IssueWithTTL(userID, s.ttl)
}

func (s *TokenService) IssueWithTTL(userID int64, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", errors.New("invalid user ID")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks signature, algorithm and expiry. Any failure other than
// expiry is reported as ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
