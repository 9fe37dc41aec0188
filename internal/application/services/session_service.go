package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/session"
	"github.com/seldo/newww/internal/core/ports"
)

// SessionService signs HS256 session tokens for freshly created accounts.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &SessionService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

var _ ports.SessionService = (*SessionService)(nil)

func (s *SessionService) Issue(ctx context.Context, a *account.Account) (*session.Tokens, error) {
	now := s.now()
	claims := &session.Claims{
		AccountID: a.ID,
		Name:      a.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &session.Tokens{
		AccessToken: signed,
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}

func (s *SessionService) Validate(ctx context.Context, tokenString string) (*session.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &session.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*session.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
