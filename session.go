package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// SessionObject is the decoded view of a session token
type SessionObject struct {
	UserID    string     `json:"user_id,omitempty"`
	Email     string     `json:"email,omitempty"`
	Username  string     `json:"username,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	Audience  []string   `json:"audience,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SessionClaims are the JWT claims we mint for a logged-in identity
type SessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// SessionTokenService is the default SessionHost: Login mints a signed HS256
// session token for the identity. Hosts with their own session layer can
// ignore it and provide a different SessionHost.
type SessionTokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

var _ SessionHost = (*SessionTokenService)(nil)

// NewSessionTokenService creates a new session token service
func NewSessionTokenService(signingKey []byte, ttl time.Duration, issuer string, audience []string, logger Logger) *SessionTokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &SessionTokenService{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// Login establishes a session for the identity by minting a signed token
func (s *SessionTokenService) Login(ctx context.Context, identity Identity) (string, error) {
	if identity == nil {
		return "", ErrIdentityNotFound
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   identity.ID(),
			Audience:  s.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:    identity.Email(),
		Username: identity.Username(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// SessionFromToken parses and validates a session token string
func (s *SessionTokenService) SessionFromToken(tokenString string) (*SessionObject, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if s.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(s.issuer))
	}
	if len(s.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(s.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Error("session token has unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, goerrors.Wrap(err, ErrSessionMalformed.Category, ErrSessionMalformed.Message).
			WithTextCode(ErrSessionMalformed.TextCode)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		s.logger.Error("session token claims could not be decoded")
		return nil, ErrSessionMalformed
	}

	session := &SessionObject{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = &claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = &claims.ExpiresAt.Time
	}

	return session, nil
}
