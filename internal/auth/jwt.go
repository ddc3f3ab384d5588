// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every reason a token is not accepted.
var ErrInvalidToken = errors.New("invalid token")

// TokenType is reported to clients alongside the access token.
const TokenType = "bearer"

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	denylist *Denylist
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// WithDenylist enables revocation checks in Parse.
func WithDenylist(d *Denylist) IssuerOption {
	return func(i *Issuer) { i.denylist = d }
}

// NewIssuer creates an Issuer. The secret must be non-empty.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	i := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue returns a signed token for username.
func (i *Issuer) Issue(username string) (string, Principal, error) {
	if username == "" {
		return "", Principal{}, errors.New("username is required")
	}
	now := i.now().UTC()
	p := Principal{
		Username:  username,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        p.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Principal{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, p, nil
}

// Parse verifies token and returns its principal. Every failure wraps
// ErrInvalidToken.
func (i *Issuer) Parse(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	p := Principal{
		Username:  claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if i.denylist != nil && p.TokenID != "" {
		revoked, err := i.denylist.IsRevoked(ctx, p.TokenID)
		if err != nil {
			return Principal{}, fmt.Errorf("%w: revocation check: %v", ErrInvalidToken, err)
		}
		if revoked {
			return Principal{}, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}
	return p, nil
}

// Revoke denies p's token until it expires. Without a denylist it is a no-op.
func (i *Issuer) Revoke(ctx context.Context, p Principal) error {
	if i.denylist == nil || p.TokenID == "" {
		return nil
	}
	return i.denylist.Revoke(ctx, p.TokenID, p.ExpiresAt.Sub(i.now()))
}
