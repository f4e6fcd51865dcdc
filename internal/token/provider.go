package token

import (
	"context"
	"errors"

	"civic-portal/internal/xerrors"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ProviderClaims is the decoded identity-provider claim set. Subject is
// always present; email and name depend on the provider's scopes.
type ProviderClaims struct {
	Subject string
	Email   string
	Name    string
}

// ProviderVerifier validates an external identity-provider bearer token.
type ProviderVerifier interface {
	Verify(ctx context.Context, raw string) (*ProviderClaims, error)
}

// JWKSVerifier validates OIDC ID tokens against the provider's published
// key set. Keys are cached and refreshed in the background.
type JWKSVerifier struct {
	cache    *jwk.Cache
	jwksURL  string
	issuer   string
	audience string
}

func NewJWKSVerifier(ctx context.Context, issuer, audience, jwksURL string) (*JWKSVerifier, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL); err != nil {
		return nil, err
	}
	// Prime the cache so a misconfigured URL fails at startup, not on the
	// first login.
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, err
	}
	return &JWKSVerifier{
		cache:    cache,
		jwksURL:  jwksURL,
		issuer:   issuer,
		audience: audience,
	}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (*ProviderClaims, error) {
	set, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	tok, err := jwt.ParseString(raw, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, xerrors.ErrExpiredToken
		}
		return nil, xerrors.ErrInvalidToken
	}
	if tok.Subject() == "" {
		return nil, xerrors.ErrInvalidToken
	}

	claims := &ProviderClaims{Subject: tok.Subject()}
	if email, ok := tok.Get("email"); ok {
		claims.Email, _ = email.(string)
	}
	if name, ok := tok.Get("name"); ok {
		claims.Name, _ = name.(string)
	}
	return claims, nil
}
