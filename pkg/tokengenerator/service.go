package tokengenerator

import (
	"time"

	"github.com/google/uuid"
)

const DefaultAccessTokenExpiry = 1 * time.Hour

// TokenValue is an issued token with its identity and expiry.
type TokenValue struct {
	Token     string
	Jti       uuid.UUID
	ExpiresAt time.Time
}

// TokenService issues access tokens through a TokenGenerator.
type TokenService struct {
	generator         TokenGenerator
	accessTokenExpiry time.Duration
}

// TokenServiceOption configures a TokenService.
type TokenServiceOption func(*TokenService)

// WithAccessTokenExpiry overrides the default access token expiry.
func WithAccessTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.accessTokenExpiry = expiry
	}
}

func NewTokenService(generator TokenGenerator, opts ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		generator:         generator,
		accessTokenExpiry: DefaultAccessTokenExpiry,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// GenerateAccessToken issues an access token for the given subject.
func (ts *TokenService) GenerateAccessToken(subject string, extraClaims map[string]interface{}) (TokenValue, error) {
	token, jti, expiresAt, err := ts.generator.GenerateToken(subject, ts.accessTokenExpiry, extraClaims)
	if err != nil {
		return TokenValue{}, err
	}
	return TokenValue{Token: token, Jti: jti, ExpiresAt: expiresAt}, nil
}

// AccessTokenExpiry reports the configured access token lifetime in seconds,
// as returned in the OAuth token response.
func (ts *TokenService) AccessTokenExpiry() int64 {
	return int64(ts.accessTokenExpiry / time.Second)
}
