package helpers

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was well formed and correctly signed but its TTL elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, wrong issuer or algorithm and malformed input.
	ErrTokenInvalid = errors.New("token invalid")
)

// ActionPayload identifies the account an activation or recovery link acts on.
// The action itself is decided by the endpoint that accepts the token.
type ActionPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionPayload is embedded in the token returned by a successful login.
type SessionPayload struct {
	Admin     bool   `json:"admin"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	LastLogin int64  `json:"last_login"`
}

// Claims wraps the payload under "data".
type Claims[T any] struct {
	Data T `json:"data"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies identity tokens with a single algorithm,
// issuer and TTL.
type TokenManager struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewHMACTokenManager builds an HS256 manager from a shared secret.
func NewHMACTokenManager(secret, issuer string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	return newTokenManager(jwt.SigningMethodHS256, []byte(secret), []byte(secret), issuer, ttl, opts), nil
}

// NewRSATokenManager builds an RS256 manager from PEM encoded keys.
func NewRSATokenManager(privatePEM, publicPEM []byte, issuer string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	var pub *rsa.PublicKey
	if len(publicPEM) > 0 {
		if pub, err = jwt.ParseRSAPublicKeyFromPEM(publicPEM); err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
	} else {
		pub = &priv.PublicKey
	}
	return newTokenManager(jwt.SigningMethodRS256, priv, pub, issuer, ttl, opts), nil
}

// LoadTokenManager picks the algorithm and reads key files when needed.
func LoadTokenManager(algorithm, secret, privateKeyPath, publicKeyPath, issuer string, ttl time.Duration) (*TokenManager, error) {
	switch algorithm {
	case "HS256", "":
		return NewHMACTokenManager(secret, issuer, ttl)
	case "RS256":
		priv, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		var pub []byte
		if publicKeyPath != "" {
			if pub, err = os.ReadFile(publicKeyPath); err != nil {
				return nil, fmt.Errorf("read public key: %w", err)
			}
		}
		return NewRSATokenManager(priv, pub, issuer, ttl)
	default:
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
}

func newTokenManager(method jwt.SigningMethod, signKey, verifyKey any, issuer string, ttl time.Duration, opts []TokenOption) *TokenManager {
	m := &TokenManager{
		method:    method,
		signKey:   signKey,
		verifyKey: verifyKey,
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL is the lifetime of every issued token.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// IssueAction signs an activation/recovery token.
func (m *TokenManager) IssueAction(p ActionPayload) (string, error) {
	return sign(m, p)
}

// IssueSession signs the token handed out on login.
func (m *TokenManager) IssueSession(p SessionPayload) (string, error) {
	return sign(m, p)
}

// VerifyAction returns the payload of a valid token. Failures are either
// ErrTokenExpired or ErrTokenInvalid.
func (m *TokenManager) VerifyAction(tokenStr string) (*ActionPayload, error) {
	claims, err := parse[ActionPayload](m, tokenStr)
	if err != nil {
		return nil, err
	}
	return &claims.Data, nil
}

// VerifySession parses a login token.
func (m *TokenManager) VerifySession(tokenStr string) (*SessionPayload, error) {
	claims, err := parse[SessionPayload](m, tokenStr)
	if err != nil {
		return nil, err
	}
	return &claims.Data, nil
}

func sign[T any](m *TokenManager, data T) (string, error) {
	now := m.now()
	claims := &Claims[T]{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.signKey)
}

func parse[T any](m *TokenManager, tokenStr string) (*Claims[T], error) {
	claims := &Claims[T]{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.verifyKey, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
