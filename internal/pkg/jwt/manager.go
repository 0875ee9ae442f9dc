// internal/pkg/jwt/manager.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"arrears-service/internal/domain/auth"
)

type Config struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

// Manager signs and verifies the service's RSA tokens.
type Manager struct {
	priv     *rsa.PrivateKey
	pub      *rsa.PublicKey
	issuer   string
	audience string
	kid      string // key id for rotation
	TTL      time.Duration
}

func LoadAndBuild(cfg Config) (*Manager, error) {
	priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key from %s: %w", cfg.PrivPath, err)
	}

	pub, err := LoadRSAPublicKeyFromPEM(cfg.PubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key from %s: %w", cfg.PubPath, err)
	}

	return &Manager{
		priv:     priv,
		pub:      pub,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		kid:      cfg.KID,
		TTL:      cfg.TTL,
	}, nil
}

// Generate creates a signed token for the given principal. Returns the token
// string and its jti.
func (m *Manager) Generate(p auth.Principal) (string, string, error) {
	if m.priv == nil {
		return "", "", fmt.Errorf("jwt manager has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		Kind:   string(p.Kind),
		Role:   p.Role,
		Region: p.Region,
		RTOM:   p.RTOM,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if m.kid != "" {
		token.Header["kid"] = m.kid
	}

	signed, err := token.SignedString(m.priv)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, jti, nil
}

// Verify parses and validates a token, returning its claims and principal.
func (m *Manager) Verify(tokenString string) (*Claims, auth.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.pub, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, auth.Principal{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, auth.Principal{}, fmt.Errorf("token is not valid")
	}
	if !claims.VerifyAudience(m.audience, true) {
		return nil, auth.Principal{}, fmt.Errorf("token audience mismatch")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, auth.Principal{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	return claims, claims.Principal(id), nil
}
