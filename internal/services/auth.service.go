package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"diskpanel/internal/logging"
)

const tokenIssuer = "diskpanel"

// minSecretLength is the HMAC-SHA256 key size
const minSecretLength = 32

// AuthService issues and validates the tokens that bind a sort session to
// the snapshot a page was rendered from
type AuthService struct {
	secretKey   []byte
	tokenExpiry time.Duration
}

// SessionClaims represents the JWT claims structure
type SessionClaims struct {
	SnapshotID string `json:"snapshot_id"`
	jwt.RegisteredClaims
}

// NewAuthService creates the service. An empty secret is replaced by a random
// one, which invalidates outstanding tokens on restart.
func NewAuthService(secretKey string, tokenExpiry time.Duration) (*AuthService, error) {
	secretKey = strings.TrimSpace(secretKey)

	if secretKey == "" {
		randomBytes := make([]byte, minSecretLength)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		secretKey = hex.EncodeToString(randomBytes)
		logging.Debug().Msg("Generated ephemeral session secret")
	}

	if len(secretKey) < minSecretLength {
		logging.Warn().
			Int("length", len(secretKey)).
			Msgf("Session secret is shorter than the recommended %d bytes", minSecretLength)
	}

	if tokenExpiry <= 0 {
		tokenExpiry = 15 * time.Minute
	}

	return &AuthService{
		secretKey:   []byte(secretKey),
		tokenExpiry: tokenExpiry,
	}, nil
}

// GenerateToken creates a session token for a snapshot
func (a *AuthService) GenerateToken(snapshotID string) (string, error) {
	if snapshotID == "" {
		return "", errors.New("snapshot id is required")
	}

	now := time.Now()
	claims := SessionClaims{
		SnapshotID: snapshotID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secretKey)
}

// ValidateToken verifies and parses a session token
func (a *AuthService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.SnapshotID == "" {
		return nil, fmt.Errorf("token has no snapshot")
	}

	return claims, nil
}

// TokenExpiry returns how long issued tokens stay valid
func (a *AuthService) TokenExpiry() time.Duration {
	return a.tokenExpiry
}
