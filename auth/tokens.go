package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/focusflow-app/focusflow/config"
	"github.com/focusflow-app/focusflow/log"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenDuration is the JWT access token lifetime
const AccessTokenDuration = 15 * time.Minute

var (
	jwtSecret     []byte
	jwtSecretOnce sync.Once
)

// secret returns the HMAC signing key. When none is configured a random key
// is generated at boot, which invalidates access tokens across restarts;
// refresh sessions survive because they live in the database.
func secret() []byte {
	jwtSecretOnce.Do(func() {
		cfg := config.Get()
		if cfg.JWTSecret != "" {
			jwtSecret = []byte(cfg.JWTSecret)
			return
		}

		bytes := make([]byte, 32)
		rand.Read(bytes)
		jwtSecret = []byte(hex.EncodeToString(bytes))
		log.Warn().Msg("FOCUSFLOW_JWT_SECRET not set, using ephemeral signing key")
	})
	return jwtSecret
}

// IssueAccessToken creates a signed access token for a user
func IssueAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		Issuer:    "focusflow",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// VerifyAccessToken validates a token and returns the user ID it carries
func VerifyAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			return secret(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("focusflow"),
	)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return claims.Subject, nil
}
