// Package auth issues and validates device tokens.
//
// A device token is a signed HS256 JWT carrying only the device's user id.
// It names a device; it does not grant any authority beyond what the
// trust-on-first-use model already hands out.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// DeviceTokens handles device-token generation and validation.
type DeviceTokens struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims are the custom JWT claims for a device token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// NewDeviceTokens creates a token manager with the given secret and
// lifetime. secretKey should be a strong random string (e.g., 32 bytes).
func NewDeviceTokens(secretKey string, tokenDuration time.Duration) *DeviceTokens {
	return &DeviceTokens{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Issue creates a new token naming the given device id.
func (m *DeviceTokens) Issue(userID string) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses a token and returns the device id it names.
func (m *DeviceTokens) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
