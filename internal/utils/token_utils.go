package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT generates a new JWT access token for a user.
func GenerateJWT(userID string, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a JWT token string and validates its signature
// and standard claims.
func ParseAndValidateJWT(tokenString string, secretKey string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// confirmationClaims carries the purpose and target of a server-issued
// confirmation token for destructive operations.
type confirmationClaims struct {
	Purpose  string `json:"purpose"`
	TargetID string `json:"targetID"`
	jwt.RegisteredClaims
}

// ErrConfirmationMismatch indicates the confirmation token does not cover the
// requested purpose or target.
var ErrConfirmationMismatch = errors.New("confirmation token does not match the requested action")

// GenerateConfirmationToken issues a short-lived token that authorizes a
// single destructive action on a single target. The client must echo it back
// to execute the action, which replaces boolean "are you sure" flags.
func GenerateConfirmationToken(purpose, targetID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := confirmationClaims{
		Purpose:  purpose,
		TargetID: targetID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateConfirmationToken verifies a confirmation token and checks it was
// issued for the given purpose and target.
func ValidateConfirmationToken(tokenString, purpose, targetID, secret string) error {
	claims := &confirmationClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenSignatureInvalid
	}
	if claims.Purpose != purpose || claims.TargetID != targetID {
		return ErrConfirmationMismatch
	}
	return nil
}
