package security

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const profileIssuer = "smartreads"

// ProfileClaims identify a browser profile. The profile id scopes the
// session record, the same way browser storage is scoped to one browser.
type ProfileClaims struct {
	ProfileID string `json:"pid"`
	jwt.RegisteredClaims
}

func GenerateProfileToken(secret string, profileID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ProfileClaims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    profileIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   profileID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseProfileToken(tokenStr string, secret string) (*ProfileClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ProfileClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(profileIssuer))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*ProfileClaims); ok && token.Valid && claims.ProfileID != "" {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// RandomSecret is used when no profile secret is configured outside
// production; cookies then stop validating after a restart.
func RandomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return fmt.Sprintf("%x", buf), nil
}
