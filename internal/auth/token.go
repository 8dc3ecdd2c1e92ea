package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and missing claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the token signature is fine but exp has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the verified payload of an access token.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// IssueToken mints an HS256 signed token with subject, user id and expiry claims.
func IssueToken(username string, userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies the signature and expiry of a token and returns its claims.
// Expired tokens yield ErrTokenExpired; any other failure, including a missing
// subject or user id claim, yields ErrInvalidToken.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
