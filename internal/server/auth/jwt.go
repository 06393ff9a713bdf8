// Package auth encodes session claims into signed HS256 tokens and back.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is written to the iss claim of every token.
const Issuer = "staffgate"

// SessionToken is the payload of a session token: the registered claims
// (jti is the session id, sub the user id) plus the fixed claim set.
type SessionToken struct {
	jwt.RegisteredClaims
	models.SessionClaims
}

// GenerateToken signs claims for the session sessionID, valid from issuedAt
// until expiresAt.
func GenerateToken(claims models.SessionClaims, sessionID string, secretKey []byte, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionToken{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   claims.Email,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionClaims: claims,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString as of now.
// An expired token yields common.ErrTokenExpired, anything else that does not
// verify yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (*SessionToken, error) {
	return parse(tokenString, secretKey,
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
	)
}

// SessionID returns the jti of a token whose signature verifies, whether or
// not it has expired.
func SessionID(tokenString string, secretKey []byte) (string, error) {
	t, err := parse(tokenString, secretKey, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func parse(tokenString string, secretKey []byte, opts ...jwt.ParserOption) (*SessionToken, error) {
	claims := &SessionToken{}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
