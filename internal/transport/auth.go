package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// claims is the JWT claim set issued by the account service. Subject
// carries the user id.
type claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated principal behind a connection.
type Identity struct {
	UserID   model.UserID
	Username model.Username
}

var errUnauthorized = errors.New("unauthorized")

// authenticate verifies an HMAC-signed bearer token and extracts the
// identity. An empty secret disables verification (local development)
// and yields an anonymous identity.
func authenticate(jwtSecret, bearer string) (Identity, error) {
	if jwtSecret == "" {
		return Identity{}, nil
	}

	tokenString := strings.TrimPrefix(bearer, "Bearer ")
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: missing token", errUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token", errUnauthorized)
	}

	c, ok := token.Claims.(*claims)
	if !ok || c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token missing subject", errUnauthorized)
	}

	return Identity{
		UserID:   c.Subject,
		Username: model.Username(c.Username),
	}, nil
}
