package utils // package utils mints the operator tokens accepted by the reload endpoint

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOperator is the role claim required by POST /v1/reload.
const RoleOperator = "operator"

// AccessToken is a signed JWT along with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewOperatorToken signs an HS256 JWT with sub, role=operator, exp and iat
// claims.
func NewOperatorToken(secret, sub string, ttl time.Duration) (AccessToken, error) {
	if sub == "" {
		return AccessToken{}, errors.New("token subject is required")
	}
	if ttl <= 0 {
		return AccessToken{}, errors.New("token ttl must be positive")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": RoleOperator,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
