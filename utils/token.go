package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token issuance lives in the auth service; this file only mirrors its claim
// shape so requests can be attributed to (actor, role, outlet).

var jwtSecret = func() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
	}
	return []byte(secret)
}()

type ActorClaims struct {
	ActorID  uint   `json:"actor_id"`
	Role     string `json:"role"`
	OutletID uint   `json:"outlet_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token with the actor claims. Used by tests and local
// tooling; production tokens come from the auth service with the same shape.
func GenerateToken(actorID uint, role string, outletID uint) (string, error) {
	claims := &ActorClaims{
		ActorID:  actorID,
		Role:     role,
		OutletID: outletID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "dineflow-pos",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseToken(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*ActorClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
