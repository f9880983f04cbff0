package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type UserRole string

const (
	RoleCustomer   UserRole = "CUSTOMER"
	RoleWaiter     UserRole = "WAITER"
	RoleRestaurant UserRole = "RESTAURANT_ADMIN"
)

// Claims mirrors what the backend puts in its access tokens. The kiosk
// cannot verify the signature; it only reads expiry to avoid sending a
// token the backend will reject anyway.
type Claims struct {
	UserID       int64    `json:"userId"`
	Role         UserRole `json:"role"`
	Email        string   `json:"email"`
	RestaurantID int64    `json:"restaurantId"`
	jwt.RegisteredClaims
}

func ParseBearerToken(authHeader string) string {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// InspectToken decodes a token without verifying its signature.
func InspectToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpired reports whether a cached token is past its exp claim.
// Opaque (non-JWT) tokens and tokens without exp are left to the backend.
func TokenExpired(tokenString string, now time.Time) bool {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return false
	}
	claims, err := InspectToken(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
