package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	StaffID uint   `json:"staffId"`
	VenueID uint   `json:"venueId"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed JWT for a staff terminal session.
func GenerateToken(staffID, venueID uint, role string, secret string, ttl time.Duration) (string, error) {
	claims := &Claims{
		StaffID: staffID,
		VenueID: venueID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
