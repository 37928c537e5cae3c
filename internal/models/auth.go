package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens. CenterID binds the
// caller to a single tenant.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	CenterID string   `json:"center_id"`
	Email    string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}
