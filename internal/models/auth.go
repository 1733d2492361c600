package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the acting user's identity for audit attribution.
// Token issuance lives in the identity collaborator, not in this service.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
