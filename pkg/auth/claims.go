package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	Username  string
	StoreName string
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. StoreName is
// empty for principals that have not been attached to a store yet.
type AccessTokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	StoreName string    `json:"store_name,omitempty"`
	jwt.RegisteredClaims
}
