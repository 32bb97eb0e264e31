package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role tokens are minted for.
const RoleAdmin = "admin"

// AdminTokenPayload captures the data available when minting a JWT.
type AdminTokenPayload struct {
	Username string
	JTI      string
}

// AdminClaims represents the typed JWT issued to the admin panel.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
