package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the only supported JWT claims shape for this service.
// TokenType is tagged omitempty: tokens issued before type-tagging existed
// carry no token_type claim, and Verify accepts those for either expected
// type.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type,omitempty"`
}
