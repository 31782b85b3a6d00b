package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// AccessTokenClaims is the JWT issued by the identity service and accepted by the API.
// Energy balance is always read fresh from the users table. Tokens minted without a
// role are treated as plain users.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}
