package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	RegisterID string
	CashierID  string
	Role       enums.ActorRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT presented by a register client.
type AccessTokenClaims struct {
	RegisterID string          `json:"register_id"`
	CashierID  string          `json:"cashier_id"`
	Role       enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
