package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the coarse actor role carried inside access tokens. Identity and
// login live in an external service; this package only validates what that
// service minted.
type Role string

const (
	RoleStoreAdmin Role = "store_admin"
	RoleStoreStaff Role = "store_staff"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleStoreAdmin, RoleStoreStaff:
		return true
	}
	return false
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	StoreID *uuid.UUID
	Role    Role
	JTI     string
}

// AccessTokenClaims represents the typed JWT presented by store dashboards.
type AccessTokenClaims struct {
	UserID  uuid.UUID  `json:"user_id"`
	StoreID *uuid.UUID `json:"store_id,omitempty"`
	Role    Role       `json:"role"`
	jwt.RegisteredClaims
}
