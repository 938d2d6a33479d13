package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a JWT token. RegisteredClaims.ID is
// the token identifier used for revocation on logout.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// Viewer is the authenticated caller of a request. A nil *Viewer is an
// anonymous caller.
type Viewer struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

func (c *TokenClaims) Viewer() *Viewer {
	return &Viewer{UserID: c.UserID, Username: c.Username, Role: c.Role}
}

// CanEdit reports whether the viewer may change content owned by ownerID.
func (v *Viewer) CanEdit(ownerID uuid.UUID) bool {
	if v == nil {
		return false
	}
	return v.UserID == ownerID || v.Role == "admin"
}
