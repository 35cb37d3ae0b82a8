package models

import (
	"time"
)

// RefreshToken is one issued refresh credential for a login. Tokens rotate:
// every refresh revokes the presented row and stores a fresh one, so a
// replayed token fails the is_revoked check instead of minting new access
// tokens.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
