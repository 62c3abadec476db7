package entity

import (
	"database/sql"
	"time"

	"github.com/stunity/backend/pkg/enum"
)

type UnlockableType string

var (
	UnlockableAvatar        = enum.New(UnlockableType("avatar"))
	UnlockableTheme         = enum.New(UnlockableType("theme"))
	UnlockableBadgeFrame    = enum.New(UnlockableType("badge_frame"))
	UnlockableProfileEffect = enum.New(UnlockableType("profile_effect"))
)

// Unlockable is a purchasable cosmetic catalog item, optionally gated
// behind an achievement. Admin-managed; read-only to the engine.
type Unlockable struct {
	Base

	Name                  string
	Description           string
	Type                  UnlockableType
	Cost                  int64
	RequiredAchievementID sql.NullString
	IsActive              bool
}

// UserUnlockable records ownership and the equip flag. At most one
// owned item per (user, type) may be equipped.
type UserUnlockable struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID string `gorm:"primaryKey"`

	UnlockableID string     `gorm:"primaryKey"`
	Unlockable   Unlockable `gorm:"foreignKey:UnlockableID"`

	IsEquipped bool
}
