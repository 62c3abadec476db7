package entity

import (
	"time"

	"github.com/stunity/backend/pkg/enum"
)

type AchievementCategory string

var (
	AchievementAcademic   = enum.New(AchievementCategory("academic"))
	AchievementAttendance = enum.New(AchievementCategory("attendance"))
	AchievementSocial     = enum.New(AchievementCategory("social"))
	AchievementChallenge  = enum.New(AchievementCategory("challenge"))
)

type CriterionType string

var (
	GradeCriterion      = enum.New(CriterionType("grade"))
	AttendanceCriterion = enum.New(CriterionType("attendance"))
	SocialCriterion     = enum.New(CriterionType("social"))
	ChallengeCriterion  = enum.New(CriterionType("challenge"))
	CompositeCriterion  = enum.New(CriterionType("composite"))
)

// CriterionNode is one node of an achievement criteria tree. Data holds
// the type-specific fields, including the children of composite nodes.
type CriterionNode struct {
	Type CriterionType `json:"type"`
	Data Map           `json:"data"`
}

// Achievement is a static catalog milestone. Read-only to the engine.
type Achievement struct {
	Base

	Title       string
	Description string
	Category    AchievementCategory
	Criteria    Array[CriterionNode]
	CoinReward  int64
	XpReward    int64
	IsActive    bool
}

// UserAchievementProgress tracks one user's progress toward one
// achievement. IsUnlocked only ever goes false -> true, and rewards are
// granted exactly once per (user, achievement).
type UserAchievementProgress struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID string `gorm:"primaryKey"`

	AchievementID string      `gorm:"primaryKey"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID"`

	Progress   int
	IsUnlocked bool
	UnlockedAt time.Time
}
