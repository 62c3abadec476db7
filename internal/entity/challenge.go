package entity

import (
	"time"

	"github.com/stunity/backend/pkg/enum"
)

type ChallengeType string

var (
	ChallengeDaily  = enum.New(ChallengeType("daily"))
	ChallengeWeekly = enum.New(ChallengeType("weekly"))
)

type ChallengeDifficulty string

var (
	ChallengeEasy   = enum.New(ChallengeDifficulty("easy"))
	ChallengeMedium = enum.New(ChallengeDifficulty("medium"))
	ChallengeHard   = enum.New(ChallengeDifficulty("hard"))
)

type ChallengeStatus string

var (
	ChallengeActive    = enum.New(ChallengeStatus("active"))
	ChallengeCompleted = enum.New(ChallengeStatus("completed"))
	ChallengeExpired   = enum.New(ChallengeStatus("expired"))
)

// ChallengeTemplate is a reusable challenge blueprint. Templates are
// deactivated rather than deleted so existing instances keep their
// definition.
type ChallengeTemplate struct {
	Base

	Title       string
	Description string
	Type        ChallengeType
	Difficulty  ChallengeDifficulty
	TargetValue int
	XpReward    int64
	CoinReward  int64
	Weight      int
	IsActive    bool
}

// Challenge is one user's instance of a template for a period. Progress
// never decreases while active, and completed/expired are terminal.
type Challenge struct {
	Base

	UserID string `gorm:"index"`

	TemplateID string            `gorm:"index"`
	Template   ChallengeTemplate `gorm:"foreignKey:TemplateID"`

	Progress    int
	Status      ChallengeStatus `gorm:"index"`
	ExpiresAt   time.Time
	CompletedAt time.Time
}
