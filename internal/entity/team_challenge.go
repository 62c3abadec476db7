package entity

import (
	"time"

	"github.com/stunity/backend/pkg/enum"
)

type TeamChallengeStatus string

var (
	TeamChallengePending   = enum.New(TeamChallengeStatus("pending"))
	TeamChallengeActive    = enum.New(TeamChallengeStatus("active"))
	TeamChallengeCompleted = enum.New(TeamChallengeStatus("completed"))
	TeamChallengeExpired   = enum.New(TeamChallengeStatus("expired"))
)

// TeamChallenge is a pooled multi-user goal. The participant set is
// fixed at creation; rewards are distributed once, when the challenge
// transitions to completed.
type TeamChallenge struct {
	Base

	Name        string
	Description string
	CreatorID   string

	TargetValue  int64
	CurrentValue int64

	Deadline    time.Time
	Status      TeamChallengeStatus `gorm:"index"`
	CompletedAt time.Time

	CoinReward int64
	XpReward   int64

	Participants []TeamChallengeParticipant `gorm:"foreignKey:TeamChallengeID"`
}

// TeamChallengeParticipant is a user's stake in a team challenge.
// Contribution only ever increases.
type TeamChallengeParticipant struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	TeamChallengeID string `gorm:"primaryKey"`
	UserID          string `gorm:"primaryKey"`

	Contribution int64
}
