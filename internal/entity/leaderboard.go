package entity

import (
	"time"

	"github.com/stunity/backend/pkg/dateutil"
	"github.com/stunity/backend/pkg/enum"
)

type LeaderboardCategory string

var (
	LeaderboardTotalXp             = enum.New(LeaderboardCategory("total_xp"))
	LeaderboardAcademicPerformance = enum.New(LeaderboardCategory("academic_performance"))
	LeaderboardSocialEngagement    = enum.New(LeaderboardCategory("social_engagement"))
	LeaderboardAttendanceRate      = enum.New(LeaderboardCategory("attendance_rate"))
	LeaderboardChallengeCompletion = enum.New(LeaderboardCategory("challenge_completion"))
)

var LeaderboardCategoryList = []LeaderboardCategory{
	LeaderboardTotalXp,
	LeaderboardAcademicPerformance,
	LeaderboardSocialEngagement,
	LeaderboardAttendanceRate,
	LeaderboardChallengeCompletion,
}

type LeaderboardScope string

var (
	LeaderboardSchoolWide    = enum.New(LeaderboardScope("school_wide"))
	LeaderboardGradeLevel    = enum.New(LeaderboardScope("grade_level"))
	LeaderboardClassSpecific = enum.New(LeaderboardScope("class_specific"))
)

type LeaderboardPeriod string

var (
	LeaderboardDaily   = enum.New(LeaderboardPeriod("daily"))
	LeaderboardWeekly  = enum.New(LeaderboardPeriod("weekly"))
	LeaderboardMonthly = enum.New(LeaderboardPeriod("monthly"))
	LeaderboardAllTime = enum.New(LeaderboardPeriod("all_time"))
)

// PeriodStart returns the lower time bound of a period relative to now.
// The zero time means no lower bound (all time).
func (p LeaderboardPeriod) PeriodStart(now time.Time) time.Time {
	switch p {
	case LeaderboardDaily:
		return dateutil.BeginningOfDay(now)
	case LeaderboardWeekly:
		return dateutil.BeginningOfWeek(now)
	case LeaderboardMonthly:
		return dateutil.BeginningOfMonth(now)
	default:
		return time.Time{}
	}
}

type SnapshotEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Value  int64  `json:"value"`
}

// LeaderboardSnapshot is the immutable archive of a ranked list taken
// by the period reset jobs.
type LeaderboardSnapshot struct {
	Base

	Category    LeaderboardCategory `gorm:"index:idx_snapshot_period"`
	Scope       LeaderboardScope
	Period      LeaderboardPeriod
	PeriodStart time.Time `gorm:"index:idx_snapshot_period"`
	Entries     Array[SnapshotEntry]
}
