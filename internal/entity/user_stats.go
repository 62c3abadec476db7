package entity

import "time"

// UserStats is the per-user aggregate the rest of the platform writes
// into. This engine only increments XP and reads the aggregates when
// evaluating achievement criteria and leaderboards.
type UserStats struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID string `gorm:"primaryKey"`

	Xp    int64
	Level int

	GradeAverage float64
	PostCount    int
}

// AttendanceStreak is maintained by the attendance subsystem; read-only
// here.
type AttendanceStreak struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID        string `gorm:"primaryKey"`
	CurrentStreak int
	LongestStreak int
}
