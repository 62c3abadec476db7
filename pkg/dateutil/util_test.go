package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_BeginningOfWeek(t *testing.T) {
	// 2024-03-06 is a Wednesday.
	wednesday := time.Date(2024, 3, 6, 15, 4, 5, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), BeginningOfWeek(wednesday))

	sunday := time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), BeginningOfWeek(sunday))
}

func Test_NextDay(t *testing.T) {
	now := time.Date(2024, 3, 6, 15, 4, 5, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), NextDay(now))
}

func Test_NextMonday(t *testing.T) {
	wednesday := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), NextMonday(wednesday))

	sunday := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), NextMonday(sunday))

	// A Monday rolls to the following Monday, never to itself.
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), NextMonday(monday))
}

func Test_NextMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), NextMonth(now))

	december := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), NextMonth(december))
}

func Test_NextHour(t *testing.T) {
	now := time.Date(2024, 3, 6, 10, 15, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 6, 11, 0, 0, 0, time.UTC), NextHour(now))
}
