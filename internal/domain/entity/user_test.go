package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUserStat_StreakDays(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	u := NewUserStat(1, "tim", now.Add(-49*time.Hour))
	require.Equal(t, 2, u.StreakDays(now))

	u.LastRelapse = now
	require.Equal(t, 0, u.StreakDays(now))

	// дата из будущего даёт отрицательную серию, даже если прошло меньше суток
	u.LastRelapse = now.Add(12 * time.Hour)
	require.Equal(t, -1, u.StreakDays(now))
}

func TestUserStat_LastCollectedDay(t *testing.T) {
	u := NewUserStat(1, "tim", time.Now())

	day, err := u.LastCollectedDay()
	require.NoError(t, err)
	require.Equal(t, -1, day)

	u.CollectedMemes = []string{"day 0_a.jpg", "day 3_cat.jpg"}
	day, err = u.LastCollectedDay()
	require.NoError(t, err)
	require.Equal(t, 3, day)

	u.CollectedMemes = append(u.CollectedMemes, "garbage.jpg")
	_, err = u.LastCollectedDay()
	require.Error(t, err)
}

func TestUserStat_CloneIsIndependent(t *testing.T) {
	u := NewUserStat(1, "tim", time.Now())
	u.CollectedMemes = []string{"day 0_a.jpg"}

	c := u.Clone()
	c.CollectedMemes = append(c.CollectedMemes, "day 1_b.jpg")
	c.Username = "other"

	require.Len(t, u.CollectedMemes, 1)
	require.Equal(t, "tim", u.Username)
}
