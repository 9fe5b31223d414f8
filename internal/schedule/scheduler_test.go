package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_AddJob(t *testing.T) {
	s, err := New("Europe/Moscow")
	require.NoError(t, err)

	require.NoError(t, s.AddJob("sweep", Every(time.Minute), func() {}))
	require.NoError(t, s.AddJob("prompt", DailyAt(21, 0), func() {}))
	require.ElementsMatch(t, []string{"sweep", "prompt"}, s.Jobs())

	// имя задачи уникально
	require.Error(t, s.AddJob("sweep", Every(time.Hour), func() {}))

	// кривое cron-выражение отклоняется
	require.Error(t, s.AddJob("bad", "not a cron spec", func() {}))
}

func TestScheduler_Reschedule(t *testing.T) {
	s, err := New("UTC")
	require.NoError(t, err)

	require.NoError(t, s.AddJob("summary", DailyAt(21, 0), func() {}))
	require.NoError(t, s.Reschedule("summary", DailyAt(9, 30)))
	require.ElementsMatch(t, []string{"summary"}, s.Jobs())

	require.Error(t, s.Reschedule("unknown", DailyAt(9, 30)))
}

func TestScheduler_BadTimezone(t *testing.T) {
	_, err := New("Mars/Olympus")
	require.Error(t, err)
}

func TestTriggerSpecs(t *testing.T) {
	require.Equal(t, "0 21 * * *", DailyAt(21, 0))
	require.Equal(t, "30 3 * * *", DailyAt(3, 30))
	require.Equal(t, "@every 1m0s", Every(time.Minute))
}
