package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"nofap-bot/internal/domain/entity"
	"nofap-bot/internal/domain/port"
	"nofap-bot/internal/infrastructure/cache"
	"nofap-bot/internal/infrastructure/storage"
)

type ratingFixture struct {
	rating   *Rating
	store    *storage.JSONUserStore
	fake     *fakeMessenger
	problems *cache.MemoryProblemCache
	now      time.Time
}

func newRatingFixture(t *testing.T, rewards []entity.Reward) *ratingFixture {
	t.Helper()

	store := newTestStore(t)
	fake := newFakeMessenger()
	problems := cache.NewMemoryProblemCache()
	sender := NewBroadcaster(store, fake, 10, zerolog.Nop())
	rating := NewRating(store, entity.NewRewardCatalog(rewards), fake, sender, problems, "memes", 10, zerolog.Nop())

	f := &ratingFixture{
		rating:   rating,
		store:    store,
		fake:     fake,
		problems: problems,
		now:      time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	rating.now = func() time.Time { return f.now }
	return f
}

func (f *ratingFixture) addUser(t *testing.T, uid int64, relapseAgo time.Duration) {
	t.Helper()
	_, err := f.store.AddNewUser(uid, "nick", f.now.Add(-relapseAgo))
	require.NoError(t, err)
}

func TestCheckRating_GrantsDayZeroExactlyOnce(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, 0)

	f.rating.CheckRating(context.Background())
	f.rating.CheckRating(context.Background())

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.Equal(t, []string{"day 0_a.jpg"}, stat.CollectedMemes)
	require.False(t, stat.Winner)

	require.Equal(t, 1, f.fake.countText(10, "Congratulations!!! You have collected 0-day meme."))
	require.Equal(t, []string{"memes/day 0_a.jpg"}, f.fake.photos)

	// серия дошла до текущего дня, значит опрос задан сразу и один раз
	require.Equal(t, 1, f.fake.countText(10, MsgDailyPrompt))
	eng, err := f.store.Engagement(10)
	require.NoError(t, err)
	require.Equal(t, 1, eng.MissedCount())
}

func TestCheckRating_NeverGrantsAheadOfElapsedDays(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{
		{Day: 0, File: "day 0_a.jpg"},
		{Day: 1, File: "day 1_b.jpg"},
		{Day: 2, File: "day 2_c.jpg"},
	})
	f.addUser(t, 10, 26*time.Hour) // прошло чуть больше суток

	for i := 0; i < 4; i++ {
		f.rating.CheckRating(context.Background())
	}

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.Equal(t, []string{"day 0_a.jpg", "day 1_b.jpg"}, stat.CollectedMemes)

	lastDay, err := stat.LastCollectedDay()
	require.NoError(t, err)
	require.LessOrEqual(t, lastDay, stat.StreakDays(f.now))
}

func TestCheckRating_FutureRelapseDateIsSkipped(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, -48*time.Hour) // срыв "в будущем"

	f.rating.CheckRating(context.Background())

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.Empty(t, stat.CollectedMemes)
	require.Empty(t, f.fake.textsTo(10))
}

func TestCheckRating_InsufficientRewardNotifiesOnce(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{
		{Day: 0, File: "day 0_a.jpg"},
		{Day: 1, File: "day 1_b.jpg"},
		{Day: 2, File: "day 2_c.jpg"},
	})
	f.addUser(t, 10, 73*time.Hour) // третий день, а мемов на него нет
	require.NoError(t, f.store.AppendReward(10, "day 2_c.jpg"))

	f.rating.CheckRating(context.Background())
	f.rating.CheckRating(context.Background())

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.True(t, stat.Winner)
	require.Equal(t, []string{"day 2_c.jpg"}, stat.CollectedMemes)
	require.Equal(t, 1, f.fake.countText(10, msgNotEnoughMemes))
}

func TestCheckRating_WinnerFlagClearsWhenContentCatchesUp(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, 0)
	require.NoError(t, f.store.SetWinner(10, true))

	f.rating.CheckRating(context.Background())

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.False(t, stat.Winner)
	require.Equal(t, []string{"day 0_a.jpg"}, stat.CollectedMemes)
}

func TestCheckRating_BlockedUserUntouched(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, 0)
	require.NoError(t, f.store.SetBlocked(10, true))

	f.rating.CheckRating(context.Background())

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.Empty(t, stat.CollectedMemes)
	require.Empty(t, f.fake.textsTo(10))
	require.Equal(t, 0, f.fake.chatLookups[10])
}

func TestCheckRating_FailedChatLookupMarksProblematic(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, 0)
	f.fake.chatErrs[10] = &port.DeliveryError{Kind: port.DeliveryTransient, Err: errors.New("timeout")}

	f.rating.CheckRating(context.Background())
	require.True(t, f.problems.Has(context.Background(), 10))
	require.Empty(t, f.fake.textsTo(10))

	// в следующем цикле проблемный участник даже не запрашивается
	f.rating.CheckRating(context.Background())
	require.Equal(t, 1, f.fake.chatLookups[10])

	// после плановой очистки кэша участник снова в работе
	f.rating.ClearProblemCache(context.Background())
	f.fake.chatErrs = map[int64]error{}
	f.rating.CheckRating(context.Background())

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.Equal(t, []string{"day 0_a.jpg"}, stat.CollectedMemes)
}

func TestCheckRating_RefreshesUsername(t *testing.T) {
	f := newRatingFixture(t, nil)
	f.addUser(t, 10, 0)
	f.fake.usernames[10] = "renamed"

	f.rating.CheckRating(context.Background())

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.Equal(t, "renamed", stat.Username)
}

func TestCheckRating_FailureOfOneUserDoesNotAbortOthers(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, 0)
	f.addUser(t, 20, 0)
	f.fake.queueTextErr(10, &port.DeliveryError{Kind: port.DeliveryUnreachable, Err: errors.New("blocked")})

	f.rating.CheckRating(context.Background())

	// недоступный забанен, второй участник получил свою награду
	blockedStat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.True(t, blockedStat.Blocked)

	okStat, err := f.store.GetByID(20)
	require.NoError(t, err)
	require.Equal(t, []string{"day 0_a.jpg"}, okStat.CollectedMemes)
}

func TestCheckRating_OverlappingSweepsGrantOnce(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, 0)
	f.fake.chatDelay = 100 * time.Millisecond

	// второй тик приходит, пока первый обход ещё висит на запросе чата
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.rating.CheckRating(context.Background())
		}()
	}
	wg.Wait()

	stat, err := f.store.GetByID(10)
	require.NoError(t, err)
	require.Equal(t, []string{"day 0_a.jpg"}, stat.CollectedMemes)
	require.Equal(t, 1, f.fake.countText(10, "Congratulations!!! You have collected 0-day meme."))
}

func TestCheckRating_FlushesAfterSweep(t *testing.T) {
	f := newRatingFixture(t, []entity.Reward{{Day: 0, File: "day 0_a.jpg"}})
	f.addUser(t, 10, 0)

	f.rating.CheckRating(context.Background())

	// награда видна после перезапуска хранилища
	reloaded, err := storage.NewJSONUserStore(f.store.Path(), zerolog.Nop())
	require.NoError(t, err)
	stat, err := reloaded.GetByID(10)
	require.NoError(t, err)
	require.Equal(t, []string{"day 0_a.jpg"}, stat.CollectedMemes)
}
