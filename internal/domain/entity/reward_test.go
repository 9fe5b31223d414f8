package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRewardDay(t *testing.T) {
	day, err := ParseRewardDay("day 3_cat.jpg")
	require.NoError(t, err)
	require.Equal(t, 3, day)

	day, err = ParseRewardDay("meme 0_first one.png")
	require.NoError(t, err)
	require.Equal(t, 0, day)

	_, err = ParseRewardDay("noday.jpg")
	require.Error(t, err)

	_, err = ParseRewardDay("day x_cat.jpg")
	require.Error(t, err)

	_, err = ParseRewardDay("day -2_cat.jpg")
	require.Error(t, err)
}

func TestRewardCatalog_HasAndPick(t *testing.T) {
	catalog := NewRewardCatalog([]Reward{
		{Day: 0, File: "day 0_a.jpg"},
		{Day: 0, File: "day 0_b.jpg"},
		{Day: 2, File: "day 2_c.jpg"},
	})

	require.True(t, catalog.Has(0))
	require.True(t, catalog.Has(2))
	require.False(t, catalog.Has(1))
	require.Equal(t, 3, catalog.Size())
	require.Equal(t, 2, catalog.Days())

	reward, ok := catalog.PickRandom(2)
	require.True(t, ok)
	require.Equal(t, "day 2_c.jpg", reward.File)

	_, ok = catalog.PickRandom(5)
	require.False(t, ok)
}

func TestRewardCatalog_Empty(t *testing.T) {
	catalog := NewRewardCatalog(nil)
	require.False(t, catalog.Has(0))
	require.Equal(t, 0, catalog.Size())
}
