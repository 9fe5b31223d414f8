package entity

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Reward один мем-актив с закодированным днём серии
type Reward struct {
	Day  int    // день серии, на который выдаётся награда
	File string // имя файла в каталоге мемов
}

// ParseRewardDay извлекает день серии из имени актива.
// Формат имени: "слово <N>_остальное", например "day 3_cat.jpg".
func ParseRewardDay(name string) (int, error) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return 0, fmt.Errorf("reward %q: no day token", name)
	}
	token, _, _ := strings.Cut(fields[1], "_")
	day, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("reward %q: bad day token %q", name, token)
	}
	if day < 0 {
		return 0, fmt.Errorf("reward %q: negative day %d", name, day)
	}
	return day, nil
}

// RewardCatalog неизменяемое после загрузки отображение день -> награды.
// Каталог может быть разреженным: на какой-то день наград может не быть.
type RewardCatalog struct {
	byDay map[int][]Reward
}

// NewRewardCatalog собирает каталог из готовых записей
func NewRewardCatalog(rewards []Reward) *RewardCatalog {
	byDay := make(map[int][]Reward)
	for _, r := range rewards {
		byDay[r.Day] = append(byDay[r.Day], r)
	}
	return &RewardCatalog{byDay: byDay}
}

// Has есть ли хотя бы одна награда на указанный день
func (c *RewardCatalog) Has(day int) bool {
	return len(c.byDay[day]) > 0
}

// PickRandom случайная награда указанного дня
func (c *RewardCatalog) PickRandom(day int) (Reward, bool) {
	rewards := c.byDay[day]
	if len(rewards) == 0 {
		return Reward{}, false
	}
	return rewards[rand.Intn(len(rewards))], true
}

// Size общее число активов в каталоге
func (c *RewardCatalog) Size() int {
	total := 0
	for _, rewards := range c.byDay {
		total += len(rewards)
	}
	return total
}

// Days число дней, на которые есть хотя бы одна награда
func (c *RewardCatalog) Days() int {
	return len(c.byDay)
}
