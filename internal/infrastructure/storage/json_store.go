package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nofap-bot/internal/domain/entity"
	"nofap-bot/internal/domain/port"
)

// JSONUserStore хранилище участников поверх одного JSON-файла.
// Весь файл читается в память на старте и целиком переписывается
// при сохранении. Точечные сеттеры диск не трогают: снимок уходит
// на диск при AddNewUser и явном Flush.
type JSONUserStore struct {
	mu       sync.RWMutex
	data     map[int64]*entity.UserStat
	contexts map[int64]*entity.Engagement
	path     string
	now      func() time.Time
	log      zerolog.Logger
}

// NewJSONUserStore загружает хранилище из файла.
// Отсутствующий файл означает пустое хранилище; нечитаемый — ошибку.
func NewJSONUserStore(path string, log zerolog.Logger) (*JSONUserStore, error) {
	s := &JSONUserStore{
		data:     make(map[int64]*entity.UserStat),
		contexts: make(map[int64]*entity.Engagement),
		path:     path,
		now:      time.Now,
		log:      log,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("state file is absent, starting empty")
			return s, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var loaded map[string]*entity.UserStat
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}

	for key, stat := range loaded {
		uid, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse state file %s: bad uid %q", path, key)
		}
		if stat.CollectedMemes == nil {
			stat.CollectedMemes = make([]string, 0)
		}
		stat.UID = uid
		s.data[uid] = stat
		s.contexts[uid] = entity.NewEngagement(s.refreshFunc(uid))
	}

	log.Info().Int("users", len(s.data)).Str("path", path).Msg("state loaded")
	return s, nil
}

// refreshFunc колбэк эскалации: долгое молчание считается срывом
func (s *JSONUserStore) refreshFunc(uid int64) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if stat, ok := s.data[uid]; ok {
			stat.LastRelapse = s.now()
		}
	}
}

// Path путь к файлу снимка
func (s *JSONUserStore) Path() string { return s.path }

// Contains есть ли участник с таким ID
func (s *JSONUserStore) Contains(uid int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[uid]
	return ok
}

// AddNewUser заводит запись и сразу сохраняет снимок на диск
func (s *JSONUserStore) AddNewUser(uid int64, username string, lastRelapse time.Time) (*entity.UserStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat := entity.NewUserStat(uid, username, lastRelapse)
	s.data[uid] = stat
	s.contexts[uid] = entity.NewEngagement(s.refreshFunc(uid))

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return stat.Clone(), nil
}

// GetByID возвращает копию записи участника
func (s *JSONUserStore) GetByID(uid int64) (*entity.UserStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stat, ok := s.data[uid]
	if !ok {
		return nil, fmt.Errorf("uid %d: %w", uid, port.ErrUserNotFound)
	}
	return stat.Clone(), nil
}

// Engagement машина вовлечённости участника
func (s *JSONUserStore) Engagement(uid int64) (*entity.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eng, ok := s.contexts[uid]
	if !ok {
		return nil, fmt.Errorf("uid %d: %w", uid, port.ErrUserNotFound)
	}
	return eng, nil
}

// SetRelapseTime обновляет момент последнего срыва
func (s *JSONUserStore) SetRelapseTime(uid int64, t time.Time) error {
	return s.mutate(uid, func(stat *entity.UserStat) { stat.LastRelapse = t })
}

// SetUsername обновляет ник
func (s *JSONUserStore) SetUsername(uid int64, username string) error {
	return s.mutate(uid, func(stat *entity.UserStat) { stat.Username = username })
}

// SetWinner обновляет флаг нехватки мемов
func (s *JSONUserStore) SetWinner(uid int64, winner bool) error {
	return s.mutate(uid, func(stat *entity.UserStat) { stat.Winner = winner })
}

// SetBlocked обновляет флаг бана
func (s *JSONUserStore) SetBlocked(uid int64, blocked bool) error {
	return s.mutate(uid, func(stat *entity.UserStat) { stat.Blocked = blocked })
}

// AppendReward дописывает награду в историю участника
func (s *JSONUserStore) AppendReward(uid int64, memeID string) error {
	return s.mutate(uid, func(stat *entity.UserStat) {
		stat.CollectedMemes = append(stat.CollectedMemes, memeID)
	})
}

func (s *JSONUserStore) mutate(uid int64, fn func(*entity.UserStat)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, ok := s.data[uid]
	if !ok {
		return fmt.Errorf("uid %d: %w", uid, port.ErrUserNotFound)
	}
	fn(stat)
	return nil
}

// Flush сохраняет полный снимок всех записей на диск
func (s *JSONUserStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked пишет снимок во временный файл и атомарно подменяет старый
func (s *JSONUserStore) persistLocked() error {
	snapshot := make(map[string]*entity.UserStat, len(s.data))
	for uid, stat := range s.data {
		snapshot[strconv.FormatInt(uid, 10)] = stat
	}

	raw, err := json.MarshalIndent(snapshot, "", "    ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}

	s.log.Debug().Int("users", len(s.data)).Msg("state flushed")
	return nil
}

// All копии всех записей для обхода
func (s *JSONUserStore) All() []*entity.UserStat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]*entity.UserStat, 0, len(s.data))
	for _, stat := range s.data {
		stats = append(stats, stat.Clone())
	}
	return stats
}

// BlackList все забаненные участники
func (s *JSONUserStore) BlackList() []entity.BannedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	banned := make([]entity.BannedUser, 0)
	for uid, stat := range s.data {
		if stat.Blocked {
			banned = append(banned, entity.BannedUser{UID: uid, Username: stat.Username})
		}
	}
	sort.Slice(banned, func(i, j int) bool { return banned[i].UID < banned[j].UID })
	return banned
}

// FindByUsername ищет участника по нику
func (s *JSONUserStore) FindByUsername(username string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for uid, stat := range s.data {
		if stat.Username == username {
			return uid, nil
		}
	}
	return 0, fmt.Errorf("username %q: %w", username, port.ErrUserNotFound)
}

// PageSize размер страницы рейтинга
const PageSize = 10

// TopRanked страница рейтинга и позиция запросившего.
// Сортировка по времени срыва по возрастанию: самый давний срыв —
// самая длинная серия — первая строка.
func (s *JSONUserStore) TopRanked(page int, caller int64) ([]*entity.UserStat, *entity.CallerRank) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]*entity.UserStat, 0, len(s.data))
	for _, stat := range s.data {
		if stat.Blocked {
			continue
		}
		if stat.Username == "" && stat.UID != caller {
			continue
		}
		ranked = append(ranked, stat.Clone())
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].LastRelapse.Before(ranked[j].LastRelapse)
	})

	var callerRank *entity.CallerRank
	for i, stat := range ranked {
		if stat.UID == caller {
			callerRank = &entity.CallerRank{Rank: i + 1, Stat: stat}
			break
		}
	}

	start := page * PageSize
	if start >= len(ranked) || start < 0 {
		return []*entity.UserStat{}, callerRank
	}
	end := start + PageSize
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[start:end], callerRank
}

var _ port.UserStore = (*JSONUserStore)(nil)
