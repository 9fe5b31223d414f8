package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Suggestions приём предложенных участниками мемов.
// Каждое фото сохраняется в подкаталог участника под случайным именем.
type Suggestions struct {
	root string
	log  zerolog.Logger
}

// NewSuggestions создаёт сервис с корневым каталогом предложений
func NewSuggestions(root string, log zerolog.Logger) *Suggestions {
	return &Suggestions{root: root, log: log}
}

// Save сохраняет фото участника и возвращает путь к файлу
func (s *Suggestions) Save(uid int64, data []byte) (string, error) {
	dir := filepath.Join(s.root, strconv.FormatInt(uid, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create suggestions dir: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save suggestion: %w", err)
	}

	s.log.Info().Int64("uid", uid).Str("path", path).Int("total", s.Count(uid)).Msg("meme suggestion saved")
	return path, nil
}

// Count сколько предложений уже прислал участник
func (s *Suggestions) Count(uid int64) int {
	entries, err := os.ReadDir(filepath.Join(s.root, strconv.FormatInt(uid, 10)))
	if err != nil {
		return 0
	}
	return len(entries)
}
