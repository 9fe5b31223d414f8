package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler именованные периодические задачи в заданной таймзоне.
// Триггер задачи можно переопределить на лету по имени.
type Scheduler struct {
	cron *cron.Cron
	mu   sync.Mutex
	jobs map[string]job
}

type job struct {
	id cron.EntryID
	fn func()
}

// New создаёт планировщик в таймзоне tz
func New(tz string) (*Scheduler, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: make(map[string]job),
	}, nil
}

// AddJob регистрирует задачу под уникальным именем
func (s *Scheduler) AddJob(name, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("add job %q: %w", name, err)
	}
	s.jobs[name] = job{id: id, fn: fn}
	return nil
}

// Reschedule заменяет триггер зарегистрированной задачи
func (s *Scheduler) Reschedule(name, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %q is not registered", name)
	}
	id, err := s.cron.AddFunc(spec, j.fn)
	if err != nil {
		return fmt.Errorf("reschedule job %q: %w", name, err)
	}
	s.cron.Remove(j.id)
	s.jobs[name] = job{id: id, fn: j.fn}
	return nil
}

// Jobs имена зарегистрированных задач
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Start запускает планировщик
func (s *Scheduler) Start() { s.cron.Start() }

// Stop останавливает планировщик, дожидаясь текущих задач
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// DailyAt cron-выражение ежедневного запуска в заданное время
func DailyAt(hour, minute int) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// Every cron-выражение запуска с фиксированным интервалом
func Every(d time.Duration) string {
	return "@every " + d.String()
}
