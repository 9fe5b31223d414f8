package entity

import "sync"

// EngagementState состояние участника в машине ежедневных опросов
type EngagementState int

const (
	// StateAwaiting участник считается активным, счётчик пропусков растёт
	StateAwaiting EngagementState = iota
	// StateEscalated участник молчал слишком долго, серия считается прерванной
	StateEscalated
)

// DefaultMaxMissedPrompts сколько опросов подряд можно пропустить до эскалации
const DefaultMaxMissedPrompts = 3

// Engagement машина состояний вовлечённости одного участника.
// Хранилище владеет refresh-колбэком: эскалированный участник при
// следующем ответе получает сброс таймера серии на "сейчас".
type Engagement struct {
	mu      sync.Mutex
	state   EngagementState
	count   int
	max     int
	refresh func()
}

// NewEngagement создаёт машину в состоянии ожидания с нулевым счётчиком
func NewEngagement(refresh func()) *Engagement {
	return &Engagement{
		state:   StateAwaiting,
		max:     DefaultMaxMissedPrompts,
		refresh: refresh,
	}
}

// DailyCheck фиксирует доставленный, но ещё не отвеченный опрос.
// В эскалированном состоянии повторные вызовы ничего не меняют.
func (e *Engagement) DailyCheck() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateEscalated {
		return
	}
	e.count++
	if e.count >= e.max {
		e.state = StateEscalated
		e.count = 0
	}
}

// Response фиксирует явный ответ участника на опрос.
// В ожидании счётчик пропусков сбрасывается в ноль; в эскалации
// молчание трактуется как срыв: вызывается refresh и машина
// возвращается в ожидание.
func (e *Engagement) Response() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateAwaiting:
		e.count = 0
	case StateEscalated:
		if e.refresh != nil {
			e.refresh()
		}
		e.state = StateAwaiting
		e.count = 0
	}
}

// State текущее состояние машины
func (e *Engagement) State() EngagementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// MissedCount текущий счётчик пропущенных опросов
func (e *Engagement) MissedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}
