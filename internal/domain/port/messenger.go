package port

import (
	"context"
	"fmt"
	"time"
)

// Keyboard какую клавиатуру прикрепить к сообщению.
// Конкретная разметка — забота транспортного адаптера.
type Keyboard int

const (
	// KeyboardNone без клавиатуры
	KeyboardNone Keyboard = iota
	// KeyboardMenu главное меню (статистика, срыв, рестарт, предложить мем)
	KeyboardMenu
	// KeyboardPrompt ежедневный опрос (да/нет)
	KeyboardPrompt
	// KeyboardStart стартовый выбор начала челленджа
	KeyboardStart
	// KeyboardRemove убрать клавиатуру у получателя
	KeyboardRemove
)

// DeliveryKind класс ошибки доставки
type DeliveryKind int

const (
	// DeliveryUnreachable получатель недоступен: бот заблокирован или чат не найден
	DeliveryUnreachable DeliveryKind = iota
	// DeliveryRateLimited сервер просит подождать RetryAfter и повторить
	DeliveryRateLimited
	// DeliveryTransient прочая временная ошибка, повтор в этом цикле не нужен
	DeliveryTransient
)

// DeliveryError закрытый набор исходов неудачной доставки
type DeliveryError struct {
	Kind       DeliveryKind
	RetryAfter time.Duration // заполнено только для DeliveryRateLimited
	Err        error
}

func (e *DeliveryError) Error() string {
	switch e.Kind {
	case DeliveryUnreachable:
		return fmt.Sprintf("recipient unreachable: %v", e.Err)
	case DeliveryRateLimited:
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	default:
		return fmt.Sprintf("transient delivery error: %v", e.Err)
	}
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ChatInfo данные чата получателя
type ChatInfo struct {
	Username string
}

// Messenger исходящий канал сообщений.
// Все методы доставки возвращают *DeliveryError при неудаче.
type Messenger interface {
	// SendText отправляет текст с выбранной клавиатурой
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) error

	// SendPhotoFile отправляет фото из локального файла
	SendPhotoFile(ctx context.Context, chatID int64, path string) error

	// SendDocumentFile отправляет локальный файл как документ под заданным именем
	SendDocumentFile(ctx context.Context, chatID int64, path, name string) error

	// GetChatInfo запрашивает актуальные данные чата
	GetChatInfo(ctx context.Context, chatID int64) (*ChatInfo, error)
}
