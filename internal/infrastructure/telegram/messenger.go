package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nofap-bot/internal/domain/port"
)

// Messenger адаптер исходящего канала поверх Bot API
type Messenger struct {
	api *tgbotapi.BotAPI
}

// NewMessenger оборачивает готовый клиент Bot API
func NewMessenger(api *tgbotapi.BotAPI) *Messenger {
	return &Messenger{api: api}
}

// SendText отправляет текст с выбранной клавиатурой
func (m *Messenger) SendText(_ context.Context, chatID int64, text string, kb port.Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup := keyboardMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := m.api.Send(msg); err != nil {
		return classify(err)
	}
	return nil
}

// SendPhotoFile отправляет фото из локального файла
func (m *Messenger) SendPhotoFile(_ context.Context, chatID int64, path string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	if _, err := m.api.Send(photo); err != nil {
		return classify(err)
	}
	return nil
}

// SendDocumentFile отправляет локальный файл как документ под заданным именем
func (m *Messenger) SendDocumentFile(_ context.Context, chatID int64, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return &port.DeliveryError{Kind: port.DeliveryTransient, Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer f.Close()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: name, Reader: f})
	if _, err := m.api.Send(doc); err != nil {
		return classify(err)
	}
	return nil
}

// GetChatInfo запрашивает актуальные данные чата
func (m *Messenger) GetChatInfo(_ context.Context, chatID int64) (*port.ChatInfo, error) {
	chat, err := m.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, classify(err)
	}
	return &port.ChatInfo{Username: chat.UserName}, nil
}

// classify переводит ошибку Bot API в закрытый набор исходов доставки
func classify(err error) *port.DeliveryError {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return &port.DeliveryError{Kind: port.DeliveryTransient, Err: err}
	}

	switch {
	case apiErr.Code == 403,
		strings.Contains(apiErr.Message, "chat not found"),
		strings.Contains(apiErr.Message, "user is deactivated"):
		return &port.DeliveryError{Kind: port.DeliveryUnreachable, Err: err}
	case apiErr.Code == 429 || apiErr.RetryAfter > 0:
		return &port.DeliveryError{
			Kind:       port.DeliveryRateLimited,
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
			Err:        err,
		}
	default:
		return &port.DeliveryError{Kind: port.DeliveryTransient, Err: err}
	}
}

func keyboardMarkup(kb port.Keyboard) interface{} {
	switch kb {
	case port.KeyboardMenu:
		return menuKeyboard
	case port.KeyboardPrompt:
		return promptKeyboard
	case port.KeyboardStart:
		return startKeyboard
	case port.KeyboardRemove:
		return tgbotapi.NewRemoveKeyboard(false)
	default:
		return nil
	}
}

var _ port.Messenger = (*Messenger)(nil)
