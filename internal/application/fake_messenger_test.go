package app

import (
	"context"
	"sync"
	"time"

	"nofap-bot/internal/domain/port"
)

type sentText struct {
	UID  int64
	Text string
	KB   port.Keyboard
}

// fakeMessenger скриптуемый канал доставки для тестов: на каждый
// SendText по очереди отдаёт заготовленные ошибки, успехи записывает
type fakeMessenger struct {
	mu          sync.Mutex
	textErrs    map[int64][]error
	texts       []sentText
	attempts    map[int64]int
	photos      []string
	photoErr    error
	usernames   map[int64]string
	chatErrs    map[int64]error
	chatLookups map[int64]int
	chatDelay   time.Duration
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		textErrs:    make(map[int64][]error),
		attempts:    make(map[int64]int),
		usernames:   make(map[int64]string),
		chatErrs:    make(map[int64]error),
		chatLookups: make(map[int64]int),
	}
}

func (f *fakeMessenger) queueTextErr(uid int64, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textErrs[uid] = append(f.textErrs[uid], errs...)
}

func (f *fakeMessenger) SendText(_ context.Context, chatID int64, text string, kb port.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts[chatID]++
	if queue := f.textErrs[chatID]; len(queue) > 0 {
		err := queue[0]
		f.textErrs[chatID] = queue[1:]
		if err != nil {
			return err
		}
	}
	f.texts = append(f.texts, sentText{UID: chatID, Text: text, KB: kb})
	return nil
}

func (f *fakeMessenger) SendPhotoFile(_ context.Context, _ int64, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photoErr != nil {
		return f.photoErr
	}
	f.photos = append(f.photos, path)
	return nil
}

func (f *fakeMessenger) SendDocumentFile(_ context.Context, _ int64, _, _ string) error {
	return nil
}

func (f *fakeMessenger) GetChatInfo(_ context.Context, chatID int64) (*port.ChatInfo, error) {
	if f.chatDelay > 0 {
		time.Sleep(f.chatDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.chatLookups[chatID]++
	if err := f.chatErrs[chatID]; err != nil {
		return nil, err
	}
	if name, ok := f.usernames[chatID]; ok {
		return &port.ChatInfo{Username: name}, nil
	}
	return &port.ChatInfo{Username: "nick"}, nil
}

func (f *fakeMessenger) textsTo(uid int64) []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentText, 0)
	for _, s := range f.texts {
		if s.UID == uid {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeMessenger) countText(uid int64, text string) int {
	n := 0
	for _, s := range f.textsTo(uid) {
		if s.Text == text {
			n++
		}
	}
	return n
}

var _ port.Messenger = (*fakeMessenger)(nil)
