package telegram

import (
	"context"
	"sync"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

// MessengerCall records a single outbound call made through a Messenger.
type MessengerCall struct {
	Method    string // "SendPhoto", "EditMessageMedia", "SendText"
	ChatID    int64
	MessageID int64
	Photo     string
	Text      string
	Keyboard  domain.Keyboard
}

// RecordingMessenger implements port.Messenger by recording all outbound
// calls for later assertion in tests. Delivered message ids are sequential.
type RecordingMessenger struct {
	mu     sync.Mutex
	calls  []MessengerCall
	nextID int64

	// NextError, when set, is returned by the next call whose method equals
	// FailMethod (any method when FailMethod is empty) and then cleared.
	NextError  error
	FailMethod string
}

func NewRecordingMessenger() *RecordingMessenger {
	return &RecordingMessenger{nextID: 100}
}

func (r *RecordingMessenger) popError(method string) error {
	if r.NextError == nil || (r.FailMethod != "" && r.FailMethod != method) {
		return nil
	}
	err := r.NextError
	r.NextError = nil
	r.FailMethod = ""
	return err
}

// FailNext arms an error for the next call of method.
func (r *RecordingMessenger) FailNext(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FailMethod = method
	r.NextError = err
}

func (r *RecordingMessenger) SendPhoto(_ context.Context, chatID int64, photo, caption string, kb domain.Keyboard) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.popError("SendPhoto"); err != nil {
		return 0, err
	}
	r.nextID++
	r.calls = append(r.calls, MessengerCall{Method: "SendPhoto", ChatID: chatID, MessageID: r.nextID, Photo: photo, Text: caption, Keyboard: kb})
	return r.nextID, nil
}

func (r *RecordingMessenger) EditMessageMedia(_ context.Context, chatID, messageID int64, photo, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.popError("EditMessageMedia"); err != nil {
		return err
	}
	r.calls = append(r.calls, MessengerCall{Method: "EditMessageMedia", ChatID: chatID, MessageID: messageID, Photo: photo, Text: caption})
	return nil
}

func (r *RecordingMessenger) SendText(_ context.Context, chatID int64, text string, kb domain.Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.popError("SendText"); err != nil {
		return err
	}
	r.nextID++
	r.calls = append(r.calls, MessengerCall{Method: "SendText", ChatID: chatID, MessageID: r.nextID, Text: text, Keyboard: kb})
	return nil
}

// Calls returns a copy of every successful call so far.
func (r *RecordingMessenger) Calls() []MessengerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MessengerCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsByMethod returns the successful calls of one method in order.
func (r *RecordingMessenger) CallsByMethod(method string) []MessengerCall {
	var out []MessengerCall
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// LastText returns the text of the most recent SendText call, or "".
func (r *RecordingMessenger) LastText() string {
	texts := r.CallsByMethod("SendText")
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1].Text
}

// Reset forgets recorded calls.
func (r *RecordingMessenger) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
