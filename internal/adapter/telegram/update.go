package telegram

import (
	"strconv"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

type User struct {
	ID int64 `json:"id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text"`
	Caption   string      `json:"caption"`
	Photo     []PhotoSize `json:"photo"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// ToAction converts an update into a session action. It reports false for
// updates the bot does not react to (edits, channel posts, service messages).
func ToAction(u Update) (domain.Action, bool) {
	id := strconv.FormatInt(u.UpdateID, 10)

	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.Message == nil {
			return domain.Action{}, false
		}
		return domain.Action{
			ID:        id,
			UserID:    q.From.ID,
			ChatID:    q.Message.Chat.ID,
			MessageID: q.Message.MessageID,
			Kind:      domain.ActionCallback,
			Data:      q.Data,
		}, true

	case u.Message != nil && u.Message.From != nil:
		msg := u.Message
		a := domain.Action{
			ID:        id,
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Text:      msg.Text,
		}
		switch {
		case len(msg.Photo) > 0:
			a.Kind = domain.ActionPhoto
			a.PhotoRef = msg.Photo[len(msg.Photo)-1].FileID
			a.Text = msg.Caption
		case msg.Text != "":
			if cmd, ok := domain.ParseCommand(msg.Text); ok {
				a.Kind = domain.ActionCommand
				a.Command = cmd
			} else {
				a.Kind = domain.ActionText
			}
		default:
			return domain.Action{}, false
		}
		return a, true
	}

	return domain.Action{}, false
}
