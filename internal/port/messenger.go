package port

import (
	"context"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

type Messenger interface {
	// SendPhoto delivers a photo with caption and returns the delivered message id
	SendPhoto(ctx context.Context, chatID int64, photo, caption string, kb domain.Keyboard) (int64, error)

	// EditMessageMedia replaces photo and caption of a delivered message
	EditMessageMedia(ctx context.Context, chatID, messageID int64, photo, caption string) error

	SendText(ctx context.Context, chatID int64, text string, kb domain.Keyboard) error
}
