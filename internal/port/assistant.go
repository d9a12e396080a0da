package port

import "context"

type Assistant interface {
	// Answer replies to a free-form question, mode is one of the
	// domain.AssistantMode* values
	Answer(ctx context.Context, question, mode string) (string, error)
}
