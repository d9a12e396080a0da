package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

func (m *SessionManager) openAssistant(ctx context.Context, a domain.Action) error {
	if m.deps.Assistant == nil {
		return m.send(ctx, a.ChatID, textAssistantOff, nil)
	}
	return m.send(ctx, a.ChatID, textAssistantModes, assistantKeyboard())
}

func (m *SessionManager) chooseAssistantMode(ctx context.Context, st *domain.SelectionState, a domain.Action, mode string) error {
	if m.deps.Assistant == nil {
		return m.send(ctx, a.ChatID, textAssistantOff, nil)
	}
	if mode != domain.AssistantModeQuestion && mode != domain.AssistantModeRequest {
		return m.send(ctx, a.ChatID, textUnknownSelection, assistantKeyboard())
	}

	st.Begin(domain.FlowAssistant, domain.StepAskingAssistant)
	st.AssistantMode = mode
	return m.send(ctx, a.ChatID, textAssistantHello, nil)
}

func (m *SessionManager) stopAssistant(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	if st.Flow == domain.FlowAssistant {
		st.Reset()
	}
	return m.send(ctx, a.ChatID, textAssistantBye, nil)
}

func (m *SessionManager) askAssistant(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	question := strings.TrimSpace(a.Text)
	if question == "" {
		return m.send(ctx, a.ChatID, textEmptyInput, nil)
	}
	if m.deps.Assistant == nil {
		st.Reset()
		return m.send(ctx, a.ChatID, textAssistantOff, nil)
	}

	answer, err := m.deps.Assistant.Answer(ctx, question, st.AssistantMode)
	if err != nil {
		return fmt.Errorf("assistant answer: %w", err)
	}
	return m.send(ctx, a.ChatID, answer, assistantKeyboard())
}
