package service

import (
	"context"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

func (m *SessionManager) dispatch(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	switch a.Kind {
	case domain.ActionCommand:
		return m.handleCommand(ctx, st, a)
	case domain.ActionCallback:
		return m.handleCallback(ctx, st, a)
	default:
		return m.handleInput(ctx, st, a)
	}
}

func (m *SessionManager) handleCommand(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	switch a.Command {
	case "start":
		st.Reset()
		return m.send(ctx, a.ChatID, textMenu, menuKeyboard(m.deps.Taxonomy))

	case "admin":
		if ok, err := m.requireAdmin(ctx, a); !ok {
			return err
		}
		st.Begin(domain.FlowAdmin, domain.StepChoosingCategory)
		return m.send(ctx, a.ChatID, textAdminMenu, adminMenuKeyboard(m.deps.Taxonomy))

	case "cancel":
		if st.Flow != domain.FlowAdmin || st.IsIdle() {
			return m.send(ctx, a.ChatID, textNothingToCancel, nil)
		}
		st.Reset()
		return m.send(ctx, a.ChatID, textCancelled, nil)

	case "stop":
		if st.Flow != domain.FlowAssistant {
			return m.send(ctx, a.ChatID, textNothingToStop, nil)
		}
		st.Reset()
		return m.send(ctx, a.ChatID, textAssistantStopped, nil)

	default:
		return m.send(ctx, a.ChatID, textUnknownCommand, nil)
	}
}

func (m *SessionManager) handleCallback(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	cb := domain.ParseCallback(a.Data)

	switch cb.Name {
	case domain.CallbackSection:
		return m.chooseSection(ctx, st, a, cb.Arg(0))
	case domain.CallbackCategory:
		return m.chooseCategory(ctx, st, a, cb.Arg(0))
	case domain.CallbackTier:
		return m.chooseTier(ctx, st, a, cb.Arg(0))
	case domain.CallbackConnector:
		return m.chooseConnector(ctx, st, a, cb.Arg(0))
	case domain.CallbackBrand:
		return m.chooseBrand(ctx, st, a, cb.Arg(0))
	case domain.CallbackShowAll:
		return m.chooseBrand(ctx, st, a, "")
	case domain.CallbackNext:
		return m.showMore(ctx, st, a)

	case domain.CallbackAdminSection, domain.CallbackAdminCategory, domain.CallbackAdminBrand,
		domain.CallbackMode, domain.CallbackDelete:
		if ok, err := m.requireAdmin(ctx, a); !ok {
			return err
		}
		return m.handleAdminCallback(ctx, st, a, cb)

	case domain.CallbackAssistant:
		return m.openAssistant(ctx, a)
	case domain.CallbackAssistantMode:
		return m.chooseAssistantMode(ctx, st, a, cb.Arg(0))
	case domain.CallbackAssistantStop:
		return m.stopAssistant(ctx, st, a)

	default:
		return m.send(ctx, a.ChatID, textUnknownAction, nil)
	}
}

// handleInput routes free text and photos by the step that is waiting for them.
func (m *SessionManager) handleInput(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	switch st.Flow {
	case domain.FlowAdmin:
		if ok, err := m.requireAdmin(ctx, a); !ok {
			return err
		}
		return m.handleAdminInput(ctx, st, a)
	case domain.FlowAssistant:
		if st.Step == domain.StepAskingAssistant {
			return m.askAssistant(ctx, st, a)
		}
	case domain.FlowBrowse:
		if !st.IsIdle() {
			return m.send(ctx, a.ChatID, textUseButtons, nil)
		}
	}
	return m.send(ctx, a.ChatID, textUnknownAction, nil)
}

// requireAdmin reports whether the acting user may use the admin flow and
// sends the denial otherwise. The returned error is only a delivery failure.
func (m *SessionManager) requireAdmin(ctx context.Context, a domain.Action) (bool, error) {
	if m.deps.Authorizer.IsAdministrator(ctx, a.UserID) {
		return true, nil
	}
	return false, m.send(ctx, a.ChatID, textDenied, nil)
}

func (m *SessionManager) send(ctx context.Context, chatID int64, text string, kb domain.Keyboard) error {
	return m.deps.Messenger.SendText(ctx, chatID, text, kb)
}
