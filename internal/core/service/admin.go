package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

// handleAdminCallback assumes the caller already checked authorization.
func (m *SessionManager) handleAdminCallback(ctx context.Context, st *domain.SelectionState, a domain.Action, cb domain.Callback) error {
	switch cb.Name {
	case domain.CallbackAdminSection:
		return m.adminSection(ctx, st, a, cb.Arg(0))
	case domain.CallbackAdminCategory:
		return m.adminCategory(ctx, st, a, cb.Arg(0))
	case domain.CallbackAdminBrand:
		if !adminAt(st, domain.StepChoosingBrand) {
			return m.send(ctx, a.ChatID, textStaleButton, nil)
		}
		return m.adminBrand(ctx, st, a, cb.Arg(0))
	case domain.CallbackMode:
		return m.chooseMode(ctx, st, a, cb.Arg(0))
	default:
		return m.deleteGoods(ctx, a, cb)
	}
}

// handleAdminInput stores typed text in NFC so that the brand prefix of a
// stored name compares equal to the same brand typed later.
func (m *SessionManager) handleAdminInput(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	text := norm.NFC.String(strings.TrimSpace(a.Text))

	switch st.Step {
	case domain.StepChoosingBrand:
		if text == "" {
			return m.send(ctx, a.ChatID, textEmptyInput, nil)
		}
		return m.adminBrand(ctx, st, a, text)

	case domain.StepChoosingName:
		if text == "" {
			return m.send(ctx, a.ChatID, textEmptyInput, nil)
		}
		st.Draft.Name = text
		st.Step = domain.StepChoosingPrice
		return m.send(ctx, a.ChatID, textEnterPrice, nil)

	case domain.StepChoosingPrice:
		price, err := parsePrice(text)
		if err != nil {
			return m.send(ctx, a.ChatID, textInvalidPrice, nil)
		}
		st.Draft.Price = price
		st.Step = domain.StepChoosingCharacteristics
		return m.send(ctx, a.ChatID, textEnterDescription, nil)

	case domain.StepChoosingCharacteristics:
		if text == "" {
			return m.send(ctx, a.ChatID, textEmptyInput, nil)
		}
		st.Draft.Characteristics = text
		st.Step = domain.StepChoosingPhoto
		return m.send(ctx, a.ChatID, textSendPhoto, nil)

	case domain.StepChoosingPhoto:
		if a.Kind != domain.ActionPhoto || a.PhotoRef == "" {
			return m.send(ctx, a.ChatID, textSendPhoto, nil)
		}
		st.Draft.Photo = a.PhotoRef
		return m.persistDraft(ctx, st, a)

	default:
		return m.send(ctx, a.ChatID, textUseButtons, nil)
	}
}

func parsePrice(s string) (int64, error) {
	price, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %d", price)
	}
	return price, nil
}

// adminSection may be pressed at any time and restarts the admin flow.
func (m *SessionManager) adminSection(ctx context.Context, st *domain.SelectionState, a domain.Action, code string) error {
	section, ok := m.deps.Taxonomy.Section(code)
	if !ok {
		return m.send(ctx, a.ChatID, textUnknownSelection, adminMenuKeyboard(m.deps.Taxonomy))
	}
	if len(section.Categories) == 1 {
		st.Filters.Section = section.Code
		return m.adminCategory(ctx, st, a, section.Categories[0])
	}

	st.Begin(domain.FlowAdmin, domain.StepChoosingCategory)
	st.Filters.Section = section.Code
	return m.send(ctx, a.ChatID, section.Label, categoryKeyboard(m.deps.Taxonomy, section, domain.CallbackAdminCategory))
}

func (m *SessionManager) adminCategory(ctx context.Context, st *domain.SelectionState, a domain.Action, code string) error {
	category, ok := m.deps.Taxonomy.Category(code)
	if !ok {
		return m.send(ctx, a.ChatID, textUnknownSelection, adminMenuKeyboard(m.deps.Taxonomy))
	}

	section := st.Filters.Section
	st.Begin(domain.FlowAdmin, domain.StepChoosingBrand)
	st.Filters = domain.Filters{Section: section, Category: category.Code}
	return m.send(ctx, a.ChatID, fmt.Sprintf(textChooseBrand, categoryLabel(category)), adminBrandKeyboard(category))
}

func (m *SessionManager) adminBrand(ctx context.Context, st *domain.SelectionState, a domain.Action, brand string) error {
	if brand == "" {
		return m.send(ctx, a.ChatID, textEmptyInput, nil)
	}
	st.Filters.Brand = brand
	st.Step = domain.StepChoosingMode
	return m.send(ctx, a.ChatID, textChooseMode, modeKeyboard())
}

func (m *SessionManager) chooseMode(ctx context.Context, st *domain.SelectionState, a domain.Action, mode string) error {
	if !adminAt(st, domain.StepChoosingMode) {
		return m.send(ctx, a.ChatID, textStaleButton, nil)
	}

	switch mode {
	case domain.ModeAdd:
		st.Step = domain.StepChoosingName
		st.Draft = domain.Draft{}
		return m.send(ctx, a.ChatID, textEnterName, nil)
	case domain.ModeDelete:
		return m.listDeletable(ctx, st, a)
	default:
		return m.send(ctx, a.ChatID, textUnknownSelection, modeKeyboard())
	}
}

// persistDraft inserts the drafted item. Once the insert succeeded the state
// is reset before the echo is sent, so a failed echo never leads to a second
// insert on retry.
func (m *SessionManager) persistDraft(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	d := st.Draft
	goods := domain.NewGoods{
		CategoryID:      st.Filters.Category,
		Name:            st.Filters.Brand + " " + d.Name,
		Price:           d.Price,
		Characteristics: d.Characteristics,
		Photo:           d.Photo,
	}

	id, err := m.deps.Catalog.Insert(ctx, goods)
	if err != nil {
		return fmt.Errorf("insert goods: %w", err)
	}
	st.Reset()
	log.Printf("session %d: added goods %d %q", a.UserID, id, goods.Name)

	stored := domain.Goods{
		ID:              id,
		CategoryID:      goods.CategoryID,
		Name:            goods.Name,
		Price:           goods.Price,
		Characteristics: goods.Characteristics,
		Photo:           goods.Photo,
	}
	if _, err := m.deps.Messenger.SendPhoto(ctx, a.ChatID, stored.Photo, goodsCaption(stored), nil); err != nil {
		log.Printf("session %d: failed to echo goods %d: %v", a.UserID, id, err)
		return nil
	}
	if err := m.send(ctx, a.ChatID, textAdded, nil); err != nil {
		log.Printf("session %d: failed to confirm goods %d: %v", a.UserID, id, err)
	}
	return nil
}

// listDeletable renders every goods item of the chosen brand and category as
// its own message with a delete button, then records which message shows
// which item. The listing is identified by the chat and the message that
// triggered it.
func (m *SessionManager) listDeletable(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	goods, err := m.deps.Catalog.Query(ctx, domain.GoodsFilter{
		BrandPrefix:    st.Filters.Brand,
		CategoryPrefix: st.Filters.Category,
	})
	if err != nil {
		return fmt.Errorf("query goods: %w", err)
	}

	if len(goods) == 0 {
		st.Reset()
		return m.send(ctx, a.ChatID, textNoGoods, nil)
	}

	listing := domain.ListingKey{ChatID: a.ChatID, MessageID: a.MessageID}
	entries := make([]domain.LedgerEntry, 0, len(goods))
	for _, g := range goods {
		msgID, err := m.deps.Messenger.SendPhoto(ctx, a.ChatID, g.Photo, goodsCaption(g), deleteKeyboard(listing.MessageID, g.ID))
		if err != nil {
			return fmt.Errorf("send goods %d: %w", g.ID, err)
		}
		entries = append(entries, domain.LedgerEntry{Listing: listing, MessageID: msgID, GoodsID: g.ID})
	}

	if err := m.deps.Ledger.RecordListing(ctx, listing, entries); err != nil {
		return fmt.Errorf("record listing %s: %w", listing, err)
	}
	m.deps.Metrics.ListingRecorded()

	st.Reset()
	return nil
}

// deleteGoods removes an item chosen from a delete listing and marks its
// message as removed. The delete button lives in the listing's chat, so the
// acting chat completes the listing key. A missing item or ledger entry is not
// fatal.
func (m *SessionManager) deleteGoods(ctx context.Context, a domain.Action, cb domain.Callback) error {
	listingID, goodsID, ok := cb.DeleteTarget()
	if !ok {
		return m.send(ctx, a.ChatID, textUnknownAction, nil)
	}

	err := m.deps.Catalog.Delete(ctx, goodsID)
	switch {
	case errors.Is(err, domain.ErrGoodsNotFound):
		log.Printf("session %d: goods %d already deleted", a.UserID, goodsID)
	case err != nil:
		return fmt.Errorf("delete goods %d: %w", goodsID, err)
	}

	listing := domain.ListingKey{ChatID: a.ChatID, MessageID: listingID}
	msgID, found, err := m.deps.Ledger.ResolveMessage(ctx, listing, goodsID)
	if err != nil {
		return fmt.Errorf("resolve listing %s: %w", listing, err)
	}
	if !found {
		m.deps.Metrics.LedgerMiss()
		return m.send(ctx, a.ChatID, textRemovedNoMessage, nil)
	}

	return m.deps.Messenger.EditMessageMedia(ctx, a.ChatID, msgID, m.opts.RemovedPhoto, textRemovedCaption)
}

func adminAt(st *domain.SelectionState, step domain.Step) bool {
	return st.Flow == domain.FlowAdmin && st.Step == step
}
