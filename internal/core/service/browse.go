package service

import (
	"context"
	"fmt"

	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/core/pagination"
)

// chooseSection may be pressed at any time and restarts the browsing flow.
func (m *SessionManager) chooseSection(ctx context.Context, st *domain.SelectionState, a domain.Action, code string) error {
	section, ok := m.deps.Taxonomy.Section(code)
	if !ok {
		return m.send(ctx, a.ChatID, textUnknownSelection, menuKeyboard(m.deps.Taxonomy))
	}
	if len(section.Categories) == 1 {
		st.Filters.Section = section.Code
		return m.chooseCategory(ctx, st, a, section.Categories[0])
	}

	st.Begin(domain.FlowBrowse, domain.StepChoosingCategory)
	st.Filters.Section = section.Code
	return m.send(ctx, a.ChatID, section.Label, categoryKeyboard(m.deps.Taxonomy, section, domain.CallbackCategory))
}

func (m *SessionManager) chooseCategory(ctx context.Context, st *domain.SelectionState, a domain.Action, code string) error {
	category, ok := m.deps.Taxonomy.Category(code)
	if !ok {
		return m.send(ctx, a.ChatID, textUnknownSelection, menuKeyboard(m.deps.Taxonomy))
	}

	section := st.Filters.Section
	st.Begin(domain.FlowBrowse, domain.StepChoosingPriceTier)
	st.Filters = domain.Filters{Section: section, Category: category.Code}
	return m.send(ctx, a.ChatID, textChooseTier, tierKeyboard())
}

func (m *SessionManager) chooseTier(ctx context.Context, st *domain.SelectionState, a domain.Action, token string) error {
	if !m.browsingAt(st, domain.StepChoosingPriceTier) {
		return m.send(ctx, a.ChatID, textStaleButton, nil)
	}
	tier, ok := domain.ParsePriceTier(token)
	if !ok {
		return m.send(ctx, a.ChatID, textUnknownSelection, tierKeyboard())
	}

	category, _ := m.deps.Taxonomy.Category(st.Filters.Category)
	st.Filters.Tier = tier
	if category.RequiresConnector() {
		st.Step = domain.StepChoosingConnectorType
		return m.send(ctx, a.ChatID, textChooseConnector, connectorKeyboard(category))
	}

	st.Step = domain.StepChoosingBrand
	return m.send(ctx, a.ChatID, categoryLabel(category), brandKeyboard(category))
}

func (m *SessionManager) chooseConnector(ctx context.Context, st *domain.SelectionState, a domain.Action, code string) error {
	if !m.browsingAt(st, domain.StepChoosingConnectorType) {
		return m.send(ctx, a.ChatID, textStaleButton, nil)
	}
	category, _ := m.deps.Taxonomy.Category(st.Filters.Category)
	connector, ok := category.Connector(code)
	if !ok {
		return m.send(ctx, a.ChatID, textUnknownSelection, connectorKeyboard(category))
	}

	st.Filters.Characteristic = connector.Code
	st.Step = domain.StepChoosingBrand
	return m.send(ctx, a.ChatID, categoryLabel(category), brandKeyboard(category))
}

// chooseBrand is the terminal decision of the browsing flow. An empty brand
// lists the whole category.
func (m *SessionManager) chooseBrand(ctx context.Context, st *domain.SelectionState, a domain.Action, brand string) error {
	if !m.browsingAt(st, domain.StepChoosingBrand) {
		return m.send(ctx, a.ChatID, textStaleButton, nil)
	}
	st.Filters.Brand = brand

	f := st.Filters
	predicate, err := m.pricing.ResolveTier(ctx, f.Tier, f.Brand, f.Category)
	if err != nil {
		return err
	}

	goods, err := m.deps.Catalog.Query(ctx, domain.GoodsFilter{
		BrandPrefix:    f.Brand,
		CategoryPrefix: f.Category,
		Characteristic: f.Characteristic,
		Price:          predicate,
	})
	if err != nil {
		return fmt.Errorf("query goods: %w", err)
	}

	cursor, err := pagination.New(goods, m.opts.BatchSize)
	if err != nil {
		return err
	}
	st.Step = domain.StepDisplaying
	st.Cursor = &cursor

	return m.emitBatch(ctx, st, a.ChatID)
}

func (m *SessionManager) showMore(ctx context.Context, st *domain.SelectionState, a domain.Action) error {
	if !m.browsingAt(st, domain.StepDisplaying) || st.Cursor == nil {
		return m.send(ctx, a.ChatID, textStaleButton, nil)
	}
	return m.emitBatch(ctx, st, a.ChatID)
}

// emitBatch delivers the next batch of the active cursor. While items remain
// the cursor is advanced and a "show more" button is sent; once exhausted the
// cursor is dropped and the session returns to Idle.
func (m *SessionManager) emitBatch(ctx context.Context, st *domain.SelectionState, chatID int64) error {
	batch, next := pagination.NextBatch(*st.Cursor)

	for _, g := range batch.Items {
		if _, err := m.deps.Messenger.SendPhoto(ctx, chatID, g.Photo, goodsCaption(g), nil); err != nil {
			return fmt.Errorf("send goods %d: %w", g.ID, err)
		}
	}
	if len(batch.Items) > 0 {
		m.deps.Metrics.BatchEmitted()
	}

	if batch.Remaining > 0 {
		st.Cursor = &next
		return m.send(ctx, chatID, fmt.Sprintf(textRemaining, batch.Remaining), showMoreKeyboard())
	}

	total := next.Len()
	st.Reset()
	if total == 0 {
		return m.send(ctx, chatID, textNoGoods, nil)
	}
	return m.send(ctx, chatID, fmt.Sprintf(textFound, total), nil)
}

func (m *SessionManager) browsingAt(st *domain.SelectionState, step domain.Step) bool {
	return st.Flow == domain.FlowBrowse && st.Step == step
}
