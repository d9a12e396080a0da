package service

import (
	"fmt"
	"strings"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

const (
	textMenu              = "Choose a section:"
	textAdminMenu         = "Admin mode:\nChoose a product section:"
	textChooseTier        = "Choose a price range:"
	textChooseConnector   = "Choose the connector type:"
	textShowAll           = "Show all"
	textShowMore          = "Show more"
	textRemaining         = "%d more left"
	textFound             = "Found %d results"
	textNoGoods           = "No goods found"
	textStaleButton       = "This button is no longer active. Use /start to begin again."
	textUnknownAction     = "Unknown action. Use /start to open the catalog."
	textUseButtons        = "Please use the buttons above."
	textDenied            = "Your request is invalid"
	textGenericFailure    = "Something went wrong, please try again."
	textCancelled         = "Cancelled"
	textNothingToCancel   = "Nothing to cancel"
	textChooseBrand       = "%s\nChoose the manufacturer"
	textChooseMode        = "Choose a mode"
	textModeAdd           = "Add a new product"
	textModeDelete        = "Delete an old product"
	textEnterName         = "Adding a new product...\nEnter the model name"
	textEnterPrice        = "Enter the price:"
	textInvalidPrice      = "The price must be a non-negative whole number. Enter the price:"
	textEnterDescription  = "Enter the product description:"
	textSendPhoto         = "Send a photo"
	textAdded             = "Congratulations, everything went well"
	textDeleteButton      = "Delete"
	textRemovedCaption    = "Item removed"
	textRemovedNoMessage  = "Item removed, but its listing message could not be found"
	textAssistantButton   = "Ask the assistant"
	textAssistantModes    = "Choose how to talk:"
	textAssistantQuestion = "Question about a product"
	textAssistantRequest  = "Catalog request"
	textAssistantStop     = "End the dialog"
	textAssistantHello    = "Hello, how can I help you?"
	textAssistantBye      = "Glad to help you"
	textAssistantOff      = "The assistant is not available right now"
	textAssistantStopped  = "Your action has been cancelled"
	textNothingToStop     = "Nothing to stop"
	textUnknownCommand    = "Unknown command. Use /start to open the catalog."
	textUnknownSelection  = "Unknown selection, please choose again."
	textEmptyInput        = "Please send a non-empty text."
)

func goodsCaption(g domain.Goods) string {
	return fmt.Sprintf("%s\nPrice: %d\n%s", g.Name, g.Price, g.Characteristics)
}

func categoryLabel(c domain.Category) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Code
}

func menuKeyboard(tx *domain.Taxonomy) domain.Keyboard {
	buttons := make([]domain.Button, 0, len(tx.Sections))
	for _, s := range tx.Sections {
		buttons = append(buttons, domain.Button{Text: s.Label, Data: domain.EncodeCallback(domain.CallbackSection, s.Code)})
	}
	kb := domain.Grid(2, buttons...)
	return append(kb, []domain.Button{{Text: textAssistantButton, Data: domain.CallbackAssistant}})
}

func adminMenuKeyboard(tx *domain.Taxonomy) domain.Keyboard {
	buttons := make([]domain.Button, 0, len(tx.Sections))
	for _, s := range tx.Sections {
		buttons = append(buttons, domain.Button{Text: s.Label, Data: domain.EncodeCallback(domain.CallbackAdminSection, s.Code)})
	}
	return domain.Grid(2, buttons...)
}

func categoryKeyboard(tx *domain.Taxonomy, section domain.Section, callback string) domain.Keyboard {
	buttons := make([]domain.Button, 0, len(section.Categories))
	for _, code := range section.Categories {
		c, _ := tx.Category(code)
		buttons = append(buttons, domain.Button{Text: categoryLabel(c), Data: domain.EncodeCallback(callback, code)})
	}
	return domain.Grid(2, buttons...)
}

func tierKeyboard() domain.Keyboard {
	return domain.Keyboard{
		{
			{Text: "Budget", Data: domain.EncodeCallback(domain.CallbackTier, string(domain.PriceTierBudget))},
			{Text: "Expensive", Data: domain.EncodeCallback(domain.CallbackTier, string(domain.PriceTierExpensive))},
		},
		{
			{Text: "All", Data: domain.EncodeCallback(domain.CallbackTier, string(domain.PriceTierAll))},
		},
	}
}

func connectorKeyboard(c domain.Category) domain.Keyboard {
	buttons := make([]domain.Button, 0, len(c.Connectors))
	for _, conn := range c.Connectors {
		buttons = append(buttons, domain.Button{Text: conn.Label, Data: domain.EncodeCallback(domain.CallbackConnector, conn.Code)})
	}
	return domain.Grid(2, buttons...)
}

// brandKeyboard lowercases the brand token; stored names are matched with a
// case-insensitive prefix.
func brandKeyboard(c domain.Category) domain.Keyboard {
	buttons := make([]domain.Button, 0, len(c.Brands)+1)
	for _, b := range c.Brands {
		buttons = append(buttons, domain.Button{Text: b, Data: domain.EncodeCallback(domain.CallbackBrand, strings.ToLower(b))})
	}
	buttons = append(buttons, domain.Button{Text: textShowAll, Data: domain.CallbackShowAll})
	return domain.Grid(2, buttons...)
}

func adminBrandKeyboard(c domain.Category) domain.Keyboard {
	buttons := make([]domain.Button, 0, len(c.Brands))
	for _, b := range c.Brands {
		buttons = append(buttons, domain.Button{Text: b, Data: domain.EncodeCallback(domain.CallbackAdminBrand, b)})
	}
	return domain.Grid(2, buttons...)
}

func modeKeyboard() domain.Keyboard {
	return domain.Keyboard{
		{{Text: textModeAdd, Data: domain.EncodeCallback(domain.CallbackMode, domain.ModeAdd)}},
		{{Text: textModeDelete, Data: domain.EncodeCallback(domain.CallbackMode, domain.ModeDelete)}},
	}
}

func showMoreKeyboard() domain.Keyboard {
	return domain.Keyboard{{{Text: textShowMore, Data: domain.CallbackNext}}}
}

func deleteKeyboard(listingID, goodsID int64) domain.Keyboard {
	return domain.Keyboard{{{Text: textDeleteButton, Data: domain.EncodeDeleteCallback(listingID, goodsID)}}}
}

func assistantKeyboard() domain.Keyboard {
	return domain.Keyboard{
		{
			{Text: textAssistantQuestion, Data: domain.EncodeCallback(domain.CallbackAssistantMode, domain.AssistantModeQuestion)},
			{Text: textAssistantRequest, Data: domain.EncodeCallback(domain.CallbackAssistantMode, domain.AssistantModeRequest)},
		},
		{
			{Text: textAssistantStop, Data: domain.CallbackAssistantStop},
		},
	}
}
