package domain

import "github.com/rl1809/catalog-bot/internal/core/pagination"

type Flow int

const (
	FlowNone Flow = iota
	FlowBrowse
	FlowAdmin
	FlowAssistant
)

func (f Flow) String() string {
	switch f {
	case FlowBrowse:
		return "browse"
	case FlowAdmin:
		return "admin"
	case FlowAssistant:
		return "assistant"
	default:
		return "none"
	}
}

type Step int

const (
	StepIdle Step = iota
	StepChoosingCategory
	StepChoosingPriceTier
	StepChoosingConnectorType
	StepChoosingBrand
	StepDisplaying
	StepChoosingMode
	StepChoosingName
	StepChoosingPrice
	StepChoosingCharacteristics
	StepChoosingPhoto
	StepAskingAssistant
)

var stepNames = map[Step]string{
	StepIdle:                    "idle",
	StepChoosingCategory:        "choosing_category",
	StepChoosingPriceTier:       "choosing_price_tier",
	StepChoosingConnectorType:   "choosing_connector_type",
	StepChoosingBrand:           "choosing_brand",
	StepDisplaying:              "displaying",
	StepChoosingMode:            "choosing_mode",
	StepChoosingName:            "choosing_name",
	StepChoosingPrice:           "choosing_price",
	StepChoosingCharacteristics: "choosing_characteristics",
	StepChoosingPhoto:           "choosing_photo",
	StepAskingAssistant:         "asking_assistant",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

type Filters struct {
	Section        string
	Category       string
	Brand          string
	Tier           PriceTier
	Characteristic string
}

// Draft collects the fields of a goods item during the admin add flow.
type Draft struct {
	Name            string
	Price           int64
	Characteristics string
	Photo           string
}

// SelectionState is the whole conversational context of one user.
type SelectionState struct {
	Flow          Flow
	Step          Step
	Filters       Filters
	Draft         Draft
	Cursor        *pagination.Cursor[Goods]
	AssistantMode string
}

func (s SelectionState) IsIdle() bool {
	return s.Step == StepIdle
}

// Reset clears the state back to Idle, dropping any active cursor.
func (s *SelectionState) Reset() {
	*s = SelectionState{}
}

// Begin starts a new flow from scratch.
func (s *SelectionState) Begin(flow Flow, step Step) {
	*s = SelectionState{Flow: flow, Step: step}
}
