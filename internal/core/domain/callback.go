package domain

import (
	"strconv"
	"strings"
)

// Callback token names carried in button payloads.
const (
	CallbackSection       = "section"
	CallbackCategory      = "category"
	CallbackTier          = "tier"
	CallbackConnector     = "connector"
	CallbackBrand         = "brand"
	CallbackShowAll       = "show"
	CallbackNext          = "next"
	CallbackAdminSection  = "admin_section"
	CallbackAdminCategory = "admin_category"
	CallbackAdminBrand    = "admin_brand"
	CallbackMode          = "mode"
	CallbackDelete        = "delete"
	CallbackAssistant     = "assistant"
	CallbackAssistantMode = "assistant_mode"
	CallbackAssistantStop = "assistant_stop"
	callbackSeparator     = ":"
	ModeAdd               = "add"
	ModeDelete            = "delete"
	AssistantModeQuestion = "question"
	AssistantModeRequest  = "request"
)

type Callback struct {
	Name string
	Args []string
}

func EncodeCallback(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), callbackSeparator)
}

func ParseCallback(data string) Callback {
	parts := strings.Split(data, callbackSeparator)
	return Callback{Name: parts[0], Args: parts[1:]}
}

// Arg returns the i-th argument or "" when absent.
func (c Callback) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

func EncodeDeleteCallback(listingID, goodsID int64) string {
	return EncodeCallback(CallbackDelete,
		strconv.FormatInt(listingID, 10),
		strconv.FormatInt(goodsID, 10))
}

// DeleteTarget decodes the arguments produced by EncodeDeleteCallback.
func (c Callback) DeleteTarget() (listingID, goodsID int64, ok bool) {
	if c.Name != CallbackDelete || len(c.Args) != 2 {
		return 0, 0, false
	}
	listingID, err := strconv.ParseInt(c.Args[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	goodsID, err = strconv.ParseInt(c.Args[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return listingID, goodsID, true
}
