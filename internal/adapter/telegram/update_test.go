package telegram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

func decodeUpdate(t *testing.T, raw string) Update {
	t.Helper()
	var u Update
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return u
}

func TestToAction_Command(t *testing.T) {
	u := decodeUpdate(t, `{"update_id":10,"message":{"message_id":3,"from":{"id":5},"chat":{"id":9},"text":"/Start@catalog_bot"}}`)

	a, ok := ToAction(u)
	require.True(t, ok)
	assert.Equal(t, "10", a.ID)
	assert.Equal(t, domain.ActionCommand, a.Kind)
	assert.Equal(t, "start", a.Command)
	assert.Equal(t, int64(5), a.UserID)
	assert.Equal(t, int64(9), a.ChatID)
	assert.Equal(t, int64(3), a.MessageID)
}

func TestToAction_Text(t *testing.T) {
	u := decodeUpdate(t, `{"update_id":11,"message":{"message_id":4,"from":{"id":5},"chat":{"id":9},"text":"iPhone 15"}}`)

	a, ok := ToAction(u)
	require.True(t, ok)
	assert.Equal(t, domain.ActionText, a.Kind)
	assert.Equal(t, "iPhone 15", a.Text)
}

func TestToAction_PhotoUsesLargestSize(t *testing.T) {
	u := decodeUpdate(t, `{"update_id":12,"message":{"message_id":4,"from":{"id":5},"chat":{"id":9},
		"photo":[{"file_id":"small","width":90,"height":90},{"file_id":"large","width":1280,"height":1280}]}}`)

	a, ok := ToAction(u)
	require.True(t, ok)
	assert.Equal(t, domain.ActionPhoto, a.Kind)
	assert.Equal(t, "large", a.PhotoRef)
}

func TestToAction_CallbackUsesPressedMessage(t *testing.T) {
	u := decodeUpdate(t, `{"update_id":13,"callback_query":{"id":"cb","from":{"id":5},"data":"mode:delete",
		"message":{"message_id":77,"chat":{"id":9}}}}`)

	a, ok := ToAction(u)
	require.True(t, ok)
	assert.Equal(t, domain.ActionCallback, a.Kind)
	assert.Equal(t, "mode:delete", a.Data)
	assert.Equal(t, int64(77), a.MessageID)
	assert.Equal(t, int64(9), a.ChatID)
}

func TestToAction_IgnoresUnsupportedUpdates(t *testing.T) {
	for _, raw := range []string{
		`{"update_id":14}`,
		`{"update_id":15,"message":{"message_id":1,"chat":{"id":9},"text":"channel post"}}`,
		`{"update_id":16,"message":{"message_id":1,"from":{"id":5},"chat":{"id":9}}}`,
		`{"update_id":17,"callback_query":{"id":"cb","from":{"id":5},"data":"next"}}`,
	} {
		_, ok := ToAction(decodeUpdate(t, raw))
		assert.False(t, ok, raw)
	}
}
