package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

func TestChatKeyRoundTrip(t *testing.T) {
	key := ChatKey(-100123)
	assert.Equal(t, "tg:-100123", key)

	id, err := ParseChatKey(key)
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), id)

	_, err = ParseChatKey("+905551234567")
	assert.Error(t, err)
	_, err = ParseChatKey("tg:abc")
	assert.Error(t, err)
}

func TestToInboundText(t *testing.T) {
	update := tgbotapi.Update{
		UpdateID: 7,
		Message: &tgbotapi.Message{
			Date: 1773136800,
			Chat: &tgbotapi.Chat{ID: 42},
			From: &tgbotapi.User{ID: 42, FirstName: "Ayşe", LastName: "Yılmaz"},
			Text: "rapor",
		},
	}

	msg, ok := toInbound(update)
	require.True(t, ok)
	assert.Equal(t, "7", msg.ID)
	assert.Equal(t, domain.ChannelTelegram, msg.Channel)
	assert.Equal(t, "tg:42", msg.Phone)
	assert.Equal(t, "Ayşe Yılmaz", msg.Name)
	assert.Equal(t, "rapor", msg.Text)
	assert.Equal(t, int64(1773136800), msg.ReceivedAt.Unix())
}

func TestToInboundPhotoUsesLargestSize(t *testing.T) {
	update := tgbotapi.Update{
		UpdateID: 8,
		Message: &tgbotapi.Message{
			Chat:    &tgbotapi.Chat{ID: 42},
			Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
			Caption: "öğle yemeği",
		},
	}

	msg, ok := toInbound(update)
	require.True(t, ok)
	require.NotNil(t, msg.Image)
	assert.Equal(t, "tg:large", msg.Image.MediaID)
	assert.Equal(t, "öğle yemeği", msg.Image.Caption)
	assert.Empty(t, msg.Text)
}

func TestToInboundCallback(t *testing.T) {
	update := tgbotapi.Update{
		UpdateID: 9,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{FirstName: "Ali"},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 42}},
			Data:    keyboards.WaterButtonPrefix + "500",
		},
	}

	msg, ok := toInbound(update)
	require.True(t, ok)
	assert.Equal(t, "500 ml içtim", msg.Text)
	assert.Equal(t, "tg:42", msg.Phone)
}

func TestToInboundSkipsOtherUpdates(t *testing.T) {
	_, ok := toInbound(tgbotapi.Update{UpdateID: 1})
	assert.False(t, ok)

	_, ok = toInbound(tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})
	assert.False(t, ok, "a sticker has neither text nor photo")
}

func TestInlineKeyboard(t *testing.T) {
	markup := inlineKeyboard(keyboards.WaterMenu().Buttons)

	require.Len(t, markup.InlineKeyboard, 3)
	first := markup.InlineKeyboard[0][0]
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, "water_200", *first.CallbackData)
	assert.Equal(t, "💧 200 ml", first.Text)
}
