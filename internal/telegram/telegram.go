package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

const (
	// KeyPrefix marks user keys and media ids that belong to Telegram
	KeyPrefix = "tg:"

	maxPhotoBytes = 10 << 20
	pollTimeout   = 60
)

// Sink accepts inbound messages for processing
type Sink interface {
	Submit(ctx context.Context, msg domain.InboundMessage) error
}

// Channel is the Telegram transport: long polling in, Bot API messages out
type Channel struct {
	api  *tgbotapi.BotAPI
	http *http.Client
}

func New(token string) (*Channel, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot authorized on account", "username", api.Self.UserName)
	return &Channel{api: api, http: &http.Client{Timeout: 30 * time.Second}}, nil
}

// Start polls for updates and submits them to sink until ctx is cancelled
func (c *Channel) Start(ctx context.Context, sink Sink) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := c.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates...")

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			logger.Info("Telegram polling stopped")
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				// remove the loading state of the pressed button
				if _, err := c.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
					logger.Warn("Failed to answer callback query", "error", err)
				}
			}

			msg, ok := toInbound(update)
			if !ok {
				continue
			}
			if err := sink.Submit(ctx, msg); err != nil {
				logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// toInbound converts messages and button presses. Other updates are skipped.
func toInbound(update tgbotapi.Update) (domain.InboundMessage, bool) {
	msg := domain.InboundMessage{
		ID:      strconv.Itoa(update.UpdateID),
		Channel: domain.ChannelTelegram,
	}

	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil || q.Message.Chat == nil {
			return msg, false
		}
		msg.Phone = ChatKey(q.Message.Chat.ID)
		msg.Name = displayName(q.From)
		msg.Text = keyboards.ButtonText(q.Data)
		msg.ReceivedAt = time.Now()

	case update.Message != nil:
		m := update.Message
		if m.Chat == nil {
			return msg, false
		}
		msg.Phone = ChatKey(m.Chat.ID)
		msg.Name = displayName(m.From)
		msg.ReceivedAt = m.Time()
		switch {
		case len(m.Photo) > 0:
			// the last size is the largest
			photo := m.Photo[len(m.Photo)-1]
			msg.Image = &domain.ImageRef{MediaID: KeyPrefix + photo.FileID, Caption: m.Caption}
		case m.Text != "":
			msg.Text = m.Text
		default:
			return msg, false
		}

	default:
		return msg, false
	}
	return msg, true
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ChatKey is the user key of a Telegram chat
func ChatKey(chatID int64) string {
	return KeyPrefix + strconv.FormatInt(chatID, 10)
}

// ParseChatKey reverses ChatKey
func ParseChatKey(key string) (int64, error) {
	raw, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return 0, fmt.Errorf("%q is not a telegram chat key", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", raw, err)
	}
	return id, nil
}

// Send sends a plain text message
func (c *Channel) Send(_ context.Context, to, text string) error {
	chatID, err := ParseChatKey(to)
	if err != nil {
		return err
	}
	_, err = c.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendButtons sends reply with one inline button per row
func (c *Channel) SendButtons(_ context.Context, to string, reply domain.Reply) error {
	chatID, err := ParseChatKey(to)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ReplyMarkup = inlineKeyboard(reply.Buttons)
	_, err = c.api.Send(msg)
	return err
}

func inlineKeyboard(buttons []domain.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Title, b.ID)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Fetch downloads a photo whose media id starts with KeyPrefix
func (c *Channel) Fetch(ctx context.Context, ref domain.ImageRef) ([]byte, string, error) {
	fileID, ok := strings.CutPrefix(ref.MediaID, KeyPrefix)
	if !ok {
		return nil, "", fmt.Errorf("%q is not a telegram file", ref.MediaID)
	}
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(c.api.Token), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("telegram file download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, "", fmt.Errorf("telegram photo larger than %d bytes", maxPhotoBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
	}
	return data, mimeType, nil
}
