package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

// Client sends replies and downloads inbound images of one provider
type Client interface {
	Send(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to string, reply domain.Reply) error
	Fetch(ctx context.Context, ref domain.ImageRef) ([]byte, string, error)
}

// New creates the client of the configured provider
func New(cfg *config.Config) (Client, error) {
	switch cfg.WhatsApp.Provider {
	case config.ProviderBird:
		return NewBirdClient(cfg.Bird, cfg.WhatsApp.Timeout), nil
	case config.ProviderMeta:
		return NewMetaClient(cfg.Meta, cfg.WhatsApp.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown whatsapp provider %q", cfg.WhatsApp.Provider)
	}
}

// ParseBird decodes a Bird whatsapp.inbound webhook. A payload that decodes
// but carries nothing the bot can answer returns a nil message.
func ParseBird(body []byte) (*domain.InboundMessage, error) {
	var hook birdWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "MALFORMED_INPUT", "invalid bird webhook")
	}

	p := hook.Payload
	msg := &domain.InboundMessage{
		ID:         p.ID,
		Channel:    domain.ChannelWhatsApp,
		Phone:      p.Sender.Contact.IdentifierValue,
		Name:       p.Sender.Contact.Name,
		ReceivedAt: parseBirdTime(p.CreatedAt),
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Phone == "" {
		return nil, apperrors.NewMalformedInputError("bird webhook without sender")
	}

	switch p.Body.Type {
	case "text":
		if p.Body.Text == nil {
			return nil, nil
		}
		msg.Text = p.Body.Text.Text
	case "image":
		if p.Body.Image == nil || len(p.Body.Image.Images) == 0 {
			logger.Warn("Bird image message without images", "id", msg.ID)
			return nil, nil
		}
		msg.Image = &domain.ImageRef{
			URL:     p.Body.Image.Images[0].MediaURL,
			Caption: p.Body.Image.Caption,
		}
	case "interactive":
		c := p.Body.Interactive.selected()
		if c == nil {
			logger.Warn("Bird interactive message without a reply", "id", msg.ID)
			return nil, nil
		}
		msg.Text = c.text()
	default:
		logger.Warn("Unsupported Bird message type", "type", p.Body.Type, "id", msg.ID)
		return nil, nil
	}
	return msg, nil
}

func (i *birdInteractive) selected() *choice {
	if i == nil {
		return nil
	}
	if i.ListReply != nil {
		return i.ListReply
	}
	return i.ButtonReply
}

func parseBirdTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Now()
}

// ParseMeta decodes a Graph API webhook into the messages it carries.
// Status callbacks decode to an empty slice.
func ParseMeta(body []byte) ([]domain.InboundMessage, error) {
	var hook metaWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "MALFORMED_INPUT", "invalid meta webhook")
	}

	var out []domain.InboundMessage
	for _, entry := range hook.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}
			for _, m := range change.Value.Messages {
				msg, ok := m.inbound()
				if !ok {
					logger.Warn("Unsupported Meta message type", "type", m.Type, "id", m.ID)
					continue
				}
				msg.Name = names[m.From]
				out = append(out, msg)
			}
		}
	}
	return out, nil
}

func (m metaMessage) inbound() (domain.InboundMessage, bool) {
	if m.From == "" {
		return domain.InboundMessage{}, false
	}
	msg := domain.InboundMessage{
		ID:         m.ID,
		Channel:    domain.ChannelWhatsApp,
		Phone:      "+" + m.From,
		ReceivedAt: time.Now(),
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if sec, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil {
		msg.ReceivedAt = time.Unix(sec, 0)
	}

	switch m.Type {
	case "text":
		if m.Text == nil {
			return msg, false
		}
		msg.Text = m.Text.Body
	case "image":
		if m.Image == nil {
			return msg, false
		}
		msg.Image = &domain.ImageRef{MediaID: m.Image.ID, Caption: m.Image.Caption}
	case "interactive":
		if m.Interactive == nil {
			return msg, false
		}
		c := m.Interactive.ListReply
		if c == nil {
			c = m.Interactive.ButtonReply
		}
		if c == nil {
			return msg, false
		}
		msg.Text = c.text()
	case "button":
		if m.Button == nil {
			return msg, false
		}
		msg.Text = (&choice{ID: m.Button.Payload, Title: m.Button.Text}).text()
	default:
		return msg, false
	}
	return msg, true
}

// VerifyMeta answers the Graph API subscription handshake. It returns the
// challenge to echo back and false when the token does not match.
func VerifyMeta(verifyToken, mode, token, challenge string) (string, bool) {
	if verifyToken == "" || mode != "subscribe" || token != verifyToken {
		return "", false
	}
	return challenge, true
}
