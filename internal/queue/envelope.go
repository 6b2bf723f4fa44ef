package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

const (
	// EventInbound is the event name of a queued inbound message
	EventInbound = "message.inbound"

	envelopeVersion = 1
)

// Envelope is the JSON body of a queued inbound message
type Envelope struct {
	Event      string `json:"event"`       // "message.inbound"
	Version    int    `json:"version"`     // 1
	OccurredAt string `json:"occurred_at"` // RFC3339
	Data       struct {
		ID         string    `json:"id"`
		Channel    string    `json:"channel"`
		Phone      string    `json:"phone"`
		Name       string    `json:"name,omitempty"`
		Text       string    `json:"text,omitempty"`
		Image      *image    `json:"image,omitempty"`
		ReceivedAt time.Time `json:"received_at"`
	} `json:"data"`
}

type image struct {
	URL     string `json:"url,omitempty"`
	MediaID string `json:"media_id,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// NewEnvelope wraps msg for publishing
func NewEnvelope(msg domain.InboundMessage) Envelope {
	evt := Envelope{
		Event:      EventInbound,
		Version:    envelopeVersion,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	evt.Data.ID = msg.ID
	evt.Data.Channel = msg.Channel
	evt.Data.Phone = msg.Phone
	evt.Data.Name = msg.Name
	evt.Data.Text = msg.Text
	evt.Data.ReceivedAt = msg.ReceivedAt
	if msg.Image != nil {
		evt.Data.Image = &image{URL: msg.Image.URL, MediaID: msg.Image.MediaID, Caption: msg.Image.Caption}
	}
	return evt
}

// Message unwraps the inbound message
func (e Envelope) Message() domain.InboundMessage {
	msg := domain.InboundMessage{
		ID:         e.Data.ID,
		Channel:    e.Data.Channel,
		Phone:      e.Data.Phone,
		Name:       e.Data.Name,
		Text:       e.Data.Text,
		ReceivedAt: e.Data.ReceivedAt,
	}
	if e.Data.Image != nil {
		msg.Image = &domain.ImageRef{URL: e.Data.Image.URL, MediaID: e.Data.Image.MediaID, Caption: e.Data.Image.Caption}
	}
	return msg
}

// DecodeEnvelope parses and checks a queued message body
func DecodeEnvelope(body []byte) (Envelope, error) {
	var evt Envelope
	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if evt.Event != EventInbound {
		return evt, fmt.Errorf("unexpected event %q", evt.Event)
	}
	if evt.Data.Phone == "" {
		return evt, fmt.Errorf("envelope %s has no phone", evt.Data.ID)
	}
	return evt, nil
}

// RoutingKey is the topic key of messages arriving on channel
func RoutingKey(channel string) string {
	if channel == "" {
		channel = domain.ChannelWhatsApp
	}
	return "inbound." + channel
}
