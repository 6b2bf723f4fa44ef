package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

const (
	birdProvider   = "bird"
	listButtonText = "Seç"
	listSection    = "Miktar Seçin"
	maxListRows    = 10
)

// BirdClient sends WhatsApp messages through the Bird channels API
type BirdClient struct {
	apiKey      string
	workspaceID string
	channelID   string
	baseURL     string
	http        *http.Client
}

func NewBirdClient(cfg config.BirdConfig, timeout time.Duration) *BirdClient {
	return &BirdClient{
		apiKey:      cfg.APIKey,
		workspaceID: cfg.WorkspaceID,
		channelID:   cfg.ChannelID,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        newHTTPClient(timeout),
	}
}

type birdContact struct {
	IdentifierValue string `json:"identifierValue"`
	Name            string `json:"name,omitempty"`
}

type birdReceiver struct {
	Contacts []birdContact `json:"contacts"`
}

type birdText struct {
	Text string `json:"text"`
}

type birdListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type birdListSection struct {
	Title string        `json:"title"`
	Rows  []birdListRow `json:"rows"`
}

type birdList struct {
	Header     string            `json:"header,omitempty"`
	Body       string            `json:"body"`
	ButtonText string            `json:"buttonText"`
	Sections   []birdListSection `json:"sections"`
}

type birdBody struct {
	Type string    `json:"type"`
	Text *birdText `json:"text,omitempty"`
	List *birdList `json:"list,omitempty"`
}

type birdOutbound struct {
	Receiver birdReceiver `json:"receiver"`
	Body     birdBody     `json:"body"`
}

type birdSendResponse struct {
	ID string `json:"id"`
}

func (c *BirdClient) apiURL(path string) string {
	return fmt.Sprintf("%s/workspaces/%s%s", c.baseURL, c.workspaceID, path)
}

func (c *BirdClient) auth() string {
	return "AccessKey " + c.apiKey
}

// Send sends a plain text message
func (c *BirdClient) Send(ctx context.Context, to, text string) error {
	return c.send(ctx, to, birdBody{Type: "text", Text: &birdText{Text: text}})
}

// SendButtons sends reply as a WhatsApp list message
func (c *BirdClient) SendButtons(ctx context.Context, to string, reply domain.Reply) error {
	if len(reply.Buttons) == 0 || len(reply.Buttons) > maxListRows {
		return fmt.Errorf("list needs 1 to %d rows, got %d", maxListRows, len(reply.Buttons))
	}

	rows := make([]birdListRow, 0, len(reply.Buttons))
	for _, b := range reply.Buttons {
		rows = append(rows, birdListRow{ID: b.ID, Title: b.Title, Description: b.Description})
	}
	return c.send(ctx, to, birdBody{
		Type: "list",
		List: &birdList{
			Header:     reply.Header,
			Body:       reply.Text,
			ButtonText: listButtonText,
			Sections:   []birdListSection{{Title: listSection, Rows: rows}},
		},
	})
}

func (c *BirdClient) send(ctx context.Context, to string, body birdBody) error {
	payload := birdOutbound{
		Receiver: birdReceiver{Contacts: []birdContact{{IdentifierValue: to}}},
		Body:     body,
	}

	var res birdSendResponse
	url := c.apiURL(fmt.Sprintf("/channels/%s/messages", c.channelID))
	if err := postJSON(ctx, c.http, birdProvider, url, c.auth(), payload, &res); err != nil {
		return err
	}
	logger.WithPhone(ctx, to).Info("Message sent", "provider", birdProvider, "type", body.Type, "message_id", res.ID)
	return nil
}

// Fetch downloads an inbound image, from its media URL when there is one
func (c *BirdClient) Fetch(ctx context.Context, ref domain.ImageRef) ([]byte, string, error) {
	url := ref.URL
	if url == "" {
		if ref.MediaID == "" {
			return nil, "", fmt.Errorf("image has neither URL nor media id")
		}
		url = c.apiURL(fmt.Sprintf("/messages/%s/media", ref.MediaID))
	}
	return download(ctx, c.http, birdProvider, url, c.auth())
}

// Bird inbound webhook payload (whatsapp.inbound)

type birdWebhook struct {
	Service string `json:"service"`
	Event   string `json:"event"`
	Payload struct {
		ID        string `json:"id"`
		ChannelID string `json:"channelId"`
		Sender    struct {
			Contact birdContact `json:"contact"`
		} `json:"sender"`
		Body struct {
			Type  string    `json:"type"`
			Text  *birdText `json:"text"`
			Image *struct {
				Images []struct {
					MediaURL string `json:"mediaUrl"`
				} `json:"images"`
				Caption string `json:"caption"`
			} `json:"image"`
			Interactive *birdInteractive `json:"interactive"`
		} `json:"body"`
		CreatedAt string `json:"createdAt"`
	} `json:"payload"`
}

type birdInteractive struct {
	Type        string  `json:"type"`
	ButtonReply *choice `json:"buttonReply"`
	ListReply   *choice `json:"listReply"`
}

// choice is a selected button or list row
type choice struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// text returns what the user could have typed instead of picking c
func (c *choice) text() string {
	if strings.HasPrefix(c.ID, keyboards.WaterButtonPrefix) {
		return keyboards.ButtonText(c.ID)
	}
	return c.Title
}
