package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

const metaProvider = "meta"

// MetaClient sends WhatsApp messages through the Meta Graph API
type MetaClient struct {
	token         string
	phoneNumberID string
	baseURL       string
	http          *http.Client
}

func NewMetaClient(cfg config.MetaConfig, timeout time.Duration) *MetaClient {
	return &MetaClient{
		token:         cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		http:          newHTTPClient(timeout),
	}
}

type metaText struct {
	Body string `json:"body"`
}

type metaRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type metaSection struct {
	Title string    `json:"title"`
	Rows  []metaRow `json:"rows"`
}

type metaHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type metaInteractive struct {
	Type   string      `json:"type"`
	Header *metaHeader `json:"header,omitempty"`
	Body   struct {
		Text string `json:"text"`
	} `json:"body"`
	Action struct {
		Button   string        `json:"button"`
		Sections []metaSection `json:"sections"`
	} `json:"action"`
}

type metaOutbound struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *metaText        `json:"text,omitempty"`
	Interactive      *metaInteractive `json:"interactive,omitempty"`
}

type metaSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (c *MetaClient) auth() string {
	return "Bearer " + c.token
}

// Graph API addresses numbers without the leading plus
func graphNumber(phone string) string {
	return strings.TrimPrefix(phone, "+")
}

// Send sends a plain text message
func (c *MetaClient) Send(ctx context.Context, to, text string) error {
	return c.send(ctx, metaOutbound{
		MessagingProduct: "whatsapp",
		To:               graphNumber(to),
		Type:             "text",
		Text:             &metaText{Body: text},
	})
}

// SendButtons sends reply as an interactive list message
func (c *MetaClient) SendButtons(ctx context.Context, to string, reply domain.Reply) error {
	if len(reply.Buttons) == 0 || len(reply.Buttons) > maxListRows {
		return fmt.Errorf("list needs 1 to %d rows, got %d", maxListRows, len(reply.Buttons))
	}

	interactive := &metaInteractive{Type: "list"}
	if reply.Header != "" {
		interactive.Header = &metaHeader{Type: "text", Text: reply.Header}
	}
	interactive.Body.Text = reply.Text
	interactive.Action.Button = listButtonText

	rows := make([]metaRow, 0, len(reply.Buttons))
	for _, b := range reply.Buttons {
		rows = append(rows, metaRow{ID: b.ID, Title: b.Title, Description: b.Description})
	}
	interactive.Action.Sections = []metaSection{{Title: listSection, Rows: rows}}

	return c.send(ctx, metaOutbound{
		MessagingProduct: "whatsapp",
		To:               graphNumber(to),
		Type:             "interactive",
		Interactive:      interactive,
	})
}

func (c *MetaClient) send(ctx context.Context, msg metaOutbound) error {
	var res metaSendResponse
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	if err := postJSON(ctx, c.http, metaProvider, url, c.auth(), msg, &res); err != nil {
		return err
	}

	var id string
	if len(res.Messages) > 0 {
		id = res.Messages[0].ID
	}
	logger.WithPhone(ctx, msg.To).Info("Message sent", "provider", metaProvider, "type", msg.Type, "message_id", id)
	return nil
}

type metaMedia struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// Fetch resolves the media id of an inbound image and downloads it
func (c *MetaClient) Fetch(ctx context.Context, ref domain.ImageRef) ([]byte, string, error) {
	if ref.MediaID == "" {
		if ref.URL == "" {
			return nil, "", fmt.Errorf("image has neither URL nor media id")
		}
		return download(ctx, c.http, metaProvider, ref.URL, c.auth())
	}

	var media metaMedia
	if err := getJSON(ctx, c.http, metaProvider, fmt.Sprintf("%s/%s", c.baseURL, ref.MediaID), c.auth(), &media); err != nil {
		return nil, "", err
	}
	if media.URL == "" {
		return nil, "", fmt.Errorf("media %s has no download url", ref.MediaID)
	}

	data, mimeType, err := download(ctx, c.http, metaProvider, media.URL, c.auth())
	if err != nil {
		return nil, "", err
	}
	if media.MimeType != "" {
		mimeType = media.MimeType
	}
	return data, mimeType, nil
}

// Meta inbound webhook payload (whatsapp_business_account)

type metaWebhook struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []metaMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type metaMessage struct {
	From      string    `json:"from"`
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Type      string    `json:"type"`
	Text      *metaText `json:"text"`
	Image     *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
		Caption  string `json:"caption"`
	} `json:"image"`
	Interactive *struct {
		Type        string  `json:"type"`
		ListReply   *choice `json:"list_reply"`
		ButtonReply *choice `json:"button_reply"`
	} `json:"interactive"`
	Button *struct {
		Payload string `json:"payload"`
		Text    string `json:"text"`
	} `json:"button"`
}
