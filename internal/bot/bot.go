package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/interfaces"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

// DedupTTL is how long a provider message id is remembered
const DedupTTL = 24 * time.Hour

// ErrStopped is returned by Submit once the bot no longer accepts messages
var ErrStopped = errors.New("bot is stopped")

var tracer = otel.Tracer("github.com/vladimiradmaev/nutrition-bot/internal/bot")

// Router turns one inbound message into one reply
type Router interface {
	HandleInboundMessage(ctx context.Context, msg domain.InboundMessage) domain.Reply
}

// Bot runs inbound messages through the router on a pool of workers and
// delivers every reply on the channel the message came from
type Bot struct {
	router     Router
	state      interfaces.StateStore
	audit      interfaces.ConversationLog
	messengers map[string]interfaces.Messenger
	workers    int

	inbox chan domain.InboundMessage
	done  chan struct{}
	once  sync.Once
}

// NewBot creates a new bot. state and audit may be nil.
func NewBot(router Router, state interfaces.StateStore, audit interfaces.ConversationLog, workers int) *Bot {
	if workers <= 0 {
		workers = 1
	}
	return &Bot{
		router:     router,
		state:      state,
		audit:      audit,
		messengers: make(map[string]interfaces.Messenger),
		workers:    workers,
		inbox:      make(chan domain.InboundMessage, workers*4),
		done:       make(chan struct{}),
	}
}

// AddMessenger registers the messenger that answers messages of channel.
// It must be called before Start.
func (b *Bot) AddMessenger(channel string, m interfaces.Messenger) {
	b.messengers[channel] = m
}

// Submit queues msg for processing. It blocks while every worker is busy.
func (b *Bot) Submit(ctx context.Context, msg domain.InboundMessage) error {
	select {
	case <-b.done:
		return ErrStopped
	default:
	}

	select {
	case b.inbox <- msg:
		return nil
	case <-b.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the workers until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	logger.Info("Bot is now processing messages", "workers", b.workers)

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.work(ctx)
		}()
	}

	<-ctx.Done()
	b.once.Do(func() { close(b.done) })
	wg.Wait()
	logger.Info("Bot is shutting down...")
	return ctx.Err()
}

func (b *Bot) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.inbox:
			// a message that was accepted runs to completion
			if err := b.Process(context.WithoutCancel(ctx), msg); err != nil {
				logger.WithPhone(ctx, msg.Phone).Error("Error handling message", "message_id", msg.ID, "error", err)
			}
		}
	}
}

// Process handles one message synchronously: de-duplication, routing,
// delivery of the reply and the audit trail
func (b *Bot) Process(ctx context.Context, msg domain.InboundMessage) error {
	if msg.Channel == "" {
		msg.Channel = domain.ChannelWhatsApp
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now()
	}

	ctx, span := tracer.Start(ctx, "bot.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.channel", msg.Channel),
		attribute.String("message.type", msg.MessageType()),
	)
	log := logger.WithPhone(ctx, msg.Phone)

	messenger, ok := b.messengers[msg.Channel]
	if !ok {
		err := fmt.Errorf("no messenger for channel %q", msg.Channel)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if msg.ID != "" && b.state != nil {
		fresh, err := b.state.MarkProcessed(ctx, msg.Channel+":"+msg.ID, DedupTTL)
		if err != nil {
			log.Warn("Failed to check duplicate message", "message_id", msg.ID, "error", err)
		} else if !fresh {
			log.Debug("Duplicate message skipped", "message_id", msg.ID)
			span.SetAttributes(attribute.Bool("message.duplicate", true))
			return nil
		}
	}

	log.Info("Received message", "message_id", msg.ID, "type", msg.MessageType())
	reply := b.router.HandleInboundMessage(ctx, msg)

	// the router has created the user by now, so the audit rows have an owner
	b.record(ctx, msg.Phone, database.DirectionIncoming, msg.MessageType(), inboundContent(msg),
		map[string]any{"message_id": msg.ID, "channel": msg.Channel}, msg.ReceivedAt)

	outType, err := b.deliver(ctx, messenger, msg.Phone, reply)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reply not delivered")
		return apperrors.NewMessagingError(err, msg.Channel)
	}

	b.record(ctx, msg.Phone, database.DirectionOutgoing, outType, reply.Text,
		map[string]any{"in_reply_to": msg.ID, "buttons": len(reply.Buttons)}, time.Now())
	return nil
}

// deliver sends reply and returns its audit type. A rejected list message
// is sent again as numbered text, the numbers work as typed answers.
func (b *Bot) deliver(ctx context.Context, m interfaces.Messenger, to string, reply domain.Reply) (string, error) {
	if len(reply.Buttons) == 0 {
		return "text", m.Send(ctx, to, reply.Text)
	}
	err := m.SendButtons(ctx, to, reply)
	if err == nil {
		return "interactive", nil
	}
	logger.WithPhone(ctx, to).Warn("Interactive message rejected, sending text", "error", err)
	return "text", m.Send(ctx, to, keyboards.FallbackText(reply))
}

func (b *Bot) record(ctx context.Context, phone, direction, messageType, content string, metadata map[string]any, at time.Time) {
	if b.audit == nil {
		return
	}
	if err := b.audit.LogConversation(ctx, phone, direction, messageType, content, metadata, at); err != nil {
		logger.WithPhone(ctx, phone).Warn("Failed to log conversation", "direction", direction, "error", err)
	}
}

func inboundContent(msg domain.InboundMessage) string {
	if msg.Image == nil {
		return msg.Text
	}
	if msg.Image.Caption != "" {
		return msg.Image.Caption
	}
	if msg.Image.URL != "" {
		return msg.Image.URL
	}
	return msg.Image.MediaID
}
