package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/whatsapp"
)

const (
	maxWebhookBody = 1 << 20
	logBodyPrefix  = 500
	rootText       = "WhatsApp Nutrition Bot is running"
)

// InboundSink accepts parsed inbound messages. Both the bot and the queue publisher satisfy it.
type InboundSink interface {
	Submit(ctx context.Context, msg domain.InboundMessage) error
}

// Server exposes the provider webhooks over HTTP
type Server struct {
	sink        InboundSink
	verifyToken string
	engine      *gin.Engine
	http        *http.Server
}

// New builds the router. verifyToken answers the Meta subscription handshake.
func New(addr string, sink InboundSink, verifyToken string) *Server {
	s := &Server{sink: sink, verifyToken: verifyToken}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.root)
	r.GET("/health", s.health)

	hooks := r.Group("/webhook")
	{
		hooks.POST("/whatsapp", s.birdWebhook)
		hooks.GET("/meta", s.metaVerify)
		hooks.POST("/meta", s.metaWebhook)
	}

	s.engine = r
	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the gin engine
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) root(c *gin.Context) {
	c.String(http.StatusOK, rootText)
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func prefix(body []byte) string {
	if len(body) > logBodyPrefix {
		return string(body[:logBodyPrefix])
	}
	return string(body)
}

func (s *Server) birdWebhook(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	msg, err := whatsapp.ParseBird(body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "provider", "bird", "error", err, "body", prefix(body))
		c.Status(http.StatusUnprocessableEntity)
		return
	}
	if msg != nil {
		s.submit(c, *msg)
	}
	c.Status(http.StatusOK)
}

func (s *Server) metaVerify(c *gin.Context) {
	challenge, ok := whatsapp.VerifyMeta(s.verifyToken, c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if !ok {
		c.Status(http.StatusForbidden)
		return
	}
	c.String(http.StatusOK, challenge)
}

func (s *Server) metaWebhook(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	msgs, err := whatsapp.ParseMeta(body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "provider", "meta", "error", err, "body", prefix(body))
		c.Status(http.StatusUnprocessableEntity)
		return
	}
	for _, msg := range msgs {
		s.submit(c, msg)
	}
	c.Status(http.StatusOK)
}

// Processing failures never change the webhook status, the provider would only retry.
func (s *Server) submit(c *gin.Context, msg domain.InboundMessage) {
	ctx := c.Request.Context()
	if err := s.sink.Submit(ctx, msg); err != nil {
		logger.WithPhone(ctx, msg.Phone).Error("Failed to accept inbound message", "message_id", msg.ID, "error", err)
	}
}
