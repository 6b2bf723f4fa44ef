package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

var tracer = otel.Tracer("github.com/vladimiradmaev/nutrition-bot/internal/services")

// MediaFetcher downloads the bytes behind an inbound image reference
type MediaFetcher interface {
	Fetch(ctx context.Context, ref domain.ImageRef) (data []byte, mimeType string, err error)
}

type imagePayload struct {
	data     []byte
	mimeType string
}

// completer is one chat model provider
type completer interface {
	Name() string
	Complete(ctx context.Context, prompt string, img *imagePayload, maxTokens int) (string, error)
}

// AIService talks to OpenRouter first and falls back to Gemini.
// Every failure surfaces as apperrors.ErrAIUnavailable.
type AIService struct {
	providers []completer
	media     MediaFetcher
	timeout   time.Duration
}

// classifyProviderError marks deadline and HTTP 429 failures
func classifyProviderError(callCtx context.Context, provider, op string, err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return apperrors.NewTimeoutError(err, op)
	case errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests,
		errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests:
		return apperrors.NewRateLimitError(err, provider)
	}
	return err
}

// NewAIService creates the providers that have an API key configured
func NewAIService(ctx context.Context, cfg *config.Config, media MediaFetcher) (*AIService, error) {
	var providers []completer

	if cfg.OpenRouter.APIKey != "" {
		providers = append(providers, newOpenRouterCompleter(cfg.OpenRouter))
	}
	if cfg.Gemini.APIKey != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		providers = append(providers, &geminiCompleter{client: client, model: cfg.Gemini.Model})
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no AI provider configured")
	}

	return newAIService(cfg.AI.Timeout, media, providers...), nil
}

func newAIService(timeout time.Duration, media MediaFetcher, providers ...completer) *AIService {
	return &AIService{providers: providers, media: media, timeout: timeout}
}

// complete asks each provider in turn and parses the first answer that parse accepts
func complete[T any](ctx context.Context, s *AIService, op, prompt string, img *imagePayload, maxTokens int, parse func(string) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "ai."+op)
	defer span.End()

	var zero T
	var lastErr error
	for _, p := range s.providers {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		answer, err := p.Complete(callCtx, prompt, img, maxTokens)
		if err != nil {
			err = classifyProviderError(callCtx, p.Name(), op, err)
		}
		cancel()
		if err != nil {
			logger.WithContext(ctx).Warn("AI provider failed", "provider", p.Name(), "operation", op, "error", err)
			lastErr = err
			continue
		}

		result, err := parse(answer)
		if err != nil {
			logger.WithContext(ctx).Warn("AI answer unusable", "provider", p.Name(), "operation", op, "error", err)
			lastErr = err
			continue
		}
		span.SetAttributes(attribute.String("ai.provider", p.Name()))
		return result, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no provider available")
	}
	span.SetStatus(codes.Error, lastErr.Error())
	return zero, apperrors.NewAIUnavailableError(lastErr, op)
}

// DetectIntent classifies a free-text message
func (s *AIService) DetectIntent(ctx context.Context, text string) (domain.Intent, error) {
	return complete(ctx, s, "detect_intent", fmt.Sprintf(intentPrompt, text), nil, 100,
		func(answer string) (domain.Intent, error) {
			intent := parseIntent(answer)
			logger.WithContext(ctx).Info("AI detected intent", "kind", intent.Kind.String(), "raw", strings.TrimSpace(answer))
			return intent, nil
		})
}

// AnalyzeMealText estimates the calories of a written meal description
func (s *AIService) AnalyzeMealText(ctx context.Context, description string) (domain.MealAnalysis, error) {
	return complete(ctx, s, "analyze_meal_text", fmt.Sprintf(textMealPrompt, description), nil, 300, parseCalorieResponse)
}

// AnalyzeMealImage downloads the photo and estimates its calories
func (s *AIService) AnalyzeMealImage(ctx context.Context, ref domain.ImageRef) (domain.MealAnalysis, error) {
	if s.media == nil {
		return domain.MealAnalysis{}, apperrors.NewAIUnavailableError(fmt.Errorf("no media fetcher"), "analyze_meal_image")
	}
	data, mimeType, err := s.media.Fetch(ctx, ref)
	if err != nil {
		return domain.MealAnalysis{}, apperrors.NewAIUnavailableError(fmt.Errorf("failed to download image: %w", err), "analyze_meal_image")
	}
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = "image/jpeg"
		}
	}
	logger.WithContext(ctx).Debug("Image downloaded", "bytes", len(data), "mime", mimeType)

	return complete(ctx, s, "analyze_meal_image", imageMealPrompt, &imagePayload{data: data, mimeType: mimeType}, 500, parseCalorieResponse)
}

// SuggestCommand guesses which of the allowed commands a mistyped token meant
func (s *AIService) SuggestCommand(ctx context.Context, token string, allowed []string) (domain.CommandSuggestion, error) {
	prompt := fmt.Sprintf(suggestPrompt, token, strings.Join(allowed, ", "))
	return complete(ctx, s, "suggest_command", prompt, nil, 60, func(answer string) (domain.CommandSuggestion, error) {
		return parseSuggestion(answer, allowed)
	})
}

// ParseNaturalTime asks the model for a clock time and validates its answer
func (s *AIService) ParseNaturalTime(ctx context.Context, text string) (domain.ClockTime, error) {
	return complete(ctx, s, "parse_time", fmt.Sprintf(timePrompt, text), nil, 20, parseClockAnswer)
}

// NutritionAdvice writes a short encouraging note about today's numbers
func (s *AIService) NutritionAdvice(ctx context.Context, stats domain.DailyStats, waterGoal int) (string, error) {
	prompt := fmt.Sprintf(advicePrompt, stats.Calories, stats.MealCount, stats.WaterML, waterGoal)
	return complete(ctx, s, "nutrition_advice", prompt, nil, 200, func(answer string) (string, error) {
		advice := cleanMarkdown(answer)
		if advice == "" {
			return "", fmt.Errorf("empty advice")
		}
		return advice, nil
	})
}

// openRouterCompleter uses the OpenAI-compatible OpenRouter endpoint
type openRouterCompleter struct {
	client *openai.Client
	model  string
}

// headerTransport adds the attribution headers OpenRouter expects
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

func newOpenRouterCompleter(cfg config.OpenRouterConfig) *openRouterCompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": cfg.AppURL,
				"X-Title":      cfg.AppName,
			},
		},
	}
	return &openRouterCompleter{client: openai.NewClientWithConfig(clientCfg), model: cfg.Model}
}

func (c *openRouterCompleter) Name() string { return "openrouter" }

func (c *openRouterCompleter) Complete(ctx context.Context, prompt string, img *imagePayload, maxTokens int) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if img == nil {
		msg.Content = prompt
	} else {
		dataURL := fmt.Sprintf("data:%s;base64,%s", img.mimeType, base64.StdEncoding.EncodeToString(img.data))
		msg.MultiContent = []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: prompt,
			},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
			},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  []openai.ChatCompletionMessage{msg},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

type geminiCompleter struct {
	client *genai.Client
	model  string
}

func (c *geminiCompleter) Name() string { return "gemini" }

func (c *geminiCompleter) Complete(ctx context.Context, prompt string, img *imagePayload, maxTokens int) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetMaxOutputTokens(int32(maxTokens))

	parts := []genai.Part{genai.Text(prompt)}
	if img != nil {
		parts = append([]genai.Part{genai.ImageData(strings.TrimPrefix(img.mimeType, "image/"), img.data)}, parts...)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty candidates in response")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return out.String(), nil
}
