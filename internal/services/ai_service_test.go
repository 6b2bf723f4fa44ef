package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
)

type scriptedCompleter struct {
	name    string
	answers []string
	err     error
	calls   int
	prompts []string
	images  []*imagePayload
}

func (c *scriptedCompleter) Name() string { return c.name }

func (c *scriptedCompleter) Complete(_ context.Context, prompt string, img *imagePayload, _ int) (string, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	c.images = append(c.images, img)
	if c.err != nil {
		return "", c.err
	}
	if len(c.answers) == 0 {
		return "", errors.New("no scripted answer")
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

type staticMedia struct {
	data []byte
	mime string
	err  error
}

func (m staticMedia) Fetch(context.Context, domain.ImageRef) ([]byte, string, error) {
	return m.data, m.mime, m.err
}

func TestAIServiceFallsBackToSecondProvider(t *testing.T) {
	primary := &scriptedCompleter{name: "openrouter", err: errors.New("503")}
	fallback := &scriptedCompleter{name: "gemini", answers: []string{"Yemek: Mercimek çorbası\nKalori: 180"}}
	svc := newAIService(time.Second, nil, primary, fallback)

	analysis, err := svc.AnalyzeMealText(context.Background(), "bir kase mercimek çorbası")
	require.NoError(t, err)
	assert.Equal(t, 180.0, analysis.Calories)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Contains(t, fallback.prompts[0], "bir kase mercimek çorbası")
}

func TestAIServiceUnusableAnswerIsUnavailable(t *testing.T) {
	p := &scriptedCompleter{name: "openrouter", answers: []string{"Bunu analiz edemiyorum."}}
	svc := newAIService(time.Second, nil, p)

	_, err := svc.AnalyzeMealText(context.Background(), "???")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAIUnavailable))
}

func TestAIServiceDetectIntentUnknownIsNotAnError(t *testing.T) {
	p := &scriptedCompleter{name: "openrouter", answers: []string{"UNKNOWN"}}
	svc := newAIService(time.Second, nil, p)

	intent, err := svc.DetectIntent(context.Background(), "merhaba")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentUnknown, intent.Kind)
}

func TestAIServiceImageAnalysis(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	p := &scriptedCompleter{name: "openrouter", answers: []string{"Yemek: Salata\nKalori: 220"}}
	svc := newAIService(time.Second, staticMedia{data: png}, p)

	analysis, err := svc.AnalyzeMealImage(context.Background(), domain.ImageRef{URL: "https://media/1"})
	require.NoError(t, err)
	assert.Equal(t, 220.0, analysis.Calories)
	require.NotNil(t, p.images[0])
	assert.Equal(t, "image/png", p.images[0].mimeType)
}

func TestAIServiceImageDownloadFailure(t *testing.T) {
	p := &scriptedCompleter{name: "openrouter"}
	svc := newAIService(time.Second, staticMedia{err: errors.New("404")}, p)

	_, err := svc.AnalyzeMealImage(context.Background(), domain.ImageRef{URL: "https://media/1"})
	assert.True(t, errors.Is(err, apperrors.ErrAIUnavailable))
	assert.Zero(t, p.calls)
}

func TestAIServiceParseNaturalTimeValidates(t *testing.T) {
	p := &scriptedCompleter{name: "openrouter", answers: []string{"26:00"}}
	svc := newAIService(time.Second, nil, p)

	_, err := svc.ParseNaturalTime(context.Background(), "yarın gece yarısından sonra")
	assert.True(t, errors.Is(err, apperrors.ErrAIUnavailable))
}

func TestAIServiceSuggestCommand(t *testing.T) {
	p := &scriptedCompleter{name: "openrouter", answers: []string{`{"command":"rapor","confidence":0.8}`}}
	svc := newAIService(time.Second, nil, p)

	s, err := svc.SuggestCommand(context.Background(), "rapr", []string{"rapor", "gecmis"})
	require.NoError(t, err)
	assert.Equal(t, "rapor", s.Command)
	assert.Contains(t, p.prompts[0], "rapr")
}

func TestAIServiceTimeout(t *testing.T) {
	slow := completerFunc(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc := newAIService(20*time.Millisecond, nil, slow)

	_, err := svc.NutritionAdvice(context.Background(), domain.DailyStats{Calories: 1500}, 2000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, errors.Is(err, apperrors.ErrAIUnavailable))
	assert.True(t, errors.Is(err, apperrors.ErrTimeout))
}

type completerFunc func(ctx context.Context) (string, error)

func (f completerFunc) Name() string { return "func" }

func (f completerFunc) Complete(ctx context.Context, _ string, _ *imagePayload, _ int) (string, error) {
	return f(ctx)
}

func TestOpenRouterCompleterOverHTTP(t *testing.T) {
	var gotAuth, gotTitle, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")

		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"WATER:750"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := newOpenRouterCompleter(config.OpenRouterConfig{
		APIKey:  "sk-test",
		Model:   "meta-llama/llama-4-scout:free",
		BaseURL: srv.URL + "/api/v1",
		AppName: "Nutrition Bot",
	})
	svc := newAIService(time.Second, nil, c)

	intent, err := svc.DetectIntent(context.Background(), "750 ml su")
	require.NoError(t, err)
	assert.Equal(t, domain.WaterIntent(750), intent)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "Nutrition Bot", gotTitle)
	assert.Equal(t, "meta-llama/llama-4-scout:free", gotModel)
}

func TestOpenRouterCompleterHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","code":429}}`)
	}))
	defer srv.Close()

	c := newOpenRouterCompleter(config.OpenRouterConfig{APIKey: "k", Model: "m", BaseURL: srv.URL})
	svc := newAIService(time.Second, nil, c)

	_, err := svc.DetectIntent(context.Background(), "pizza yedim")
	assert.True(t, errors.Is(err, apperrors.ErrAIUnavailable))
	assert.True(t, errors.Is(err, apperrors.ErrRateLimitExceeded))
	assert.False(t, errors.Is(err, apperrors.ErrTimeout))
}

func TestClassifyProviderError(t *testing.T) {
	live := context.Background()
	plain := errors.New("boom")
	assert.Equal(t, plain, classifyProviderError(live, "gemini", "detect_intent", plain))

	expired, cancel := context.WithTimeout(live, -time.Second)
	defer cancel()
	err := classifyProviderError(expired, "gemini", "detect_intent", plain)
	assert.Equal(t, apperrors.ErrorTypeTimeout, apperrors.TypeOf(err))
	assert.ErrorIs(t, err, plain)

	limited := fmt.Errorf("failed to create chat completion: %w",
		&openai.RequestError{HTTPStatusCode: http.StatusTooManyRequests, Err: plain})
	err = classifyProviderError(live, "openrouter", "detect_intent", limited)
	assert.Equal(t, apperrors.ErrorTypeRateLimit, apperrors.TypeOf(err))
}
