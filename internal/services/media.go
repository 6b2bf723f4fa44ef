package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

// MediaMux picks the fetcher of an image by the prefix of its media id.
// Images without a registered prefix go to the fallback fetcher.
type MediaMux struct {
	fallback MediaFetcher
	prefixed map[string]MediaFetcher
}

func NewMediaMux(fallback MediaFetcher) *MediaMux {
	return &MediaMux{fallback: fallback, prefixed: make(map[string]MediaFetcher)}
}

// Handle routes media ids starting with prefix to f. It must be called before the first Fetch.
func (m *MediaMux) Handle(prefix string, f MediaFetcher) {
	m.prefixed[prefix] = f
}

func (m *MediaMux) Fetch(ctx context.Context, ref domain.ImageRef) ([]byte, string, error) {
	if ref.MediaID != "" {
		for prefix, f := range m.prefixed {
			if strings.HasPrefix(ref.MediaID, prefix) {
				return f.Fetch(ctx, ref)
			}
		}
	}
	if m.fallback == nil {
		return nil, "", fmt.Errorf("no media fetcher for %q", ref.MediaID)
	}
	return m.fallback.Fetch(ctx, ref)
}
