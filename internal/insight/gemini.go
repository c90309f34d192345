package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/sale"
)

const defaultGeminiBase = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the Generative Language API client.
type GeminiConfig struct {
	// BaseURL overrides the API endpoint; used by tests. Empty means the
	// public endpoint.
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiGenerator implements Generator against the Generative Language REST
// API. Errors never propagate as failures: the caller always receives text,
// falling back to the canned string.
type GeminiGenerator struct {
	cfg    GeminiConfig
	client *http.Client
	lg     *zap.Logger
}

// NewGeminiGenerator creates a GeminiGenerator.
func NewGeminiGenerator(cfg GeminiConfig, lg *zap.Logger) *GeminiGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &GeminiGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		lg:     lg,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Insights generates advice text from the recent sales. On any error the
// fallback string is returned with a nil error; the failure is only logged.
func (g *GeminiGenerator) Insights(ctx context.Context, sales []sale.Sale, inventoryValue decimal.Decimal) (string, error) {
	text, err := g.generate(ctx, BuildPrompt(sales, inventoryValue))
	if err != nil {
		g.lg.Warn("insight generation failed", zap.Error(err))
		return Fallback, nil
	}
	return text, nil
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.cfg.BaseURL, url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call api")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("api status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// Static is a Generator that always returns the fallback text. Used when no
// API key is configured.
type Static struct{}

// Insights implements Generator.
func (Static) Insights(context.Context, []sale.Sale, decimal.Decimal) (string, error) {
	return Fallback, nil
}
