// Package llm wraps the Gemini text-generation API behind a small
// request/response interface. It is stateless: it persists nothing and maps
// every provider failure to ErrGenerationFailed so callers never see
// provider-specific error shapes.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spurlabs/spur-chat/internal/domain"
	"google.golang.org/genai"
)

// ErrGenerationFailed normalizes every provider failure: auth, quota,
// network, timeout, malformed response.
var ErrGenerationFailed = errors.New("failed to generate reply")

const (
	defaultModel           = "gemini-2.5-flash"
	defaultMaxOutputTokens = 300
	defaultTimeout         = 30 * time.Second
)

// Config holds Gemini client configuration.
type Config struct {
	// APIKey is the Gemini credential. It may be empty at construction
	// time; requests made without it fail, the process does not.
	APIKey string
	// Model is the Gemini model name.
	Model string
	// MaxOutputTokens caps generated reply length to bound cost and latency.
	MaxOutputTokens int
	// Timeout bounds a single generation round trip.
	Timeout time.Duration
}

// Gemini generates replies via the Gemini API. The underlying client is
// constructed once on first use; construct Gemini itself in main and pass it
// down so tests can substitute a fake Generator.
type Gemini struct {
	cfg    Config
	logger *slog.Logger

	initOnce sync.Once
	client   *genai.Client
	initErr  error
}

// NewGemini creates a Gemini generator. Missing configuration fields fall
// back to defaults; a missing API key is only an error at request time.
func NewGemini(cfg Config, logger *slog.Logger) *Gemini {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{cfg: cfg, logger: logger}
}

// handle returns the lazily constructed genai client.
func (g *Gemini) handle() (*genai.Client, error) {
	g.initOnce.Do(func() {
		key := strings.TrimSpace(g.cfg.APIKey)
		if key == "" {
			g.initErr = errors.New("GEMINI_API_KEY is not set")
			return
		}
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: key,
		})
		if err != nil {
			g.initErr = fmt.Errorf("create genai client: %w", err)
			return
		}
		g.logger.Info("Gemini client initialized", "model", g.cfg.Model, "prompt_version", promptVersion)
		g.client = client
	})
	return g.client, g.initErr
}

// Generate submits the role-tagged history plus the new user turn and returns
// the model's reply. history must not already contain newMessage.
func (g *Gemini) Generate(ctx context.Context, history []domain.Turn, newMessage string) (string, error) {
	client, err := g.handle()
	if err != nil {
		g.logger.Error("Gemini client unavailable", "error", err)
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role, err := providerRole(turn.Role)
		if err != nil {
			return "", fmt.Errorf("build prompt: %w", err)
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(newMessage, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(g.cfg.MaxOutputTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		g.logger.Error("Gemini request failed", "model", g.cfg.Model, "error", err)
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := extractText(resp)
	if text == "" {
		g.logger.Error("Gemini returned no text", "model", g.cfg.Model)
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}

// extractText pulls the first text part out of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}
