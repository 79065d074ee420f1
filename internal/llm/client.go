package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/talent-match/internal/features"
	"github.com/jonathan/talent-match/internal/types"
	"google.golang.org/api/option"
)

// NewEmbedder creates an embedder based on configuration. The Gemini provider
// requires apiKey; the returned embedder then also implements io.Closer.
func NewEmbedder(ctx context.Context, config *Config, apiKey string) (features.Embedder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.normalized()

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiEmbedder(ctx, config, apiKey)
	case ProviderHashing:
		return features.NewHashingEmbedder(config.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", config.Provider)
	}
}

// embedFunc performs one embedding call against the backend.
type embedFunc func(ctx context.Context, text string) ([]float32, error)

// GeminiEmbedder implements features.Embedder with the Gemini embedding API.
// Every call is bounded by the configured timeout; backend failures surface as
// *types.DependencyTimeoutError so callers can degrade to lexical scoring.
type GeminiEmbedder struct {
	client *genai.Client
	config *Config
	embed  embedFunc
}

// NewGeminiEmbedder creates a new Gemini embedder
func NewGeminiEmbedder(ctx context.Context, config *Config, apiKey string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultGeminiConfig()
	}
	config = config.normalized()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.EmbeddingModel(config.Model)
	model.TaskType = genai.TaskTypeSemanticSimilarity

	return &GeminiEmbedder{
		client: client,
		config: config,
		embed: func(ctx context.Context, text string) ([]float32, error) {
			resp, err := model.EmbedContent(ctx, genai.Text(text))
			if err != nil {
				return nil, err
			}
			if resp == nil || resp.Embedding == nil {
				return nil, fmt.Errorf("no embedding in response")
			}
			return resp.Embedding.Values, nil
		},
	}, nil
}

// newGeminiEmbedderWithFunc builds an embedder around a custom backend call.
func newGeminiEmbedderWithFunc(config *Config, fn embedFunc) *GeminiEmbedder {
	if config == nil {
		config = DefaultGeminiConfig()
	}
	return &GeminiEmbedder{config: config.normalized(), embed: fn}
}

// Dimension returns the configured output size
func (e *GeminiEmbedder) Dimension() int {
	return e.config.Dimension
}

// Embed returns the embedding of text. Blank text yields the zero vector without a call.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.config.Dimension), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	start := time.Now()
	vec, err := e.embed(callCtx, text)
	if err != nil {
		// Cancellation by the caller is not a dependency failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			return nil, &types.DependencyTimeoutError{
				Dependency: e.dependencyName(),
				Timeout:    e.config.Timeout,
				Cause:      err,
			}
		}
		return nil, &types.DependencyTimeoutError{
			Dependency: e.dependencyName(),
			Timeout:    time.Since(start).Round(time.Millisecond),
			Cause:      err,
		}
	}
	return vec, nil
}

// Close releases resources held by the client
func (e *GeminiEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

func (e *GeminiEmbedder) dependencyName() string {
	return "gemini:" + e.config.Model
}
