package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/note-harvester/internal/logging"
)

// Client is the LLM surface the summarizer depends on.
type Client interface {
	// GenerateContent returns the plain-text answer to prompt.
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON asks for a JSON answer and returns it with code fences stripped.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the model name used for a tier.
	GetModel(tier ModelTier) string
	Close() error
}

// ResponseError reports an answer that carried no usable text, usually
// because the prompt or the candidate was blocked.
type ResponseError struct {
	Model  string
	Reason string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("model %s returned no text: %s", e.Model, e.Reason)
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
	log    logging.Logger
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient connects to Gemini. A nil config uses DefaultConfig and a
// nil logger discards output.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, log logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logging.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config, log: log}, nil
}

// GenerateContent returns the plain-text answer to prompt.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "")
}

// GenerateJSON asks for an application/json answer.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string) (string, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(c.config.Temperature)
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	if c.config.SystemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(c.config.SystemInstruction))
	}
	model.ResponseMIMEType = mimeType

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini %s request failed: %w", name, err)
	}
	if u := resp.UsageMetadata; u != nil {
		c.log.Debug("gemini usage",
			logging.String("model", name),
			logging.Int("prompt_tokens", int(u.PromptTokenCount)),
			logging.Int("output_tokens", int(u.CandidatesTokenCount)))
	}

	text, reason := responseText(resp)
	if text == "" {
		return "", &ResponseError{Model: name, Reason: reason}
	}
	return text, nil
}

// GetModel returns the model name for a tier.
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate. When there is
// no text it returns why.
func responseText(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil {
		return "", "empty response"
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", "prompt blocked: " + fb.BlockReason.String()
	}
	if len(resp.Candidates) == 0 {
		return "", "no candidates"
	}

	candidate := resp.Candidates[0]
	var b strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	if b.Len() > 0 {
		return b.String(), ""
	}
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return "", "finished with " + candidate.FinishReason.String()
	}
	return "", "no text parts"
}
