package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-assistant/internal/ai"
	logging "github.com/spigell/resume-assistant/internal/logger"
	"github.com/spigell/resume-assistant/internal/utils"
)

const (
	defaultModel        = "gemini-2.5-pro"
	defaultMaxRetries   = 3
	defaultMaxLogLength = 200

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	// Quota errors asking to wait longer than this are not retried.
	maxQuotaDelay = 30 * time.Second
)

var (
	wait = utils.WaitFor

	retryHint = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*(?:s\b|sec|second)`)
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Options configures NewGenerator.
type Options struct {
	APIKey string
	Model  string
	// MaxRetries is the total number of attempts for temporary failures.
	MaxRetries   int
	MaxLogLength int
	Logger       *zap.Logger
}

// Generator sends prompts to Gemini, one fresh chat session per prompt.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

// NewGenerator creates a Generator for the Gemini API backend.
func NewGenerator(ctx context.Context, opts Options) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}
	logger := logging.WithCommonFields(opts.Logger, ai.ProviderGemini, model)

	return &Generator{
		chats:      genaiChats{chats: client.Chats},
		model:      model,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLen,
		logger:     logger,
	}, nil
}

// Generate sends prompt without a system instruction.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateContent(ctx, "", prompt)
}

// GenerateContent sends message with an optional system instruction and
// returns the joined text parts of the answer. Temporary API failures are
// retried with exponential backoff.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	attempts := max(g.maxRetries, 1)
	for attempt := 1; ; attempt++ {
		g.logger.Debug("gemini request",
			zap.Int("attempt", attempt),
			zap.String("prompt_preview", utils.TruncateForLog(message, g.maxLogLen)),
		)

		output, err := g.send(ctx, config, message)
		if err == nil {
			g.logger.Debug("gemini response",
				zap.Int("response_length", len(output)),
				zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
			)
			return output, nil
		}

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt >= attempts {
			return "", err
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := wait(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (g *Generator) send(ctx context.Context, config *genai.GenerateContentConfig, message string) (string, error) {
	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini api returned empty response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func retryDelay(err error, attempt int) (time.Duration, bool) {
	apiErr, ok := asAPIError(err)
	if !ok {
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		if hinted, ok := parseRetryHint(apiErr.Message); ok {
			if hinted > maxQuotaDelay {
				return 0, false
			}
			return hinted, true
		}
		return utils.Backoff(attempt, initialBackoff, maxBackoff), true
	case apiErr.Code >= http.StatusInternalServerError:
		return utils.Backoff(attempt, initialBackoff, maxBackoff), true
	default:
		return 0, false
	}
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func parseRetryHint(message string) (time.Duration, bool) {
	m := retryHint.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
