package vision

import (
	"context"
	"encoding/base64"
	"image"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"vocab/internal/logger"
	"vocab/internal/preprocess"
)

// OpenAIConfig configures the OpenAI-compatible chat backend.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // empty = api.openai.com; set for Ollama etc.
	Model       string
	Prompt      string // empty = DefaultPrompt
	Temperature float32
	MaxTokens   int
}

// OpenAIService implements Service against any OpenAI-compatible chat
// completion endpoint with vision support.
type OpenAIService struct {
	client *openai.Client
	cfg    OpenAIConfig
	log    zerolog.Logger
}

// NewOpenAIService creates the chat backend. Local servers such as
// Ollama accept any key, so the key may be empty when a base URL is set.
func NewOpenAIService(cfg OpenAIConfig) (*OpenAIService, error) {
	const op = "NewOpenAIService"

	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, WrapVisionError(op, ErrMissingCredentials, "no API key and no base URL")
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "unused" // local endpoints ignore the key but the client requires one
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	return &OpenAIService{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		log:    logger.WithComponent("vision-openai"),
	}, nil
}

// ExtractText sends the image and the instruction prompt as one user
// message and returns the model's reply verbatim.
func (s *OpenAIService) ExtractText(ctx context.Context, img image.Image) (string, error) {
	const op = "ExtractText"

	dataURL, err := imageDataURL(img)
	if err != nil {
		return "", WrapVisionError(op, err, "encoding image")
	}

	s.log.Debug().
		Str("model", s.cfg.Model).
		Int("data_url_len", len(dataURL)).
		Msg("Sending image to chat backend")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: s.cfg.Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", WrapVisionError(op, err, "chat completion")
	}

	if len(resp.Choices) == 0 {
		return "", WrapVisionError(op, ErrEmptyResponse, "no choices in response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", WrapVisionError(op, ErrEmptyResponse, "empty message content")
	}

	s.log.Debug().Int("reply_len", len(content)).Msg("Received backend reply")
	return content, nil
}

// imageDataURL encodes the image as a base64 JPEG data URL. JPEG keeps
// the request payload small; the conditioning pipeline has already done
// any quality-sensitive work.
func imageDataURL(img image.Image) (string, error) {
	encoded, err := preprocess.Encode(img, preprocess.Config{
		OutputFormat: preprocess.FormatJPEG,
		JPEGQuality:  90,
	})
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded), nil
}
