package ai

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

type geminiProvider struct {
	apiKey string
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Chat(ctx context.Context, model string, temperature float64, messages []Message) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Role == "system" {
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: msg.Content}}}
			continue
		}
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: msg.Content}}})
	}
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

func createGeminiFactory(args interface{}) (IProvider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiProvider{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func init() {
	Register("gemini", createGeminiFactory)
}
