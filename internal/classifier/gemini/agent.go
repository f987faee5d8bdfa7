// Package gemini implements the classifier backend for Google Gemini.
package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
	"google.golang.org/genai"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
)

const defaultModel = "gemini-2.5-flash"

var _ model.AgentAPI = (*Agent)(nil)

// Agent implements the AgentAPI interface for Google Gemini.
type Agent struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini agent.
func New(ctx context.Context, cfg config.ClassifierConfig) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, erro.New("Gemini API key is required")
	}

	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, erro.Wrap(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: transport,
		},
	})
	if err != nil {
		return nil, erro.Wrap(err, "failed to create Gemini client")
	}

	return &Agent{
		client: client,
		model:  lang.Check(cfg.Model, defaultModel),
	}, nil
}

// CallAPI calls the Gemini API to generate content.
func (a *Agent) CallAPI(ctx context.Context, req model.APIRequest) (model.APIResponse, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: lang.Check(req.ResponseType, "text/plain"),
		Temperature:      &req.Temperature,
		MaxOutputTokens:  int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}

	result, err := a.client.Models.GenerateContent(ctx,
		a.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Prompt}}}},
		cfg,
	)
	if err != nil {
		return model.APIResponse{}, a.handleAPIError(err)
	}

	var content string
	if len(result.Candidates) > 0 {
		candidate := result.Candidates[0]
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			content = candidate.Content.Parts[0].Text
		}
	}

	out := model.APIResponse{
		Content: content,
	}
	if result.UsageMetadata != nil {
		out.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		out.TotalTokens = int(result.UsageMetadata.TotalTokenCount)
	}

	return out, nil
}

// handleAPIError maps the most common Gemini failures to readable errors.
func (a *Agent) handleAPIError(err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "429"):
		return erro.New("rate limit exceeded")
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "403"):
		return erro.New("authentication failed")
	case strings.Contains(errStr, "503"):
		return erro.New("Gemini API service unavailable")
	case strings.Contains(errStr, "500") || strings.Contains(errStr, "502"):
		return erro.New("Gemini API server error")
	default:
		return erro.Wrap(err, "Gemini API error")
	}
}
