// Package openai implements the classifier backend for any OpenAI-compatible
// chat completion API (OpenAI, Groq, OpenRouter).
package openai

import (
	"context"
	"strings"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
)

const (
	defaultModel = "gpt-4o-mini"
	defaultURL   = "https://api.openai.com/v1/chat/completions"
)

var _ model.AgentAPI = (*Agent)(nil)

// Agent implements the AgentAPI interface over an OpenAI-compatible API.
type Agent struct {
	cli   *cliex.HTTP
	model string
	url   string
}

// New creates a new OpenAI-compatible agent.
func New(cfg config.ClassifierConfig) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, errm.New("OpenAI API key is required")
	}

	cli, err := cliex.NewWithConfig(cliex.Config{
		ProxyAddress:   cfg.ProxyURL,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to create HTTP client")
	}
	cli.C().SetAuthToken(cfg.APIKey)

	return &Agent{
		cli:   cli,
		model: lang.Check(cfg.Model, defaultModel),
		url:   lang.Check(cfg.BaseURL, defaultURL),
	}, nil
}

// CallAPI makes a chat completion request.
func (a *Agent) CallAPI(ctx context.Context, req model.APIRequest) (model.APIResponse, error) {
	reqBody := chatCompletionRequest{
		Model: a.model,
		Messages: []message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	}
	if req.ResponseType == "application/json" {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var respBody chatCompletionResponse
	_, err := a.cli.Post(ctx, a.url, reqBody, &respBody)
	if err != nil {
		return model.APIResponse{}, errm.Wrap(err, "failed to make API request")
	}

	if respBody.Error != nil {
		return model.APIResponse{}, errm.Errorf("API error: %s", respBody.Error.Message)
	}

	var content string
	if len(respBody.Choices) > 0 {
		content = strings.TrimSpace(respBody.Choices[0].Message.Content)
	}

	return model.APIResponse{
		Content:      content,
		PromptTokens: respBody.Usage.PromptTokens,
		TotalTokens:  respBody.Usage.TotalTokens,
	}, nil
}
