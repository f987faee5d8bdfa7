// Package classifier produces a quality report for every commit. It asks an
// AI backend when one is configured and always degrades to a local heuristic,
// so classification never blocks or fails the ingestion path.
package classifier

import (
	"context"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/onecommit/onecommit/internal/classifier/gemini"
	"github.com/onecommit/onecommit/internal/classifier/openai"
	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxSummaryLen    = 500
	maxFeedbackLen   = 1000
	maxSuggestions   = 5
	maxSuggestionLen = 200
	maxTechnologies  = 10
	maxTechnologyLen = 50
)

// Classifier assigns a quality report to commits.
type Classifier struct {
	agent model.AgentAPI
	cfg   config.ClassifierConfig
	log   logze.Logger
}

// New creates a classifier with the backend selected by the config.
// With the "none" type it runs on the local heuristic only.
func New(ctx context.Context, cfg config.ClassifierConfig) (*Classifier, error) {
	c := &Classifier{
		cfg: cfg,
		log: logze.With("component", "classifier", "type", string(cfg.Type)),
	}

	var err error
	switch cfg.Type {
	case config.ClassifierGemini:
		c.agent, err = gemini.New(ctx, cfg)
	case config.ClassifierOpenAI:
		c.agent, err = openai.New(cfg)
	case config.ClassifierNone, "":
	default:
		err = errm.Errorf("unknown classifier type: %s", cfg.Type)
	}
	if err != nil {
		return nil, errm.Wrap(err, "failed to init classifier backend")
	}

	return c, nil
}

// Classify returns a quality report for the commit. It never returns an
// error: backend or parse failures fall through to the local heuristic.
func (c *Classifier) Classify(ctx context.Context, in model.ClassifyInput) model.QualityReport {
	if c.agent == nil {
		return Fallback(in)
	}

	resp, err := c.agent.CallAPI(ctx, model.APIRequest{
		Prompt:       buildPrompt(in),
		SystemPrompt: systemPrompt,
		MaxTokens:    c.cfg.MaxTokens,
		Temperature:  c.cfg.Temperature,
		ResponseType: "application/json",
	})
	if err != nil {
		c.log.Warn("AI classification failed, using fallback", "error", err)
		return Fallback(in)
	}

	report, err := parseReport(resp.Content)
	if err != nil {
		c.log.Warn("cannot parse AI response, using fallback", "error", err)
		return Fallback(in)
	}

	return normalize(report)
}

// parseReport extracts a quality report from the model output, tolerating
// markdown fences and prose around the JSON object.
func parseReport(content string) (model.QualityReport, error) {
	var report model.QualityReport

	content = strings.TrimSpace(content)
	if content == "" {
		return report, errm.New("empty response")
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return report, errm.New("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), &report); err != nil {
		return report, errm.Wrap(err, "failed to unmarshal quality report")
	}

	return report, nil
}

// normalize clamps and truncates the report so downstream code can trust it.
func normalize(r model.QualityReport) model.QualityReport {
	if r.QualityScore < 0 {
		r.QualityScore = 0
	}
	if r.QualityScore > 100 {
		r.QualityScore = 100
	}

	r.Category = model.ValidCategory(r.Category)
	r.Complexity = model.ValidComplexity(r.Complexity)

	r.Summary = truncate(r.Summary, maxSummaryLen)
	r.Feedback = truncate(r.Feedback, maxFeedbackLen)

	if len(r.Suggestions) > maxSuggestions {
		r.Suggestions = r.Suggestions[:maxSuggestions]
	}
	for i, s := range r.Suggestions {
		r.Suggestions[i] = truncate(s, maxSuggestionLen)
	}

	if len(r.Technologies) > maxTechnologies {
		r.Technologies = r.Technologies[:maxTechnologies]
	}
	for i, t := range r.Technologies {
		r.Technologies[i] = truncate(t, maxTechnologyLen)
	}

	return r
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
