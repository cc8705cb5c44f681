// Package generation implements ports.GenerationService on Google Gemini.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

// Config names the models used for each generation tier.
type Config struct {
	APIKey        string
	BaseModel     string
	AdvancedModel string
}

// Gemini calls the Gemini API for every generation task.
type Gemini struct {
	client        *genai.Client
	baseModel     string
	advancedModel string
}

// NewGemini creates the client. Close must be called on shutdown.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{
		client:        client,
		baseModel:     cfg.BaseModel,
		advancedModel: cfg.AdvancedModel,
	}, nil
}

func (g *Gemini) Close() error { return g.client.Close() }

var _ ports.GenerationService = (*Gemini)(nil)

func (g *Gemini) GeneratePlan(ctx context.Context, form domain.FormData, tier domain.ModelTier) (string, error) {
	name := g.baseModel
	if tier == domain.ModelAdvanced {
		name = g.advancedModel
	}
	model := g.client.GenerativeModel(name)
	model.SystemInstruction = genai.NewUserContent(genai.Text(planSystemPrompt))

	text, err := g.generate(ctx, model, planPrompt(form))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (g *Gemini) GenerateSuggestions(ctx context.Context, keyword string) ([]string, error) {
	model := g.client.GenerativeModel(g.baseModel)
	model.ResponseMIMEType = "application/json"

	text, err := g.generate(ctx, model, suggestionPrompt(keyword))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text), nil
}

func (g *Gemini) ModerateContent(ctx context.Context, text, author string) (bool, error) {
	model := g.client.GenerativeModel(g.baseModel)
	model.SetTemperature(0)

	verdict, err := g.generate(ctx, model, moderationPrompt(text, author))
	if err != nil {
		return false, err
	}
	return parseModeration(verdict)
}

func (g *Gemini) GenerateBlogPost(ctx context.Context, topic string) (*ports.BlogDraft, error) {
	model := g.client.GenerativeModel(g.baseModel)
	model.ResponseMIMEType = "application/json"

	text, err := g.generate(ctx, model, blogPrompt(topic))
	if err != nil {
		return nil, err
	}
	return parseBlogDraft(text)
}

func (g *Gemini) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return out, nil
}
