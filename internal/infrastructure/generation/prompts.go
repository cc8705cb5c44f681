package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

const maxSuggestions = 5

var planSystemPrompt = fmt.Sprintf(`You are an experienced business consultant writing investor-ready business plans.
Write in Markdown with one H1 title and H2 sections: Executive Summary, Company Description,
Market Analysis, Competition, Marketing Strategy, Operations Plan, Financial Projections, Conclusion.
Insert the token %s on its own line where a financial chart belongs and %s where a hero image belongs.`,
	domain.ChartPlaceholder, domain.ImagePlaceholder)

func planPrompt(f domain.FormData) string {
	style := f.TemplateStyle
	if style == "" {
		style = domain.DefaultTemplateStyle
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s-style business plan.\n\n", style)
	fmt.Fprintf(&b, "Business name: %s\n", f.BusinessName)
	fmt.Fprintf(&b, "Business idea: %s\n", f.BusinessIdea)
	fmt.Fprintf(&b, "Target audience: %s\n", f.TargetAudience)
	fmt.Fprintf(&b, "Competition: %s\n", f.Competition)
	fmt.Fprintf(&b, "Marketing strategy: %s\n", f.MarketingStrategy)
	fmt.Fprintf(&b, "Operations plan: %s\n", f.OperationsPlan)
	fmt.Fprintf(&b, "Financial projections: %s\n", f.FinancialProjections)
	return b.String()
}

func suggestionPrompt(keyword string) string {
	return fmt.Sprintf(`Suggest %d short business ideas (under 12 words each) related to %q.
Respond with a JSON array of strings only.`, maxSuggestions, keyword)
}

func moderationPrompt(text, author string) string {
	return fmt.Sprintf(`You moderate customer testimonials for a business-plan product.
Reject spam, hate, harassment, sexual content, personal data, or text unrelated to the product.
Answer with exactly one word: APPROVED or REJECTED.

Author: %s
Testimonial: %s`, author, text)
}

func blogPrompt(topic string) string {
	return fmt.Sprintf(`Write a practical blog article for small-business founders about %q.
Respond with a JSON object with string fields "title", "excerpt" (one sentence),
"content" (Markdown, 600-900 words) and "category" (one of: Strategy, Marketing, Finance, Operations).`, topic)
}

// parseSuggestions accepts a JSON array, falling back to one suggestion per line.
func parseSuggestions(text string) []string {
	var raw []string
	if err := json.Unmarshal([]byte(stripFence(text)), &raw); err != nil {
		raw = strings.Split(text, "\n")
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, maxSuggestions)
	for _, s := range raw {
		s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "-*0123456789.) "))
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func parseModeration(verdict string) (bool, error) {
	v := strings.ToUpper(strings.TrimSpace(verdict))
	switch {
	case strings.HasPrefix(v, "APPROVED"):
		return true, nil
	case strings.HasPrefix(v, "REJECTED"):
		return false, nil
	}
	return false, fmt.Errorf("unrecognised moderation verdict %q", verdict)
}

func parseBlogDraft(text string) (*ports.BlogDraft, error) {
	var d struct {
		Title    string `json:"title"`
		Excerpt  string `json:"excerpt"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(stripFence(text)), &d); err != nil {
		return nil, fmt.Errorf("decode blog draft: %w", err)
	}
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Content) == "" {
		return nil, errors.New("blog draft missing title or content")
	}
	return &ports.BlogDraft{
		Title:    strings.TrimSpace(d.Title),
		Excerpt:  strings.TrimSpace(d.Excerpt),
		Content:  d.Content,
		Category: strings.TrimSpace(d.Category),
	}, nil
}

// stripFence removes a surrounding ```json fence the model sometimes adds.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
}
