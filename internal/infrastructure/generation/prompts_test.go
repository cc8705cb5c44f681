package generation

import (
	"strings"
	"testing"

	"github.com/planwise/business-planner/internal/core/domain"
)

func TestPlanPrompt_IncludesEveryField(t *testing.T) {
	f := domain.FormData{
		BusinessName:         "Acme",
		BusinessIdea:         "rockets",
		TargetAudience:       "coyotes",
		Competition:          "none",
		MarketingStrategy:    "billboards",
		OperationsPlan:       "desert depot",
		FinancialProjections: "profit in year two",
	}
	p := planPrompt(f)
	for _, want := range []string{"Acme", "rockets", "coyotes", "none", "billboards", "desert depot", "profit in year two"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if !strings.Contains(p, domain.DefaultTemplateStyle) {
		t.Fatalf("expected default style in prompt")
	}
	if !strings.Contains(planSystemPrompt, domain.ChartPlaceholder) {
		t.Fatalf("system prompt must ask for chart placeholder")
	}
}

func TestParseSuggestions(t *testing.T) {
	got := parseSuggestions("```json\n[\"Coffee truck\", \"coffee truck\", \" Bike repair \", \"\"]\n```")
	if len(got) != 2 || got[0] != "Coffee truck" || got[1] != "Bike repair" {
		t.Fatalf("unexpected suggestions: %q", got)
	}

	lines := parseSuggestions("1. Dog walking\n2. Meal prep\n- Tutoring")
	if len(lines) != 3 || lines[0] != "Dog walking" || lines[2] != "Tutoring" {
		t.Fatalf("unexpected line suggestions: %q", lines)
	}
}

func TestParseSuggestions_Limit(t *testing.T) {
	got := parseSuggestions(`["a","b","c","d","e","f","g"]`)
	if len(got) != maxSuggestions {
		t.Fatalf("expected %d suggestions, got %d", maxSuggestions, len(got))
	}
}

func TestParseModeration(t *testing.T) {
	if ok, err := parseModeration(" approved."); err != nil || !ok {
		t.Fatalf("expected approval, got %v %v", ok, err)
	}
	if ok, err := parseModeration("REJECTED"); err != nil || ok {
		t.Fatalf("expected rejection, got %v %v", ok, err)
	}
	if _, err := parseModeration("maybe"); err == nil {
		t.Fatalf("expected error for unknown verdict")
	}
}

func TestParseBlogDraft(t *testing.T) {
	d, err := parseBlogDraft(`{"title":" Pricing 101 ","excerpt":"How to price.","content":"# Body","category":"Finance"}`)
	if err != nil {
		t.Fatalf("parseBlogDraft: %v", err)
	}
	if d.Title != "Pricing 101" || d.Category != "Finance" || d.Content != "# Body" {
		t.Fatalf("unexpected draft: %+v", d)
	}

	if _, err := parseBlogDraft(`{"title":"","content":""}`); err == nil {
		t.Fatalf("expected error for empty draft")
	}
}
