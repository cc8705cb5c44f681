package domain

import "strings"

// StepKind distinguishes the fixed wizard stages from content steps.
type StepKind string

const (
	StepWelcome StepKind = "welcome"
	StepContent StepKind = "content"
	StepStyle   StepKind = "style"
	StepReview  StepKind = "review"
	StepResult  StepKind = "result"
)

// Form field names as accepted by SetField.
const (
	FieldBusinessName         = "businessName"
	FieldBusinessIdea         = "businessIdea"
	FieldTargetAudience       = "targetAudience"
	FieldCompetition          = "competition"
	FieldMarketingStrategy    = "marketingStrategy"
	FieldOperationsPlan       = "operationsPlan"
	FieldFinancialProjections = "financialProjections"
	FieldTemplateStyle        = "templateStyle"
)

// Step is one stage of the planner wizard.
type Step struct {
	Name     string   `json:"name"`
	Kind     StepKind `json:"kind"`
	Required []string `json:"required,omitempty"`
}

// WizardSteps is the ordered planner flow.
var WizardSteps = []Step{
	{Name: "Welcome", Kind: StepWelcome},
	{Name: "Business Name", Kind: StepContent, Required: []string{FieldBusinessName}},
	{Name: "Business Idea", Kind: StepContent, Required: []string{FieldBusinessIdea}},
	{Name: "Target Audience", Kind: StepContent, Required: []string{FieldTargetAudience}},
	{Name: "Competition", Kind: StepContent, Required: []string{FieldCompetition}},
	{Name: "Marketing", Kind: StepContent, Required: []string{FieldMarketingStrategy}},
	{Name: "Operations", Kind: StepContent, Required: []string{FieldOperationsPlan}},
	{Name: "Financials", Kind: StepContent, Required: []string{FieldFinancialProjections}},
	{Name: "Style", Kind: StepStyle},
	{Name: "Review", Kind: StepReview},
	{Name: "Result", Kind: StepResult},
}

// ReviewStep and ResultStep index the fixed tail of WizardSteps.
var (
	ReviewStep = len(WizardSteps) - 2
	ResultStep = len(WizardSteps) - 1
)

// Field returns the value of the named field.
func (f FormData) Field(name string) (string, bool) {
	switch name {
	case FieldBusinessName:
		return f.BusinessName, true
	case FieldBusinessIdea:
		return f.BusinessIdea, true
	case FieldTargetAudience:
		return f.TargetAudience, true
	case FieldCompetition:
		return f.Competition, true
	case FieldMarketingStrategy:
		return f.MarketingStrategy, true
	case FieldOperationsPlan:
		return f.OperationsPlan, true
	case FieldFinancialProjections:
		return f.FinancialProjections, true
	case FieldTemplateStyle:
		return f.TemplateStyle, true
	}
	return "", false
}

// WithField returns a copy of f with the named field replaced.
func (f FormData) WithField(name, value string) (FormData, bool) {
	switch name {
	case FieldBusinessName:
		f.BusinessName = value
	case FieldBusinessIdea:
		f.BusinessIdea = value
	case FieldTargetAudience:
		f.TargetAudience = value
	case FieldCompetition:
		f.Competition = value
	case FieldMarketingStrategy:
		f.MarketingStrategy = value
	case FieldOperationsPlan:
		f.OperationsPlan = value
	case FieldFinancialProjections:
		f.FinancialProjections = value
	case FieldTemplateStyle:
		f.TemplateStyle = value
	default:
		return f, false
	}
	return f, true
}

// MissingFields lists the required fields of step that are still empty.
func (s Step) MissingFields(f FormData) []string {
	var missing []string
	for _, name := range s.Required {
		if v, _ := f.Field(name); strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
