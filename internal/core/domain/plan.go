package domain

import "time"

// Placeholder tokens the generator leaves in documents for supplementary visuals.
const (
	ChartPlaceholder = "[[CHART]]"
	ImagePlaceholder = "[[IMAGE]]"
)

// Template styles offered on the style step.
const (
	StyleProfessional = "professional"
	StyleModern       = "modern"
	StyleMinimal      = "minimal"
	StyleCreative     = "creative"
)

// DefaultTemplateStyle is applied when a plan is generated without an explicit style.
const DefaultTemplateStyle = StyleProfessional

// FormData is the wizard working set. The zero value has every field empty.
type FormData struct {
	BusinessName         string `json:"businessName" bson:"business_name"`
	BusinessIdea         string `json:"businessIdea" bson:"business_idea"`
	TargetAudience       string `json:"targetAudience" bson:"target_audience"`
	Competition          string `json:"competition" bson:"competition"`
	MarketingStrategy    string `json:"marketingStrategy" bson:"marketing_strategy"`
	OperationsPlan       string `json:"operationsPlan" bson:"operations_plan"`
	FinancialProjections string `json:"financialProjections" bson:"financial_projections"`
	TemplateStyle        string `json:"templateStyle" bson:"template_style"`
}

// Draft is the single resumable wizard snapshot for a user.
type Draft struct {
	UserID       string    `json:"userId" bson:"_id"`
	CurrentStep  int       `json:"currentStep" bson:"current_step"`
	FormData     FormData  `json:"formData" bson:"form_data"`
	BusinessPlan string    `json:"businessPlan" bson:"business_plan"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

func (d Draft) EntityID() string { return d.UserID }

// SavedPlan is a finalised generation result with its input snapshot.
type SavedPlan struct {
	ID       string   `json:"id" bson:"_id"`
	UserID   string   `json:"userId" bson:"user_id"`
	Date     string   `json:"date" bson:"date"`
	Title    string   `json:"title" bson:"title"`
	Style    string   `json:"style" bson:"style"`
	Content  string   `json:"content" bson:"content"`
	FormData FormData `json:"formData" bson:"form_data"`
}

func (p SavedPlan) EntityID() string { return p.ID }

// PlanTitle derives the display title of a plan from its inputs.
func PlanTitle(f FormData) string {
	if f.BusinessName != "" {
		return f.BusinessName
	}
	return "Untitled Business Plan"
}
