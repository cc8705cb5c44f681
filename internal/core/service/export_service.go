package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// ExportResult locates a stored document.
type ExportResult struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// ExportService renders saved plans as downloadable documents.
type ExportService struct {
	plans   *PlanService
	storage ports.BlobStorage
}

func NewExportService(plans *PlanService, storage ports.BlobStorage) *ExportService {
	return &ExportService{plans: plans, storage: storage}
}

// Export stores the rendered plan and returns where it was written. Only
// tiers allowed by CanExportPDF may export.
func (s *ExportService) Export(ctx context.Context, profile domain.UserProfile, planID string) (*ExportResult, error) {
	if !domain.CanExportPDF(profile.Plan) {
		return nil, domain.ErrExportNotAllowed
	}
	plan, err := s.plans.Get(ctx, profile.ID, planID)
	if err != nil {
		return nil, err
	}

	filename := slug(plan.Title) + ".md"
	path, err := s.storage.Upload(ctx, uuid.New(), filename, bytes.NewReader(RenderDocument(*plan)))
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	return &ExportResult{Path: path, Filename: filename}, nil
}

// RenderDocument produces the exported document. Placeholder tokens become
// Markdown comments so the file reads cleanly outside the app.
func RenderDocument(plan domain.SavedPlan) []byte {
	body := strings.NewReplacer(
		domain.ChartPlaceholder, "<!-- chart -->",
		domain.ImagePlaceholder, "<!-- image -->",
	).Replace(plan.Content)

	var b bytes.Buffer
	if !strings.HasPrefix(strings.TrimSpace(body), "# ") {
		fmt.Fprintf(&b, "# %s\n\n", plan.Title)
	}
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\n---\nGenerated %s · style: %s\n", plan.Date, plan.Style)
	return b.Bytes()
}

func slug(title string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "business-plan"
	}
	return s
}
