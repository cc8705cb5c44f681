package domain

import "testing"

func TestEntitlementByTier(t *testing.T) {
	tests := []struct {
		plan      PlanTier
		maxPlans  int
		model     ModelTier
		canExport bool
	}{
		{PlanStarter, StarterPlanLimit, ModelBase, false},
		{PlanPro, Unlimited, ModelAdvanced, true},
		{PlanEnterprise, Unlimited, ModelAdvanced, true},
		{PlanTier("gold"), StarterPlanLimit, ModelBase, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			if got := MaxSavedPlans(tt.plan); got != tt.maxPlans {
				t.Errorf("MaxSavedPlans = %d, want %d", got, tt.maxPlans)
			}
			if got := GenerationModelTier(tt.plan); got != tt.model {
				t.Errorf("GenerationModelTier = %s, want %s", got, tt.model)
			}
			if got := CanExportPDF(tt.plan); got != tt.canExport {
				t.Errorf("CanExportPDF = %v, want %v", got, tt.canExport)
			}
		})
	}
}

func TestQuotaExceeded(t *testing.T) {
	if QuotaExceeded(PlanStarter, 14) {
		t.Fatalf("starter with 14 plans may create one more")
	}
	if !QuotaExceeded(PlanStarter, 15) {
		t.Fatalf("starter with 15 plans is at the limit")
	}
	if QuotaExceeded(PlanPro, 10_000) {
		t.Fatalf("pro is unlimited")
	}
}

func TestClassifyPlanChange(t *testing.T) {
	if got := ClassifyPlanChange(PlanStarter, PlanPro); got != PlanUpgrade {
		t.Fatalf("starter→pro = %s", got)
	}
	if got := ClassifyPlanChange(PlanEnterprise, PlanPro); got != PlanDowngrade {
		t.Fatalf("enterprise→pro = %s", got)
	}
	if got := ClassifyPlanChange(PlanPro, PlanPro); got != PlanUnchanged {
		t.Fatalf("pro→pro = %s", got)
	}
	if PlanRank("") >= PlanRank(PlanStarter) {
		t.Fatalf("unknown tiers must rank below starter")
	}
}

func TestParsePlanTier(t *testing.T) {
	if p, ok := ParsePlanTier("  Pro "); !ok || p != PlanPro {
		t.Fatalf("ParsePlanTier(Pro) = %q, %v", p, ok)
	}
	if _, ok := ParsePlanTier("platinum"); ok {
		t.Fatalf("unknown tier accepted")
	}
}
