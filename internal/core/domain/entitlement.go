package domain

// Unlimited is returned by MaxSavedPlans for uncapped tiers.
const Unlimited = -1

// StarterPlanLimit is the number of saved plans a starter account may keep.
const StarterPlanLimit = 15

// ModelTier is passed opaquely to the generation collaborator.
type ModelTier string

const (
	ModelBase     ModelTier = "base"
	ModelAdvanced ModelTier = "advanced"
)

// PlanChange classifies a move between two tiers.
type PlanChange string

const (
	PlanUpgrade   PlanChange = "upgrade"
	PlanDowngrade PlanChange = "downgrade"
	PlanUnchanged PlanChange = "unchanged"
)

// MaxSavedPlans returns the saved-plan cap for plan, or Unlimited.
func MaxSavedPlans(plan PlanTier) int {
	switch plan {
	case PlanPro, PlanEnterprise:
		return Unlimited
	default:
		return StarterPlanLimit
	}
}

// GenerationModelTier maps a subscription to the model tier used for generation.
func GenerationModelTier(plan PlanTier) ModelTier {
	switch plan {
	case PlanPro, PlanEnterprise:
		return ModelAdvanced
	default:
		return ModelBase
	}
}

// CanExportPDF reports whether plan may export finished documents.
func CanExportPDF(plan PlanTier) bool {
	return plan == PlanPro || plan == PlanEnterprise
}

// PlanRank orders tiers: starter < pro < enterprise. Unknown tiers rank below starter.
func PlanRank(plan PlanTier) int {
	switch plan {
	case PlanStarter:
		return 1
	case PlanPro:
		return 2
	case PlanEnterprise:
		return 3
	default:
		return 0
	}
}

// ClassifyPlanChange compares two tiers by PlanRank.
func ClassifyPlanChange(from, to PlanTier) PlanChange {
	switch rf, rt := PlanRank(from), PlanRank(to); {
	case rt > rf:
		return PlanUpgrade
	case rt < rf:
		return PlanDowngrade
	default:
		return PlanUnchanged
	}
}

// QuotaExceeded reports whether an account holding count plans may not create another.
func QuotaExceeded(plan PlanTier, count int) bool {
	limit := MaxSavedPlans(plan)
	return limit != Unlimited && count >= limit
}
