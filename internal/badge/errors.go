package badge

import "fmt"

// UnknownTierError reports a tier name that is not in the tier registry.
type UnknownTierError struct {
	Tier    Tier
	BadgeID string
}

func (e *UnknownTierError) Error() string {
	if e.BadgeID != "" {
		return fmt.Sprintf("badge %q references unknown tier %q", e.BadgeID, e.Tier)
	}
	return fmt.Sprintf("unknown tier %q", e.Tier)
}

// BadgeNotFoundError reports a badge id that is not in the catalog.
type BadgeNotFoundError struct {
	ID string
}

func (e *BadgeNotFoundError) Error() string {
	return fmt.Sprintf("badge %q not found", e.ID)
}

// InvalidRequirementConfigError reports a requirement no evaluator can handle.
type InvalidRequirementConfigError struct {
	BadgeID   string
	Type      RequirementType
	Condition Condition
	Reason    string
}

func (e *InvalidRequirementConfigError) Error() string {
	return fmt.Sprintf("badge %q: invalid requirement type=%q condition=%q: %s", e.BadgeID, e.Type, e.Condition, e.Reason)
}

// CatalogError reports a structural problem with a badge definition.
type CatalogError struct {
	BadgeID string
	Reason  string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("badge %q: %s", e.BadgeID, e.Reason)
}
