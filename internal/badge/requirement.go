package badge

import (
	"math"
	"time"
)

// RequirementType selects the evaluator family for a requirement.
type RequirementType string

const (
	RequirementStreak      RequirementType = "streak"
	RequirementCount       RequirementType = "count"
	RequirementMoodChange  RequirementType = "mood_change"
	RequirementTimePattern RequirementType = "time_pattern"
	RequirementWordCount   RequirementType = "word_count"
	RequirementDiversity   RequirementType = "diversity"
	RequirementComeback    RequirementType = "comeback"
	RequirementReflection  RequirementType = "reflection"
)

// Condition selects a sub-variant of an evaluator. The empty condition is the default variant.
type Condition string

const (
	ConditionNone Condition = ""

	// count
	ConditionVoiceEntries   Condition = "voice_entries"
	ConditionShortEntries   Condition = "short_entries"
	ConditionAnalyticsViews Condition = "analytics_views"

	// streak
	ConditionFlexibleStreak     Condition = "flexible_streak"
	ConditionConsecutiveDays    Condition = "consecutive_days"
	ConditionNegativeMoodStreak Condition = "negative_mood_streak"

	// mood_change
	ConditionNegativeToPositive24h     Condition = "negative_to_positive_24h"
	ConditionMonthOverMonthImprovement Condition = "month_over_month_improvement"

	// time_pattern
	ConditionNightHours       Condition = "night_hours"
	ConditionMorningHours     Condition = "morning_hours"
	ConditionSameMoodSameTime Condition = "same_mood_same_time"

	// comeback
	ConditionAfter7DayGap Condition = "after_7day_gap"

	// reflection
	ConditionTriggerWordsDetected Condition = "trigger_words_detected"
)

// Requirement is a single testable condition attached to a badge.
type Requirement struct {
	Type      RequirementType `json:"type"`
	Threshold float64         `json:"threshold"`
	Window    int             `json:"window,omitempty"` // days; 0 means unset
	Condition Condition       `json:"condition,omitempty"`
}

// outcome is what one requirement evaluator reports for one history.
type outcome struct {
	Satisfied  bool
	Progress   float64
	Completing *time.Time
}

type evaluatorFunc func(req Requirement, h *history) outcome

// evaluators is the closed dispatch table: type -> condition -> evaluator.
var evaluators = map[RequirementType]map[Condition]evaluatorFunc{
	RequirementCount: {
		ConditionNone:           evaluateCount,
		ConditionVoiceEntries:   evaluateCount,
		ConditionShortEntries:   evaluateCount,
		ConditionAnalyticsViews: evaluateAnalyticsViews,
	},
	RequirementWordCount: {
		ConditionNone: evaluateWordCount,
	},
	RequirementStreak: {
		ConditionNone:               evaluateFlexibleStreak,
		ConditionFlexibleStreak:     evaluateFlexibleStreak,
		ConditionConsecutiveDays:    evaluateConsecutiveDays,
		ConditionNegativeMoodStreak: evaluateNegativeMoodStreak,
	},
	RequirementMoodChange: {
		ConditionNegativeToPositive24h:     evaluateNegativeToPositive,
		ConditionMonthOverMonthImprovement: evaluateMonthOverMonth,
	},
	RequirementTimePattern: {
		ConditionNightHours:       evaluateHourBucket,
		ConditionMorningHours:     evaluateHourBucket,
		ConditionSameMoodSameTime: evaluateSameMoodSameTime,
	},
	RequirementDiversity: {
		ConditionNone: evaluateDiversity,
	},
	RequirementComeback: {
		ConditionNone:         evaluateComeback,
		ConditionAfter7DayGap: evaluateComeback,
	},
	RequirementReflection: {
		ConditionNone:                 evaluateReflections,
		ConditionTriggerWordsDetected: evaluateTriggerWords,
	},
}

// compile resolves the evaluator for req, rejecting combinations no evaluator handles.
func compile(badgeID string, req Requirement) (evaluatorFunc, error) {
	invalid := func(reason string) error {
		return &InvalidRequirementConfigError{BadgeID: badgeID, Type: req.Type, Condition: req.Condition, Reason: reason}
	}

	byCondition, ok := evaluators[req.Type]
	if !ok {
		return nil, invalid("unknown requirement type")
	}
	fn, ok := byCondition[req.Condition]
	if !ok {
		return nil, invalid("condition not supported for type")
	}
	if math.IsNaN(req.Threshold) || math.IsInf(req.Threshold, 0) || req.Threshold <= 0 {
		return nil, invalid("threshold must be a positive number")
	}
	if req.Window < 0 {
		return nil, invalid("window must not be negative")
	}
	if req.Type == RequirementMoodChange && req.Condition == ConditionMonthOverMonthImprovement && req.Window == 0 {
		return nil, invalid("month_over_month_improvement needs a window")
	}

	return func(req Requirement, h *history) outcome {
		if h.empty() {
			return outcome{}
		}
		return fn(req, h)
	}, nil
}

// ratio returns value/threshold clamped to [0, 1].
func ratio(value, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	r := value / threshold
	switch {
	case r < 0 || math.IsNaN(r):
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}

func countOutcome(matches, threshold float64, completing *time.Time) outcome {
	satisfied := matches >= threshold
	if !satisfied {
		completing = nil
	}
	return outcome{Satisfied: satisfied, Progress: ratio(matches, threshold), Completing: completing}
}

func timeRef(t time.Time) *time.Time {
	return &t
}
