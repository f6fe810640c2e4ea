package badge

import "time"

// Result is the evaluation of one badge for one user's history.
type Result struct {
	Definition
	Earned   bool       `json:"earned"`
	Progress float64    `json:"progress"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
	// EarnedAtApproximate is set when EarnedAt is the latest entry timestamp rather than
	// the entry that completed the badge.
	EarnedAtApproximate bool `json:"earned_at_approximate,omitempty"`
}

// Evaluator runs the catalog's requirements against entry histories. It holds no per-call
// state and is safe for concurrent use.
type Evaluator struct {
	catalog *Catalog
}

// NewEvaluator creates an Evaluator over catalog.
func NewEvaluator(catalog *Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Catalog returns the catalog the evaluator was built with.
func (e *Evaluator) Catalog() *Catalog { return e.catalog }

// EvaluateAll evaluates every badge in catalog order. now supplies both the reference instant
// and the location used to bucket entries into calendar days.
func (e *Evaluator) EvaluateAll(entries []Entry, counters Counters, now time.Time) []Result {
	h := newHistory(entries, counters, now)
	out := make([]Result, 0, len(e.catalog.badges))
	for _, b := range e.catalog.badges {
		out = append(out, evaluate(b, h))
	}
	return out
}

// EvaluateBadge evaluates a single badge.
func (e *Evaluator) EvaluateBadge(id string, entries []Entry, counters Counters, now time.Time) (Result, error) {
	i, ok := e.catalog.byID[id]
	if !ok {
		return Result{}, &BadgeNotFoundError{ID: id}
	}
	return evaluate(e.catalog.badges[i], newHistory(entries, counters, now)), nil
}

func evaluate(b compiledBadge, h *history) Result {
	res := Result{Definition: b.def.clone(), Earned: true, Progress: 1}

	var (
		latest  *time.Time
		unnamed bool
	)
	for i, rule := range b.rules {
		o := rule(b.def.Requirements[i], h)
		if o.Progress < res.Progress {
			res.Progress = o.Progress
		}
		if !o.Satisfied {
			res.Earned = false
			continue
		}
		if o.Completing == nil {
			unnamed = true
			continue
		}
		if latest == nil || o.Completing.After(*latest) {
			latest = o.Completing
		}
	}

	if !res.Earned {
		return res
	}
	res.Progress = 1
	if unnamed {
		latest = laterOf(latest, h.lastEntryAt())
		res.EarnedAtApproximate = latest != nil
	}
	if latest != nil {
		t := *latest
		res.EarnedAt = &t
	}
	return res
}

func (h *history) lastEntryAt() *time.Time {
	if len(h.dated) == 0 {
		return nil
	}
	return timeRef(h.dated[len(h.dated)-1].CreatedAt)
}

func laterOf(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
