package badge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// base is a Monday.
var base = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func day(d, hour, minute int) time.Time {
	return base.AddDate(0, 0, d).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type entryOpt func(*Entry)

func withMood(m Mood) entryOpt     { return func(e *Entry) { e.PrimaryMood = m } }
func withWords(n int) entryOpt     { return func(e *Entry) { e.WordCount = n } }
func withScore(v float64) entryOpt { return func(e *Entry) { e.MoodScore = &v } }
func voice() entryOpt              { return func(e *Entry) { e.IsVoiceEntry = true } }
func reflected() entryOpt          { return func(e *Entry) { e.HasReflection = true } }

func withText(s string) entryOpt {
	return func(e *Entry) {
		e.Text = s
		e.WordCount = 0
	}
}

func newEntry(ts time.Time, opts ...entryOpt) Entry {
	e := Entry{ID: ts.Format(time.RFC3339Nano), CreatedAt: ts, WordCount: 120}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// evalRequirement evaluates a one-requirement badge built around req.
func evalRequirement(t *testing.T, req Requirement, entries []Entry, counters Counters, now time.Time) Result {
	t.Helper()
	cat, err := NewCatalog([]Definition{testDef("under_test", req)})
	require.NoError(t, err)
	res, err := NewEvaluator(cat).EvaluateBadge("under_test", entries, counters, now)
	require.NoError(t, err)
	return res
}

func testDef(id string, reqs ...Requirement) Definition {
	return Definition{
		ID:           id,
		Name:         id,
		Category:     CategoryJourney,
		Tier:         TierBronze,
		Icon:         IconSparkles,
		Requirements: reqs,
		Rarity:       50,
	}
}

func defaultEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	return NewEvaluator(cat)
}
