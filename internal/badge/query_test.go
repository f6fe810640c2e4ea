package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleResults() []Result {
	mk := func(id string, earned, hidden bool, progress float64) Result {
		return Result{
			Definition: Definition{ID: id, Hidden: hidden, Tier: TierSilver},
			Earned:     earned,
			Progress:   progress,
		}
	}
	return []Result{
		mk("a", true, false, 1),
		mk("b", false, false, 0.4),
		mk("c", false, false, 0.9),
		mk("d", false, true, 0.9),
		mk("e", true, true, 1),
		mk("f", false, false, 0.4),
		mk("g", false, false, 0),
	}
}

func TestEarned(t *testing.T) {
	assert.Equal(t, []string{"a", "e"}, ids(Earned(sampleResults())))
	assert.Empty(t, Earned(nil))
}

func TestInProgress_SortedWithStableTies(t *testing.T) {
	got := InProgress(sampleResults(), 0)
	assert.Equal(t, []string{"c", "d", "b", "f", "g"}, ids(got))

	got = InProgress(sampleResults(), 3)
	assert.Equal(t, []string{"c", "d", "b"}, ids(got))

	got = InProgress(sampleResults(), 50)
	assert.Len(t, got, 5)
}

func TestInProgress_DoesNotReorderInput(t *testing.T) {
	results := sampleResults()
	InProgress(results, 2)
	assert.Equal(t, ids(sampleResults()), ids(results))
}

func TestVisibleOrDiscovered(t *testing.T) {
	got := VisibleOrDiscovered(sampleResults())
	assert.Equal(t, []string{"a", "b", "c", "e", "f", "g"}, ids(got))
}

func TestByTier(t *testing.T) {
	assert.Len(t, ByTier(sampleResults(), TierSilver), 7)
	assert.Empty(t, ByTier(sampleResults(), TierDiamond))
}
