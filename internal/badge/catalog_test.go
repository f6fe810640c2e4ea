package badge

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_LoadsAndValidates(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	require.Equal(t, 23, cat.Len())

	again, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Same(t, cat, again)

	seen := make(map[string]bool)
	all := cat.All()
	for i, d := range all {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		if i > 0 {
			prev := all[i-1]
			assert.True(t, prev.Order < d.Order || (prev.Order == d.Order && prev.ID < d.ID), "%s before %s", prev.ID, d.ID)
		}
	}
}

func TestCatalog_OrderTiesBrokenByID(t *testing.T) {
	req := Requirement{Type: RequirementCount, Threshold: 1}
	b := testDef("bravo", req)
	a := testDef("alpha", req)
	c := testDef("charlie", req)
	c.Order = -1

	cat, err := NewCatalog([]Definition{b, a, c})
	require.NoError(t, err)

	var ids []string
	for _, d := range cat.All() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, ids)
}

func TestCatalog_Badge(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	d, err := cat.Badge("the_novelist")
	require.NoError(t, err)
	assert.Equal(t, TierGold, d.Tier)

	_, err = cat.Badge("missing")
	var notFound *BadgeNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.ID)
}

func TestCatalog_Filters(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	hidden := cat.ByCategory(CategoryHidden)
	require.NotEmpty(t, hidden)
	for _, d := range hidden {
		assert.True(t, d.Hidden, d.ID)
	}

	visible := cat.Visible()
	assert.Len(t, visible, cat.Len()-len(hidden))
	for _, d := range visible {
		assert.False(t, d.Hidden, d.ID)
	}

	assert.Empty(t, cat.ByCategory("unknown"))
}

func TestCatalog_AccessorsReturnCopies(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	d, err := cat.Badge("week_warrior")
	require.NoError(t, err)
	d.Requirements[0].Threshold = 1
	d.Name = "changed"

	again, err := cat.Badge("week_warrior")
	require.NoError(t, err)
	assert.Equal(t, 5.0, again.Requirements[0].Threshold)
	assert.Equal(t, "Week Warrior", again.Name)
}

func TestNewCatalog_RejectsBadDefinitions(t *testing.T) {
	valid := Requirement{Type: RequirementCount, Threshold: 1}

	tests := []struct {
		name    string
		def     func() Definition
		wantErr any
	}{
		{
			name:    "unknown tier",
			def:     func() Definition { d := testDef("x", valid); d.Tier = "obsidian"; return d },
			wantErr: &UnknownTierError{},
		},
		{
			name:    "unknown type",
			def:     func() Definition { return testDef("x", Requirement{Type: "telepathy", Threshold: 1}) },
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name: "condition from another type",
			def: func() Definition {
				return testDef("x", Requirement{Type: RequirementCount, Threshold: 1, Condition: ConditionNightHours})
			},
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name: "typo in condition",
			def: func() Definition {
				return testDef("x", Requirement{Type: RequirementTimePattern, Threshold: 1, Condition: "nite_hours"})
			},
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name:    "mood change needs a condition",
			def:     func() Definition { return testDef("x", Requirement{Type: RequirementMoodChange, Threshold: 1}) },
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name:    "zero threshold",
			def:     func() Definition { return testDef("x", Requirement{Type: RequirementCount}) },
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name:    "NaN threshold",
			def:     func() Definition { return testDef("x", Requirement{Type: RequirementCount, Threshold: math.NaN()}) },
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name:    "negative window",
			def:     func() Definition { return testDef("x", Requirement{Type: RequirementCount, Threshold: 1, Window: -1}) },
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name: "month over month without window",
			def: func() Definition {
				return testDef("x", Requirement{Type: RequirementMoodChange, Threshold: 10, Condition: ConditionMonthOverMonthImprovement})
			},
			wantErr: &InvalidRequirementConfigError{},
		},
		{
			name:    "no requirements",
			def:     func() Definition { return testDef("x") },
			wantErr: &CatalogError{},
		},
		{
			name:    "unknown icon",
			def:     func() Definition { d := testDef("x", valid); d.Icon = "unicorn"; return d },
			wantErr: &CatalogError{},
		},
		{
			name:    "unknown category",
			def:     func() Definition { d := testDef("x", valid); d.Category = "misc"; return d },
			wantErr: &CatalogError{},
		},
		{
			name:    "rarity out of range",
			def:     func() Definition { d := testDef("x", valid); d.Rarity = 101; return d },
			wantErr: &CatalogError{},
		},
		{
			name:    "missing id",
			def:     func() Definition { return testDef("", valid) },
			wantErr: &CatalogError{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog([]Definition{tc.def()})
			require.Error(t, err)
			switch tc.wantErr.(type) {
			case *UnknownTierError:
				var target *UnknownTierError
				assert.True(t, errors.As(err, &target), err)
			case *InvalidRequirementConfigError:
				var target *InvalidRequirementConfigError
				assert.True(t, errors.As(err, &target), err)
			case *CatalogError:
				var target *CatalogError
				assert.True(t, errors.As(err, &target), err)
			}
		})
	}
}

func TestNewCatalog_RejectsDuplicateIDs(t *testing.T) {
	req := Requirement{Type: RequirementCount, Threshold: 1}
	_, err := NewCatalog([]Definition{testDef("dup", req), testDef("dup", req)})

	var catErr *CatalogError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, "dup", catErr.BadgeID)
}
