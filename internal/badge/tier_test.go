package badge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierConfigFor_KnownTiers(t *testing.T) {
	for _, tier := range []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond} {
		cfg, err := TierConfigFor(tier)
		require.NoError(t, err, tier)
		assert.Equal(t, tier, cfg.Name)
		assert.NotEmpty(t, cfg.Gradient.From)
		assert.NotEmpty(t, cfg.Gradient.To)
		assert.NotEmpty(t, cfg.TextColor)
		assert.NotEmpty(t, cfg.GlowColor)
		assert.NotEmpty(t, cfg.Metallic.Base)
	}
}

func TestTierConfigFor_Unknown(t *testing.T) {
	_, err := TierConfigFor("obsidian")

	var tierErr *UnknownTierError
	require.True(t, errors.As(err, &tierErr))
	assert.Equal(t, Tier("obsidian"), tierErr.Tier)
}

func TestTiers_RankOrder(t *testing.T) {
	tiers := Tiers()
	require.Len(t, tiers, 5)
	for i, cfg := range tiers {
		assert.Equal(t, i, cfg.Name.Rank())
	}
	assert.Equal(t, -1, Tier("wood").Rank())
}

func TestTiers_ReturnsCopies(t *testing.T) {
	tiers := Tiers()
	tiers[0].TextColor = "#000000"

	cfg, err := TierConfigFor(TierBronze)
	require.NoError(t, err)
	assert.NotEqual(t, "#000000", cfg.TextColor)
}
