package badge

// Tier is the cosmetic rank of a badge.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// Gradient describes the badge background.
type Gradient struct {
	From         string `json:"from"`
	Via          string `json:"via,omitempty"`
	To           string `json:"to"`
	AngleDegrees int    `json:"angle_degrees"`
}

// Metallic is the base/highlight/shadow triple used for the medal rim.
type Metallic struct {
	Base      string `json:"base"`
	Highlight string `json:"highlight"`
	Shadow    string `json:"shadow"`
}

// TierConfig is the presentational metadata of a tier.
type TierConfig struct {
	Name      Tier     `json:"name"`
	Gradient  Gradient `json:"gradient"`
	TextColor string   `json:"text_color"`
	GlowColor string   `json:"glow_color"`
	Metallic  Metallic `json:"metallic"`
}

var tierOrder = []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}

var tierConfigs = map[Tier]TierConfig{
	TierBronze: {
		Name:      TierBronze,
		Gradient:  Gradient{From: "#CD7F32", Via: "#E8A86B", To: "#8B5A2B", AngleDegrees: 135},
		TextColor: "#FFF7ED",
		GlowColor: "rgba(205, 127, 50, 0.45)",
		Metallic:  Metallic{Base: "#CD7F32", Highlight: "#F4C08A", Shadow: "#7A4A1F"},
	},
	TierSilver: {
		Name:      TierSilver,
		Gradient:  Gradient{From: "#C0C0C0", Via: "#E5E7EB", To: "#9CA3AF", AngleDegrees: 135},
		TextColor: "#1F2937",
		GlowColor: "rgba(192, 192, 192, 0.45)",
		Metallic:  Metallic{Base: "#C0C0C0", Highlight: "#F9FAFB", Shadow: "#6B7280"},
	},
	TierGold: {
		Name:      TierGold,
		Gradient:  Gradient{From: "#FFD700", Via: "#FDE68A", To: "#B8860B", AngleDegrees: 135},
		TextColor: "#422006",
		GlowColor: "rgba(255, 215, 0, 0.5)",
		Metallic:  Metallic{Base: "#FFD700", Highlight: "#FFF3B0", Shadow: "#8A6A00"},
	},
	TierPlatinum: {
		Name:      TierPlatinum,
		Gradient:  Gradient{From: "#E5E4E2", Via: "#CBD5E1", To: "#94A3B8", AngleDegrees: 150},
		TextColor: "#0F172A",
		GlowColor: "rgba(203, 213, 225, 0.55)",
		Metallic:  Metallic{Base: "#E5E4E2", Highlight: "#FFFFFF", Shadow: "#64748B"},
	},
	TierDiamond: {
		Name:      TierDiamond,
		Gradient:  Gradient{From: "#B9F2FF", Via: "#A5B4FC", To: "#F0ABFC", AngleDegrees: 160},
		TextColor: "#1E1B4B",
		GlowColor: "rgba(165, 180, 252, 0.6)",
		Metallic:  Metallic{Base: "#B9F2FF", Highlight: "#FFFFFF", Shadow: "#6366F1"},
	},
}

// TierConfigFor looks up the presentational config for a tier.
func TierConfigFor(name Tier) (TierConfig, error) {
	cfg, ok := tierConfigs[name]
	if !ok {
		return TierConfig{}, &UnknownTierError{Tier: name}
	}
	return cfg, nil
}

// Tiers returns every tier config in rank order, bronze first.
func Tiers() []TierConfig {
	out := make([]TierConfig, 0, len(tierOrder))
	for _, t := range tierOrder {
		out = append(out, tierConfigs[t])
	}
	return out
}

// Rank returns the zero-based rank of the tier, or -1 when unknown.
func (t Tier) Rank() int {
	for i, known := range tierOrder {
		if known == t {
			return i
		}
	}
	return -1
}
