package badge

import (
	"fmt"
	"sort"
	"sync"
)

// Category groups badges for listing.
type Category string

const (
	CategoryJourney    Category = "journey"
	CategoryResilience Category = "resilience"
	CategoryInsight    Category = "insight"
	CategoryConnection Category = "connection"
	CategoryHidden     Category = "hidden"
)

var knownCategories = map[Category]bool{
	CategoryJourney:    true,
	CategoryResilience: true,
	CategoryInsight:    true,
	CategoryConnection: true,
	CategoryHidden:     true,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, knownCategories[c]
}

// Icon names the artwork shown on the badge.
type Icon string

const (
	IconSparkles   Icon = "sparkles"
	IconFlame      Icon = "flame"
	IconFeather    Icon = "feather"
	IconMicrophone Icon = "microphone"
	IconBook       Icon = "book"
	IconMountain   Icon = "mountain"
	IconSunrise    Icon = "sunrise"
	IconMoon       Icon = "moon"
	IconCompass    Icon = "compass"
	IconPrism      Icon = "prism"
	IconLotus      Icon = "lotus"
	IconKey        Icon = "key"
	IconShield     Icon = "shield"
	IconHeart      Icon = "heart"
	IconPhoenix    Icon = "phoenix"
	IconGem        Icon = "gem"
)

var knownIcons = map[Icon]bool{
	IconSparkles: true, IconFlame: true, IconFeather: true, IconMicrophone: true,
	IconBook: true, IconMountain: true, IconSunrise: true, IconMoon: true,
	IconCompass: true, IconPrism: true, IconLotus: true, IconKey: true,
	IconShield: true, IconHeart: true, IconPhoenix: true, IconGem: true,
}

// Definition is a static badge description.
type Definition struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Category     Category      `json:"category"`
	Tier         Tier          `json:"tier"`
	Description  string        `json:"description"`
	Insight      string        `json:"insight"`
	Icon         Icon          `json:"icon"`
	Requirements []Requirement `json:"requirements"`
	Rarity       int           `json:"rarity"`
	Hidden       bool          `json:"hidden"`
	Order        int           `json:"order"`
}

func (d Definition) clone() Definition {
	d.Requirements = append([]Requirement(nil), d.Requirements...)
	return d
}

type compiledBadge struct {
	def   Definition
	rules []evaluatorFunc
}

// Catalog is the validated, read-only set of badge definitions.
type Catalog struct {
	badges []compiledBadge
	byID   map[string]int
}

// NewCatalog validates defs and compiles every requirement. Any configuration error is returned
// before the catalog can be used.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, &CatalogError{Reason: "missing id"}
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, &CatalogError{BadgeID: d.ID, Reason: "duplicate id"}
		}
		if !knownCategories[d.Category] {
			return nil, &CatalogError{BadgeID: d.ID, Reason: fmt.Sprintf("unknown category %q", d.Category)}
		}
		if _, ok := tierConfigs[d.Tier]; !ok {
			return nil, &UnknownTierError{Tier: d.Tier, BadgeID: d.ID}
		}
		if !knownIcons[d.Icon] {
			return nil, &CatalogError{BadgeID: d.ID, Reason: fmt.Sprintf("unknown icon %q", d.Icon)}
		}
		if d.Rarity < 0 || d.Rarity > 100 {
			return nil, &CatalogError{BadgeID: d.ID, Reason: "rarity must be within 0-100"}
		}
		if len(d.Requirements) == 0 {
			return nil, &CatalogError{BadgeID: d.ID, Reason: "at least one requirement is needed"}
		}

		cb := compiledBadge{def: d.clone()}
		for _, req := range d.Requirements {
			fn, err := compile(d.ID, req)
			if err != nil {
				return nil, err
			}
			cb.rules = append(cb.rules, fn)
		}
		c.byID[d.ID] = len(c.badges)
		c.badges = append(c.badges, cb)
	}

	sort.SliceStable(c.badges, func(i, j int) bool {
		a, b := c.badges[i].def, c.badges[j].def
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	for i, b := range c.badges {
		c.byID[b.def.ID] = i
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the shipped catalog, built on first use.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = NewCatalog(definitions())
	})
	return defaultCatalog, defaultErr
}

// Len returns the number of badges.
func (c *Catalog) Len() int { return len(c.badges) }

// All lists every badge ordered by Order, then ID.
func (c *Catalog) All() []Definition {
	return c.filter(func(Definition) bool { return true })
}

// Badge returns a single definition.
func (c *Catalog) Badge(id string) (Definition, error) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, &BadgeNotFoundError{ID: id}
	}
	return c.badges[i].def.clone(), nil
}

// ByCategory lists the badges of one category in catalog order.
func (c *Catalog) ByCategory(category Category) []Definition {
	return c.filter(func(d Definition) bool { return d.Category == category })
}

// Visible lists the badges that are not hidden.
func (c *Catalog) Visible() []Definition {
	return c.filter(func(d Definition) bool { return !d.Hidden })
}

func (c *Catalog) filter(keep func(Definition) bool) []Definition {
	out := make([]Definition, 0, len(c.badges))
	for _, b := range c.badges {
		if keep(b.def) {
			out = append(out, b.def.clone())
		}
	}
	return out
}
