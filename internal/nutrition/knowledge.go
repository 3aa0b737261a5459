package nutrition

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// KnowledgeBase is the read-only meal catalog, indexed by slot. The snack
// pool serves both the mid-morning and the evening slot.
type KnowledgeBase struct {
	breakfast []KBMeal
	lunch     []KBMeal
	dinner    []KBMeal
	snacks    []KBMeal
}

type catalogFile struct {
	Breakfast []KBMeal `yaml:"breakfast"`
	Lunch     []KBMeal `yaml:"lunch"`
	Dinner    []KBMeal `yaml:"dinner"`
	Snacks    []KBMeal `yaml:"snacks"`
}

// LoadKnowledgeBase parses a YAML catalog
func LoadKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse meal catalog: %w", err)
	}

	pools := map[string][]KBMeal{
		"breakfast": f.Breakfast,
		"lunch":     f.Lunch,
		"dinner":    f.Dinner,
		"snacks":    f.Snacks,
	}
	for section, meals := range pools {
		if len(meals) == 0 {
			return nil, fmt.Errorf("meal catalog section %q is empty", section)
		}
		for i, m := range meals {
			if strings.TrimSpace(m.Name) == "" {
				return nil, fmt.Errorf("meal catalog section %q: entry %d has no name", section, i)
			}
			if m.Calories < 0 || m.ProteinG < 0 || m.CarbsG < 0 || m.FatG < 0 {
				return nil, fmt.Errorf("meal catalog section %q: %s has negative values", section, m.Name)
			}
		}
	}

	return &KnowledgeBase{
		breakfast: f.Breakfast,
		lunch:     f.Lunch,
		dinner:    f.Dinner,
		snacks:    f.Snacks,
	}, nil
}

var defaultKB = sync.OnceValue(func() *KnowledgeBase {
	kb, err := LoadKnowledgeBase(catalogYAML)
	if err != nil {
		panic(err)
	}
	return kb
})

// DefaultKnowledgeBase returns the embedded catalog, parsed on first use
func DefaultKnowledgeBase() *KnowledgeBase {
	return defaultKB()
}

// Pool returns a copy of the catalog pool serving slot
func (kb *KnowledgeBase) Pool(slot Slot) []KBMeal {
	var src []KBMeal
	switch slot {
	case SlotBreakfast:
		src = kb.breakfast
	case SlotLunch:
		src = kb.lunch
	case SlotDinner:
		src = kb.dinner
	case SlotMidMorning, SlotEvening:
		src = kb.snacks
	}
	out := make([]KBMeal, len(src))
	copy(out, src)
	return out
}

// Size returns the number of catalog entries
func (kb *KnowledgeBase) Size() int {
	return len(kb.breakfast) + len(kb.lunch) + len(kb.dinner) + len(kb.snacks)
}

// Diet is the catalog restriction a free-text diet type maps to
type Diet string

const (
	DietAny   Diet = ""
	DietVeg   Diet = "veg"
	DietVegan Diet = "vegan"
	DietKeto  Diet = "keto"
)

// ClassifyDiet maps a free-text diet type onto a restriction. Spaces, "-" and
// "_" are ignored, so "non veg", "non-veg" and "nonveg" all read as
// non-vegetarian, which restricts nothing.
func ClassifyDiet(dietType string) Diet {
	d := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(dietType))

	switch {
	case strings.Contains(d, "vegan"):
		return DietVegan
	case strings.Contains(d, "nonveg"):
		return DietAny
	case strings.Contains(d, "veg"):
		return DietVeg
	case strings.Contains(d, "keto"):
		return DietKeto
	}
	return DietAny
}

// FilterByDiet keeps only meals positively matching the diet type. "veg"
// (but not "non veg"), "vegan" and "keto" restrict the pool; anything else,
// including "non veg", returns it unfiltered.
func FilterByDiet(meals []KBMeal, dietType string) []KBMeal {
	var tag Tag
	switch ClassifyDiet(dietType) {
	case DietVegan:
		tag = TagVegan
	case DietVeg:
		tag = TagVeg
	case DietKeto:
		tag = TagKeto
	default:
		return meals
	}

	out := make([]KBMeal, 0, len(meals))
	for _, m := range meals {
		if m.HasTag(tag) {
			out = append(out, m)
		}
	}
	return out
}

// FilterByAllergies drops meals whose name contains any comma-separated
// allergy term, case-insensitively. Only the displayed name is checked.
func FilterByAllergies(meals []KBMeal, allergyText string) []KBMeal {
	terms := ParseAllergies(allergyText)
	if len(terms) == 0 {
		return meals
	}

	out := make([]KBMeal, 0, len(meals))
	for _, m := range meals {
		name := strings.ToLower(m.Name)
		blocked := false
		for _, term := range terms {
			if strings.Contains(name, term) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, m)
		}
	}
	return out
}

// ParseAllergies splits free-text allergies into lowercase terms
func ParseAllergies(allergyText string) []string {
	var terms []string
	for _, part := range strings.Split(allergyText, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term == "" || term == "none" || term == "no" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
