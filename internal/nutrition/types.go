package nutrition

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PlanType is the discriminator carried by every DietPlanData document
const PlanType = "DIET_PLAN"

// Tag is a diet-compatibility tag on a catalog meal
type Tag string

const (
	TagVeg         Tag = "veg"
	TagVegan       Tag = "vegan"
	TagNonVeg      Tag = "non_veg"
	TagKeto        Tag = "keto"
	TagHighProtein Tag = "high_protein"
	TagLowCarb     Tag = "low_carb"
)

// Slot is one of the five fixed meal times of a day
type Slot string

const (
	SlotBreakfast  Slot = "breakfast"
	SlotMidMorning Slot = "mid_morning"
	SlotLunch      Slot = "lunch"
	SlotEvening    Slot = "evening"
	SlotDinner     Slot = "dinner"
)

// Slots lists the slots of a day in serving order
var Slots = []Slot{SlotBreakfast, SlotMidMorning, SlotLunch, SlotEvening, SlotDinner}

// Label returns the display name of the slot
func (s Slot) Label() string {
	switch s {
	case SlotBreakfast:
		return "Breakfast"
	case SlotMidMorning:
		return "Mid-Morning Snack"
	case SlotLunch:
		return "Lunch"
	case SlotEvening:
		return "Evening Snack"
	case SlotDinner:
		return "Dinner"
	}
	return string(s)
}

// DisplayTime returns the canonical serving time of the slot
func (s Slot) DisplayTime() string {
	switch s {
	case SlotBreakfast:
		return "8:00 AM"
	case SlotMidMorning:
		return "11:00 AM"
	case SlotLunch:
		return "1:00 PM"
	case SlotEvening:
		return "5:00 PM"
	case SlotDinner:
		return "8:00 PM"
	}
	return ""
}

// CalorieShare is the fraction of the daily target assigned to the slot
func (s Slot) CalorieShare() float64 {
	switch s {
	case SlotBreakfast, SlotDinner:
		return 0.25
	case SlotMidMorning, SlotEvening:
		return 0.10
	case SlotLunch:
		return 0.30
	}
	return 0
}

// DayLabels are the seven day names of a plan, in order
var DayLabels = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DietProfile is the per-call input to the calculator and generator.
// Numeric fields that are nil or not positive count as missing.
type DietProfile struct {
	WeightKg  *float64 `json:"weight_kg,omitempty"`
	HeightCm  *float64 `json:"height_cm,omitempty"`
	Age       *int     `json:"age,omitempty"`
	Goal      string   `json:"goal,omitempty"`
	DietType  string   `json:"diet_type,omitempty"`
	Allergies string   `json:"allergies,omitempty"`
}

// HasBodyMetrics reports whether weight, height and age are all present
func (p DietProfile) HasBodyMetrics() bool {
	return p.WeightKg != nil && *p.WeightKg > 0 &&
		p.HeightCm != nil && *p.HeightCm > 0 &&
		p.Age != nil && *p.Age > 0
}

// KBMeal is an immutable catalog entry
type KBMeal struct {
	Name     string `yaml:"name" json:"name"`
	Emoji    string `yaml:"emoji" json:"emoji"`
	Calories int    `yaml:"calories" json:"calories"`
	ProteinG int    `yaml:"protein_g" json:"protein_g"`
	CarbsG   int    `yaml:"carbs_g" json:"carbs_g"`
	FatG     int    `yaml:"fat_g" json:"fat_g"`
	Portion  string `yaml:"portion" json:"portion"`
	Tags     []Tag  `yaml:"tags" json:"tags"`
}

// HasTag reports whether the meal carries tag
func (m KBMeal) HasTag(tag Tag) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Amount is a non-negative whole number of grams or kilocalories. It decodes
// from JSON integers, floats (rounded) and numeric strings such as "25g".
type Amount int

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*a = Amount(math.Round(num))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(strings.ToLower(str))
		str = strings.TrimSuffix(str, "kcal")
		str = strings.TrimSuffix(str, "g")
		str = strings.TrimSpace(str)
		if str == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", str)
		}
		*a = Amount(math.Round(f))
		return nil
	}

	return fmt.Errorf("invalid amount format")
}

// DietMeal is a catalog meal placed into a slot of a day
type DietMeal struct {
	Slot     Slot   `json:"slot,omitempty"`
	Label    string `json:"label,omitempty"`
	Time     string `json:"time"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji,omitempty"`
	Calories Amount `json:"calories"`
	ProteinG Amount `json:"protein_g"`
	CarbsG   Amount `json:"carbs_g"`
	FatG     Amount `json:"fat_g"`
	Portion  string `json:"portion,omitempty"`
	Tags     []Tag  `json:"tags,omitempty"`
}

// DietDay is one labelled day of a plan
type DietDay struct {
	Day   string     `json:"day"`
	Meals []DietMeal `json:"meals"`
}

// DietPlanData is the structured plan shared by the generator and the parser
type DietPlanData struct {
	Type           string    `json:"type"`
	IsPersonalized bool      `json:"is_personalized"`
	IsPartial      bool      `json:"is_partial,omitempty"`
	DailyCalories  Amount    `json:"daily_calories"`
	DailyProteinG  *Amount   `json:"daily_protein_g,omitempty"`
	DailyCarbsG    *Amount   `json:"daily_carbs_g,omitempty"`
	DailyFatG      *Amount   `json:"daily_fat_g,omitempty"`
	Days           []DietDay `json:"days"`
}

// Normalize forces the discriminator, replaces nil slices with empty ones and
// clamps negative amounts to zero.
func (d *DietPlanData) Normalize() {
	d.Type = PlanType
	d.DailyCalories = clampAmount(d.DailyCalories)
	for _, p := range []*Amount{d.DailyProteinG, d.DailyCarbsG, d.DailyFatG} {
		if p != nil {
			*p = clampAmount(*p)
		}
	}
	if d.Days == nil {
		d.Days = []DietDay{}
	}
	for i := range d.Days {
		if d.Days[i].Meals == nil {
			d.Days[i].Meals = []DietMeal{}
		}
		for j := range d.Days[i].Meals {
			m := &d.Days[i].Meals[j]
			m.Calories = clampAmount(m.Calories)
			m.ProteinG = clampAmount(m.ProteinG)
			m.CarbsG = clampAmount(m.CarbsG)
			m.FatG = clampAmount(m.FatG)
		}
	}
}

func clampAmount(a Amount) Amount {
	if a < 0 {
		return 0
	}
	return a
}

func amountPtr(v int) *Amount {
	a := Amount(v)
	return &a
}
