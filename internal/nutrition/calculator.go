package nutrition

import (
	"math"
	"strings"
)

const (
	// DefaultDailyCalories is used when weight, height or age is missing
	DefaultDailyCalories = 2000

	activityMultiplier = 1.55
	loseAdjustment     = -500
	gainAdjustment     = 400

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Goal is the coarse goal class derived from free-text goal input
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalGain     Goal = "gain"
	GoalKeto     Goal = "keto"
	GoalMaintain Goal = "maintain"
)

// ClassifyGoal matches free-text goals by case-insensitive substring.
// "lose" wins over "gain"/"muscle", which wins over "keto".
func ClassifyGoal(goal string) Goal {
	g := strings.ToLower(goal)
	switch {
	case strings.Contains(g, "lose"):
		return GoalLose
	case strings.Contains(g, "gain"), strings.Contains(g, "muscle"):
		return GoalGain
	case strings.Contains(g, "keto"):
		return GoalKeto
	default:
		return GoalMaintain
	}
}

// MacroSplit is a protein/carb/fat share of daily calories
type MacroSplit struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

var macroSplits = map[Goal]MacroSplit{
	GoalLose:     {Protein: 0.35, Carbs: 0.35, Fat: 0.30},
	GoalGain:     {Protein: 0.35, Carbs: 0.45, Fat: 0.20},
	GoalKeto:     {Protein: 0.30, Carbs: 0.10, Fat: 0.60},
	GoalMaintain: {Protein: 0.30, Carbs: 0.40, Fat: 0.30},
}

// SplitFor returns the macro split used for goal
func SplitFor(goal Goal) MacroSplit {
	if s, ok := macroSplits[goal]; ok {
		return s
	}
	return macroSplits[GoalMaintain]
}

// MacroTargets is the daily calorie and macro target for a profile
type MacroTargets struct {
	Goal          Goal         `json:"goal"`
	Personalized  bool         `json:"is_personalized"`
	TDEE          int          `json:"tdee"`
	DailyCalories int          `json:"daily_calories"`
	ProteinG      int          `json:"protein_g"`
	CarbsG        int          `json:"carbs_g"`
	FatG          int          `json:"fat_g"`
	SlotCalories  map[Slot]int `json:"slot_calories"`
}

// SlotTarget returns the calorie target of slot as a float for distance math
func (t MacroTargets) SlotTarget(s Slot) float64 {
	return float64(t.DailyCalories) * s.CalorieShare()
}

// BMR is the Mifflin-St Jeor basal metabolic rate
func BMR(weightKg, heightCm float64, age int) float64 {
	return 10*weightKg + 6.25*heightCm - 5*float64(age) + 5
}

// TDEE is the BMR under a fixed moderate activity multiplier
func TDEE(weightKg, heightCm float64, age int) float64 {
	return BMR(weightKg, heightCm, age) * activityMultiplier
}

// CalculateTargets derives daily calories and macro grams from a profile.
// A profile without full body metrics gets DefaultDailyCalories with no goal
// adjustment; the macro split still follows the goal.
func CalculateTargets(p DietProfile) MacroTargets {
	goal := ClassifyGoal(p.Goal)
	t := MacroTargets{Goal: goal, Personalized: p.HasBodyMetrics()}

	if t.Personalized {
		tdee := TDEE(*p.WeightKg, *p.HeightCm, *p.Age)
		t.TDEE = nonNegative(math.Round(tdee))
		daily := tdee
		switch goal {
		case GoalLose:
			daily += loseAdjustment
		case GoalGain:
			daily += gainAdjustment
		}
		t.DailyCalories = nonNegative(math.Round(daily))
	} else {
		t.TDEE = DefaultDailyCalories
		t.DailyCalories = DefaultDailyCalories
	}

	split := SplitFor(goal)
	cal := float64(t.DailyCalories)
	t.ProteinG = nonNegative(math.Round(cal * split.Protein / kcalPerGramProtein))
	t.CarbsG = nonNegative(math.Round(cal * split.Carbs / kcalPerGramCarbs))
	t.FatG = nonNegative(math.Round(cal * split.Fat / kcalPerGramFat))

	t.SlotCalories = make(map[Slot]int, len(Slots))
	for _, s := range Slots {
		t.SlotCalories[s] = nonNegative(math.Round(t.SlotTarget(s)))
	}
	return t
}

func nonNegative(v float64) int {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}
