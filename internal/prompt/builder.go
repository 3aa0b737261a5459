// Package prompt assembles the instructions sent to the language model so
// that any plan it writes inline agrees with the engine's own targets.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nutricoach/backend/internal/chatparse"
	"github.com/nutricoach/backend/internal/nutrition"
)

// Role values of chat messages
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildSystemPrompt writes the coach instructions for a profile and its
// computed targets
func BuildSystemPrompt(p nutrition.DietProfile, t nutrition.MacroTargets) string {
	var b strings.Builder

	b.WriteString("You are NutriCoach, a friendly and practical nutrition coach. Keep replies short, warm and specific.\n\n")

	b.WriteString("USER PROFILE:\n")
	if p.WeightKg != nil && *p.WeightKg > 0 {
		fmt.Fprintf(&b, "- Weight: %g kg\n", *p.WeightKg)
	}
	if p.HeightCm != nil && *p.HeightCm > 0 {
		fmt.Fprintf(&b, "- Height: %g cm\n", *p.HeightCm)
	}
	if p.Age != nil && *p.Age > 0 {
		fmt.Fprintf(&b, "- Age: %d years\n", *p.Age)
	}
	fmt.Fprintf(&b, "- Goal: %s\n", orDefault(p.Goal, "general health"))
	fmt.Fprintf(&b, "- Diet type: %s\n", orDefault(p.DietType, "no preference"))
	fmt.Fprintf(&b, "- Allergies: %s\n", orDefault(p.Allergies, "none"))
	if !t.Personalized {
		b.WriteString("- Weight, height or age is missing, so targets use a 2000 kcal baseline. Invite the user to share them for a personalized plan.\n")
	}
	b.WriteString("\n")

	b.WriteString("DAILY TARGETS (use these exact numbers):\n")
	fmt.Fprintf(&b, "- Calories: %d kcal\n", t.DailyCalories)
	fmt.Fprintf(&b, "- Protein: %d g\n", t.ProteinG)
	fmt.Fprintf(&b, "- Carbs: %d g\n", t.CarbsG)
	fmt.Fprintf(&b, "- Fat: %d g\n", t.FatG)
	b.WriteString("\nPER MEAL CALORIE TARGETS:\n")
	for _, s := range nutrition.Slots {
		fmt.Fprintf(&b, "- %s (%s): about %d kcal\n", s.Label(), s.DisplayTime(), t.SlotCalories[s])
	}
	b.WriteString("\n")

	b.WriteString("RULES:\n")
	if terms := nutrition.ParseAllergies(p.Allergies); len(terms) > 0 {
		fmt.Fprintf(&b, "- Never suggest food containing: %s.\n", strings.Join(terms, ", "))
	}
	if rule := dietRule(p.DietType); rule != "" {
		b.WriteString("- " + rule + "\n")
	}
	fmt.Fprintf(&b, "- Split your reply into short chat messages separated by %s.\n", chatparse.BubbleDelimiter)
	b.WriteString("- Only write a meal plan when the user asks for one.\n")
	fmt.Fprintf(&b, "- When you write a meal plan, put %s followed immediately by minified JSON on a single line with no line breaks, in its own message.\n", chatparse.Marker)
	b.WriteString("- The plan must cover Monday to Sunday with exactly 5 meals per day in this order: Breakfast, Mid-Morning Snack, Lunch, Evening Snack, Dinner. Never repeat a meal within a day.\n\n")

	b.WriteString("PLAN JSON FORMAT:\n")
	b.WriteString(chatparse.Marker)
	b.WriteString(exampleJSON(t))
	b.WriteString("\n")

	return b.String()
}

// BuildMessages orders the system prompt, prior turns and the new user
// message for a chat completion call
func BuildMessages(system string, history []Message, userMessage string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	for _, m := range history {
		if m.Role == RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		msgs = append(msgs, m)
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: userMessage})
	return msgs
}

func dietRule(dietType string) string {
	switch nutrition.ClassifyDiet(dietType) {
	case nutrition.DietVegan:
		return "Strictly vegan: no meat, fish, eggs, dairy or honey."
	case nutrition.DietVeg:
		return "Vegetarian: no meat, fish or eggs."
	case nutrition.DietKeto:
		return "Keto: keep net carbs very low and favour healthy fats."
	}
	return ""
}

// exampleJSON renders a one-day example plan carrying the real targets
func exampleJSON(t nutrition.MacroTargets) string {
	protein := nutrition.Amount(t.ProteinG)
	carbs := nutrition.Amount(t.CarbsG)
	fat := nutrition.Amount(t.FatG)
	example := nutrition.DietPlanData{
		Type:           nutrition.PlanType,
		IsPersonalized: t.Personalized,
		DailyCalories:  nutrition.Amount(t.DailyCalories),
		DailyProteinG:  &protein,
		DailyCarbsG:    &carbs,
		DailyFatG:      &fat,
		Days: []nutrition.DietDay{{
			Day: "Monday",
			Meals: []nutrition.DietMeal{{
				Time:     nutrition.SlotBreakfast.DisplayTime(),
				Name:     "Meal name",
				Emoji:    "🥣",
				Calories: nutrition.Amount(t.SlotCalories[nutrition.SlotBreakfast]),
				ProteinG: 0,
				CarbsG:   0,
				FatG:     0,
				Portion:  "portion size",
			}},
		}},
	}
	data, err := json.Marshal(example)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
