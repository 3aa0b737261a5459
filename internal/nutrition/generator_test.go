package nutrition

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKnowledgeBase(t *testing.T) {
	kb := DefaultKnowledgeBase()
	require.NotNil(t, kb)
	assert.Same(t, kb, DefaultKnowledgeBase())

	for _, s := range Slots {
		assert.NotEmpty(t, kb.Pool(s), s)
	}
	assert.Equal(t, kb.Pool(SlotMidMorning), kb.Pool(SlotEvening))
	// the snack pool is shared, so it is counted once
	assert.Equal(t, kb.Size(), len(kb.Pool(SlotBreakfast))+len(kb.Pool(SlotMidMorning))+len(kb.Pool(SlotLunch))+len(kb.Pool(SlotDinner)))

	t.Run("should hand out copies", func(t *testing.T) {
		pool := kb.Pool(SlotBreakfast)
		name := pool[0].Name
		pool[0].Name = "mutated"
		assert.Equal(t, name, kb.Pool(SlotBreakfast)[0].Name)
	})
}

func TestLoadKnowledgeBaseRejectsBadCatalogs(t *testing.T) {
	_, err := LoadKnowledgeBase([]byte("breakfast: [\n"))
	assert.Error(t, err)

	_, err = LoadKnowledgeBase([]byte(`
breakfast: [{name: a, calories: 1}]
lunch: [{name: b, calories: 1}]
dinner: [{name: c, calories: 1}]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snacks")

	_, err = LoadKnowledgeBase([]byte(`
breakfast: [{name: a, calories: -1}]
lunch: [{name: b, calories: 1}]
dinner: [{name: c, calories: 1}]
snacks: [{name: d, calories: 1}]
`))
	assert.Error(t, err)
}

func TestFilterByDiet(t *testing.T) {
	pool := DefaultKnowledgeBase().Pool(SlotLunch)

	t.Run("should keep only tagged meals for restrictive diets", func(t *testing.T) {
		for diet, tag := range map[string]Tag{
			"vegan":      TagVegan,
			"Vegan":      TagVegan,
			"veg":        TagVeg,
			"vegetarian": TagVeg,
			"keto":       TagKeto,
		} {
			got := FilterByDiet(pool, diet)
			require.NotEmpty(t, got, diet)
			assert.Less(t, len(got), len(pool), diet)
			for _, m := range got {
				assert.True(t, m.HasTag(tag), "%s: %s", diet, m.Name)
			}
		}
	})

	t.Run("should return the pool unfiltered otherwise", func(t *testing.T) {
		for _, diet := range []string{"", "no preference", "non veg", "non-veg", "non_veg", "nonveg", "Nonveg", "Non Vegetarian", "paleo"} {
			assert.Len(t, FilterByDiet(pool, diet), len(pool), diet)
		}
	})
}

func TestClassifyDiet(t *testing.T) {
	for diet, want := range map[string]Diet{
		"":               DietAny,
		"No preference":  DietAny,
		"nonveg":         DietAny,
		"NonVeg":         DietAny,
		"non-vegetarian": DietAny,
		"Vegetarian":     DietVeg,
		"veg":            DietVeg,
		"vegan":          DietVegan,
		"Keto diet":      DietKeto,
	} {
		assert.Equal(t, want, ClassifyDiet(diet), diet)
	}
}

func TestFilterByAllergies(t *testing.T) {
	pool := []KBMeal{
		{Name: "Paneer Tikka"},
		{Name: "Boiled Eggs"},
		{Name: "Veggie Skillet"},
		{Name: "Fruit Bowl"},
	}

	got := FilterByAllergies(pool, "PANEER, egg")
	require.Len(t, got, 1)
	assert.Equal(t, "Fruit Bowl", got[0].Name)

	assert.Len(t, FilterByAllergies(pool, ""), 4)
	assert.Len(t, FilterByAllergies(pool, " , none"), 4)
	assert.Equal(t, []string{"peanut", "shellfish"}, ParseAllergies(" Peanut ,, Shellfish "))
}

func TestBiasForGoal(t *testing.T) {
	pool := []KBMeal{
		{Name: "a", Tags: []Tag{TagHighProtein}},
		{Name: "b", Tags: []Tag{TagLowCarb, TagKeto}},
		{Name: "c", Tags: []Tag{TagVeg}},
	}

	assert.Len(t, BiasForGoal(pool, GoalMaintain), 3)
	assert.Len(t, BiasForGoal(pool, GoalGain), 4)
	assert.Len(t, BiasForGoal(pool, GoalKeto), 4)
	assert.Len(t, BiasForGoal(pool, GoalLose), 5)
}

func TestPickMeal(t *testing.T) {
	pool := []KBMeal{
		{Name: "far", Calories: 900},
		{Name: "a", Calories: 490},
		{Name: "b", Calories: 510},
		{Name: "c", Calories: 520},
		{Name: "d", Calories: 300},
	}

	t.Run("should pick among the three closest", func(t *testing.T) {
		rng := NewRand(1)
		for i := 0; i < 200; i++ {
			m, ok := PickMeal(pool, 500, NameSet{}, rng)
			require.True(t, ok)
			assert.Contains(t, []string{"a", "b", "c"}, m.Name)
		}
	})

	t.Run("should skip used names", func(t *testing.T) {
		rng := NewRand(2)
		used := NameSet{"a": {}, "b": {}}
		for i := 0; i < 100; i++ {
			m, _ := PickMeal(pool, 500, used, rng)
			assert.Contains(t, []string{"c", "d", "far"}, m.Name)
		}
	})

	t.Run("should fall back to the whole pool when everything is used", func(t *testing.T) {
		used := NameSet{}
		for _, m := range pool {
			used.Add(m.Name)
		}
		m, ok := PickMeal(pool, 500, used, NewRand(3))
		assert.True(t, ok)
		assert.Contains(t, []string{"a", "b", "c"}, m.Name)
	})

	t.Run("should report an empty pool", func(t *testing.T) {
		_, ok := PickMeal(nil, 500, NameSet{}, NewRand(4))
		assert.False(t, ok)
	})

	t.Run("should be deterministic for a seed", func(t *testing.T) {
		r1, r2 := NewRand(42), NewRand(42)
		for i := 0; i < 20; i++ {
			m1, _ := PickMeal(pool, 500, NameSet{}, r1)
			m2, _ := PickMeal(pool, 500, NameSet{}, r2)
			assert.Equal(t, m1.Name, m2.Name)
		}
	})
}

func assertPlanShape(t *testing.T, plan DietPlanData) {
	t.Helper()
	assert.Equal(t, PlanType, plan.Type)
	require.Len(t, plan.Days, 7)
	for i, day := range plan.Days {
		assert.Equal(t, DayLabels[i], day.Day)
		require.Len(t, day.Meals, 5, day.Day)
		seen := map[string]bool{}
		for j, meal := range day.Meals {
			assert.Equal(t, Slots[j], meal.Slot)
			assert.Equal(t, Slots[j].DisplayTime(), meal.Time)
			assert.False(t, seen[meal.Name], "%s repeats %s", day.Day, meal.Name)
			seen[meal.Name] = true
			assert.GreaterOrEqual(t, int(meal.ProteinG), 0)
			assert.GreaterOrEqual(t, int(meal.CarbsG), 0)
			assert.GreaterOrEqual(t, int(meal.FatG), 0)
		}
	}
}

func TestGenerate(t *testing.T) {
	kb := DefaultKnowledgeBase()

	t.Run("should build seven full days for many seeds", func(t *testing.T) {
		profiles := []DietProfile{
			{},
			fullProfile("lose weight"),
			fullProfile("gain muscle"),
			fullProfile("keto"),
			{DietType: "vegan", Goal: "gain"},
			{DietType: "keto", Allergies: "paneer"},
			{DietType: "veg", Allergies: "paneer, egg"},
		}
		for seed := uint64(0); seed < 25; seed++ {
			for _, p := range profiles {
				plan := Generate(kb, p, NewRand(seed))
				assertPlanShape(t, plan)
				assert.False(t, plan.IsPartial)
			}
		}
	})

	t.Run("should only use vegan meals for vegan diets", func(t *testing.T) {
		for seed := uint64(0); seed < 20; seed++ {
			plan := Generate(kb, DietProfile{DietType: "vegan"}, NewRand(seed))
			for _, day := range plan.Days {
				for _, meal := range day.Meals {
					assert.Contains(t, meal.Tags, TagVegan, meal.Name)
				}
			}
		}
	})

	t.Run("should avoid allergens by name", func(t *testing.T) {
		for seed := uint64(0); seed < 20; seed++ {
			plan := Generate(kb, DietProfile{Allergies: "paneer, egg"}, NewRand(seed))
			for _, day := range plan.Days {
				for _, meal := range day.Meals {
					name := strings.ToLower(meal.Name)
					assert.NotContains(t, name, "paneer")
					assert.NotContains(t, name, "egg")
				}
			}
		}
	})

	t.Run("should carry targets and personalization", func(t *testing.T) {
		p := fullProfile("lose weight")
		plan := Generate(kb, p, NewRand(7))
		targets := CalculateTargets(p)
		assert.True(t, plan.IsPersonalized)
		assert.Equal(t, Amount(targets.DailyCalories), plan.DailyCalories)
		require.NotNil(t, plan.DailyProteinG)
		assert.Equal(t, Amount(targets.ProteinG), *plan.DailyProteinG)

		p.Age = nil
		assert.False(t, Generate(kb, p, NewRand(7)).IsPersonalized)
	})

	t.Run("should be reproducible for a seed", func(t *testing.T) {
		p := DietProfile{Goal: "gain muscle", DietType: "veg"}
		a := Generate(kb, p, NewRand(99))
		b := Generate(kb, p, NewRand(99))
		assert.Equal(t, a, b)
	})

	t.Run("should spread variety across the week", func(t *testing.T) {
		plan := Generate(kb, DietProfile{}, NewRand(5))
		lunches := map[string]bool{}
		for _, day := range plan.Days {
			lunches[day.Meals[2].Name] = true
		}
		assert.Len(t, lunches, 7)
	})

	t.Run("should omit exhausted slots and flag the plan", func(t *testing.T) {
		small, err := LoadKnowledgeBase([]byte(`
breakfast: [{name: Toast, calories: 300, tags: [veg]}]
lunch: [{name: Rice, calories: 500, tags: [veg]}]
dinner: [{name: Chicken, calories: 500, tags: [non_veg]}]
snacks: [{name: Apple, calories: 100, tags: [veg]}, {name: Pear, calories: 120, tags: [veg]}]
`))
		require.NoError(t, err)

		plan := Generate(small, DietProfile{DietType: "veg"}, NewRand(1))
		assert.True(t, plan.IsPartial)
		require.Len(t, plan.Days, 7)
		for _, day := range plan.Days {
			require.Len(t, day.Meals, 4)
			assert.Equal(t, "Toast", day.Meals[0].Name)
			assert.NotEqual(t, day.Meals[1].Name, day.Meals[3].Name)
		}
	})
}

func TestGeneratorConcurrentUse(t *testing.T) {
	g := NewGenerator(nil)
	done := make(chan DietPlanData, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- g.Generate(DietProfile{Goal: "lose weight"}) }()
	}
	for i := 0; i < 8; i++ {
		assertPlanShape(t, <-done)
	}
}

func TestDietPlanDataJSON(t *testing.T) {
	plan := NewGenerator(nil).GenerateSeeded(DietProfile{}, 3)
	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"DIET_PLAN"`)
	assert.NotContains(t, string(data), "is_partial")

	t.Run("should decode tolerant amounts", func(t *testing.T) {
		var got DietPlanData
		err := json.Unmarshal([]byte(`{"type":"DIET_PLAN","daily_calories":"1850 kcal","daily_protein_g":120.6,
			"days":[{"day":"Monday","meals":[{"time":"8 AM","name":"Oats","calories":310.4,"protein_g":"12g","carbs_g":null,"fat_g":-3}]}]}`), &got)
		require.NoError(t, err)
		got.Normalize()
		assert.Equal(t, Amount(1850), got.DailyCalories)
		assert.Equal(t, Amount(121), *got.DailyProteinG)
		meal := got.Days[0].Meals[0]
		assert.Equal(t, Amount(310), meal.Calories)
		assert.Equal(t, Amount(12), meal.ProteinG)
		assert.Equal(t, Amount(0), meal.CarbsG)
		assert.Equal(t, Amount(0), meal.FatG)
	})

	t.Run("should normalize empty documents", func(t *testing.T) {
		var got DietPlanData
		got.Normalize()
		assert.Equal(t, PlanType, got.Type)
		assert.NotNil(t, got.Days)
	})
}
