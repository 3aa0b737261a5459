package nutrition

import (
	"math"
	"math/rand/v2"
	"sort"
)

// topK is how many calorie-closest candidates the picker chooses among
const topK = 3

// NameSet tracks meal names already placed in a plan
type NameSet map[string]struct{}

// Has reports whether name is in the set
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts name into the set
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

func (s NameSet) clone() NameSet {
	out := make(NameSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// PickMeal picks a meal for a slot. Candidates named in used are excluded
// unless that empties the pool, in which case the whole pool is considered.
// The remaining candidates are shuffled, ordered by distance from target
// calories, and one of the closest three is chosen at random.
func PickMeal(pool []KBMeal, target float64, used NameSet, rng *rand.Rand) (KBMeal, bool) {
	if len(pool) == 0 {
		return KBMeal{}, false
	}

	candidates := make([]KBMeal, 0, len(pool))
	for _, m := range pool {
		if !used.Has(m.Name) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, pool...)
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return math.Abs(float64(candidates[i].Calories)-target) < math.Abs(float64(candidates[j].Calories)-target)
	})

	k := topK
	if len(candidates) < k {
		k = len(candidates)
	}
	return candidates[rng.IntN(k)], true
}

// CandidatePool builds the selection pool of a slot for a profile: catalog
// pool, then diet filter, then allergy filter, then goal bias.
func CandidatePool(kb *KnowledgeBase, slot Slot, p DietProfile) []KBMeal {
	pool := kb.Pool(slot)
	pool = FilterByDiet(pool, p.DietType)
	pool = FilterByAllergies(pool, p.Allergies)
	return BiasForGoal(pool, ClassifyGoal(p.Goal))
}

// BiasForGoal duplicates entries carrying the goal's favoured tags so they
// are more likely to be picked. Nothing is removed.
func BiasForGoal(pool []KBMeal, goal Goal) []KBMeal {
	var favoured []Tag
	switch goal {
	case GoalGain:
		favoured = []Tag{TagHighProtein}
	case GoalKeto:
		favoured = []Tag{TagKeto, TagLowCarb}
	case GoalLose:
		favoured = []Tag{TagLowCarb, TagHighProtein}
	default:
		return pool
	}

	out := make([]KBMeal, 0, len(pool)*2)
	out = append(out, pool...)
	for _, m := range pool {
		for _, tag := range favoured {
			if m.HasTag(tag) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Generate assembles a seven day plan for the profile using rng for every
// random choice. Given the same rng state it always returns the same plan.
func Generate(kb *KnowledgeBase, p DietProfile, rng *rand.Rand) DietPlanData {
	targets := CalculateTargets(p)

	pools := make(map[Slot][]KBMeal, len(Slots))
	for _, s := range Slots {
		pools[s] = CandidatePool(kb, s, p)
	}

	plan := DietPlanData{
		Type:           PlanType,
		IsPersonalized: p.HasBodyMetrics(),
		DailyCalories:  Amount(targets.DailyCalories),
		DailyProteinG:  amountPtr(targets.ProteinG),
		DailyCarbsG:    amountPtr(targets.CarbsG),
		DailyFatG:      amountPtr(targets.FatG),
		Days:           make([]DietDay, 0, len(DayLabels)),
	}

	weekUsed := NameSet{}
	for _, label := range DayLabels {
		dayUsed := weekUsed.clone()
		today := NameSet{}
		day := DietDay{Day: label, Meals: make([]DietMeal, 0, len(Slots))}

		for _, s := range Slots {
			target := targets.SlotTarget(s)
			meal, ok := PickMeal(pools[s], target, dayUsed, rng)
			if !ok {
				plan.IsPartial = true
				continue
			}
			if today.Has(meal.Name) {
				// the week is exhausted for this pool; only avoid repeats within the day
				meal, _ = PickMeal(pools[s], target, today, rng)
			}
			dayUsed.Add(meal.Name)
			weekUsed.Add(meal.Name)
			today.Add(meal.Name)
			day.Meals = append(day.Meals, materialize(meal, s))
		}
		plan.Days = append(plan.Days, day)
	}

	return plan
}

func materialize(m KBMeal, s Slot) DietMeal {
	var tags []Tag
	if len(m.Tags) > 0 {
		tags = append(tags, m.Tags...)
	}
	return DietMeal{
		Slot:     s,
		Label:    s.Label(),
		Time:     s.DisplayTime(),
		Name:     m.Name,
		Emoji:    m.Emoji,
		Calories: Amount(m.Calories),
		ProteinG: Amount(m.ProteinG),
		CarbsG:   Amount(m.CarbsG),
		FatG:     Amount(m.FatG),
		Portion:  m.Portion,
		Tags:     tags,
	}
}

// Generator produces plans from a fixed knowledge base with a fresh random
// source per call, so it is safe for concurrent use.
type Generator struct {
	kb *KnowledgeBase
}

// NewGenerator creates a Generator; a nil kb selects the embedded catalog
func NewGenerator(kb *KnowledgeBase) *Generator {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	return &Generator{kb: kb}
}

// Generate builds a plan with a randomly seeded source
func (g *Generator) Generate(p DietProfile) DietPlanData {
	return Generate(g.kb, p, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// GenerateSeeded builds a plan reproducibly from seed
func (g *Generator) GenerateSeeded(p DietProfile, seed uint64) DietPlanData {
	return Generate(g.kb, p, NewRand(seed))
}

// NewRand returns a deterministic random source for seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
