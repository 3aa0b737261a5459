package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nutricoach/backend/internal/chatparse"
	"github.com/nutricoach/backend/internal/nutrition"
)

type profileFlags struct {
	weight    float64
	height    float64
	age       int
	goal      string
	diet      string
	allergies string
}

var (
	planProfile    profileFlags
	targetsProfile profileFlags
	planSeed       uint64
)

var planCmd = &cobra.Command{
	Use:     "plan",
	Short:   "Print a generated 7-day plan as JSON",
	Example: `  nutricoach plan --weight 70 --height 175 --age 30 --goal "lose weight" --diet veg --seed 42
  nutricoach plan --diet vegan --allergies "peanuts, soy"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		profile := planProfile.toProfile(cmd)
		gen := nutrition.NewGenerator(nutrition.DefaultKnowledgeBase())

		var plan nutrition.DietPlanData
		if cmd.Flags().Changed("seed") {
			plan = gen.GenerateSeeded(profile, planSeed)
		} else {
			plan = gen.Generate(profile)
		}
		return writeJSON(cmd.OutOrStdout(), plan)
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Print daily calorie and macro targets as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeJSON(cmd.OutOrStdout(), nutrition.CalculateTargets(targetsProfile.toProfile(cmd)))
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a coach reply read from stdin into bubbles and a diet plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read reply: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), chatparse.Parse(string(raw)))
	},
}

func init() {
	planProfile.register(planCmd)
	planCmd.Flags().Uint64Var(&planSeed, "seed", 0, "seed for a reproducible plan")
	targetsProfile.register(targetsCmd)
}

func (f *profileFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&f.weight, "weight", 0, "body weight in kg")
	flags.Float64Var(&f.height, "height", 0, "height in cm")
	flags.IntVar(&f.age, "age", 0, "age in years")
	flags.StringVar(&f.goal, "goal", "", `free-text goal, e.g. "lose weight"`)
	flags.StringVar(&f.diet, "diet", "", "veg, vegan, keto or non veg")
	flags.StringVar(&f.allergies, "allergies", "", "comma separated allergens")
}

// toProfile leaves metrics nil unless the flag was given
func (f *profileFlags) toProfile(cmd *cobra.Command) nutrition.DietProfile {
	p := nutrition.DietProfile{
		Goal:      f.goal,
		DietType:  f.diet,
		Allergies: f.allergies,
	}
	flags := cmd.Flags()
	if flags.Changed("weight") {
		p.WeightKg = &f.weight
	}
	if flags.Changed("height") {
		p.HeightCm = &f.height
	}
	if flags.Changed("age") {
		p.Age = &f.age
	}
	return p
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
