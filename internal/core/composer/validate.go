package composer

import (
	"fmt"

	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/nutrition"
)

// Level 營養檢查結果
type Level string

const (
	LevelGood Level = "good"
	LevelHigh Level = "high"
	LevelLow  Level = "low"
)

const (
	calorieTolerance  = 0.2
	proteinFloorRatio = 0.8
	glycemicLoadLimit = 20
)

// NutritionCheck 各項營養檢查
type NutritionCheck struct {
	Calories Level `json:"calories"`
	Protein  Level `json:"protein"`
	Carbs    Level `json:"carbs"`
	Fiber    Level `json:"fiber"`
}

// Validation 組餐檢查結果；只有碳水超標會使 IsValid 為 false
type Validation struct {
	IsValid        bool           `json:"is_valid"`
	Warnings       []string       `json:"warnings"`
	Suggestions    []string       `json:"suggestions"`
	NutritionCheck NutritionCheck `json:"nutrition_check"`
}

// Validate 對照每餐目標檢查組成結果
func Validate(s Structure, targets nutrition.MacroTargets, analysis diabetes.Analysis) Validation {
	v := Validation{
		IsValid:     true,
		Warnings:    []string{},
		Suggestions: []string{},
		NutritionCheck: NutritionCheck{
			Calories: LevelGood,
			Protein:  LevelGood,
			Carbs:    LevelGood,
			Fiber:    LevelGood,
		},
	}
	n := s.NutritionBreakdown

	switch {
	case n.Calories > targets.CaloriesPerMeal*(1+calorieTolerance):
		v.Warnings = append(v.Warnings, "Meal exceeds calorie target by >20%")
		v.NutritionCheck.Calories = LevelHigh
	case n.Calories < targets.CaloriesPerMeal*(1-calorieTolerance):
		v.Warnings = append(v.Warnings, "Meal is below calorie target by >20%")
		v.NutritionCheck.Calories = LevelLow
	}

	if n.Carbs > targets.CarbsGramsMax {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Carbs (%gg) exceed target (%gg)", n.Carbs, targets.CarbsGramsMax))
		v.NutritionCheck.Carbs = LevelHigh
		v.IsValid = false
	}

	if n.Protein < targets.ProteinGramsMin*proteinFloorRatio {
		v.Warnings = append(v.Warnings, "Protein content is below recommended minimum")
		v.NutritionCheck.Protein = LevelLow
	}

	if n.Fiber < targets.FiberGramsMin {
		v.Suggestions = append(v.Suggestions, "Consider adding more high-fiber ingredients")
		v.NutritionCheck.Fiber = LevelLow
	}

	if n.GlycemicLoad > glycemicLoadLimit && analysis.Severity != diabetes.SeverityNormal {
		v.Warnings = append(v.Warnings, "High glycemic load may cause blood sugar spikes")
	}

	return v
}
