package ingredient

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"meal-planner/internal/core/diabetes"
)

// BudgetLevel 預算等級
type BudgetLevel string

const (
	BudgetLow    BudgetLevel = "low"
	BudgetMedium BudgetLevel = "medium"
	BudgetHigh   BudgetLevel = "high"
)

// ParseBudget 不分大小寫解析預算等級
func ParseBudget(s string) (BudgetLevel, error) {
	switch l := BudgetLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case BudgetLow, BudgetMedium, BudgetHigh:
		return l, nil
	}
	return "", fmt.Errorf("unknown budget level %q", s)
}

const (
	diabetesWeight = 0.6
	budgetWeight   = 0.4
)

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// ScoreForDiabetes 糖尿病適合度 0..100
func ScoreForDiabetes(i Ingredient, analysis diabetes.Analysis) float64 {
	score := 50.0

	if i.IsDiabeticFriendly {
		score += 20
	}

	score += math.Min(i.FiberGrams*3, 15)

	gl := i.GI() * i.CarbsGrams / 100
	switch {
	case gl < 10:
		score += 10
	case gl < 20:
		score += 5
	default:
		score -= math.Min(gl, 20)
	}

	score += math.Min(i.ProteinGrams*2, 20)

	if analysis.Severity == diabetes.SeveritySevere && i.CarbsGrams > 20 {
		score -= 15
	}

	return clampScore(score)
}

// ScoreForBudget 預算適合度 0..100
func ScoreForBudget(i Ingredient, level BudgetLevel) float64 {
	cost := i.Cost()
	score := 50.0

	switch {
	case level == BudgetLow && cost <= 0.5:
		score += 30
	case level == BudgetLow && cost > 2:
		score -= 30
	case level == BudgetMedium && cost <= 1.5:
		score += 20
	case level == BudgetMedium && cost > 3:
		score -= 20
	case level == BudgetHigh:
		score += 10
	}

	return clampScore(score)
}

// OverallScore 糖尿病 60%、預算 40%
func OverallScore(diabetesScore, budgetScore float64) float64 {
	return diabetesScore*diabetesWeight + budgetScore*budgetWeight
}

// Profile 評分結果
type Profile struct {
	DiabetesScore        float64       `json:"diabetes_score"`
	BudgetScore          float64       `json:"budget_score"`
	OverallScore         float64       `json:"overall_score"`
	DietaryCompatibility Compatibility `json:"dietary_compatibility"`
}

// Scored 附帶評分的食材
type Scored struct {
	Ingredient
	Profile Profile `json:"scoring_profile"`
}

// Score 計算單一食材的評分
func Score(i Ingredient, analysis diabetes.Analysis, level BudgetLevel, c Constraints) Scored {
	d := ScoreForDiabetes(i, analysis)
	b := ScoreForBudget(i, level)
	return Scored{
		Ingredient: i,
		Profile: Profile{
			DiabetesScore:        d,
			BudgetScore:          b,
			OverallScore:         OverallScore(d, b),
			DietaryCompatibility: CheckCompatibility(i, c),
		},
	}
}

// ScoreAll 依輸入順序評分
func ScoreAll(items []Ingredient, analysis diabetes.Analysis, level BudgetLevel, c Constraints) []Scored {
	out := make([]Scored, 0, len(items))
	for _, it := range items {
		out = append(out, Score(it, analysis, level, c))
	}
	return out
}

// Rank 依總分由高到低排序（穩定排序）
func Rank(scored []Scored) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Profile.OverallScore > out[b].Profile.OverallScore
	})
	return out
}
