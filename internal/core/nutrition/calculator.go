// Package nutrition 計算基礎代謝率、每日熱量與每餐營養目標
package nutrition

import (
	"fmt"
	"math"
	"strings"

	"meal-planner/internal/core/diabetes"
)

const (
	// DefaultActivityMultiplier 久坐活動係數
	DefaultActivityMultiplier = 1.2
	// TargetsActivityMultiplier 營養目標查詢使用的活動係數
	TargetsActivityMultiplier = 1.3

	mealsPerDay        = 3
	proteinShare       = 0.25
	fatShare           = 0.35
	fiberFloorGrams    = 10
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

// MacroTargets 每餐營養目標
type MacroTargets struct {
	CaloriesPerMeal float64 `json:"calories"`
	CarbsGramsMax   float64 `json:"carbs"`
	ProteinGramsMin float64 `json:"protein"`
	FatGramsApprox  float64 `json:"fat"`
	FiberGramsMin   float64 `json:"fiber"`
}

// Anthropometrics 身體數據
type Anthropometrics struct {
	WeightKg float64
	HeightCm float64
	Age      int
	Gender   string
}

// Validate 體重、身高、年齡都必須為正數
func (a Anthropometrics) Validate() error {
	var bad []string
	if !(a.WeightKg > 0) || math.IsInf(a.WeightKg, 0) {
		bad = append(bad, "weight")
	}
	if !(a.HeightCm > 0) || math.IsInf(a.HeightCm, 0) {
		bad = append(bad, "height")
	}
	if a.Age <= 0 {
		bad = append(bad, "age")
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid anthropometrics: %s must be positive", strings.Join(bad, ", "))
	}
	return nil
}

// BMR Mifflin-St Jeor 公式，四捨五入到整數
func BMR(a Anthropometrics) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	bmr := 10*a.WeightKg + 6.25*a.HeightCm - 5*float64(a.Age)
	if strings.EqualFold(strings.TrimSpace(a.Gender), "male") {
		bmr += 5
	} else {
		bmr -= 161
	}
	return math.Round(bmr), nil
}

// DailyCalories BMR × 活動係數，係數非正數時使用 1.2
func DailyCalories(bmr, activityMultiplier float64) float64 {
	if activityMultiplier <= 0 {
		activityMultiplier = DefaultActivityMultiplier
	}
	return math.Round(bmr * activityMultiplier)
}

// Targets 由每日熱量與糖尿病分析推導每餐目標，碳水上限一律等於分析結果的每餐碳水上限
func Targets(dailyCalories float64, analysis diabetes.Analysis) MacroTargets {
	return MacroTargets{
		CaloriesPerMeal: math.Round(dailyCalories / mealsPerDay),
		CarbsGramsMax:   analysis.CarbLimitGramsPerMeal,
		ProteinGramsMin: math.Round(dailyCalories * proteinShare / kcalPerGramProtein),
		FatGramsApprox:  math.Round(dailyCalories * fatShare / kcalPerGramFat),
		FiberGramsMin:   fiberFloorGrams,
	}
}

// Summary 完整計算結果
type Summary struct {
	BMR                float64      `json:"bmr"`
	DailyCalories      float64      `json:"daily_calories"`
	ActivityMultiplier float64      `json:"activity_multiplier"`
	Targets            MacroTargets `json:"macro_targets"`
}

// Calculate BMR → 每日熱量 → 每餐目標
func Calculate(a Anthropometrics, activityMultiplier float64, analysis diabetes.Analysis) (Summary, error) {
	bmr, err := BMR(a)
	if err != nil {
		return Summary{}, err
	}
	if activityMultiplier <= 0 {
		activityMultiplier = DefaultActivityMultiplier
	}
	daily := DailyCalories(bmr, activityMultiplier)
	return Summary{
		BMR:                bmr,
		DailyCalories:      daily,
		ActivityMultiplier: activityMultiplier,
		Targets:            Targets(daily, analysis),
	}, nil
}
