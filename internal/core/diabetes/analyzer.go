package diabetes

import (
	"strings"

	"meal-planner/internal/pkg/common"
)

const (
	defaultCarbLimit    = 45
	defaultCalorieLimit = 600
	defaultGlycemic     = 50
)

// band HbA1c 分級，依嚴重程度由高到低比對
type band struct {
	minHbA1c        float64
	severity        Severity
	carbLimit       float64
	calorieLimit    float64
	risk            string
	recommendations []string
}

var hba1cBands = []band{
	{
		minHbA1c: 10, severity: SeveritySevere, carbLimit: 25, calorieLimit: 450, risk: RiskHighHbA1c,
		recommendations: []string{
			"Severely elevated HbA1c requires strict carb restriction",
			"Consider frequent glucose monitoring",
			"Prioritize low-glycemic foods only",
		},
	},
	{
		minHbA1c: 8, severity: SeverityModerate, carbLimit: 35, calorieLimit: 500, risk: RiskModerateHbA1c,
		recommendations: []string{
			"Elevated HbA1c needs moderate carb restriction",
			"Focus on complex carbohydrates",
		},
	},
	{
		minHbA1c: 6.5, severity: SeverityMild, carbLimit: 40, calorieLimit: 550,
		recommendations: []string{
			"Mildly elevated HbA1c requires careful monitoring",
			"Maintain consistent meal timing",
		},
	},
	{
		minHbA1c: 5.7, severity: SeverityPrediabetic, carbLimit: defaultCarbLimit, calorieLimit: defaultCalorieLimit,
		recommendations: []string{
			"Pre-diabetic range - focus on prevention",
		},
	},
}

// Default 無檢驗資料時的預設分析
func Default() Analysis {
	return Analysis{
		Severity:              SeverityNormal,
		CarbLimitGramsPerMeal: defaultCarbLimit,
		CalorieLimitPerMeal:   defaultCalorieLimit,
		RiskFactors:           []string{},
		Recommendations:       []string{},
		GlucoseThresholds: GlucoseThresholds{
			PreMeal:  80,
			PostMeal: 140,
			Bedtime:  100,
		},
	}
}

// Analyze 依檢驗值分級。嚴重程度只由 HbA1c 決定，FBS/PPBS/GTT 僅追加風險與建議
func Analyze(lab *LabResult) Analysis {
	a := Default()
	if lab == nil {
		return a
	}

	if lab.HbA1c != nil {
		v := *lab.HbA1c
		for _, b := range hba1cBands {
			if v >= b.minHbA1c {
				a.Severity = b.severity
				a.CarbLimitGramsPerMeal = b.carbLimit
				a.CalorieLimitPerMeal = b.calorieLimit
				if b.risk != "" {
					a.addRisk(b.risk)
				}
				a.Recommendations = append(a.Recommendations, b.recommendations...)
				break
			}
		}
	}

	if lab.FastingBloodSugar != nil {
		switch v := *lab.FastingBloodSugar; {
		case v >= 200:
			a.addRisk(RiskVeryHighFBS)
			a.Recommendations = append(a.Recommendations,
				"Dangerously high fasting glucose - minimize fast carbs",
				"Consider splitting meals into smaller portions")
		case v >= 140:
			a.addRisk(RiskHighFBS)
			a.Recommendations = append(a.Recommendations,
				"High fasting glucose - avoid simple sugars",
				"Include protein with every meal")
		case v >= 110:
			a.Recommendations = append(a.Recommendations,
				"Elevated fasting glucose - prefer complex carbs",
				"Consider intermittent fasting windows")
		}
	}

	if lab.PostprandialBloodSugar != nil {
		switch v := *lab.PostprandialBloodSugar; {
		case v >= 250:
			a.addRisk(RiskVeryHighPPBS)
			a.Recommendations = append(a.Recommendations,
				"Extreme post-meal spikes - strict portion control needed",
				"Consider pre-meal fiber supplementation")
		case v >= 200:
			a.addRisk(RiskHighPPBS)
			a.Recommendations = append(a.Recommendations,
				"High post-meal glucose - limit meal portions",
				"Add 10-minute walk after meals")
		}
	}

	if lab.GlucoseTolerance != nil && *lab.GlucoseTolerance >= 200 {
		a.Recommendations = append(a.Recommendations, "Impaired glucose tolerance - avoid refined carbs")
	}

	return a
}

func (a *Analysis) addRisk(risk string) {
	if !a.HasRisk(risk) {
		a.RiskFactors = append(a.RiskFactors, risk)
	}
}

// GlycemicLoad Σ(GI × 碳水 × 份量倍數)/100，取一位小數。
// GI 為 0 視為未填寫並取 50；不含碳水的份量不論 GI 都不計入
func GlycemicLoad(portions []Portion) float64 {
	total := 0.0
	for _, p := range portions {
		gi := p.GlycemicIndex
		if gi <= 0 {
			gi = defaultGlycemic
		}
		mult := p.Multiplier
		if mult == 0 {
			mult = 1
		}
		total += gi * p.CarbsGrams * mult / 100
	}
	return common.Round1(total)
}

// MealTimingFor 依嚴重程度給出餐次安排
func MealTimingFor(severity Severity) MealTiming {
	switch severity {
	case SeveritySevere:
		return MealTiming{MealsPerDay: 6, SnacksAllowed: 3, MaxHoursBetween: 3, FastingWindowHours: 10, SplitLargeMeals: true}
	case SeverityModerate:
		return MealTiming{MealsPerDay: 4, SnacksAllowed: 2, MaxHoursBetween: 4, FastingWindowHours: 11, SplitLargeMeals: true}
	default:
		return MealTiming{MealsPerDay: 3, SnacksAllowed: 2, MaxHoursBetween: 6, FastingWindowHours: 12}
	}
}

// TargetsFor 依年齡、糖尿病類型與併發症調整血糖目標
func TargetsFor(age int, diabetesType string, complications []string) GlucoseTargets {
	t := GlucoseTargets{
		Fasting:  Range{Min: 80, Max: 130},
		PostMeal: Range{Min: 80, Max: 180},
		Bedtime:  Range{Min: 100, Max: 140},
		HbA1c:    7.0,
	}

	switch {
	case age > 65:
		t.HbA1c = 7.5
		t.Fasting.Max = 140
		t.PostMeal.Max = 200
	case age < 25:
		t.HbA1c = 6.5
		t.Fasting.Max = 120
	}

	if strings.EqualFold(strings.TrimSpace(diabetesType), "Type 1") {
		t.Fasting.Min = 70
		t.PostMeal.Max = 160
	}

	for _, c := range complications {
		if strings.EqualFold(strings.TrimSpace(c), "cardiovascular") {
			t.HbA1c = 6.5
		}
	}
	return t
}
