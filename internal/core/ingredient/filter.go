package ingredient

import (
	"strings"

	"meal-planner/internal/core/diabetes"
)

const (
	severeCarbCeiling     = 30
	highGlycemicIndex     = 85
	highGlycemicCarbFloor = 10
)

// Constraints 使用者的飲食限制
type Constraints struct {
	Allergies      []string          `json:"allergies"`
	ReligiousDiets []string          `json:"religious_diets"`
	Severity       diabetes.Severity `json:"severity,omitempty"` // 空值代表不套用嚴重程度過濾
}

// Predicate 單一排除條件，回傳 true 表示保留
type Predicate func(Ingredient) bool

// IsAvailable 排除 unavailable
func IsAvailable(i Ingredient) bool {
	return i.Availability != Unavailable
}

// AllergySafe 使用者過敏原與食材過敏原雙向子字串比對（不分大小寫），任一命中即排除
func AllergySafe(allergies []string) Predicate {
	return func(i Ingredient) bool {
		for _, allergy := range allergies {
			a := strings.ToLower(strings.TrimSpace(allergy))
			if a == "" {
				continue
			}
			for _, allergen := range i.CommonAllergens {
				g := strings.ToLower(strings.TrimSpace(allergen))
				if g == "" {
					continue
				}
				if strings.Contains(g, a) || strings.Contains(a, g) {
					return false
				}
			}
		}
		return true
	}
}

// DietCompliant 每個宗教/飲食習慣都要求對應旗標為 true，未知的飲食字串忽略
func DietCompliant(diets []string) Predicate {
	return func(i Ingredient) bool {
		for _, diet := range diets {
			if ok, known := dietFlag(i, diet); known && !ok {
				return false
			}
		}
		return true
	}
}

func dietFlag(i Ingredient, diet string) (ok bool, known bool) {
	switch strings.ToLower(strings.TrimSpace(diet)) {
	case "halal":
		return i.IsHalal, true
	case "kosher":
		return i.IsKosher, true
	case "catholic":
		return i.IsCatholic, true
	case "vegetarian":
		return i.IsVegetarian, true
	case "vegan":
		return i.IsVegan, true
	}
	return false, false
}

// SeveritySafe 嚴重時排除碳水 >30g；任何嚴重程度下排除 GI>85 且碳水 >10g
func SeveritySafe(severity diabetes.Severity) Predicate {
	return func(i Ingredient) bool {
		if severity == "" {
			return true
		}
		if severity == diabetes.SeveritySevere && i.CarbsGrams > severeCarbCeiling {
			return false
		}
		if i.GI() > highGlycemicIndex && i.CarbsGrams > highGlycemicCarbFloor {
			return false
		}
		return true
	}
}

// Apply 依序套用條件，保留輸入順序
func Apply(items []Ingredient, predicates ...Predicate) []Ingredient {
	out := make([]Ingredient, 0, len(items))
next:
	for _, it := range items {
		for _, p := range predicates {
			if !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Filter 供應 → 過敏 → 飲食 → 嚴重程度
func Filter(items []Ingredient, c Constraints) []Ingredient {
	return Apply(items,
		IsAvailable,
		AllergySafe(c.Allergies),
		DietCompliant(c.ReligiousDiets),
		SeveritySafe(c.Severity),
	)
}

// Compatibility 單一食材的過敏與飲食相容性
type Compatibility struct {
	Compatible bool     `json:"compatible"`
	Violations []string `json:"violations"`
}

// CheckCompatibility 列出違反的過敏原與飲食限制
func CheckCompatibility(i Ingredient, c Constraints) Compatibility {
	violations := []string{}
	for _, allergy := range c.Allergies {
		if !AllergySafe([]string{allergy})(i) {
			violations = append(violations, "allergen: "+allergy)
		}
	}
	for _, diet := range c.ReligiousDiets {
		if ok, known := dietFlag(i, diet); known && !ok {
			violations = append(violations, "diet: "+strings.ToLower(strings.TrimSpace(diet)))
		}
	}
	return Compatibility{
		Compatible: len(violations) == 0,
		Violations: violations,
	}
}
