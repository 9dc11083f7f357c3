package ingredient

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// FilterByCategory 只保留指定分類
func FilterByCategory(items []Ingredient, categories ...string) []Ingredient {
	if len(categories) == 0 {
		return items
	}
	return Apply(items, func(i Ingredient) bool {
		for _, c := range categories {
			if i.Category == c {
				return true
			}
		}
		return false
	})
}

// NutritionCriteria 營養條件，零值代表不限制
type NutritionCriteria struct {
	MaxCarbs             float64 `json:"max_carbs,omitempty"`
	MinProtein           float64 `json:"min_protein,omitempty"`
	MinFiber             float64 `json:"min_fiber,omitempty"`
	MaxSodium            float64 `json:"max_sodium,omitempty"`
	MaxGlycemicIndex     float64 `json:"max_glycemic_index,omitempty"`
	DiabeticFriendlyOnly bool    `json:"diabetic_friendly_only,omitempty"`
}

// FilterByNutrition 依營養條件過濾
func FilterByNutrition(items []Ingredient, c NutritionCriteria) []Ingredient {
	return Apply(items, func(i Ingredient) bool {
		switch {
		case c.MaxCarbs > 0 && i.CarbsGrams > c.MaxCarbs:
			return false
		case c.MinProtein > 0 && i.ProteinGrams < c.MinProtein:
			return false
		case c.MinFiber > 0 && i.FiberGrams < c.MinFiber:
			return false
		case c.MaxSodium > 0 && i.SodiumMg > c.MaxSodium:
			return false
		case c.MaxGlycemicIndex > 0 && i.GI() > c.MaxGlycemicIndex:
			return false
		case c.DiabeticFriendlyOnly && !i.IsDiabeticFriendly:
			return false
		}
		return true
	})
}

// MaxCostFor 預算等級對應的每份成本上限，未知等級視為 medium
func MaxCostFor(level BudgetLevel) float64 {
	switch level {
	case BudgetLow:
		return 2.0
	case BudgetHigh:
		return math.Inf(1)
	default:
		return 4.0
	}
}

// FilterByBudget 依預算等級過濾
func FilterByBudget(items []Ingredient, level BudgetLevel) []Ingredient {
	maxCost := MaxCostFor(level)
	return Apply(items, func(i Ingredient) bool {
		return i.Cost() <= maxCost
	})
}

// FilterBySearch 名稱、分類或別名包含關鍵字
func FilterBySearch(items []Ingredient, term string) []Ingredient {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	return Apply(items, func(i Ingredient) bool {
		if strings.Contains(strings.ToLower(i.Name), term) || strings.Contains(strings.ToLower(i.Category), term) {
			return true
		}
		for _, n := range i.CommonNames {
			if strings.Contains(strings.ToLower(n), term) {
				return true
			}
		}
		return false
	})
}

// SortField 可排序欄位
type SortField string

const (
	SortByName             SortField = "name"
	SortByCategory         SortField = "category"
	SortByCalories         SortField = "calories"
	SortByProtein          SortField = "protein"
	SortByCarbs            SortField = "carbs"
	SortByFiber            SortField = "fiber"
	SortByCost             SortField = "cost"
	SortByGlycemicIndex    SortField = "glycemic_index"
	SortByDiabeticFriendly SortField = "diabetic_friendly"
)

func numericKey(i Ingredient, field SortField) (float64, bool) {
	switch field {
	case SortByCalories:
		return i.CaloriesPerServing, true
	case SortByProtein:
		return i.ProteinGrams, true
	case SortByCarbs:
		return i.CarbsGrams, true
	case SortByFiber:
		return i.FiberGrams, true
	case SortByCost:
		return i.CostPerServing, true
	case SortByGlycemicIndex:
		return i.GI(), true
	case SortByDiabeticFriendly:
		if i.IsDiabeticFriendly {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Sort 回傳排序後的副本，未知欄位依名稱排序
func Sort(items []Ingredient, field SortField, desc bool) []Ingredient {
	out := make([]Ingredient, len(items))
	copy(out, items)
	sort.SliceStable(out, func(a, b int) bool {
		x, y := out[a], out[b]
		if desc {
			x, y = y, x
		}
		if kx, ok := numericKey(x, field); ok {
			ky, _ := numericKey(y, field)
			return kx < ky
		}
		if field == SortByCategory {
			return strings.ToLower(x.Category) < strings.ToLower(y.Category)
		}
		return strings.ToLower(x.Name) < strings.ToLower(y.Name)
	})
	return out
}

// GroupByCategory 依分類分組，空分類歸入 "Other"
func GroupByCategory(items []Ingredient) map[string][]Ingredient {
	groups := make(map[string][]Ingredient)
	for _, it := range items {
		category := it.Category
		if category == "" {
			category = "Other"
		}
		groups[category] = append(groups[category], it)
	}
	return groups
}

var compatibleCategories = map[string][]string{
	"Protein":      {"Protein", "Fish", "Seafood", "Legumes"},
	"Fish":         {"Fish", "Seafood", "Protein"},
	"Seafood":      {"Seafood", "Fish", "Protein"},
	"Vegetables":   {"Vegetables", "Leafy Greens"},
	"Leafy Greens": {"Leafy Greens", "Vegetables"},
	"Fruits":       {"Fruits"},
	"Grains":       {"Grains", "Starches"},
	"Starches":     {"Starches", "Grains"},
	"Dairy":        {"Dairy"},
	"Nuts":         {"Nuts", "Seeds"},
	"Seeds":        {"Seeds", "Nuts"},
	"Oils":         {"Oils", "Fats"},
	"Fats":         {"Fats", "Oils"},
	"Herbs":        {"Herbs", "Spices"},
	"Spices":       {"Spices", "Herbs"},
	"Legumes":      {"Legumes", "Protein"},
}

// CompatibleCategories 可互相替代的分類
func CompatibleCategories(category string) []string {
	if cats, ok := compatibleCategories[category]; ok {
		return cats
	}
	return []string{category}
}

const maxSubstitutes = 5

// FindSubstitutes 同類或相容分類、符合限制、熱量相差不超過 50% 的替代食材，依營養相似度取前 5
func FindSubstitutes(target Ingredient, all []Ingredient, c Constraints) []Ingredient {
	cats := CompatibleCategories(target.Category)
	allergy := AllergySafe(c.Allergies)
	diet := DietCompliant(c.ReligiousDiets)

	candidates := Apply(all, func(i Ingredient) bool {
		if i.ID == target.ID {
			return false
		}
		inCategory := false
		for _, cat := range cats {
			if i.Category == cat {
				inCategory = true
				break
			}
		}
		if !inCategory || !allergy(i) || !diet(i) {
			return false
		}
		return math.Abs(target.CaloriesPerServing-i.CaloriesPerServing) <= target.CaloriesPerServing*0.5
	})

	sort.SliceStable(candidates, func(a, b int) bool {
		return Similarity(target, candidates[a]) > Similarity(target, candidates[b])
	})
	if len(candidates) > maxSubstitutes {
		candidates = candidates[:maxSubstitutes]
	}
	return candidates
}

// Similarity 熱量與三大營養素、纖維的平均比值相似度 0..100
func Similarity(a, b Ingredient) float64 {
	pairs := [][2]float64{
		{a.CaloriesPerServing, b.CaloriesPerServing},
		{a.ProteinGrams, b.ProteinGrams},
		{a.CarbsGrams, b.CarbsGrams},
		{a.FatGrams, b.FatGrams},
		{a.FiberGrams, b.FiberGrams},
	}
	total, n := 0.0, 0
	for _, p := range pairs {
		if p[0] <= 0 && p[1] <= 0 {
			continue
		}
		hi, lo := math.Max(p[0], p[1]), math.Min(p[0], p[1])
		total += lo / hi * 100
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// MissingData 資料缺漏統計
type MissingData struct {
	NutritionInfo int `json:"nutrition_info"`
	CostInfo      int `json:"cost_info"`
	DietaryFlags  int `json:"dietary_flags"`
	Categories    int `json:"categories"`
}

// QualityReport 目錄資料品質報告
type QualityReport struct {
	Total        int         `json:"total"`
	Valid        int         `json:"valid"`
	Warnings     []string    `json:"warnings"`
	Errors       []string    `json:"errors"`
	MissingData  MissingData `json:"missing_data"`
	Completeness float64     `json:"completeness"`
}

// ValidateCatalog 檢查目錄資料完整性：缺名稱為錯誤，其餘缺漏為警告
func ValidateCatalog(items []Ingredient) QualityReport {
	report := QualityReport{
		Total:    len(items),
		Warnings: []string{},
		Errors:   []string{},
	}

	for idx, it := range items {
		var warnings []string
		valid := true

		if strings.TrimSpace(it.Name) == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("ingredient at index %d: missing name", idx))
			valid = false
		}
		if it.Category == "" {
			report.MissingData.Categories++
			warnings = append(warnings, "missing category")
		}

		missingNutrition := 0
		for _, v := range []float64{it.CaloriesPerServing, it.ProteinGrams, it.CarbsGrams, it.FatGrams} {
			if v == 0 {
				missingNutrition++
			}
		}
		if missingNutrition > 2 {
			report.MissingData.NutritionInfo++
			warnings = append(warnings, "incomplete nutritional information")
		}

		if it.CostPerServing <= 0 {
			report.MissingData.CostInfo++
			warnings = append(warnings, "missing cost information")
		}

		if !it.IsDiabeticFriendly && !it.IsVegetarian && !it.IsVegan && !it.IsHalal && !it.IsKosher && !it.IsCatholic {
			report.MissingData.DietaryFlags++
			warnings = append(warnings, "missing dietary restriction flags")
		}

		if len(warnings) > 0 {
			name := it.Name
			if name == "" {
				name = "Unknown"
			}
			report.Warnings = append(report.Warnings, fmt.Sprintf("ingredient %q: %s", name, strings.Join(warnings, ", ")))
		}
		if valid {
			report.Valid++
		}
	}

	if report.Total > 0 {
		report.Completeness = float64(report.Valid) / float64(report.Total) * 100
	}
	return report
}
