// Package ingredient 食材目錄模型、限制過濾與評分
package ingredient

// Availability 供應狀態
type Availability string

const (
	Available   Availability = "available"
	Seasonal    Availability = "seasonal"
	Unavailable Availability = "unavailable"
)

const (
	defaultGlycemicIndex = 50
	defaultCost          = 1
)

// Ingredient 食材目錄項目
type Ingredient struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Category           string       `json:"category"`
	CommonNames        []string     `json:"common_names,omitempty"`
	CaloriesPerServing float64      `json:"calories_per_serving"`
	ProteinGrams       float64      `json:"protein_grams"`
	CarbsGrams         float64      `json:"carbs_grams"`
	FatGrams           float64      `json:"fat_grams"`
	FiberGrams         float64      `json:"fiber_grams"`
	SugarGrams         float64      `json:"sugar_grams"`
	SodiumMg           float64      `json:"sodium_mg"`
	GlycemicIndex      float64      `json:"glycemic_index"`
	CostPerServing     float64      `json:"cost_per_serving"`
	IsDiabeticFriendly bool         `json:"is_diabetic_friendly"`
	IsHalal            bool         `json:"is_halal"`
	IsKosher           bool         `json:"is_kosher"`
	IsCatholic         bool         `json:"is_catholic"`
	IsVegetarian       bool         `json:"is_vegetarian"`
	IsVegan            bool         `json:"is_vegan"`
	CommonAllergens    []string     `json:"common_allergens"`
	TypicalServingSize string       `json:"typical_serving_size"`
	Availability       Availability `json:"availability"`
	BreakfastSuitable  *bool        `json:"breakfast_suitable,omitempty"`
}

// GI 升糖指數。目錄以 0 表示未填寫：不含碳水的食材視為 0，
// 含碳水但未填寫時取中等值 50
func (i Ingredient) GI() float64 {
	switch {
	case i.GlycemicIndex > 0:
		return i.GlycemicIndex
	case i.CarbsGrams <= 0:
		return 0
	default:
		return defaultGlycemicIndex
	}
}

// Cost 每份成本，缺值時為 1
func (i Ingredient) Cost() float64 {
	if i.CostPerServing <= 0 {
		return defaultCost
	}
	return i.CostPerServing
}

// SuitableForBreakfast 未標記時視為適合
func (i Ingredient) SuitableForBreakfast() bool {
	return i.BreakfastSuitable == nil || *i.BreakfastSuitable
}

// Names 取出名稱清單
func Names(items []Ingredient) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}
