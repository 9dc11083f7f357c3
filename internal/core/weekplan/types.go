// Package weekplan 驗證並修復生成模型回傳的一週菜單
package weekplan

import "fmt"

const (
	// Days 每份菜單天數
	Days = 7
	// OptionsPerSlot 每餐別候選數
	OptionsPerSlot = 3
	// TotalMeals 7 天 × 3 餐 × 3 個候選
	TotalMeals = Days * len(slotOrder) * OptionsPerSlot
)

// Slot 正餐餐別
type Slot string

const (
	Breakfast Slot = "breakfast"
	Lunch     Slot = "lunch"
	Dinner    Slot = "dinner"
)

var slotOrder = [...]Slot{Breakfast, Lunch, Dinner}

// Slots 依固定順序回傳餐別
func Slots() []Slot {
	return slotOrder[:]
}

// DayKey day1..day7
func DayKey(index int) string {
	return fmt.Sprintf("day%d", index+1)
}

// Amount 食材用量
type Amount struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Meal 通過驗證的單一餐點
type Meal struct {
	Name                    string            `json:"name"`
	MealType                Slot              `json:"meal_type"`
	Calories                float64           `json:"calories"`
	Carbohydrates           float64           `json:"carbohydrates"`
	Protein                 float64           `json:"protein"`
	Fat                     float64           `json:"fat"`
	Fiber                   float64           `json:"fiber"`
	GlycemicLoad            float64           `json:"glycemic_load"`
	Ingredients             []string          `json:"ingredients"`
	IngredientAmounts       map[string]Amount `json:"ingredient_amounts"`
	Procedures              string            `json:"procedures"`
	PreparationTime         string            `json:"preparation_time"`
	HealthNotes             string            `json:"health_notes"`
	EstimatedCostPerServing float64           `json:"estimated_cost_per_serving"`
	ServingSize             string            `json:"serving_size"`
	ServingsCount           int               `json:"servings_count"`
}

// Day 單日三餐，每餐別恰好 3 個候選
type Day map[Slot][]Meal

// Plan 通過驗證的 7 天菜單
type Plan [Days]Day

// Meals 依日期、餐別順序攤平
func (p Plan) Meals() []Meal {
	out := make([]Meal, 0, TotalMeals)
	for _, day := range p {
		for _, slot := range slotOrder {
			out = append(out, day[slot]...)
		}
	}
	return out
}

// rawMeal 尚未驗證的餐點物件
type rawMeal map[string]any

// structured 通過結構檢查、欄位尚未驗證的菜單
type structured [Days]map[Slot][]rawMeal
