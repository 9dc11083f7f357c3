package weekplan

import (
	"strings"
	"time"

	"meal-planner/internal/core/ingredient"
)

// MealRow 寫入儲存層的餐點資料
type MealRow struct {
	Name              string            `json:"name"`
	MealType          Slot              `json:"meal_type"`
	Calories          float64           `json:"calories"`
	Carbs             float64           `json:"carbohydrates"`
	Protein           float64           `json:"protein"`
	Fat               float64           `json:"fat"`
	Fiber             float64           `json:"fiber"`
	GlycemicLoad      float64           `json:"glycemic_load"`
	Ingredients       []string          `json:"ingredients"`
	IngredientAmounts map[string]Amount `json:"ingredient_amounts"`
	Procedures        string            `json:"procedures"`
	PreparationTime   string            `json:"preparation_time"`
	HealthNotes       string            `json:"health_notes"`
	CostPerServing    float64           `json:"cost_per_serving"`
	ServingSize       string            `json:"serving_size"`
	ServingsCount     int               `json:"servings_count"`
}

// IngredientLink 餐點與食材的關聯
type IngredientLink struct {
	IngredientID  string  `json:"ingredient_id"`
	QuantityGrams float64 `json:"quantity_grams"`
	Unit          string  `json:"unit"`
}

// PlannedMeal 指定日期與餐別的一筆餐點
type PlannedMeal struct {
	Date  time.Time        `json:"date"`
	Slot  Slot             `json:"slot"`
	Meal  MealRow          `json:"meal"`
	Links []IngredientLink `json:"links"`
}

var gramsPerUnit = map[string]float64{
	"g":     1,
	"gram":  1,
	"grams": 1,
	"kg":    1000,
	"oz":    28.35,
	"lb":    453.6,
	"lbs":   453.6,
}

// toGrams 可換算的重量單位換成公克，其他單位保留原值
func toGrams(a Amount) (float64, string) {
	unit := strings.ToLower(strings.TrimSpace(a.Unit))
	if f, ok := gramsPerUnit[unit]; ok {
		return a.Quantity * f, "g"
	}
	if unit == "" {
		return a.Quantity, "g"
	}
	return a.Quantity, unit
}

// BuildPayload 第 n 天對應 start+n 天，依日期、餐別、候選順序展開
func BuildPayload(p Plan, catalog []ingredient.Ingredient, start time.Time) []PlannedMeal {
	matcher := NewMatcher(catalog)
	day0 := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	out := make([]PlannedMeal, 0, TotalMeals)
	for d, day := range p {
		date := day0.AddDate(0, 0, d)
		for _, slot := range slotOrder {
			for _, meal := range day[slot] {
				links := make([]IngredientLink, 0, len(meal.Ingredients))
				for _, name := range meal.Ingredients {
					it, _, ok := matcher.Lookup(name)
					if !ok {
						continue
					}
					a, ok := meal.IngredientAmounts[name]
					if !ok {
						a = Amount{Quantity: defaultAmountGrams, Unit: "g"}
					}
					qty, unit := toGrams(a)
					links = append(links, IngredientLink{IngredientID: it.ID, QuantityGrams: qty, Unit: unit})
				}
				out = append(out, PlannedMeal{
					Date:  date,
					Slot:  slot,
					Meal:  rowFor(meal),
					Links: links,
				})
			}
		}
	}
	return out
}

func rowFor(m Meal) MealRow {
	return MealRow{
		Name:              m.Name,
		MealType:          m.MealType,
		Calories:          m.Calories,
		Carbs:             m.Carbohydrates,
		Protein:           m.Protein,
		Fat:               m.Fat,
		Fiber:             m.Fiber,
		GlycemicLoad:      m.GlycemicLoad,
		Ingredients:       m.Ingredients,
		IngredientAmounts: m.IngredientAmounts,
		Procedures:        m.Procedures,
		PreparationTime:   m.PreparationTime,
		HealthNotes:       m.HealthNotes,
		CostPerServing:    m.EstimatedCostPerServing,
		ServingSize:       m.ServingSize,
		ServingsCount:     m.ServingsCount,
	}
}
