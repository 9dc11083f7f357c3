package weekplan

import (
	"encoding/json"
	"fmt"
	"strings"

	"meal-planner/internal/core/ingredient"
)

const longProcedure = "Rinse and chop the vegetables, sear the protein for five minutes per side, then plate with the greens."

func testCatalog() []ingredient.Ingredient {
	return []ingredient.Ingredient{
		{ID: "i-tomato", Name: "Tomato", CostPerServing: 0.4},
		{ID: "i-chicken", Name: "Chicken Breast", CostPerServing: 2},
		{ID: "i-berry", Name: "Blueberry", CostPerServing: 1},
		{ID: "i-oil", Name: "Extra Virgin Olive Oil", CostPerServing: 0.3},
		{ID: "i-rice", Name: "Brown Rice", CostPerServing: 0.5},
	}
}

func validMeal(slot Slot, n int) map[string]any {
	return map[string]any{
		"name":                       fmt.Sprintf("%s %d", slot, n),
		"meal_type":                  string(slot),
		"calories":                   450,
		"carbohydrates":              30,
		"protein":                    28,
		"fat":                        15,
		"fiber":                      8,
		"glycemic_load":              9.5,
		"ingredients":                []any{"Tomato", "Chicken Breast"},
		"ingredient_amounts":         map[string]any{"Tomato": 120, "Chicken Breast": map[string]any{"quantity": 150, "unit": "g"}},
		"procedures":                 longProcedure,
		"preparation_time":           "20 minutes",
		"estimated_cost_per_serving": 2.5,
	}
}

func validPlan() map[string]any {
	plan := map[string]any{}
	for d := 0; d < Days; d++ {
		day := map[string]any{}
		for _, slot := range Slots() {
			list := make([]any, 0, OptionsPerSlot)
			for i := 0; i < OptionsPerSlot; i++ {
				list = append(list, validMeal(slot, d*10+i))
			}
			day[string(slot)] = list
		}
		plan[DayKey(d)] = day
	}
	return plan
}

func mealAt(plan map[string]any, day int, slot Slot, option int) map[string]any {
	return plan[DayKey(day)].(map[string]any)[string(slot)].([]any)[option].(map[string]any)
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func strictConfig() Config {
	return Config{
		Catalog: testCatalog(),
		Rules:   FieldRules{Strict: true, RequireIngredientAmounts: true},
	}
}

func fenced(s string) string {
	return "Here is the plan:\n```json\n" + s + "\n```\n" + strings.Repeat(" ", 2)
}
