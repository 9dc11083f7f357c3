package weekplan

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	minMealCalories    = 100
	maxMealCalories    = 1000
	minProcedureLength = 50
	truncationMarker   = "..."
	defaultAmountGrams = 100
)

// FieldRules 第二階段的檢查開關
type FieldRules struct {
	Strict                   bool
	RequireIngredientAmounts bool
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// asNumber 只接受 JSON 數字；lenient 時也接受數字字串
func asNumber(v any, lenient bool) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		if !lenient {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return f, finite(f)
}

// nonNegative 寬鬆取值，無效或負數時為 0
func nonNegative(v any) float64 {
	f, ok := asNumber(v, true)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, "\n")
	case json.Number:
		return t.String()
	}
	return ""
}

func asStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

var amountPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]*)`)

// parseAmount 數字、{quantity, unit} 物件或 "150g" 字串；無法解析時為 100g
func parseAmount(v any) Amount {
	if f, ok := asNumber(v, false); ok && f > 0 {
		return Amount{Quantity: f, Unit: "g"}
	}
	switch t := v.(type) {
	case map[string]any:
		for _, key := range []string{"quantity", "amount", "grams", "value"} {
			if f, ok := asNumber(t[key], true); ok && f > 0 {
				unit := asText(t["unit"])
				if unit == "" {
					unit = "g"
				}
				return Amount{Quantity: f, Unit: unit}
			}
		}
	case string:
		if m := amountPattern.FindStringSubmatch(t); m != nil {
			f, err := strconv.ParseFloat(m[1], 64)
			if err == nil && f > 0 {
				unit := strings.ToLower(m[2])
				if unit == "" {
					unit = "g"
				}
				return Amount{Quantity: f, Unit: unit}
			}
		}
	}
	return Amount{Quantity: defaultAmountGrams, Unit: "g"}
}

func asAmounts(v any) map[string]Amount {
	obj, ok := v.(map[string]any)
	if !ok {
		return map[string]Amount{}
	}
	out := make(map[string]Amount, len(obj))
	for name, raw := range obj {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out[name] = parseAmount(raw)
	}
	return out
}

// toMeal 轉為型別化的餐點並收集欄位錯誤；非嚴格模式下數值以寬鬆方式取值
func toMeal(raw rawMeal, slot Slot, label string, rules FieldRules) (Meal, []string) {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, label+": "+fmt.Sprintf(format, args...))
	}

	m := Meal{
		Name:                    asText(raw["name"]),
		MealType:                slot,
		GlycemicLoad:            nonNegative(raw["glycemic_load"]),
		Ingredients:             asStringList(raw["ingredients"]),
		IngredientAmounts:       asAmounts(raw["ingredient_amounts"]),
		Procedures:              asText(raw["procedures"]),
		PreparationTime:         asText(raw["preparation_time"]),
		HealthNotes:             asText(raw["health_notes"]),
		EstimatedCostPerServing: nonNegative(raw["estimated_cost_per_serving"]),
		ServingSize:             asText(raw["serving_size"]),
		ServingsCount:           int(nonNegative(raw["servings_count"])),
	}
	if m.Name == "" {
		m.Name = fmt.Sprintf("%s option", slot)
	}
	if m.ServingsCount == 0 {
		m.ServingsCount = 1
	}
	if len(m.Ingredients) == 0 && len(m.IngredientAmounts) > 0 {
		for name := range m.IngredientAmounts {
			m.Ingredients = append(m.Ingredients, name)
		}
		sort.Strings(m.Ingredients)
	}
	if m.PreparationTime != "" {
		if _, err := strconv.ParseFloat(m.PreparationTime, 64); err == nil {
			m.PreparationTime += " minutes"
		}
	}

	if !rules.Strict {
		m.Calories = nonNegative(raw["calories"])
		m.Carbohydrates = nonNegative(raw["carbohydrates"])
		m.Protein = nonNegative(raw["protein"])
		m.Fat = nonNegative(raw["fat"])
		m.Fiber = nonNegative(raw["fiber"])
		return m, nil
	}

	if cal, ok := asNumber(raw["calories"], false); !ok || cal < minMealCalories || cal > maxMealCalories {
		fail("calories must be a number between %d and %d", minMealCalories, maxMealCalories)
	} else {
		m.Calories = cal
	}

	macros := []struct {
		key string
		dst *float64
	}{
		{"carbohydrates", &m.Carbohydrates},
		{"protein", &m.Protein},
		{"fat", &m.Fat},
		{"fiber", &m.Fiber},
	}
	for _, mac := range macros {
		v, ok := asNumber(raw[mac.key], false)
		if !ok || v < 0 {
			fail("%s must be a number >= 0", mac.key)
			continue
		}
		*mac.dst = v
	}

	switch {
	case m.Procedures == "":
		fail("procedures missing")
	case len([]rune(m.Procedures)) < minProcedureLength:
		fail("procedures shorter than %d characters", minProcedureLength)
	case strings.Contains(m.Procedures, truncationMarker):
		fail("procedures appear truncated")
	}

	if rules.RequireIngredientAmounts && len(m.IngredientAmounts) == 0 {
		fail("ingredient_amounts missing")
	}

	return m, errs
}
