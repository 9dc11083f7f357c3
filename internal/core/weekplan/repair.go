package weekplan

import (
	"strings"

	"meal-planner/internal/core/ingredient"
)

// Repair 一筆名稱修正
type Repair struct {
	Meal     string `json:"meal"`
	From     string `json:"from"`
	To       string `json:"to"`
	Strategy string `json:"strategy"`
}

// Unmatched 無法對應到目錄的食材
type Unmatched struct {
	Meal string `json:"meal"`
	Name string `json:"name"`
}

const (
	strategyPlural    = "plural"
	strategySubstring = "substring"
)

// Matcher 以名稱比對已過濾的食材目錄
type Matcher struct {
	exact   map[string]ingredient.Ingredient
	ordered []ingredient.Ingredient
}

// NewMatcher 建立比對器，名稱比對不分大小寫
func NewMatcher(catalog []ingredient.Ingredient) *Matcher {
	m := &Matcher{
		exact:   make(map[string]ingredient.Ingredient, len(catalog)),
		ordered: make([]ingredient.Ingredient, 0, len(catalog)),
	}
	for _, it := range catalog {
		key := normalize(it.Name)
		if key == "" {
			continue
		}
		if _, dup := m.exact[key]; dup {
			continue
		}
		m.exact[key] = it
		m.ordered = append(m.ordered, it)
	}
	return m
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// singularForms 單複數變化：s、es、ies↔y
func singularForms(name string) []string {
	forms := []string{name + "s", name + "es"}
	if strings.HasSuffix(name, "ies") {
		forms = append(forms, strings.TrimSuffix(name, "ies")+"y")
	}
	if strings.HasSuffix(name, "es") {
		forms = append(forms, strings.TrimSuffix(name, "es"))
	}
	if strings.HasSuffix(name, "s") {
		forms = append(forms, strings.TrimSuffix(name, "s"))
	}
	if strings.HasSuffix(name, "y") {
		forms = append(forms, strings.TrimSuffix(name, "y")+"ies")
	}
	return forms
}

// Lookup 先精確比對，再試單複數，最後雙向子字串並取長度最接近者
func (m *Matcher) Lookup(name string) (ingredient.Ingredient, string, bool) {
	key := normalize(name)
	if key == "" {
		return ingredient.Ingredient{}, "", false
	}
	if it, ok := m.exact[key]; ok {
		return it, "", true
	}
	for _, form := range singularForms(key) {
		if it, ok := m.exact[form]; ok {
			return it, strategyPlural, true
		}
	}

	var best ingredient.Ingredient
	bestDiff := -1
	for _, it := range m.ordered {
		cand := normalize(it.Name)
		if !strings.Contains(cand, key) && !strings.Contains(key, cand) {
			continue
		}
		diff := len(cand) - len(key)
		if diff < 0 {
			diff = -diff
		}
		if bestDiff == -1 || diff < bestDiff {
			best, bestDiff = it, diff
		}
	}
	if bestDiff >= 0 {
		return best, strategySubstring, true
	}
	return ingredient.Ingredient{}, "", false
}

// repairMeal 名稱改寫為目錄正式名稱，用量跟著搬移（缺值補 100g），無法對應的名稱移除
func repairMeal(meal Meal, m *Matcher) (Meal, []Repair, []Unmatched) {
	var repairs []Repair
	var unmatched []Unmatched

	amounts := make(map[string]Amount, len(meal.IngredientAmounts))
	byNormalized := make(map[string]Amount, len(meal.IngredientAmounts))
	for name, a := range meal.IngredientAmounts {
		byNormalized[normalize(name)] = a
	}

	names := make([]string, 0, len(meal.Ingredients))
	seen := make(map[string]bool, len(meal.Ingredients))
	for _, name := range meal.Ingredients {
		it, strategy, ok := m.Lookup(name)
		if !ok {
			unmatched = append(unmatched, Unmatched{Meal: meal.Name, Name: name})
			continue
		}
		if strategy != "" {
			repairs = append(repairs, Repair{Meal: meal.Name, From: name, To: it.Name, Strategy: strategy})
		}
		if seen[it.Name] {
			continue
		}
		seen[it.Name] = true
		names = append(names, it.Name)

		a, ok := byNormalized[normalize(name)]
		if !ok {
			a, ok = byNormalized[normalize(it.Name)]
		}
		if !ok {
			a = Amount{Quantity: defaultAmountGrams, Unit: "g"}
		}
		amounts[it.Name] = a
	}

	meal.Ingredients = names
	meal.IngredientAmounts = amounts
	return meal, repairs, unmatched
}
