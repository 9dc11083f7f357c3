package weekplan

import (
	"strings"
	"testing"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

func TestValidateAcceptsCompletePlan(t *testing.T) {
	res, err := Validate(fenced(encode(validPlan())), strictConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	meals := res.Plan.Meals()
	if len(meals) != TotalMeals || TotalMeals != 63 {
		t.Fatalf("meals = %d, want 63", len(meals))
	}
	for _, m := range meals {
		for _, v := range []float64{m.Calories, m.Carbohydrates, m.Protein, m.Fat, m.Fiber} {
			if v < 0 || !finite(v) {
				t.Fatalf("invalid numeric value %v in %s", v, m.Name)
			}
		}
	}
	first := res.Plan[0][Breakfast][0]
	if got := first.IngredientAmounts["Tomato"]; got != (Amount{Quantity: 120, Unit: "g"}) {
		t.Errorf("tomato amount = %+v", got)
	}
	if len(res.Repairs) != 0 || len(res.Dropped) != 0 {
		t.Errorf("no repairs expected: %+v %+v", res.Repairs, res.Dropped)
	}
}

func TestValidateRejectsUnparseable(t *testing.T) {
	_, err := Validate("I cannot help with that", strictConfig())
	if !common.IsPipelineKind(err, common.KindExternalFormat) {
		t.Fatalf("err = %v, want EXTERNAL_FORMAT_ERROR", err)
	}
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"missing day", func(p map[string]any) { delete(p, "day5") }, "day5"},
		{"two breakfast options", func(p map[string]any) {
			day := p["day3"].(map[string]any)
			day["breakfast"] = day["breakfast"].([]any)[:2]
		}, "day3 breakfast"},
		{"four dinner options", func(p map[string]any) {
			day := p["day1"].(map[string]any)
			list := day["dinner"].([]any)
			day["dinner"] = append(list, list[0])
		}, "day1 dinner"},
		{"slot not an array", func(p map[string]any) {
			p["day7"].(map[string]any)["lunch"] = "soup"
		}, "day7 lunch"},
		{"option not an object", func(p map[string]any) {
			p["day2"].(map[string]any)["lunch"].([]any)[1] = "salad"
		}, "day2 lunch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan()
			tt.mutate(plan)
			_, err := ValidateRaw(plan, strictConfig())
			if !common.IsPipelineKind(err, common.KindStructuralInvalid) {
				t.Fatalf("err = %v, want STRUCTURAL_INVALID", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should name %q", err, tt.want)
			}
		})
	}
}

func TestValidateNutritionCollectsAllErrors(t *testing.T) {
	plan := validPlan()
	mealAt(plan, 0, Breakfast, 0)["calories"] = 50
	mealAt(plan, 1, Lunch, 1)["calories"] = "450"
	mealAt(plan, 2, Dinner, 2)["fat"] = -1
	delete(mealAt(plan, 3, Lunch, 0), "fiber")
	mealAt(plan, 4, Breakfast, 1)["procedures"] = "Cook it."
	mealAt(plan, 5, Breakfast, 2)["procedures"] = strings.Repeat("Stir gently and simmer ", 3) + "..."
	mealAt(plan, 6, Dinner, 0)["ingredient_amounts"] = map[string]any{}
	for d := 0; d < Days; d++ {
		mealAt(plan, d, Lunch, 2)["protein"] = "lots"
	}

	_, err := ValidateRaw(plan, strictConfig())
	pe, ok := common.AsPipelineError(err)
	if !ok || pe.Kind != common.KindNutritionInvalid {
		t.Fatalf("err = %v, want NUTRITION_INVALID", err)
	}
	if pe.Total() != 14 {
		t.Errorf("total = %d, want 14: %v", pe.Total(), pe.Details)
	}
	if !strings.Contains(pe.Error(), "showing 10 of 14 errors") {
		t.Errorf("message = %q", pe.Error())
	}
}

func TestValidateCarbsAreNotBoundedByCompleteness(t *testing.T) {
	plan := validPlan()
	mealAt(plan, 0, Dinner, 0)["carbohydrates"] = 999
	targets := nutrition.MacroTargets{CaloriesPerMeal: 500, CarbsGramsMax: 35, ProteinGramsMin: 30, FiberGramsMin: 10}
	cfg := strictConfig()
	cfg.Targets = &targets

	res, err := ValidateRaw(plan, cfg)
	if err != nil {
		t.Fatalf("carbs=999 passes completeness checks, got %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "exceeds carb limit") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected carb warning, got %v", res.Warnings)
	}
}

func TestValidateLenientMode(t *testing.T) {
	plan := validPlan()
	m := mealAt(plan, 0, Breakfast, 0)
	m["calories"] = "450"
	m["fat"] = -3
	m["procedures"] = []any{"Boil water.", "Add oats."}
	delete(m, "ingredient_amounts")

	res, err := ValidateRaw(plan, Config{Catalog: testCatalog()})
	if err != nil {
		t.Fatalf("lenient mode should accept: %v", err)
	}
	got := res.Plan[0][Breakfast][0]
	if got.Calories != 450 || got.Fat != 0 {
		t.Errorf("calories/fat = %v/%v", got.Calories, got.Fat)
	}
	if got.Procedures != "Boil water.\nAdd oats." {
		t.Errorf("procedures = %q", got.Procedures)
	}
	if got.IngredientAmounts["Tomato"] != (Amount{Quantity: 100, Unit: "g"}) {
		t.Errorf("missing amounts should default to 100g: %+v", got.IngredientAmounts)
	}
}

func TestValidateRepairsIngredientNames(t *testing.T) {
	plan := validPlan()
	m := mealAt(plan, 0, Lunch, 0)
	m["ingredients"] = []any{"Tomatoes", "chicken breast", "Blueberries", "Olive Oil", "Unicorn Steak"}
	m["ingredient_amounts"] = map[string]any{"Tomatoes": "200g", "Olive Oil": map[string]any{"amount": 1, "unit": "tbsp"}}

	res, err := ValidateRaw(plan, strictConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := res.Plan[0][Lunch][0]
	want := []string{"Tomato", "Chicken Breast", "Blueberry", "Extra Virgin Olive Oil"}
	if strings.Join(got.Ingredients, ",") != strings.Join(want, ",") {
		t.Errorf("ingredients = %v, want %v", got.Ingredients, want)
	}
	if got.IngredientAmounts["Tomato"] != (Amount{Quantity: 200, Unit: "g"}) {
		t.Errorf("tomato amount = %+v", got.IngredientAmounts["Tomato"])
	}
	if got.IngredientAmounts["Extra Virgin Olive Oil"] != (Amount{Quantity: 1, Unit: "tbsp"}) {
		t.Errorf("oil amount = %+v", got.IngredientAmounts["Extra Virgin Olive Oil"])
	}
	if got.IngredientAmounts["Chicken Breast"] != (Amount{Quantity: 100, Unit: "g"}) {
		t.Errorf("chicken amount should default: %+v", got.IngredientAmounts["Chicken Breast"])
	}
	if len(res.Dropped) != 1 || res.Dropped[0].Name != "Unicorn Steak" {
		t.Errorf("dropped = %+v", res.Dropped)
	}
	if len(res.Repairs) != 3 {
		t.Errorf("repairs = %+v", res.Repairs)
	}
}

func TestValidateRejectsTooManyUnknownIngredients(t *testing.T) {
	plan := validPlan()
	for d := 0; d < Days; d++ {
		mealAt(plan, d, Dinner, 0)["ingredients"] = []any{"Dragon Egg", "Tomato"}
	}
	if _, err := ValidateRaw(plan, strictConfig()); err != nil {
		t.Fatalf("7 unknown names is under the threshold: %v", err)
	}

	for d := 0; d < Days; d++ {
		mealAt(plan, d, Lunch, 1)["ingredients"] = []any{"Phoenix Wing"}
	}
	_, err := ValidateRaw(plan, strictConfig())
	if !common.IsPipelineKind(err, common.KindIngredientInvalid) {
		t.Fatalf("err = %v, want INGREDIENT_INVALID", err)
	}
}

func TestValidateBudgetIsAdvisory(t *testing.T) {
	cfg := strictConfig()
	cfg.WeeklyBudget = 100
	res, err := ValidateRaw(validPlan(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Budget.Checked || !res.Budget.OverBudget {
		t.Errorf("budget = %+v", res.Budget)
	}
	if res.Budget.TotalCost != 157.5 || res.Budget.Overage != 57.5 {
		t.Errorf("total/overage = %v/%v", res.Budget.TotalCost, res.Budget.Overage)
	}

	cfg.WeeklyBudget = 0
	res, _ = ValidateRaw(validPlan(), cfg)
	if res.Budget.Checked {
		t.Error("zero budget should skip the comparison")
	}
}
