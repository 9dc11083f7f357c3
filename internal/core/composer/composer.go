// Package composer 依餐別挑選食材組成一餐，分配份量並彙總營養
package composer

import (
	"fmt"
	"sort"

	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// MealType 餐別
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// ParseMealType 解析餐別
func ParseMealType(s string) (MealType, error) {
	switch t := MealType(common.Normalize(s)); t {
	case Breakfast, Lunch, Dinner, Snack:
		return t, nil
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// Difficulty 料理難度
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
)

// Composition 一餐的組成，未選到的角色為 nil
type Composition struct {
	PrimaryProtein   *ingredient.Scored  `json:"primary_protein"`
	SecondaryProtein *ingredient.Scored  `json:"secondary_protein"`
	PrimaryCarb      *ingredient.Scored  `json:"primary_carb"`
	Vegetables       []ingredient.Scored `json:"vegetables"`
	HealthyFats      *ingredient.Scored  `json:"healthy_fats"`
	Flavor           *ingredient.Scored  `json:"flavor"`
	Fiber            *ingredient.Scored  `json:"fiber"`
}

// Components 依角色順序列出所有已選食材
func (c Composition) Components() []ingredient.Scored {
	var out []ingredient.Scored
	for _, s := range []*ingredient.Scored{c.PrimaryProtein, c.SecondaryProtein, c.PrimaryCarb} {
		if s != nil {
			out = append(out, *s)
		}
	}
	out = append(out, c.Vegetables...)
	for _, s := range []*ingredient.Scored{c.HealthyFats, c.Flavor, c.Fiber} {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// Portion 單一食材的份量
type Portion struct {
	Servings float64 `json:"servings"`
	Calories float64 `json:"calories"`
	Unit     string  `json:"unit"`
}

// Breakdown 營養彙總，各值取一位小數
type Breakdown struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	Fiber        float64 `json:"fiber"`
	Sugar        float64 `json:"sugar"`
	Sodium       float64 `json:"sodium"`
	GlycemicLoad float64 `json:"glycemic_load"`
}

// Structure 組成完成的一餐
type Structure struct {
	MealType           MealType               `json:"meal_type"`
	TargetNutrition    nutrition.MacroTargets `json:"target_nutrition"`
	Composition        Composition            `json:"composition"`
	Portions           map[string]Portion     `json:"portions"`
	NutritionBreakdown Breakdown              `json:"nutrition_breakdown"`
	CookingMethod      string                 `json:"cooking_method"`
	Difficulty         Difficulty             `json:"difficulty"`
}

// Request 組餐輸入；Ingredients 應為已過濾的目錄
type Request struct {
	MealType    MealType
	Targets     nutrition.MacroTargets
	Ingredients []ingredient.Ingredient
	Analysis    diabetes.Analysis
	Budget      ingredient.BudgetLevel
	Constraints ingredient.Constraints
}

// Compose 挑選食材 → 分配份量 → 彙總營養 → 決定烹調方式
func Compose(req Request) (Structure, error) {
	mt, err := ParseMealType(string(req.MealType))
	if err != nil {
		return Structure{}, err
	}
	req.MealType = mt

	s := Structure{
		MealType:        req.MealType,
		TargetNutrition: req.Targets,
		Composition:     Composition{Vegetables: []ingredient.Scored{}},
		Portions:        map[string]Portion{},
		Difficulty:      Easy,
	}

	b := categorize(req.Ingredients)
	scored := ingredient.ScoreAll(req.Ingredients, req.Analysis, req.Budget, req.Constraints)
	byID := make(map[string]ingredient.Scored, len(scored))
	for _, sc := range scored {
		byID[sc.ID] = sc
	}
	pick := func(candidates []ingredient.Ingredient, n int) []ingredient.Scored {
		return selectBestFrom(candidates, byID, n)
	}
	one := func(candidates []ingredient.Ingredient) *ingredient.Scored {
		best := pick(candidates, 1)
		if len(best) == 0 {
			return nil
		}
		return &best[0]
	}

	c := &s.Composition
	switch req.MealType {
	case Breakfast:
		c.PrimaryProtein = one(concat(b.eggs, b.dairy, b.lean))
		if req.Analysis.Severity != diabetes.SeveritySevere {
			var carbs []ingredient.Ingredient
			for _, g := range b.wholegrain {
				if g.SuitableForBreakfast() || nameHasAny(g, []string{"oat", "quinoa"}) {
					carbs = append(carbs, g)
				}
			}
			c.PrimaryCarb = one(carbs)
		}
		c.Vegetables = pick(concat(b.lowCarb, b.aromatics), 1)
		c.HealthyFats = one(concat(b.nuts, b.seeds, b.avocado))
		if req.Analysis.Severity == diabetes.SeverityNormal || req.Analysis.Severity == diabetes.SeverityMild {
			c.Fiber = one(concat(b.berries, b.lowSugarFruit))
		}
		s.Difficulty = Easy
	case Lunch:
		c.PrimaryProtein = one(concat(b.lean, b.fish, b.plant))
		c.PrimaryCarb = one(concat(b.wholegrain, b.legumes, b.starchyVeg))
		c.Vegetables = pick(concat(b.leafy, b.cruciferous, b.colorful, b.highFiber), 2)
		c.HealthyFats = one(concat(b.oils, b.olives, b.nuts))
		c.Flavor = one(concat(b.herbs, b.spices, b.aromatics))
		s.Difficulty = Medium
	case Dinner:
		c.PrimaryProtein = one(concat(b.fish, b.lean, b.fatty))
		c.SecondaryProtein = one(concat(b.plant, b.legumes))
		c.PrimaryCarb = one(concat(b.wholegrain, firstN(b.lowCarb, 3)))
		c.Vegetables = pick(concat(b.leafy, b.cruciferous, b.colorful), 3)
		c.HealthyFats = one(concat(b.oils, b.olives))
		c.Flavor = one(concat(b.herbs, b.spices, b.aromatics))
		s.Difficulty = Medium
	case Snack:
		c.PrimaryProtein = one(concat(b.dairy, b.nuts, b.plant))
		c.Vegetables = pick(concat(b.lowCarb, b.berries), 1)
		s.Difficulty = Easy
	}

	s.Portions = allocatePortions(s.Composition, req.Targets.CaloriesPerMeal)
	s.NutritionBreakdown = aggregate(s.Composition, s.Portions)
	s.CookingMethod, s.Difficulty = cookingMethod(s.MealType, s.Composition, s.Difficulty)
	return s, nil
}

// selectBestFrom 去重、只留飲食相容者，依總分穩定排序取前 n 個
func selectBestFrom(candidates []ingredient.Ingredient, byID map[string]ingredient.Scored, n int) []ingredient.Scored {
	seen := make(map[string]bool, len(candidates))
	available := make([]ingredient.Scored, 0, len(candidates))
	for _, cand := range candidates {
		if seen[cand.ID] {
			continue
		}
		seen[cand.ID] = true
		sc, ok := byID[cand.ID]
		if !ok || !sc.Profile.DietaryCompatibility.Compatible {
			continue
		}
		available = append(available, sc)
	}
	sort.SliceStable(available, func(a, b int) bool {
		return available[a].Profile.OverallScore > available[b].Profile.OverallScore
	})
	if len(available) > n {
		available = available[:n]
	}
	return available
}
