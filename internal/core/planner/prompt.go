package planner

import (
	"fmt"
	"strings"

	"meal-planner/internal/core/composer"
	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// promptIngredient 傳給模型的食材欄位
type promptIngredient struct {
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	CaloriesPerServing float64  `json:"calories_per_serving"`
	ProteinGrams       float64  `json:"protein_grams"`
	CarbsGrams         float64  `json:"carbs_grams"`
	FatGrams           float64  `json:"fat_grams"`
	FiberGrams         float64  `json:"fiber_grams"`
	IsDiabeticFriendly bool     `json:"is_diabetic_friendly"`
	GlycemicIndex      float64  `json:"glycemic_index"`
	CostPerServing     float64  `json:"cost_per_serving"`
	IsHalal            bool     `json:"is_halal"`
	IsKosher           bool     `json:"is_kosher"`
	IsCatholic         bool     `json:"is_catholic"`
	IsVegetarian       bool     `json:"is_vegetarian"`
	IsVegan            bool     `json:"is_vegan"`
	CommonAllergens    []string `json:"common_allergens"`
	TypicalServingSize string   `json:"typical_serving_size"`
	Availability       string   `json:"availability"`
}

type promptUser struct {
	ID            string  `json:"id"`
	FullName      string  `json:"full_name,omitempty"`
	Gender        string  `json:"gender"`
	Age           int     `json:"age"`
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	DiabetesType  string  `json:"diabetes_type"`
	Budget        string  `json:"budget"`
	BMR           float64 `json:"bmr"`
	DailyCalories float64 `json:"daily_calories"`
}

type promptHealth struct {
	LabResults       *diabetes.LabResult    `json:"lab_results"`
	DiabetesAnalysis diabetes.Analysis      `json:"diabetes_analysis"`
	MacroTargets     nutrition.MacroTargets `json:"macro_targets"`
}

type promptConstraints struct {
	Allergies                 []string `json:"allergies"`
	ReligiousDiets            []string `json:"religious_diets"`
	AvailableIngredientsCount int      `json:"available_ingredients_count"`
}

// planContext 模型的使用者訊息內容
type planContext struct {
	UserProfile          promptUser                          `json:"user_profile"`
	HealthAnalysis       promptHealth                        `json:"health_analysis"`
	Constraints          promptConstraints                   `json:"constraints"`
	AvailableIngredients []promptIngredient                  `json:"available_ingredients"`
	CompositionHints     map[composer.MealType]hintStructure `json:"composition_hints,omitempty"`
}

// hintStructure 組餐結果的精簡版本，只列出食材名稱
type hintStructure struct {
	Ingredients   []string           `json:"ingredients"`
	Nutrition     composer.Breakdown `json:"nutrition"`
	CookingMethod string             `json:"cooking_method"`
}

func toPromptIngredients(items []ingredient.Ingredient) []promptIngredient {
	out := make([]promptIngredient, 0, len(items))
	for _, it := range items {
		allergens := it.CommonAllergens
		if allergens == nil {
			allergens = []string{}
		}
		out = append(out, promptIngredient{
			Name:               it.Name,
			Category:           it.Category,
			CaloriesPerServing: it.CaloriesPerServing,
			ProteinGrams:       it.ProteinGrams,
			CarbsGrams:         it.CarbsGrams,
			FatGrams:           it.FatGrams,
			FiberGrams:         it.FiberGrams,
			IsDiabeticFriendly: it.IsDiabeticFriendly,
			GlycemicIndex:      it.GI(),
			CostPerServing:     it.Cost(),
			IsHalal:            it.IsHalal,
			IsKosher:           it.IsKosher,
			IsCatholic:         it.IsCatholic,
			IsVegetarian:       it.IsVegetarian,
			IsVegan:            it.IsVegan,
			CommonAllergens:    allergens,
			TypicalServingSize: it.TypicalServingSize,
			Availability:       string(it.Availability),
		})
	}
	return out
}

func toHint(s composer.Structure) hintStructure {
	names := make([]string, 0, len(s.Portions))
	for _, c := range s.Composition.Components() {
		names = append(names, c.Name)
	}
	return hintStructure{
		Ingredients:   names,
		Nutrition:     s.NutritionBreakdown,
		CookingMethod: s.CookingMethod,
	}
}

// encodeContext 序列化使用者訊息
func encodeContext(c planContext) (string, error) {
	data, err := common.ToJSON(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode plan context: %w", err)
	}
	return data, nil
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return "- " + empty
	}
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(it)
	}
	return sb.String()
}

// systemPrompt 生成一週菜單的系統指令
func systemPrompt(p *Profile, analysis diabetes.Analysis, t nutrition.MacroTargets, available int, opts Options) string {
	restrictions := append(append([]string{}, p.Allergies...), p.ReligiousDiets...)
	restrictionText := common.StringSliceToString(restrictions)
	if restrictionText == "" {
		restrictionText = "None"
	}

	amountRule := `"ingredient_amounts": {"<ingredient name>": {"quantity": number, "unit": "g"}},`
	if !opts.UseIngredientAmounts {
		amountRule = `"ingredient_amounts": {"<ingredient name>": {"quantity": number, "unit": "g"}}, // optional`
	}

	return fmt.Sprintf(`You are an advanced diabetic meal planning assistant.

HEALTH ANALYSIS RESULTS:
- Diabetes Severity: %s
- Lab-Based Carb Limit: %.0fg per meal (STRICT)
- Calorie Target: %.0f per meal
- Fiber Minimum: %.0fg per meal
- Protein Target: %.0fg per meal

CRITICAL RECOMMENDATIONS:
%s

RISK FACTORS IDENTIFIED:
%s

NUTRITIONAL PARAMETERS (Per Meal):
- Calories: %.0f
- Max Carbohydrates: %.0fg (NEVER EXCEED)
- Min Protein: %.0fg
- Min Fiber: %.0fg
- Healthy Fats: ~%.0fg

CONSTRAINTS:
- Available Ingredients: %d (pre-filtered)
- Budget Level: %s
- Dietary Restrictions: %s
- User Profile: %s, %dy, %.0fkg, %s

MEAL GENERATION RULES:
1. NEVER exceed carb limits
2. Prioritize low-glycemic ingredients (GI < 55 when possible)
3. Include high-fiber ingredients in every meal
4. Balance meals with adequate protein for satiety
5. Calculate realistic glycemic loads for each meal
6. Use ONLY ingredient names exactly as written in available_ingredients
7. Every meal needs calories between 100 and 1000 and numeric carbohydrates, protein, fat and fiber
8. procedures must be complete step-by-step instructions of at least 50 characters, never abbreviated with "..."

Return ONLY valid JSON with this exact structure, day1 through day7, each slot holding exactly 3 options:
{
  "day1": {
    "breakfast": [
      {
        "name": "string",
        "meal_type": "breakfast",
        "calories": number,
        "carbohydrates": number,
        "protein": number,
        "fat": number,
        "fiber": number,
        "glycemic_load": number,
        "ingredients": ["string"],
        %s
        "procedures": "string",
        "preparation_time": "string",
        "health_notes": "string",
        "estimated_cost_per_serving": number,
        "serving_size": "string",
        "servings_count": number
      }
    ],
    "lunch": [],
    "dinner": []
  }
}`,
		strings.ToUpper(string(analysis.Severity)),
		analysis.CarbLimitGramsPerMeal,
		t.CaloriesPerMeal,
		t.FiberGramsMin,
		t.ProteinGramsMin,
		bulletList(analysis.Recommendations, "None"),
		bulletList(analysis.RiskFactors, "None detected"),
		t.CaloriesPerMeal,
		t.CarbsGramsMax,
		t.ProteinGramsMin,
		t.FiberGramsMin,
		t.FatGramsApprox,
		available,
		p.User.Budget,
		restrictionText,
		p.User.Gender,
		p.User.Age,
		p.User.WeightKg,
		p.User.DiabetesType,
		amountRule,
	)
}
