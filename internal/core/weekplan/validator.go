package weekplan

import (
	"fmt"

	"go.uber.org/zap"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// DefaultMaxInvalidIngredients 超過此數量的無法對應食材即拒絕整份菜單
const DefaultMaxInvalidIngredients = 10

// carbSlackGrams 碳水超出目標多少才記錄警告
const carbSlackGrams = 5

// Config 驗證設定
type Config struct {
	Catalog               []ingredient.Ingredient
	Targets               *nutrition.MacroTargets
	Rules                 FieldRules
	MaxInvalidIngredients int
	WeeklyBudget          float64
}

// Result 通過驗證的菜單與非致命的紀錄
type Result struct {
	Plan     Plan         `json:"plan"`
	Repairs  []Repair     `json:"repairs"`
	Dropped  []Unmatched  `json:"dropped"`
	Warnings []string     `json:"warnings"`
	Budget   BudgetReport `json:"budget"`
}

// Validate 解析 → 結構 → 欄位 → 食材修復 → 成本估算
func Validate(content string, cfg Config) (*Result, error) {
	raw, err := Parse(content)
	if err != nil {
		return nil, err
	}
	return ValidateRaw(raw, cfg)
}

// ValidateRaw 對已解碼的物件執行驗證
func ValidateRaw(raw map[string]any, cfg Config) (*Result, error) {
	maxInvalid := cfg.MaxInvalidIngredients
	if maxInvalid <= 0 {
		maxInvalid = DefaultMaxInvalidIngredients
	}

	s, err := checkStructure(raw)
	if err != nil {
		return nil, err
	}

	var plan Plan
	var fieldErrs []string
	for d := 0; d < Days; d++ {
		plan[d] = make(Day, len(slotOrder))
		for _, slot := range slotOrder {
			meals := make([]Meal, 0, OptionsPerSlot)
			for i, rm := range s[d][slot] {
				label := fmt.Sprintf("%s %s option %d", DayKey(d), slot, i+1)
				meal, errs := toMeal(rm, slot, label, cfg.Rules)
				fieldErrs = append(fieldErrs, errs...)
				meals = append(meals, meal)
			}
			plan[d][slot] = meals
		}
	}
	if len(fieldErrs) > 0 {
		pe := common.NewPipelineError(common.KindNutritionInvalid, "meal plan failed nutrition validation", fieldErrs...)
		common.LogWarn("菜單欄位驗證失敗",
			zap.Int("total", pe.Total()),
			zap.Strings("sample", pe.SampleDetails()),
		)
		return nil, pe
	}

	res := &Result{
		Repairs:  []Repair{},
		Dropped:  []Unmatched{},
		Warnings: []string{},
	}
	matcher := NewMatcher(cfg.Catalog)
	for d := 0; d < Days; d++ {
		for _, slot := range slotOrder {
			for i, meal := range plan[d][slot] {
				fixed, repairs, unmatched := repairMeal(meal, matcher)
				plan[d][slot][i] = fixed
				res.Repairs = append(res.Repairs, repairs...)
				res.Dropped = append(res.Dropped, unmatched...)
			}
		}
	}
	if len(res.Dropped) > maxInvalid {
		details := make([]string, 0, len(res.Dropped))
		for _, u := range res.Dropped {
			details = append(details, fmt.Sprintf("%q in %q", u.Name, u.Meal))
		}
		return nil, common.NewPipelineError(common.KindIngredientInvalid,
			fmt.Sprintf("AI is not following instructions: %d ingredients not in the approved list", len(res.Dropped)),
			details...)
	}
	for _, r := range res.Repairs {
		common.LogWarn("食材名稱已修正",
			zap.String("meal", r.Meal),
			zap.String("from", r.From),
			zap.String("to", r.To),
			zap.String("strategy", r.Strategy),
		)
	}
	for _, u := range res.Dropped {
		msg := fmt.Sprintf("ingredient %q not found for meal %q, dropped", u.Name, u.Meal)
		res.Warnings = append(res.Warnings, msg)
		common.LogWarn("移除未知食材", zap.String("meal", u.Meal), zap.String("ingredient", u.Name))
	}

	if cfg.Targets != nil {
		res.Warnings = append(res.Warnings, macroWarnings(plan, *cfg.Targets)...)
	}

	res.Budget = EstimateBudget(plan, cfg.WeeklyBudget)
	if res.Budget.OverBudget {
		common.LogWarn("菜單超出預算",
			zap.Float64("total_cost", res.Budget.TotalCost),
			zap.Float64("weekly_budget", res.Budget.WeeklyBudget),
		)
	}

	res.Plan = plan
	return res, nil
}

// macroWarnings 碳水超標或蛋白質不足只記錄警告
func macroWarnings(p Plan, targets nutrition.MacroTargets) []string {
	var out []string
	for _, meal := range p.Meals() {
		if meal.Carbohydrates > targets.CarbsGramsMax+carbSlackGrams {
			out = append(out, fmt.Sprintf("%s exceeds carb limit: %gg > %gg", meal.Name, meal.Carbohydrates, targets.CarbsGramsMax))
		}
		if meal.Protein < targets.ProteinGramsMin*0.8 {
			out = append(out, fmt.Sprintf("%s below protein target: %gg < %gg", meal.Name, meal.Protein, targets.ProteinGramsMin))
		}
	}
	for _, w := range out {
		common.LogWarn("餐點營養偏離目標", zap.String("detail", w))
	}
	return out
}
