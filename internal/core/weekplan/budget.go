package weekplan

import "meal-planner/internal/pkg/common"

// BudgetReport 一週成本估算，僅供參考不會拒絕菜單
type BudgetReport struct {
	TotalCost    float64 `json:"total_cost"`
	WeeklyBudget float64 `json:"weekly_budget"`
	Checked      bool    `json:"checked"`
	OverBudget   bool    `json:"over_budget"`
	Overage      float64 `json:"overage"`
}

// EstimateBudget 加總所有餐點的每份成本；weeklyBudget 為 0 時不比較
func EstimateBudget(p Plan, weeklyBudget float64) BudgetReport {
	total := 0.0
	for _, meal := range p.Meals() {
		total += meal.EstimatedCostPerServing
	}
	r := BudgetReport{
		TotalCost:    common.Round1(total),
		WeeklyBudget: weeklyBudget,
	}
	if weeklyBudget > 0 {
		r.Checked = true
		if r.TotalCost > weeklyBudget {
			r.OverBudget = true
			r.Overage = common.Round1(r.TotalCost - weeklyBudget)
		}
	}
	return r
}
