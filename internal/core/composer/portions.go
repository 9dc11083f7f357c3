package composer

import (
	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/pkg/common"
)

const (
	proteinWeight          = 0.25
	vegetableWeight        = 0.20
	carbWeight             = 0.30
	fatWeight              = 0.15
	secondaryProteinWeight = 0.10

	primaryFloorServings   = 0.25
	primaryServingStep     = 0.25
	primaryDefaultCalories = 100
	vegFloorServings       = 0.5
	vegServingStep         = 0.5
	vegDefaultCalories     = 25
)

// allocatePortions 依固定權重把每餐熱量分給各角色；風味與水果不分配份量
func allocatePortions(c Composition, mealCalories float64) map[string]Portion {
	portions := map[string]Portion{}

	add := func(s ingredient.Scored, p Portion) {
		if prev, ok := portions[s.ID]; ok {
			p.Servings += prev.Servings
			p.Calories += prev.Calories
		}
		portions[s.ID] = p
	}

	roles := []struct {
		item   *ingredient.Scored
		weight float64
	}{
		{c.PrimaryProtein, proteinWeight},
		{c.PrimaryCarb, carbWeight},
		{c.HealthyFats, fatWeight},
		{c.SecondaryProtein, secondaryProteinWeight},
	}
	for _, r := range roles {
		if r.item == nil {
			continue
		}
		add(*r.item, servingPortion(*r.item, mealCalories*r.weight,
			primaryDefaultCalories, primaryFloorServings, primaryServingStep, "serving"))
	}

	if len(c.Vegetables) > 0 {
		perVeg := mealCalories * vegetableWeight / float64(len(c.Vegetables))
		for _, v := range c.Vegetables {
			add(v, servingPortion(v, perVeg, vegDefaultCalories, vegFloorServings, vegServingStep, "cup"))
		}
	}
	return portions
}

func servingPortion(s ingredient.Scored, targetCalories, defaultCalories, floor, step float64, defaultUnit string) Portion {
	perServing := s.CaloriesPerServing
	if perServing <= 0 {
		perServing = defaultCalories
	}
	servings := targetCalories / perServing
	if servings < floor {
		servings = floor
	}
	servings = common.RoundTo(servings, step)
	if servings < floor {
		servings = floor
	}

	unit := s.TypicalServingSize
	if unit == "" {
		unit = defaultUnit
	}
	return Portion{
		Servings: servings,
		Calories: common.Round1(servings * perServing),
		Unit:     unit,
	}
}

// aggregate 只計入有份量的食材，每個食材只計一次
func aggregate(c Composition, portions map[string]Portion) Breakdown {
	var b Breakdown
	var gl []diabetes.Portion
	counted := map[string]bool{}

	for _, s := range c.Components() {
		p, ok := portions[s.ID]
		if !ok || counted[s.ID] {
			continue
		}
		counted[s.ID] = true
		m := p.Servings
		b.Calories += s.CaloriesPerServing * m
		b.Protein += s.ProteinGrams * m
		b.Carbs += s.CarbsGrams * m
		b.Fat += s.FatGrams * m
		b.Fiber += s.FiberGrams * m
		b.Sugar += s.SugarGrams * m
		b.Sodium += s.SodiumMg * m
		gl = append(gl, diabetes.Portion{GlycemicIndex: s.GI(), CarbsGrams: s.CarbsGrams, Multiplier: m})
	}

	return Breakdown{
		Calories:     common.Round1(b.Calories),
		Protein:      common.Round1(b.Protein),
		Carbs:        common.Round1(b.Carbs),
		Fat:          common.Round1(b.Fat),
		Fiber:        common.Round1(b.Fiber),
		Sugar:        common.Round1(b.Sugar),
		Sodium:       common.Round1(b.Sodium),
		GlycemicLoad: diabetes.GlycemicLoad(gl),
	}
}
