package composer

var cookingMethods = map[MealType][]string{
	Breakfast: {"scrambled", "poached", "sautéed", "steamed"},
	Lunch:     {"grilled", "sautéed", "roasted", "steamed", "raw"},
	Dinner:    {"grilled", "baked", "roasted", "sautéed", "braised"},
	Snack:     {"raw", "toasted", "blended"},
}

var (
	proteinWithVegMethods = []string{"sautéed", "roasted", "grilled"}
	proteinOnlyMethods    = []string{"grilled", "baked", "poached"}
	complexMethods        = map[string]bool{"braised": true, "roasted": true, "baked": true}
)

// cookingMethod 依餐別與有無蛋白質、蔬菜挑選烹調方式；燉、烤、焗會把難度提高為 medium
func cookingMethod(mealType MealType, c Composition, difficulty Difficulty) (string, Difficulty) {
	available, ok := cookingMethods[mealType]
	if !ok {
		available = []string{"sautéed"}
	}

	method := available[0]
	hasProtein := c.PrimaryProtein != nil
	switch {
	case hasProtein && len(c.Vegetables) > 0:
		method = firstAvailable(proteinWithVegMethods, available)
	case hasProtein:
		method = firstAvailable(proteinOnlyMethods, available)
	}

	if complexMethods[method] {
		difficulty = Medium
	}
	return method, difficulty
}

func firstAvailable(preferred, available []string) string {
	for _, p := range preferred {
		for _, a := range available {
			if p == a {
				return p
			}
		}
	}
	return available[0]
}
