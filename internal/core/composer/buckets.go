package composer

import (
	"strings"

	"meal-planner/internal/core/ingredient"
)

const (
	leanFatCeiling        = 5
	plantProteinFloor     = 10
	dairyProteinFloor     = 5
	wholegrainFiberFloor  = 2
	starchyVegCarbFloor   = 15
	lowCarbVegCeiling     = 5
	highFiberVegFloor     = 3
	lowSugarFruitCarbsMax = 10
)

var (
	cruciferousNames = []string{"broccoli", "cauliflower", "cabbage", "brussels sprouts"}
	colorfulNames    = []string{"red", "orange", "yellow", "purple"}
	berryNames       = []string{"berry", "berries", "strawberry", "blueberry", "raspberry"}
	aromaticNames    = []string{"onion", "garlic", "ginger", "shallot"}
)

// buckets 依分類與名稱關鍵字分組的候選食材，同一食材可出現在多個分組
type buckets struct {
	lean, fatty, plant, fish, eggs, dairy []ingredient.Ingredient
	wholegrain, starchyVeg, legumes       []ingredient.Ingredient
	leafy, cruciferous, colorful          []ingredient.Ingredient
	lowCarb, highFiber                    []ingredient.Ingredient
	oils, nuts, seeds, avocado, olives    []ingredient.Ingredient
	lowSugarFruit, berries                []ingredient.Ingredient
	herbs, spices, aromatics              []ingredient.Ingredient
}

func nameHasAny(i ingredient.Ingredient, words []string) bool {
	name := strings.ToLower(i.Name)
	for _, w := range words {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

func categorize(items []ingredient.Ingredient) buckets {
	var b buckets
	for _, i := range items {
		name := strings.ToLower(i.Name)
		switch i.Category {
		case "Protein":
			if i.FatGrams < leanFatCeiling {
				b.lean = append(b.lean, i)
			} else {
				b.fatty = append(b.fatty, i)
			}
		case "Fish", "Seafood":
			b.fish = append(b.fish, i)
		case "Dairy":
			if i.ProteinGrams > dairyProteinFloor {
				b.dairy = append(b.dairy, i)
			}
		case "Legumes":
			b.legumes = append(b.legumes, i)
		case "Oils":
			b.oils = append(b.oils, i)
		case "Seeds":
			b.seeds = append(b.seeds, i)
		case "Herbs":
			b.herbs = append(b.herbs, i)
		case "Spices":
			b.spices = append(b.spices, i)
		case "Vegetables":
			if i.CarbsGrams > starchyVegCarbFloor {
				b.starchyVeg = append(b.starchyVeg, i)
			}
			if nameHasAny(i, colorfulNames) {
				b.colorful = append(b.colorful, i)
			}
			if i.CarbsGrams < lowCarbVegCeiling {
				b.lowCarb = append(b.lowCarb, i)
			}
			if i.FiberGrams > highFiberVegFloor {
				b.highFiber = append(b.highFiber, i)
			}
		case "Fruits":
			if i.CarbsGrams < lowSugarFruitCarbsMax {
				b.lowSugarFruit = append(b.lowSugarFruit, i)
			}
			if nameHasAny(i, berryNames) {
				b.berries = append(b.berries, i)
			}
		}

		if i.Category == "Nuts" {
			b.nuts = append(b.nuts, i)
		}
		if (i.Category == "Legumes" || i.Category == "Nuts") && i.ProteinGrams > plantProteinFloor {
			b.plant = append(b.plant, i)
		}
		if (i.Category == "Grains" || i.Category == "Starches") && i.FiberGrams > wholegrainFiberFloor {
			b.wholegrain = append(b.wholegrain, i)
		}
		if strings.Contains(name, "egg") {
			b.eggs = append(b.eggs, i)
		}
		if i.Category == "Leafy Greens" || strings.Contains(name, "lettuce") || strings.Contains(name, "spinach") {
			b.leafy = append(b.leafy, i)
		}
		if nameHasAny(i, cruciferousNames) {
			b.cruciferous = append(b.cruciferous, i)
		}
		if strings.Contains(name, "avocado") {
			b.avocado = append(b.avocado, i)
		}
		if strings.Contains(name, "olive") {
			b.olives = append(b.olives, i)
		}
		if nameHasAny(i, aromaticNames) {
			b.aromatics = append(b.aromatics, i)
		}
	}
	return b
}

func concat(groups ...[]ingredient.Ingredient) []ingredient.Ingredient {
	var out []ingredient.Ingredient
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func firstN(items []ingredient.Ingredient, n int) []ingredient.Ingredient {
	if len(items) > n {
		return items[:n]
	}
	return items
}
