package ingredient

func sampleCatalog() []Ingredient {
	return []Ingredient{
		{ID: "1", Name: "Salmon", Category: "Fish", CaloriesPerServing: 208, ProteinGrams: 20, FatGrams: 13, GlycemicIndex: 0, CostPerServing: 3.5, IsDiabeticFriendly: true, IsHalal: true, IsKosher: true, IsCatholic: true, CommonAllergens: []string{"fish"}, Availability: Available},
		{ID: "2", Name: "Peanut Butter", Category: "Nuts", CaloriesPerServing: 190, ProteinGrams: 7, CarbsGrams: 7, FatGrams: 16, FiberGrams: 2, GlycemicIndex: 14, CostPerServing: 0.4, IsHalal: true, IsKosher: true, IsCatholic: true, IsVegetarian: true, IsVegan: true, CommonAllergens: []string{"Peanuts"}, Availability: Available},
		{ID: "3", Name: "White Bread", Category: "Grains", CaloriesPerServing: 80, ProteinGrams: 3, CarbsGrams: 15, GlycemicIndex: 90, CostPerServing: 0.3, IsHalal: true, IsKosher: true, IsCatholic: true, IsVegetarian: true, IsVegan: true, Availability: Available},
		{ID: "4", Name: "Brown Rice", Category: "Grains", CaloriesPerServing: 216, ProteinGrams: 5, CarbsGrams: 45, FiberGrams: 3.5, GlycemicIndex: 50, CostPerServing: 0.5, IsDiabeticFriendly: true, IsHalal: true, IsKosher: true, IsCatholic: true, IsVegetarian: true, IsVegan: true, Availability: Available},
		{ID: "5", Name: "Spinach", Category: "Leafy Greens", CaloriesPerServing: 7, ProteinGrams: 1, CarbsGrams: 1, FiberGrams: 0.7, GlycemicIndex: 15, CostPerServing: 0.8, IsDiabeticFriendly: true, IsHalal: true, IsKosher: true, IsCatholic: true, IsVegetarian: true, IsVegan: true, Availability: Seasonal},
		{ID: "6", Name: "Pork Chop", Category: "Protein", CaloriesPerServing: 231, ProteinGrams: 25, FatGrams: 14, CostPerServing: 2.5, IsCatholic: true, Availability: Available},
		{ID: "7", Name: "Dragonfruit", Category: "Fruits", CaloriesPerServing: 60, CarbsGrams: 13, FiberGrams: 3, GlycemicIndex: 48, CostPerServing: 4.5, IsHalal: true, IsKosher: true, IsCatholic: true, IsVegetarian: true, IsVegan: true, Availability: Unavailable},
	}
}

func byName(items []Ingredient, name string) (Ingredient, bool) {
	for _, it := range items {
		if it.Name == name {
			return it, true
		}
	}
	return Ingredient{}, false
}
