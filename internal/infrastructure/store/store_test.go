package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/weekplan"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedIngredients(t *testing.T, s *Store) map[string]string {
	t.Helper()
	ids := map[string]string{}
	for _, it := range []ingredient.Ingredient{
		{Name: "Spinach", Category: "vegetables", CaloriesPerServing: 7, CarbsGrams: 1.1, FiberGrams: 0.7, GlycemicIndex: 15, IsDiabeticFriendly: true, IsVegan: true},
		{Name: "Salmon", Category: "proteins", CaloriesPerServing: 208, ProteinGrams: 20, FatGrams: 13, CommonAllergens: []string{"fish"}, IsDiabeticFriendly: true},
		{Name: "White Bread", Category: "grains", CaloriesPerServing: 79, CarbsGrams: 15, GlycemicIndex: 75, Availability: ingredient.Seasonal},
	} {
		id, err := s.SaveIngredient(context.Background(), it)
		if err != nil {
			t.Fatalf("SaveIngredient(%s): %v", it.Name, err)
		}
		ids[it.Name] = id
	}
	return ids
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	hba1c := 7.2

	id, err := s.SaveProfile(ctx, planner.Profile{
		User: planner.User{
			FullName:     "Ana Reyes",
			Gender:       "female",
			Age:          52,
			HeightCm:     160,
			WeightKg:     68,
			DiabetesType: "Type 2",
		},
		Lab:            &diabetes.LabResult{HbA1c: &hba1c},
		Allergies:      []string{"shellfish", "peanut"},
		ReligiousDiets: []string{"halal"},
	})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if id == "" {
		t.Fatal("empty user id")
	}

	p, err := s.Profile(ctx, id)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.User.FullName != "Ana Reyes" || p.User.Budget != ingredient.BudgetMedium {
		t.Errorf("user = %+v", p.User)
	}
	if p.Lab == nil || p.Lab.HbA1c == nil || *p.Lab.HbA1c != 7.2 || p.Lab.FastingBloodSugar != nil {
		t.Errorf("lab = %+v", p.Lab)
	}
	if len(p.Allergies) != 2 || p.Allergies[0] != "peanut" {
		t.Errorf("allergies = %v", p.Allergies)
	}
	if len(p.ReligiousDiets) != 1 || p.ReligiousDiets[0] != "halal" {
		t.Errorf("diets = %v", p.ReligiousDiets)
	}

	if _, err := s.Profile(ctx, "missing"); !errors.Is(err, common.ErrUserNotFound) {
		t.Errorf("missing user err = %v", err)
	}
}

func TestProfileWithoutLab(t *testing.T) {
	s := openTestStore(t)
	id, err := s.SaveProfile(context.Background(), planner.Profile{User: planner.User{FullName: "No Lab"}})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	p, err := s.Profile(context.Background(), id)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Lab != nil || p.Allergies == nil || len(p.Allergies) != 0 {
		t.Errorf("profile = %+v", p)
	}
}

func TestIngredientsQuery(t *testing.T) {
	s := openTestStore(t)
	ids := seedIngredients(t, s)
	ctx := context.Background()

	all, err := s.Ingredients(ctx, planner.CatalogQuery{})
	if err != nil {
		t.Fatalf("Ingredients: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Salmon" || all[2].Name != "White Bread" {
		t.Fatalf("all = %v", ingredient.Names(all))
	}
	if all[0].CommonAllergens[0] != "fish" {
		t.Errorf("allergens = %v", all[0].CommonAllergens)
	}
	if all[2].Availability != ingredient.Seasonal || all[1].Availability != ingredient.Available {
		t.Errorf("availability = %s / %s", all[2].Availability, all[1].Availability)
	}

	tests := []struct {
		name string
		q    planner.CatalogQuery
		want []string
	}{
		{"category", planner.CatalogQuery{Category: "vegetables"}, []string{"Spinach"}},
		{"diabetic friendly", planner.CatalogQuery{DiabeticFriendlyOnly: true}, []string{"Salmon", "Spinach"}},
		{"search", planner.CatalogQuery{Search: "BREAD"}, []string{"White Bread"}},
		{"ids", planner.CatalogQuery{IDs: []string{ids["Spinach"], ids["White Bread"]}}, []string{"Spinach", "White Bread"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Ingredients(ctx, tt.q)
			if err != nil {
				t.Fatalf("Ingredients: %v", err)
			}
			names := ingredient.Names(got)
			if len(names) != len(tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", names, tt.want)
				}
			}
		})
	}
}

func TestSaveIngredientUpsertsByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveIngredient(ctx, ingredient.Ingredient{Name: "Oats", CarbsGrams: 27})
	if err != nil {
		t.Fatalf("SaveIngredient: %v", err)
	}
	second, err := s.SaveIngredient(ctx, ingredient.Ingredient{Name: "Oats", CarbsGrams: 25})
	if err != nil {
		t.Fatalf("SaveIngredient: %v", err)
	}
	if first != second {
		t.Errorf("ids differ: %s vs %s", first, second)
	}
	items, _ := s.Ingredients(ctx, planner.CatalogQuery{})
	if len(items) != 1 || items[0].CarbsGrams != 25 {
		t.Errorf("items = %+v", items)
	}
}

func plannedWeek(start time.Time, ids map[string]string) []weekplan.PlannedMeal {
	var out []weekplan.PlannedMeal
	for d := 0; d < weekplan.Days; d++ {
		for _, slot := range weekplan.Slots() {
			out = append(out, weekplan.PlannedMeal{
				Date: start.AddDate(0, 0, d),
				Slot: slot,
				Meal: weekplan.MealRow{
					Name:        string(slot) + " bowl",
					MealType:    slot,
					Calories:    400,
					Carbs:       30,
					Ingredients: []string{"Spinach", "Salmon"},
					IngredientAmounts: map[string]weekplan.Amount{
						"Spinach": {Quantity: 80, Unit: "g"},
						"Salmon":  {Quantity: 120, Unit: "g"},
					},
					Procedures:    "Steam the spinach, bake the salmon, combine and serve.",
					ServingsCount: 1,
				},
				Links: []weekplan.IngredientLink{
					{IngredientID: ids["Spinach"], QuantityGrams: 80, Unit: "g"},
					{IngredientID: ids["Salmon"], QuantityGrams: 120, Unit: "g"},
				},
			})
		}
	}
	return out
}

func TestSavePlanAndQuery(t *testing.T) {
	s := openTestStore(t)
	ids := seedIngredients(t, s)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	stored, err := s.SavePlan(ctx, "u-1", plannedWeek(start, ids), false)
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if len(stored) != 21 || stored[0].ID == "" {
		t.Fatalf("stored = %d", len(stored))
	}

	all, err := s.AIPlans(ctx, "u-1", start, time.Time{})
	if err != nil {
		t.Fatalf("AIPlans: %v", err)
	}
	if len(all) != 21 {
		t.Errorf("AIPlans = %d", len(all))
	}
	if all[0].IngredientAmounts["Salmon"].Quantity != 120 {
		t.Errorf("amounts = %+v", all[0].IngredientAmounts)
	}

	window, err := s.AIPlans(ctx, "u-1", start.AddDate(0, 0, 2), start.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("AIPlans: %v", err)
	}
	if len(window) != 6 {
		t.Errorf("window = %d", len(window))
	}
	if other, _ := s.AIPlans(ctx, "u-2", start, time.Time{}); len(other) != 0 {
		t.Errorf("other user sees %d meals", len(other))
	}

	detail, err := s.Meal(ctx, stored[0].ID)
	if err != nil {
		t.Fatalf("Meal: %v", err)
	}
	if !detail.Date.Equal(start) || len(detail.MealIngredients) != 2 {
		t.Errorf("detail = %+v", detail)
	}
	for _, mi := range detail.MealIngredients {
		if mi.Ingredient.Name == "Spinach" && mi.Quantity != 80 {
			t.Errorf("spinach quantity = %v", mi.Quantity)
		}
		if mi.Ingredient.Name == "" {
			t.Error("ingredient not loaded")
		}
	}
}

func TestSavePlanReplace(t *testing.T) {
	s := openTestStore(t)
	ids := seedIngredients(t, s)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	old, err := s.SavePlan(ctx, "u-1", plannedWeek(start, ids), false)
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if _, err := s.SavePlan(ctx, "u-1", plannedWeek(start, ids), false); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if all, _ := s.AIPlans(ctx, "u-1", start, time.Time{}); len(all) != 42 {
		t.Fatalf("appended plan = %d", len(all))
	}

	if _, err := s.SavePlan(ctx, "u-1", plannedWeek(start, ids), true); err != nil {
		t.Fatalf("SavePlan replace: %v", err)
	}
	if all, _ := s.AIPlans(ctx, "u-1", start, time.Time{}); len(all) != 21 {
		t.Errorf("replaced plan = %d", len(all))
	}
	if _, err := s.Meal(ctx, old[0].ID); !errors.Is(err, common.ErrMealNotFound) {
		t.Errorf("old meal err = %v", err)
	}
}

func TestMealNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Meal(context.Background(), "missing"); !errors.Is(err, common.ErrMealNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSeedFromFile(t *testing.T) {
	s := openTestStore(t)
	seed := Seed{
		Ingredients: []ingredient.Ingredient{{Name: "Lentils", Category: "legumes", CarbsGrams: 20}},
		Profiles: []planner.Profile{{
			User:      planner.User{ID: "seed-user", FullName: "Seed", Gender: "male", Age: 40, HeightCm: 180, WeightKg: 85},
			Allergies: []string{"milk"},
		}},
	}
	data, _ := json.Marshal(seed)
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := s.SeedFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("SeedFromFile: %v", err)
	}
	if n != 2 {
		t.Errorf("seeded %d records", n)
	}
	p, err := s.Profile(context.Background(), "seed-user")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(p.Allergies) != 1 || p.User.WeightKg != 85 {
		t.Errorf("profile = %+v", p)
	}
}

func TestSeedRejectsBadCatalog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Seed(ctx, Seed{Ingredients: []ingredient.Ingredient{{Name: "Kale"}, {Category: "vegetables"}}})
	if err == nil {
		t.Fatal("expected error for an unnamed ingredient")
	}
	items, _ := s.Ingredients(ctx, planner.CatalogQuery{})
	if len(items) != 0 {
		t.Errorf("nothing should be written, got %d ingredients", len(items))
	}

	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(`{"ingredients":[{"name":"Kale","colour":"green"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SeedFromFile(ctx, path); err == nil {
		t.Error("unknown seed fields should be rejected")
	}
}
