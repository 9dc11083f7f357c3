package store

import (
	"time"

	"gorm.io/gorm"

	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/weekplan"
	"meal-planner/internal/pkg/common"
)

// base 字串主鍵，建立時自動產生 UUID
type base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = common.GenerateUUID()
	}
	return nil
}

// User 使用者
type User struct {
	base
	FullName     string `gorm:"size:120"`
	Gender       string `gorm:"size:16"`
	Age          int
	HeightCm     float64
	WeightKg     float64
	DiabetesType string `gorm:"size:32"`
	Budget       string `gorm:"size:16;default:medium"`
	WeeklyBudget float64
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// LabResult 檢驗紀錄，未檢測的欄位為 NULL
type LabResult struct {
	base
	UserID                 string `gorm:"size:36;not null;index"`
	HbA1c                  *float64
	FastingBloodSugar      *float64
	PostprandialBloodSugar *float64
	GlucoseTolerance       *float64
	TestDate               time.Time `gorm:"index"`
}

func (LabResult) TableName() string {
	return "lab_results"
}

// Allergy 使用者過敏原
type Allergy struct {
	base
	UserID   string `gorm:"size:36;not null;index"`
	Allergen string `gorm:"size:64;not null"`
}

func (Allergy) TableName() string {
	return "allergies"
}

// ReligiousDiet 使用者宗教或飲食習慣
type ReligiousDiet struct {
	base
	UserID string `gorm:"size:36;not null;index"`
	Diet   string `gorm:"size:32;not null"`
}

func (ReligiousDiet) TableName() string {
	return "religious_diets"
}

// Ingredient 食材目錄
type Ingredient struct {
	base
	Name               string   `gorm:"size:120;not null;uniqueIndex"`
	Category           string   `gorm:"size:64;index"`
	CommonNames        []string `gorm:"serializer:json"`
	CaloriesPerServing float64
	ProteinGrams       float64
	CarbsGrams         float64
	FatGrams           float64
	FiberGrams         float64
	SugarGrams         float64
	SodiumMg           float64
	GlycemicIndex      float64
	CostPerServing     float64
	IsDiabeticFriendly bool `gorm:"index"`
	IsHalal            bool
	IsKosher           bool
	IsCatholic         bool
	IsVegetarian       bool
	IsVegan            bool
	CommonAllergens    []string `gorm:"serializer:json"`
	TypicalServingSize string   `gorm:"size:64"`
	Availability       string   `gorm:"size:16;default:available"`
	BreakfastSuitable  *bool
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// Meal 餐點
type Meal struct {
	base
	UserID            string `gorm:"size:36;index"`
	Name              string `gorm:"size:200;not null"`
	MealType          string `gorm:"size:16"`
	Calories          float64
	Carbs             float64
	Protein           float64
	Fat               float64
	Fiber             float64
	GlycemicLoad      float64
	Ingredients       []string                   `gorm:"serializer:json"`
	IngredientAmounts map[string]weekplan.Amount `gorm:"serializer:json"`
	Procedures        string                     `gorm:"type:text"`
	PreparationTime   string                     `gorm:"size:64"`
	HealthNotes       string                     `gorm:"type:text"`
	CostPerServing    float64
	ServingSize       string `gorm:"size:64"`
	ServingsCount     int
	IsAIRecommended   bool `gorm:"index"`
}

func (Meal) TableName() string {
	return "meals"
}

// MealIngredient 餐點與食材的關聯
type MealIngredient struct {
	base
	MealID       string `gorm:"size:36;not null;index"`
	IngredientID string `gorm:"size:36;not null;index"`
	Quantity     float64
	Unit         string     `gorm:"size:16"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID"`
}

func (MealIngredient) TableName() string {
	return "meal_ingredients"
}

// MealPlan 某日某餐別排入的一筆餐點
type MealPlan struct {
	base
	UserID          string    `gorm:"size:36;not null;index:idx_plan_user_date"`
	MealID          string    `gorm:"size:36;not null;index"`
	Date            time.Time `gorm:"not null;index:idx_plan_user_date"`
	MealType        string    `gorm:"size:16"`
	IsAIRecommended bool      `gorm:"index"`
	Meal            Meal      `gorm:"foreignKey:MealID"`
}

func (MealPlan) TableName() string {
	return "meal_plans"
}

// allModels AutoMigrate 的順序
func allModels() []any {
	return []any{
		&User{},
		&LabResult{},
		&Allergy{},
		&ReligiousDiet{},
		&Ingredient{},
		&Meal{},
		&MealIngredient{},
		&MealPlan{},
	}
}

func (u User) toDomain() planner.User {
	return planner.User{
		ID:           u.ID,
		FullName:     u.FullName,
		Gender:       u.Gender,
		Age:          u.Age,
		HeightCm:     u.HeightCm,
		WeightKg:     u.WeightKg,
		DiabetesType: u.DiabetesType,
		Budget:       ingredient.BudgetLevel(u.Budget),
		WeeklyBudget: u.WeeklyBudget,
	}
}

func userFromDomain(u planner.User) User {
	return User{
		base:         base{ID: u.ID},
		FullName:     u.FullName,
		Gender:       u.Gender,
		Age:          u.Age,
		HeightCm:     u.HeightCm,
		WeightKg:     u.WeightKg,
		DiabetesType: u.DiabetesType,
		Budget:       string(u.Budget),
		WeeklyBudget: u.WeeklyBudget,
	}
}

func (l LabResult) toDomain() *diabetes.LabResult {
	return &diabetes.LabResult{
		HbA1c:                  l.HbA1c,
		FastingBloodSugar:      l.FastingBloodSugar,
		PostprandialBloodSugar: l.PostprandialBloodSugar,
		GlucoseTolerance:       l.GlucoseTolerance,
	}
}

func (i Ingredient) toDomain() ingredient.Ingredient {
	return ingredient.Ingredient{
		ID:                 i.ID,
		Name:               i.Name,
		Category:           i.Category,
		CommonNames:        i.CommonNames,
		CaloriesPerServing: i.CaloriesPerServing,
		ProteinGrams:       i.ProteinGrams,
		CarbsGrams:         i.CarbsGrams,
		FatGrams:           i.FatGrams,
		FiberGrams:         i.FiberGrams,
		SugarGrams:         i.SugarGrams,
		SodiumMg:           i.SodiumMg,
		GlycemicIndex:      i.GlycemicIndex,
		CostPerServing:     i.CostPerServing,
		IsDiabeticFriendly: i.IsDiabeticFriendly,
		IsHalal:            i.IsHalal,
		IsKosher:           i.IsKosher,
		IsCatholic:         i.IsCatholic,
		IsVegetarian:       i.IsVegetarian,
		IsVegan:            i.IsVegan,
		CommonAllergens:    i.CommonAllergens,
		TypicalServingSize: i.TypicalServingSize,
		Availability:       ingredient.Availability(i.Availability),
		BreakfastSuitable:  i.BreakfastSuitable,
	}
}

func ingredientFromDomain(i ingredient.Ingredient) Ingredient {
	availability := string(i.Availability)
	if availability == "" {
		availability = string(ingredient.Available)
	}
	return Ingredient{
		base:               base{ID: i.ID},
		Name:               i.Name,
		Category:           i.Category,
		CommonNames:        i.CommonNames,
		CaloriesPerServing: i.CaloriesPerServing,
		ProteinGrams:       i.ProteinGrams,
		CarbsGrams:         i.CarbsGrams,
		FatGrams:           i.FatGrams,
		FiberGrams:         i.FiberGrams,
		SugarGrams:         i.SugarGrams,
		SodiumMg:           i.SodiumMg,
		GlycemicIndex:      i.GlycemicIndex,
		CostPerServing:     i.CostPerServing,
		IsDiabeticFriendly: i.IsDiabeticFriendly,
		IsHalal:            i.IsHalal,
		IsKosher:           i.IsKosher,
		IsCatholic:         i.IsCatholic,
		IsVegetarian:       i.IsVegetarian,
		IsVegan:            i.IsVegan,
		CommonAllergens:    i.CommonAllergens,
		TypicalServingSize: i.TypicalServingSize,
		Availability:       availability,
		BreakfastSuitable:  i.BreakfastSuitable,
	}
}

func (m Meal) row() weekplan.MealRow {
	return weekplan.MealRow{
		Name:              m.Name,
		MealType:          weekplan.Slot(m.MealType),
		Calories:          m.Calories,
		Carbs:             m.Carbs,
		Protein:           m.Protein,
		Fat:               m.Fat,
		Fiber:             m.Fiber,
		GlycemicLoad:      m.GlycemicLoad,
		Ingredients:       m.Ingredients,
		IngredientAmounts: m.IngredientAmounts,
		Procedures:        m.Procedures,
		PreparationTime:   m.PreparationTime,
		HealthNotes:       m.HealthNotes,
		CostPerServing:    m.CostPerServing,
		ServingSize:       m.ServingSize,
		ServingsCount:     m.ServingsCount,
	}
}

func mealFromRow(userID string, r weekplan.MealRow) Meal {
	return Meal{
		UserID:            userID,
		Name:              r.Name,
		MealType:          string(r.MealType),
		Calories:          r.Calories,
		Carbs:             r.Carbs,
		Protein:           r.Protein,
		Fat:               r.Fat,
		Fiber:             r.Fiber,
		GlycemicLoad:      r.GlycemicLoad,
		Ingredients:       r.Ingredients,
		IngredientAmounts: r.IngredientAmounts,
		Procedures:        r.Procedures,
		PreparationTime:   r.PreparationTime,
		HealthNotes:       r.HealthNotes,
		CostPerServing:    r.CostPerServing,
		ServingSize:       r.ServingSize,
		ServingsCount:     r.ServingsCount,
		IsAIRecommended:   true,
	}
}
