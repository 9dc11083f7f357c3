// Package planner 串接分析、營養目標、食材過濾、生成模型與菜單驗證的單一流程
package planner

import (
	"context"
	"sort"
	"time"

	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/weekplan"
)

// User 使用者基本資料
type User struct {
	ID           string                 `json:"id"`
	FullName     string                 `json:"full_name"`
	Gender       string                 `json:"gender"`
	Age          int                    `json:"age"`
	HeightCm     float64                `json:"height_cm"`
	WeightKg     float64                `json:"weight_kg"`
	DiabetesType string                 `json:"diabetes_type"`
	Budget       ingredient.BudgetLevel `json:"budget"`
	WeeklyBudget float64                `json:"weekly_budget,omitempty"`
}

// Profile 規劃所需的使用者資料；Lab 為最新一筆檢驗，可能為 nil
type Profile struct {
	User           User                `json:"user"`
	Lab            *diabetes.LabResult `json:"lab_result,omitempty"`
	Allergies      []string            `json:"allergies"`
	ReligiousDiets []string            `json:"religious_diets"`
}

// CatalogQuery 目錄查詢條件，零值代表不限制
type CatalogQuery struct {
	Category             string
	DiabeticFriendlyOnly bool
	Search               string
	IDs                  []string
	// Budget 非空時只留每份成本在該預算上限內的食材
	Budget ingredient.BudgetLevel
}

// PlanInputs 生成前推導出的使用者狀態
type PlanInputs struct {
	DiabetesAnalysis diabetes.Analysis       `json:"diabetes_analysis"`
	Summary          nutrition.Summary       `json:"nutrition"`
	Budget           ingredient.BudgetLevel  `json:"budget"`
	WeeklyBudget     float64                 `json:"weekly_budget"`
	Available        []ingredient.Ingredient `json:"available_ingredients"`
}

// Substitute 替代食材與營養相似度
type Substitute struct {
	ingredient.Ingredient
	Similarity float64 `json:"similarity"`
}

// SubstitutesResult 替代食材查詢結果
type SubstitutesResult struct {
	Ingredient  ingredient.Ingredient `json:"ingredient"`
	Substitutes []Substitute          `json:"substitutes"`
}

// StoredMeal 已儲存的 AI 推薦餐點
type StoredMeal struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	weekplan.MealRow
}

// MealIngredient 餐點使用的食材與用量
type MealIngredient struct {
	Quantity   float64               `json:"quantity"`
	Unit       string                `json:"unit"`
	Ingredient ingredient.Ingredient `json:"ingredient"`
}

// MealDetail 餐點與其食材
type MealDetail struct {
	StoredMeal
	MealIngredients []MealIngredient `json:"meal_ingredients"`
}

// ProfileProvider 讀取使用者資料，找不到使用者時回傳 common.ErrUserNotFound
type ProfileProvider interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// CatalogProvider 讀取食材目錄，依名稱排序
type CatalogProvider interface {
	Ingredients(ctx context.Context, q CatalogQuery) ([]ingredient.Ingredient, error)
}

// PlanStore 菜單的持久化
type PlanStore interface {
	// AIPlans 回傳 from 起（含）至 to（含，零值代表不限）的 AI 推薦餐點，依日期排序
	AIPlans(ctx context.Context, userID string, from, to time.Time) ([]StoredMeal, error)
	// SavePlan 寫入一份菜單；replace 時在同一交易中先刪除該使用者既有的 AI 推薦
	SavePlan(ctx context.Context, userID string, meals []weekplan.PlannedMeal, replace bool) ([]StoredMeal, error)
	// Meal 讀取單一餐點與食材，不存在時回傳 common.ErrMealNotFound
	Meal(ctx context.Context, mealID string) (*MealDetail, error)
}

// Generator 生成模型，skipCache 時不讀取快取；
// 回應通過驗證後才以 Remember 寫入快取
type Generator interface {
	Complete(ctx context.Context, req *provider.Request, skipCache bool) (*provider.Response, error)
	Remember(ctx context.Context, req *provider.Request, resp *provider.Response)
}

// dateLayout 菜單分組使用的日期格式
const dateLayout = "2006-01-02"

// PlansByDay 日期 → 餐別 → 餐點
type PlansByDay map[string]map[weekplan.Slot][]StoredMeal

// GroupByDate 依日期與餐別分組，只保留三種正餐
func GroupByDate(meals []StoredMeal) PlansByDay {
	out := PlansByDay{}
	for _, m := range meals {
		key := m.Date.Format(dateLayout)
		day, ok := out[key]
		if !ok {
			day = make(map[weekplan.Slot][]StoredMeal, 3)
			for _, slot := range weekplan.Slots() {
				day[slot] = []StoredMeal{}
			}
			out[key] = day
		}
		if _, known := day[m.MealType]; known {
			day[m.MealType] = append(day[m.MealType], m)
		}
	}
	return out
}

// Dates 排序後的日期鍵
func (p PlansByDay) Dates() []string {
	dates := make([]string, 0, len(p))
	for d := range p {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
