package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/pkg/common"
)

// Seed 種子檔內容
type Seed struct {
	Ingredients []ingredient.Ingredient `json:"ingredients"`
	Profiles    []planner.Profile       `json:"profiles"`
}

// SeedFromFile 讀取 JSON 種子檔並匯入，回傳寫入筆數
func (s *Store) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := common.ParseJSONStrict(string(data), &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return s.Seed(ctx, seed)
}

// Seed 食材以名稱 upsert，使用者資料整筆覆寫；缺名稱的食材使整份種子失敗
func (s *Store) Seed(ctx context.Context, seed Seed) (int, error) {
	report := ingredient.ValidateCatalog(seed.Ingredients)
	if len(report.Errors) > 0 {
		return 0, fmt.Errorf("invalid seed catalog: %s", common.StringSliceToString(report.Errors))
	}
	if len(report.Warnings) > 0 {
		common.LogWarn("種子食材資料不完整",
			zap.Int("total", report.Total),
			zap.Int("warnings", len(report.Warnings)),
			zap.Int("missing_nutrition", report.MissingData.NutritionInfo),
			zap.Int("missing_cost", report.MissingData.CostInfo),
			zap.Float64("completeness", report.Completeness),
		)
	}

	count := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range seed.Ingredients {
			if err := upsertIngredient(tx, it); err != nil {
				return err
			}
			count++
		}
		for _, p := range seed.Profiles {
			if _, err := saveProfile(tx, p); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SaveProfile 寫入使用者、檢驗與飲食限制，回傳使用者 ID
func (s *Store) SaveProfile(ctx context.Context, p planner.Profile) (string, error) {
	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = saveProfile(tx, p)
		return err
	})
	return id, err
}

// SaveIngredient 以名稱 upsert 食材，回傳 ID
func (s *Store) SaveIngredient(ctx context.Context, it ingredient.Ingredient) (string, error) {
	db := s.db.WithContext(ctx)
	if err := upsertIngredient(db, it); err != nil {
		return "", err
	}
	var id string
	if err := db.Model(&Ingredient{}).Select("id").Where("name = ?", it.Name).Scan(&id).Error; err != nil {
		return "", err
	}
	return id, nil
}

func upsertIngredient(tx *gorm.DB, it ingredient.Ingredient) error {
	row := ingredientFromDomain(it)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns(ingredientColumns),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save ingredient %q: %w", it.Name, err)
	}
	return nil
}

var ingredientColumns = []string{
	"category", "common_names", "calories_per_serving", "protein_grams", "carbs_grams",
	"fat_grams", "fiber_grams", "sugar_grams", "sodium_mg", "glycemic_index", "cost_per_serving",
	"is_diabetic_friendly", "is_halal", "is_kosher", "is_catholic", "is_vegetarian", "is_vegan",
	"common_allergens", "typical_serving_size", "availability", "breakfast_suitable",
}

func saveProfile(tx *gorm.DB, p planner.Profile) (string, error) {
	u := userFromDomain(p.User)
	if u.Budget == "" {
		u.Budget = string(ingredient.BudgetMedium)
	}
	if err := tx.Save(&u).Error; err != nil {
		return "", fmt.Errorf("failed to save user: %w", err)
	}

	if p.Lab != nil {
		lab := LabResult{
			UserID:                 u.ID,
			HbA1c:                  p.Lab.HbA1c,
			FastingBloodSugar:      p.Lab.FastingBloodSugar,
			PostprandialBloodSugar: p.Lab.PostprandialBloodSugar,
			GlucoseTolerance:       p.Lab.GlucoseTolerance,
			TestDate:               time.Now(),
		}
		if err := tx.Create(&lab).Error; err != nil {
			return "", fmt.Errorf("failed to save lab result: %w", err)
		}
	}

	if err := tx.Where("user_id = ?", u.ID).Delete(&Allergy{}).Error; err != nil {
		return "", err
	}
	for _, a := range p.Allergies {
		if err := tx.Create(&Allergy{UserID: u.ID, Allergen: a}).Error; err != nil {
			return "", fmt.Errorf("failed to save allergy: %w", err)
		}
	}
	if err := tx.Where("user_id = ?", u.ID).Delete(&ReligiousDiet{}).Error; err != nil {
		return "", err
	}
	for _, d := range p.ReligiousDiets {
		if err := tx.Create(&ReligiousDiet{UserID: u.ID, Diet: d}).Error; err != nil {
			return "", fmt.Errorf("failed to save religious diet: %w", err)
		}
	}
	return u.ID, nil
}
