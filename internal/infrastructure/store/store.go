// Package store 以 gorm 實作使用者資料、食材目錄與菜單的持久化
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/weekplan"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// Store gorm 儲存層
type Store struct {
	db *gorm.DB
}

var (
	_ planner.ProfileProvider = (*Store)(nil)
	_ planner.CatalogProvider = (*Store)(nil)
	_ planner.PlanStore       = (*Store)(nil)
)

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Open 連線資料庫，AutoMigrate 開啟時建立資料表，SeedFile 不為空時匯入
func Open(cfg config.DatabaseConfig) (*Store, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if cfg.AutoMigrate {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}
	if cfg.SeedFile != "" {
		n, err := s.SeedFromFile(context.Background(), cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		common.LogInfo("資料庫種子已匯入", zap.String("file", cfg.SeedFile), zap.Int("records", n))
	}
	common.LogInfo("資料庫已連線", zap.String("driver", d.Name()))
	return s, nil
}

// Migrate 建立或更新資料表
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Ping 檢查連線
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 關閉連線
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Profile 使用者、最新一筆檢驗、過敏原與飲食習慣
func (s *Store) Profile(ctx context.Context, userID string) (*planner.Profile, error) {
	db := s.db.WithContext(ctx)

	var u User
	if err := db.Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	profile := &planner.Profile{
		User:           u.toDomain(),
		Allergies:      []string{},
		ReligiousDiets: []string{},
	}

	var labs []LabResult
	if err := db.Where("user_id = ?", userID).Order("test_date DESC, created_at DESC").Limit(1).Find(&labs).Error; err != nil {
		return nil, fmt.Errorf("failed to load lab results: %w", err)
	}
	if len(labs) > 0 {
		profile.Lab = labs[0].toDomain()
	}

	if err := db.Model(&Allergy{}).Where("user_id = ?", userID).Order("allergen").Pluck("allergen", &profile.Allergies).Error; err != nil {
		return nil, fmt.Errorf("failed to load allergies: %w", err)
	}
	if err := db.Model(&ReligiousDiet{}).Where("user_id = ?", userID).Order("diet").Pluck("diet", &profile.ReligiousDiets).Error; err != nil {
		return nil, fmt.Errorf("failed to load religious diets: %w", err)
	}
	return profile, nil
}

// Ingredients 依條件查詢目錄，名稱排序
func (s *Store) Ingredients(ctx context.Context, q planner.CatalogQuery) ([]ingredient.Ingredient, error) {
	query := s.db.WithContext(ctx).Model(&Ingredient{})
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.DiabeticFriendlyOnly {
		query = query.Where("is_diabetic_friendly = ?", true)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if len(q.IDs) > 0 {
		query = query.Where("id IN ?", q.IDs)
	}

	var rows []Ingredient
	if err := query.Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	out := make([]ingredient.Ingredient, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// AIPlans from 起（含）的 AI 推薦餐點；to 非零值時為上限（含）
func (s *Store) AIPlans(ctx context.Context, userID string, from, to time.Time) ([]planner.StoredMeal, error) {
	query := s.db.WithContext(ctx).
		Preload("Meal").
		Where("user_id = ? AND is_ai_recommended = ? AND date >= ?", userID, true, from)
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}

	var plans []MealPlan
	if err := query.Order("date, created_at").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to query meal plans: %w", err)
	}
	out := make([]planner.StoredMeal, 0, len(plans))
	for _, p := range plans {
		out = append(out, planner.StoredMeal{
			ID:      p.MealID,
			Date:    p.Date,
			MealRow: p.Meal.row(),
		})
	}
	return out, nil
}

// SavePlan 在同一交易中寫入餐點、食材關聯與排程；replace 時先移除既有的 AI 推薦
func (s *Store) SavePlan(ctx context.Context, userID string, meals []weekplan.PlannedMeal, replace bool) ([]planner.StoredMeal, error) {
	stored := make([]planner.StoredMeal, 0, len(meals))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := deleteAIPlans(tx, userID); err != nil {
				return err
			}
		}

		for _, pm := range meals {
			meal := mealFromRow(userID, pm.Meal)
			if err := tx.Create(&meal).Error; err != nil {
				return fmt.Errorf("failed to create meal: %w", err)
			}

			if len(pm.Links) > 0 {
				links := make([]MealIngredient, 0, len(pm.Links))
				for _, l := range pm.Links {
					links = append(links, MealIngredient{
						MealID:       meal.ID,
						IngredientID: l.IngredientID,
						Quantity:     l.QuantityGrams,
						Unit:         l.Unit,
					})
				}
				if err := tx.Omit("Ingredient").Create(&links).Error; err != nil {
					return fmt.Errorf("failed to link meal ingredients: %w", err)
				}
			}

			plan := MealPlan{
				UserID:          userID,
				MealID:          meal.ID,
				Date:            pm.Date,
				MealType:        string(pm.Slot),
				IsAIRecommended: true,
			}
			if err := tx.Omit("Meal").Create(&plan).Error; err != nil {
				return fmt.Errorf("failed to create meal plan: %w", err)
			}

			stored = append(stored, planner.StoredMeal{
				ID:      meal.ID,
				Date:    pm.Date,
				MealRow: meal.row(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func deleteAIPlans(tx *gorm.DB, userID string) error {
	var mealIDs []string
	if err := tx.Model(&MealPlan{}).
		Where("user_id = ? AND is_ai_recommended = ?", userID, true).
		Pluck("meal_id", &mealIDs).Error; err != nil {
		return fmt.Errorf("failed to list existing plans: %w", err)
	}
	if err := tx.Where("user_id = ? AND is_ai_recommended = ?", userID, true).Delete(&MealPlan{}).Error; err != nil {
		return fmt.Errorf("failed to delete existing plans: %w", err)
	}
	if len(mealIDs) == 0 {
		return nil
	}
	if err := tx.Where("meal_id IN ?", mealIDs).Delete(&MealIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to delete meal ingredients: %w", err)
	}
	if err := tx.Where("id IN ? AND is_ai_recommended = ?", mealIDs, true).Delete(&Meal{}).Error; err != nil {
		return fmt.Errorf("failed to delete meals: %w", err)
	}
	return nil
}

// Meal 單一餐點與其食材
func (s *Store) Meal(ctx context.Context, mealID string) (*planner.MealDetail, error) {
	db := s.db.WithContext(ctx)

	var meal Meal
	if err := db.Where("id = ?", mealID).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMealNotFound
		}
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}

	var links []MealIngredient
	if err := db.Preload("Ingredient").Where("meal_id = ?", mealID).Order("created_at").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to load meal ingredients: %w", err)
	}

	detail := &planner.MealDetail{
		StoredMeal: planner.StoredMeal{
			ID:      meal.ID,
			MealRow: meal.row(),
		},
		MealIngredients: make([]planner.MealIngredient, 0, len(links)),
	}

	var plans []MealPlan
	if err := db.Where("meal_id = ?", mealID).Order("date").Limit(1).Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}
	if len(plans) > 0 {
		detail.Date = plans[0].Date
	}

	for _, l := range links {
		detail.MealIngredients = append(detail.MealIngredients, planner.MealIngredient{
			Quantity:   l.Quantity,
			Unit:       l.Unit,
			Ingredient: l.Ingredient.toDomain(),
		})
	}
	return detail, nil
}
