package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/core/composer"
	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/weekplan"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	defaultAge          = 30
	defaultDiabetesType = "Type 2"
)

// Planner 菜單規劃流程，相依元件由呼叫端建立並注入
type Planner struct {
	profiles  ProfileProvider
	catalog   CatalogProvider
	plans     PlanStore
	generator Generator
	opts      Options
	now       func() time.Time
}

// New 創建規劃流程
func New(profiles ProfileProvider, catalog CatalogProvider, plans PlanStore, generator Generator, opts Options) *Planner {
	return &Planner{
		profiles:  profiles,
		catalog:   catalog,
		plans:     plans,
		generator: generator,
		opts:      opts.withDefaults(),
		now:       time.Now,
	}
}

// HealthAnalysis 生成菜單時的分析摘要
type HealthAnalysis struct {
	DiabetesAnalysis diabetes.Analysis      `json:"diabetes_analysis"`
	MacroTargets     nutrition.MacroTargets `json:"macro_targets"`
	BMR              float64                `json:"bmr"`
	DailyCalories    float64                `json:"daily_calories"`
	IngredientsUsed  int                    `json:"ingredients_used"`
	Repairs          []weekplan.Repair      `json:"repairs"`
	Dropped          []weekplan.Unmatched   `json:"dropped"`
	Warnings         []string               `json:"warnings"`
	Budget           weekplan.BudgetReport  `json:"budget"`
	CacheHit         bool                   `json:"cache_hit"`
}

// GenerateResult 生成或沿用的一週菜單
type GenerateResult struct {
	Message        string          `json:"message"`
	MealPlansByDay PlansByDay      `json:"meal_plans_by_day"`
	IsExisting     bool            `json:"is_existing"`
	HealthAnalysis *HealthAnalysis `json:"health_analysis,omitempty"`
}

// AnalysisResult 糖尿病分析
type AnalysisResult struct {
	DiabetesAnalysis      diabetes.Analysis       `json:"diabetes_analysis"`
	TimingRecommendations diabetes.MealTiming     `json:"timing_recommendations"`
	GlucoseTargets        diabetes.GlucoseTargets `json:"glucose_targets"`
	Recommendations       []string                `json:"recommendations"`
}

// TargetsResult 營養目標
type TargetsResult struct {
	nutrition.Summary
	DiabetesAnalysis diabetes.Analysis `json:"diabetes_analysis"`
}

// ScoreSummary 評分時套用的限制摘要
type ScoreSummary struct {
	DiabetesSeverity  diabetes.Severity      `json:"diabetes_severity"`
	Budget            ingredient.BudgetLevel `json:"budget"`
	RestrictionsCount int                    `json:"restrictions_count"`
}

// ScoreResult 食材評分結果
type ScoreResult struct {
	ScoredIngredients []ingredient.Scored `json:"scored_ingredients"`
	Constraints       ScoreSummary        `json:"constraints"`
}

// ComposeResult 單餐組合結果
type ComposeResult struct {
	MealStructure composer.Structure     `json:"meal_structure"`
	Validation    composer.Validation    `json:"validation"`
	Targets       nutrition.MacroTargets `json:"targets"`
	Message       string                 `json:"message"`
}

// PlanView 已儲存的菜單
type PlanView struct {
	MealPlansByDay PlansByDay `json:"meal_plans_by_day"`
	HasPlans       bool       `json:"has_plans"`
}

// session 單次請求推導出的使用者狀態
type session struct {
	profile     *Profile
	analysis    diabetes.Analysis
	summary     nutrition.Summary
	constraints ingredient.Constraints
	budget      ingredient.BudgetLevel
}

// missingFields 計算營養目標所需但缺少的欄位
func missingFields(u User) []string {
	var missing []string
	if !(u.WeightKg > 0) {
		missing = append(missing, "weight_kg")
	}
	if !(u.HeightCm > 0) {
		missing = append(missing, "height_cm")
	}
	if u.Age <= 0 {
		missing = append(missing, "age")
	}
	if strings.TrimSpace(u.Gender) == "" {
		missing = append(missing, "gender")
	}
	return missing
}

// BudgetOf 使用者預算等級，未設定時為 medium
func BudgetOf(u User) ingredient.BudgetLevel {
	if u.Budget == "" {
		return ingredient.BudgetMedium
	}
	return ingredient.BudgetLevel(strings.ToLower(string(u.Budget)))
}

func (p *Planner) loadProfile(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError("missing user_id")
	}
	profile, err := p.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// newSession 讀取使用者並推導分析；needTargets 時檢查身體數據並計算營養目標
func (p *Planner) newSession(ctx context.Context, userID string, needTargets bool, multiplier float64) (*session, error) {
	profile, err := p.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	s := &session{
		profile:  profile,
		analysis: diabetes.Analyze(profile.Lab),
		budget:   BudgetOf(profile.User),
	}
	s.constraints = ingredient.Constraints{
		Allergies:      profile.Allergies,
		ReligiousDiets: profile.ReligiousDiets,
		Severity:       s.analysis.Severity,
	}

	if !needTargets {
		return s, nil
	}
	if missing := missingFields(profile.User); len(missing) > 0 {
		return nil, common.NewPipelineError(common.KindPreconditionMissing, "incomplete profile", missing...)
	}
	s.summary, err = nutrition.Calculate(nutrition.Anthropometrics{
		WeightKg: profile.User.WeightKg,
		HeightCm: profile.User.HeightCm,
		Age:      profile.User.Age,
		Gender:   profile.User.Gender,
	}, multiplier, s.analysis)
	if err != nil {
		return nil, common.WrapPipelineError(common.KindPreconditionMissing, "incomplete profile", err)
	}
	return s, nil
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// GeneratePlan 未強制重新生成且已有足夠的 AI 菜單時直接沿用，否則走完整流程並儲存
func (p *Planner) GeneratePlan(ctx context.Context, userID string, forceRegenerate bool) (*GenerateResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError("missing user_id")
	}
	start := today(p.now())

	if !forceRegenerate {
		existing, err := p.plans.AIPlans(ctx, userID, start, time.Time{})
		if err != nil {
			common.LogWarn("讀取既有菜單失敗，改為重新生成", zap.String("user_id", userID), zap.Error(err))
		} else if len(existing) >= p.opts.ReuseThreshold {
			common.LogInfo("沿用既有菜單", zap.String("user_id", userID), zap.Int("meals", len(existing)))
			return &GenerateResult{
				Message:        "Using existing meal plan",
				MealPlansByDay: GroupByDate(existing),
				IsExisting:     true,
			}, nil
		}
	}

	s, available, err := p.generationSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	req, err := p.buildRequest(s, available)
	if err != nil {
		return nil, err
	}
	resp, err := p.generator.Complete(ctx, req, forceRegenerate)
	if err != nil {
		return nil, fmt.Errorf("meal plan generation failed: %w", err)
	}

	result, err := weekplan.Validate(resp.Content, weekplan.Config{
		Catalog:               available,
		Targets:               &s.summary.Targets,
		Rules:                 p.opts.fieldRules(),
		MaxInvalidIngredients: p.opts.MaxInvalidIngredients,
		WeeklyBudget:          s.profile.User.WeeklyBudget,
	})
	if err != nil {
		return nil, err
	}
	p.generator.Remember(ctx, req, resp)

	payload := weekplan.BuildPayload(result.Plan, available, start)
	stored, err := p.plans.SavePlan(ctx, userID, payload, forceRegenerate)
	if err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}
	common.LogInfo("菜單已儲存", zap.String("user_id", userID), zap.Int("meals", len(stored)))

	return &GenerateResult{
		Message:        "Meal plan generated successfully",
		MealPlansByDay: GroupByDate(stored),
		HealthAnalysis: &HealthAnalysis{
			DiabetesAnalysis: s.analysis,
			MacroTargets:     s.summary.Targets,
			BMR:              s.summary.BMR,
			DailyCalories:    s.summary.DailyCalories,
			IngredientsUsed:  len(available),
			Repairs:          result.Repairs,
			Dropped:          result.Dropped,
			Warnings:         result.Warnings,
			Budget:           result.Budget,
			CacheHit:         resp.CacheHit,
		},
	}, nil
}

// generationSession 以生成用的活動係數建立 session，並載入依使用者限制過濾後的目錄
func (p *Planner) generationSession(ctx context.Context, userID string) (*session, []ingredient.Ingredient, error) {
	s, err := p.newSession(ctx, userID, true, p.opts.ActivityMultiplier)
	if err != nil {
		return nil, nil, err
	}
	common.LogInfo("糖尿病分析完成",
		zap.String("user_id", userID),
		zap.String("severity", string(s.analysis.Severity)),
		zap.Float64("carb_limit", s.analysis.CarbLimitGramsPerMeal),
		zap.Strings("risk_factors", s.analysis.RiskFactors),
	)

	catalog, err := p.catalog.Ingredients(ctx, CatalogQuery{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ingredient catalog: %w", err)
	}
	available := ingredient.Filter(catalog, s.constraints)
	common.LogInfo("食材過濾完成",
		zap.Int("catalog", len(catalog)),
		zap.Int("available", len(available)),
	)
	return s, available, nil
}

// PlanInputs 生成菜單時使用的分析、營養目標與可用食材，不呼叫生成模型
func (p *Planner) PlanInputs(ctx context.Context, userID string) (*PlanInputs, error) {
	s, available, err := p.generationSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PlanInputs{
		DiabetesAnalysis: s.analysis,
		Summary:          s.summary,
		Budget:           s.budget,
		WeeklyBudget:     s.profile.User.WeeklyBudget,
		Available:        available,
	}, nil
}

// buildRequest 組出系統指令與使用者內容
func (p *Planner) buildRequest(s *session, available []ingredient.Ingredient) (*provider.Request, error) {
	u := s.profile.User
	c := planContext{
		UserProfile: promptUser{
			ID:            u.ID,
			FullName:      u.FullName,
			Gender:        u.Gender,
			Age:           u.Age,
			HeightCm:      u.HeightCm,
			WeightKg:      u.WeightKg,
			DiabetesType:  u.DiabetesType,
			Budget:        string(s.budget),
			BMR:           s.summary.BMR,
			DailyCalories: s.summary.DailyCalories,
		},
		HealthAnalysis: promptHealth{
			LabResults:       s.profile.Lab,
			DiabetesAnalysis: s.analysis,
			MacroTargets:     s.summary.Targets,
		},
		Constraints: promptConstraints{
			Allergies:                 nonNil(s.profile.Allergies),
			ReligiousDiets:            nonNil(s.profile.ReligiousDiets),
			AvailableIngredientsCount: len(available),
		},
		AvailableIngredients: toPromptIngredients(available),
	}

	if p.opts.IncludeComposition {
		c.CompositionHints = make(map[composer.MealType]hintStructure, 3)
		for _, mt := range []composer.MealType{composer.Breakfast, composer.Lunch, composer.Dinner} {
			st, err := composer.Compose(composer.Request{
				MealType:    mt,
				Targets:     s.summary.Targets,
				Ingredients: available,
				Analysis:    s.analysis,
				Budget:      s.budget,
				Constraints: s.constraints,
			})
			if err != nil {
				return nil, err
			}
			c.CompositionHints[mt] = toHint(st)
		}
	}

	content, err := encodeContext(c)
	if err != nil {
		return nil, err
	}

	req := provider.NewChat(systemPrompt(s.profile, s.analysis, s.summary.Targets, len(available), p.opts), content)
	req.Model = p.opts.Model
	req.MaxTokens = p.opts.MaxTokens
	req.Temperature = p.opts.Temperature
	req.TopP = p.opts.TopP
	req.JSONMode = true
	return req, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AnalyzeDiabetes 分析 + 餐次建議 + 個人化血糖目標
func (p *Planner) AnalyzeDiabetes(ctx context.Context, userID string) (*AnalysisResult, error) {
	s, err := p.newSession(ctx, userID, false, 0)
	if err != nil {
		return nil, err
	}
	age := s.profile.User.Age
	if age <= 0 {
		age = defaultAge
	}
	diabetesType := s.profile.User.DiabetesType
	if diabetesType == "" {
		diabetesType = defaultDiabetesType
	}
	return &AnalysisResult{
		DiabetesAnalysis:      s.analysis,
		TimingRecommendations: diabetes.MealTimingFor(s.analysis.Severity),
		GlucoseTargets:        diabetes.TargetsFor(age, diabetesType, nil),
		Recommendations:       s.analysis.Recommendations,
	}, nil
}

// NutritionTargets 以營養目標查詢的活動係數計算
func (p *Planner) NutritionTargets(ctx context.Context, userID string) (*TargetsResult, error) {
	s, err := p.newSession(ctx, userID, true, p.opts.TargetsActivityMultiplier)
	if err != nil {
		return nil, err
	}
	return &TargetsResult{
		Summary:          s.summary,
		DiabetesAnalysis: s.analysis,
	}, nil
}

// ScoreIngredients 評分並依總分排序；ids 為空時評分整個目錄
func (p *Planner) ScoreIngredients(ctx context.Context, userID string, ids []string) (*ScoreResult, error) {
	s, err := p.newSession(ctx, userID, false, 0)
	if err != nil {
		return nil, err
	}
	items, err := p.catalog.Ingredients(ctx, CatalogQuery{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	return &ScoreResult{
		ScoredIngredients: ingredient.Rank(ingredient.ScoreAll(items, s.analysis, s.budget, s.constraints)),
		Constraints: ScoreSummary{
			DiabetesSeverity:  s.analysis.Severity,
			Budget:            s.budget,
			RestrictionsCount: len(s.profile.Allergies) + len(s.profile.ReligiousDiets),
		},
	}, nil
}

// ComposeMeal 過濾後組出單餐並驗證
func (p *Planner) ComposeMeal(ctx context.Context, userID, mealType string, ids []string) (*ComposeResult, error) {
	mt, err := composer.ParseMealType(mealType)
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}
	s, err := p.newSession(ctx, userID, true, p.opts.ActivityMultiplier)
	if err != nil {
		return nil, err
	}
	items, err := p.catalog.Ingredients(ctx, CatalogQuery{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}

	structure, err := composer.Compose(composer.Request{
		MealType:    mt,
		Targets:     s.summary.Targets,
		Ingredients: ingredient.Filter(items, s.constraints),
		Analysis:    s.analysis,
		Budget:      s.budget,
		Constraints: s.constraints,
	})
	if err != nil {
		return nil, err
	}
	validation := composer.Validate(structure, s.summary.Targets, s.analysis)

	message := "Meal composition generated successfully"
	if !validation.IsValid {
		message = "Meal generated with warnings"
	}
	return &ComposeResult{
		MealStructure: structure,
		Validation:    validation,
		Targets:       s.summary.Targets,
		Message:       message,
	}, nil
}

// GetPlan 今天起 7 天內已儲存的 AI 菜單
func (p *Planner) GetPlan(ctx context.Context, userID string) (*PlanView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError("missing user_id")
	}
	start := today(p.now())
	meals, err := p.plans.AIPlans(ctx, userID, start, start.AddDate(0, 0, weekplan.Days-1))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meal plans: %w", err)
	}
	grouped := GroupByDate(meals)
	return &PlanView{
		MealPlansByDay: grouped,
		HasPlans:       len(grouped) > 0,
	}, nil
}

// ListIngredients 依分類、糖尿病友善與名稱關鍵字查詢目錄
func (p *Planner) ListIngredients(ctx context.Context, q CatalogQuery) ([]ingredient.Ingredient, error) {
	if q.Category == "all" {
		q.Category = ""
	}
	items, err := p.catalog.Ingredients(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ingredients: %w", err)
	}
	if q.Budget != "" {
		items = ingredient.FilterByBudget(items, q.Budget)
	}
	return items, nil
}

// Substitutes 在使用者可用的食材中找出營養最接近的替代品
func (p *Planner) Substitutes(ctx context.Context, userID, ingredientID string) (*SubstitutesResult, error) {
	if strings.TrimSpace(ingredientID) == "" {
		return nil, common.NewValidationError("missing ingredient id")
	}
	s, err := p.newSession(ctx, userID, false, 0)
	if err != nil {
		return nil, err
	}
	target, err := p.catalog.Ingredients(ctx, CatalogQuery{IDs: []string{ingredientID}})
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	if len(target) == 0 {
		return nil, common.ErrIngredientNotFound
	}
	catalog, err := p.catalog.Ingredients(ctx, CatalogQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient catalog: %w", err)
	}

	found := ingredient.FindSubstitutes(target[0], ingredient.Filter(catalog, s.constraints), s.constraints)
	subs := make([]Substitute, 0, len(found))
	for _, it := range found {
		subs = append(subs, Substitute{
			Ingredient: it,
			Similarity: common.Round1(ingredient.Similarity(target[0], it)),
		})
	}
	return &SubstitutesResult{Ingredient: target[0], Substitutes: subs}, nil
}

// MealWithIngredients 單一餐點與其食材
func (p *Planner) MealWithIngredients(ctx context.Context, mealID string) (*MealDetail, error) {
	if strings.TrimSpace(mealID) == "" {
		return nil, common.NewValidationError("missing meal id")
	}
	return p.plans.Meal(ctx, mealID)
}
