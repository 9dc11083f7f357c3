// Package mealplan 菜單規劃相關的 HTTP 處理器
package mealplan

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/pkg/common"
)

// Service 處理器需要的規劃操作
type Service interface {
	GeneratePlan(ctx context.Context, userID string, forceRegenerate bool) (*planner.GenerateResult, error)
	GetPlan(ctx context.Context, userID string) (*planner.PlanView, error)
	AnalyzeDiabetes(ctx context.Context, userID string) (*planner.AnalysisResult, error)
	NutritionTargets(ctx context.Context, userID string) (*planner.TargetsResult, error)
	ScoreIngredients(ctx context.Context, userID string, ids []string) (*planner.ScoreResult, error)
	ComposeMeal(ctx context.Context, userID, mealType string, ids []string) (*planner.ComposeResult, error)
	ListIngredients(ctx context.Context, q planner.CatalogQuery) ([]ingredient.Ingredient, error)
	MealWithIngredients(ctx context.Context, mealID string) (*planner.MealDetail, error)
	Substitutes(ctx context.Context, userID, ingredientID string) (*planner.SubstitutesResult, error)
}

// GeneratePlanRequest 生成一週菜單
type GeneratePlanRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	ForceRegenerate bool   `json:"force_regenerate"`
}

// UserRequest 只需使用者 ID 的請求
type UserRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// ScoreRequest 食材評分，未指定 ingredient_ids 時評分整個目錄
type ScoreRequest struct {
	UserID        string   `json:"user_id" binding:"required"`
	IngredientIDs []string `json:"ingredient_ids,omitempty"`
}

// ComposeRequest 組出單餐
type ComposeRequest struct {
	UserID        string   `json:"user_id" binding:"required"`
	MealType      string   `json:"meal_type" binding:"required"`
	IngredientIDs []string `json:"ingredient_ids,omitempty"`
}

// Handler 菜單規劃處理器
type Handler struct {
	svc Service
}

// NewHandler 創建處理器
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/meal-plans", h.GeneratePlan)
	rg.GET("/meal-plans/:userId", h.GetPlan)
	rg.POST("/diabetes/analyze", h.AnalyzeDiabetes)
	rg.POST("/nutrition/targets", h.NutritionTargets)
	rg.GET("/ingredients", h.ListIngredients)
	rg.POST("/ingredients/score", h.ScoreIngredients)
	rg.GET("/ingredients/:ingredientId/substitutes", h.Substitutes)
	rg.POST("/meals/compose", h.ComposeMeal)
	rg.GET("/meals/:mealId", h.GetMeal)
}

// GeneratePlan 生成或沿用一週菜單
func (h *Handler) GeneratePlan(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	common.LogInfo("開始處理菜單生成請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("user_id", req.UserID),
		zap.Bool("force_regenerate", req.ForceRegenerate),
	)

	res, err := h.svc.GeneratePlan(c.Request.Context(), req.UserID, req.ForceRegenerate)
	if err != nil {
		respondError(c, "generate_plan", err)
		return
	}

	body := gin.H{
		"success":           true,
		"message":           res.Message,
		"meal_plans_by_day": res.MealPlansByDay,
		"is_existing":       res.IsExisting,
	}
	if res.HealthAnalysis != nil {
		body["health_analysis"] = res.HealthAnalysis
	}
	c.JSON(http.StatusOK, body)
}

// GetPlan 今天起 7 天的菜單
func (h *Handler) GetPlan(c *gin.Context) {
	view, err := h.svc.GetPlan(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, "get_plan", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"meal_plans_by_day": view.MealPlansByDay,
		"has_plans":         view.HasPlans,
	})
}

// AnalyzeDiabetes 糖尿病分析
func (h *Handler) AnalyzeDiabetes(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.AnalyzeDiabetes(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, "analyze_diabetes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"diabetes_analysis":      res.DiabetesAnalysis,
		"timing_recommendations": res.TimingRecommendations,
		"glucose_targets":        res.GlucoseTargets,
		"recommendations":        res.Recommendations,
	})
}

// NutritionTargets 營養目標
func (h *Handler) NutritionTargets(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.NutritionTargets(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, "nutrition_targets", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"bmr":                 res.BMR,
		"daily_calories":      res.DailyCalories,
		"activity_multiplier": res.ActivityMultiplier,
		"macro_targets":       res.Targets,
		"diabetes_analysis":   res.DiabetesAnalysis,
	})
}

// ListIngredients 查詢食材目錄
func (h *Handler) ListIngredients(c *gin.Context) {
	q := planner.CatalogQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("diabetic_friendly"); raw != "" {
		friendly, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		q.DiabeticFriendlyOnly = friendly
	}
	if raw := c.Query("budget"); raw != "" {
		level, err := ingredient.ParseBudget(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		q.Budget = level
	}
	group := c.Query("group")
	if group != "" && group != "category" {
		badRequest(c, fmt.Errorf("unsupported group %q", group))
		return
	}

	items, err := h.svc.ListIngredients(c.Request.Context(), q)
	if err != nil {
		respondError(c, "list_ingredients", err)
		return
	}
	resp := gin.H{
		"success":     true,
		"ingredients": items,
		"count":       len(items),
	}
	if group == "category" {
		resp["groups"] = ingredient.GroupByCategory(items)
	}
	c.JSON(http.StatusOK, resp)
}

// Substitutes 使用者可用的替代食材
func (h *Handler) Substitutes(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		badRequest(c, fmt.Errorf("missing user_id"))
		return
	}
	res, err := h.svc.Substitutes(c.Request.Context(), userID, c.Param("ingredientId"))
	if err != nil {
		respondError(c, "substitutes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"ingredient":  res.Ingredient,
		"substitutes": res.Substitutes,
		"count":       len(res.Substitutes),
	})
}

// ScoreIngredients 食材評分
func (h *Handler) ScoreIngredients(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.ScoreIngredients(c.Request.Context(), req.UserID, req.IngredientIDs)
	if err != nil {
		respondError(c, "score_ingredients", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"scored_ingredients": res.ScoredIngredients,
		"constraints":        res.Constraints,
	})
}

// ComposeMeal 組出單餐
func (h *Handler) ComposeMeal(c *gin.Context) {
	var req ComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.ComposeMeal(c.Request.Context(), req.UserID, req.MealType, req.IngredientIDs)
	if err != nil {
		respondError(c, "compose_meal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        res.Message,
		"meal_structure": res.MealStructure,
		"validation":     res.Validation,
		"targets":        res.Targets,
	})
}

// GetMeal 單一餐點與食材
func (h *Handler) GetMeal(c *gin.Context) {
	meal, err := h.svc.MealWithIngredients(c.Request.Context(), c.Param("mealId"))
	if err != nil {
		respondError(c, "get_meal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"meal":    meal,
	})
}
