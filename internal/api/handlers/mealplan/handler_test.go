package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/pkg/common"
)

type fakeService struct {
	err       error
	lastUser  string
	lastForce bool
	lastQuery planner.CatalogQuery
	lastIDs   []string
	lastMeal  string
	lastItem  string
}

func (f *fakeService) GeneratePlan(_ context.Context, userID string, force bool) (*planner.GenerateResult, error) {
	f.lastUser, f.lastForce = userID, force
	if f.err != nil {
		return nil, f.err
	}
	return &planner.GenerateResult{Message: "Meal plan generated successfully", MealPlansByDay: planner.PlansByDay{}}, nil
}

func (f *fakeService) GetPlan(_ context.Context, userID string) (*planner.PlanView, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return &planner.PlanView{MealPlansByDay: planner.PlansByDay{}}, nil
}

func (f *fakeService) AnalyzeDiabetes(_ context.Context, userID string) (*planner.AnalysisResult, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return &planner.AnalysisResult{Recommendations: []string{}}, nil
}

func (f *fakeService) NutritionTargets(_ context.Context, userID string) (*planner.TargetsResult, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	res := &planner.TargetsResult{}
	res.BMR = 1650
	res.ActivityMultiplier = 1.3
	return res, nil
}

func (f *fakeService) ScoreIngredients(_ context.Context, userID string, ids []string) (*planner.ScoreResult, error) {
	f.lastUser, f.lastIDs = userID, ids
	if f.err != nil {
		return nil, f.err
	}
	return &planner.ScoreResult{ScoredIngredients: []ingredient.Scored{}}, nil
}

func (f *fakeService) ComposeMeal(_ context.Context, userID, mealType string, ids []string) (*planner.ComposeResult, error) {
	f.lastUser, f.lastIDs = userID, ids
	if f.err != nil {
		return nil, f.err
	}
	return &planner.ComposeResult{Message: "Meal composition generated successfully"}, nil
}

func (f *fakeService) ListIngredients(_ context.Context, q planner.CatalogQuery) ([]ingredient.Ingredient, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return []ingredient.Ingredient{{ID: "i-1", Name: "Spinach"}}, nil
}

func (f *fakeService) MealWithIngredients(_ context.Context, mealID string) (*planner.MealDetail, error) {
	f.lastMeal = mealID
	if f.err != nil {
		return nil, f.err
	}
	return &planner.MealDetail{StoredMeal: planner.StoredMeal{ID: mealID}}, nil
}

func (f *fakeService) Substitutes(_ context.Context, userID, ingredientID string) (*planner.SubstitutesResult, error) {
	f.lastUser, f.lastItem = userID, ingredientID
	if f.err != nil {
		return nil, f.err
	}
	return &planner.SubstitutesResult{
		Ingredient:  ingredient.Ingredient{ID: ingredientID, Name: "Spinach"},
		Substitutes: []planner.Substitute{{Ingredient: ingredient.Ingredient{ID: "i-2", Name: "Kale"}, Similarity: 82.5}},
	}, nil
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).Register(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return w, out
}

func TestRoutesSucceed(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
		key    string
	}{
		{http.MethodPost, "/api/v1/meal-plans", `{"user_id":"u-1"}`, "meal_plans_by_day"},
		{http.MethodGet, "/api/v1/meal-plans/u-1", "", "has_plans"},
		{http.MethodPost, "/api/v1/diabetes/analyze", `{"user_id":"u-1"}`, "glucose_targets"},
		{http.MethodPost, "/api/v1/nutrition/targets", `{"user_id":"u-1"}`, "macro_targets"},
		{http.MethodGet, "/api/v1/ingredients", "", "ingredients"},
		{http.MethodPost, "/api/v1/ingredients/score", `{"user_id":"u-1"}`, "scored_ingredients"},
		{http.MethodPost, "/api/v1/meals/compose", `{"user_id":"u-1","meal_type":"lunch"}`, "meal_structure"},
		{http.MethodGet, "/api/v1/meals/m-1", "", "meal"},
		{http.MethodGet, "/api/v1/ingredients/i-1/substitutes?user_id=u-1", "", "substitutes"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			r := setupRouter(&fakeService{})
			w, body := do(t, r, tt.method, tt.path, tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %v", w.Code, body)
			}
			if body["success"] != true {
				t.Errorf("success = %v", body["success"])
			}
			if _, ok := body[tt.key]; !ok {
				t.Errorf("missing %q in %v", tt.key, body)
			}
		})
	}
}

func TestGeneratePlanPassesForceFlag(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)
	w, _ := do(t, r, http.MethodPost, "/api/v1/meal-plans", `{"user_id":"u-9","force_regenerate":true}`)
	if w.Code != http.StatusOK || svc.lastUser != "u-9" || !svc.lastForce {
		t.Errorf("status = %d, user = %q, force = %v", w.Code, svc.lastUser, svc.lastForce)
	}
}

func TestGeneratePlanRequiresUserID(t *testing.T) {
	r := setupRouter(&fakeService{})
	w, body := do(t, r, http.MethodPost, "/api/v1/meal-plans", `{}`)
	if w.Code != http.StatusBadRequest || body["success"] != false {
		t.Errorf("status = %d, body = %v", w.Code, body)
	}
}

func TestListIngredientsQuery(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	w, body := do(t, r, http.MethodGet, "/api/v1/ingredients?category=vegetables&diabetic_friendly=true&search=spin", "")
	if w.Code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	want := planner.CatalogQuery{Category: "vegetables", DiabeticFriendlyOnly: true, Search: "spin"}
	if svc.lastQuery.Category != want.Category || svc.lastQuery.DiabeticFriendlyOnly != want.DiabeticFriendlyOnly || svc.lastQuery.Search != want.Search {
		t.Errorf("query = %+v", svc.lastQuery)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/ingredients?diabetic_friendly=maybe", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid flag status = %d", w.Code)
	}

	w, body = do(t, r, http.MethodGet, "/api/v1/ingredients?budget=LOW&group=category", "")
	if w.Code != http.StatusOK || svc.lastQuery.Budget != ingredient.BudgetLow {
		t.Fatalf("status = %d, budget = %q", w.Code, svc.lastQuery.Budget)
	}
	groups, ok := body["groups"].(map[string]any)
	if !ok || groups["Other"] == nil {
		t.Errorf("groups = %v", body["groups"])
	}

	for _, bad := range []string{"budget=cheap", "group=name"} {
		if w, _ := do(t, r, http.MethodGet, "/api/v1/ingredients?"+bad, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d", bad, w.Code)
		}
	}
}

func TestSubstitutes(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	w, body := do(t, r, http.MethodGet, "/api/v1/ingredients/i-9/substitutes?user_id=u-1", "")
	if w.Code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	if svc.lastUser != "u-1" || svc.lastItem != "i-9" {
		t.Errorf("user = %q, ingredient = %q", svc.lastUser, svc.lastItem)
	}

	if w, _ := do(t, r, http.MethodGet, "/api/v1/ingredients/i-9/substitutes", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing user status = %d", w.Code)
	}

	r = setupRouter(&fakeService{err: common.ErrIngredientNotFound})
	w, body = do(t, r, http.MethodGet, "/api/v1/ingredients/nope/substitutes?user_id=u-1", "")
	if w.Code != http.StatusNotFound || body["code"] != "INGREDIENT_NOT_FOUND" {
		t.Errorf("status = %d, body = %v", w.Code, body)
	}
}

func TestErrorMapping(t *testing.T) {
	details := make([]string, 12)
	for i := range details {
		details[i] = fmt.Sprintf("meal %d: calories out of range", i)
	}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"precondition", common.NewPipelineError(common.KindPreconditionMissing, "incomplete profile", "weight_kg"), http.StatusUnprocessableEntity, "PRECONDITION_MISSING"},
		{"nutrition invalid", common.NewPipelineError(common.KindNutritionInvalid, "meal plan failed validation", details...), http.StatusInternalServerError, "NUTRITION_INVALID"},
		{"user not found", common.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"wrapped meal not found", fmt.Errorf("lookup: %w", common.ErrMealNotFound), http.StatusNotFound, "MEAL_NOT_FOUND"},
		{"validation", common.NewValidationError("unknown meal type"), http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"queue full", fmt.Errorf("meal plan generation failed: %w", queue.ErrQueueFull), http.StatusServiceUnavailable, common.ErrCodeServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, common.ErrCodeGatewayTimeout},
		{"external", errors.New("OpenRouter API error (status 502)"), http.StatusInternalServerError, common.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&fakeService{err: tt.err})
			w, body := do(t, r, http.MethodPost, "/api/v1/meal-plans", `{"user_id":"u-1"}`)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%v)", w.Code, tt.status, body)
			}
			if body["success"] != false || body["code"] != tt.code {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestPipelineErrorSamplesDetails(t *testing.T) {
	details := make([]string, 15)
	for i := range details {
		details[i] = fmt.Sprintf("error %d", i)
	}
	r := setupRouter(&fakeService{err: common.NewPipelineError(common.KindNutritionInvalid, "meal plan failed validation", details...)})

	_, body := do(t, r, http.MethodPost, "/api/v1/meal-plans", `{"user_id":"u-1"}`)
	sample, _ := body["details"].([]any)
	if len(sample) != 10 || body["total_errors"] != float64(15) {
		t.Errorf("details = %d, total = %v", len(sample), body["total_errors"])
	}
}

func TestPreconditionListsMissingFields(t *testing.T) {
	r := setupRouter(&fakeService{err: common.NewPipelineError(common.KindPreconditionMissing, "incomplete profile", "weight_kg", "age")})
	_, body := do(t, r, http.MethodPost, "/api/v1/nutrition/targets", `{"user_id":"u-1"}`)
	details, _ := body["details"].([]any)
	if len(details) != 2 || details[0] != "weight_kg" {
		t.Errorf("details = %v", body["details"])
	}
}
