package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"meal-planner/internal/core/diabetes"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/weekplan"
	"meal-planner/internal/pkg/common"
)

// App planctl 指令與全域旗標
type App struct {
	Version  kong.VersionFlag
	Data     string  `help:"JSON data file with ingredients and profiles (seed format)." type:"existingfile" required:"" short:"d"`
	Verbose  bool    `help:"Log pipeline warnings to stderr." short:"v"`
	Activity float64 `help:"Activity multiplier for nutrition targets." default:"1.3"`

	Analyze     AnalyzeCmd     `cmd:"" help:"Derive the diabetes analysis from the latest lab result."`
	Targets     TargetsCmd     `cmd:"" help:"Compute BMR, daily calories and per-meal macro targets."`
	Filter      FilterCmd      `cmd:"" help:"Filter the catalog by the user's restrictions."`
	Compose     ComposeCmd     `cmd:"" help:"Compose a single meal from the filtered catalog."`
	Validate    ValidateCmd    `cmd:"" help:"Validate and repair a generated weekly plan."`
	Catalog     CatalogCmd     `cmd:"" help:"Report catalog data quality and category counts."`
	Substitutes SubstitutesCmd `cmd:"" help:"Suggest substitutes for an ingredient the user can eat."`
}

// Options 由旗標組出流程設定
func (a *App) Options() planner.Options {
	opts := planner.DefaultOptions()
	if a.Activity > 0 {
		opts.TargetsActivityMultiplier = a.Activity
	}
	return opts
}

// Context 各指令共用的狀態
type Context struct {
	Data    *Dataset
	Planner *planner.Planner
	Out     io.Writer
	source  *fileSource
}

// NewContext 由資料檔建立離線的規劃流程，不需要資料庫與生成模型
func NewContext(ds *Dataset, opts planner.Options, out io.Writer) *Context {
	src := newFileSource(ds)
	return &Context{
		Data:    ds,
		Planner: planner.New(src, src, nil, nil, opts),
		Out:     out,
		source:  src,
	}
}

func (c *Context) user(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	return c.source.defaultUser()
}

func (c *Context) print(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// AnalyzeCmd 糖尿病分析
type AnalyzeCmd struct {
	User string `help:"User ID in the data file." short:"u"`
}

func (cmd *AnalyzeCmd) Run(c *Context) error {
	id, err := c.user(cmd.User)
	if err != nil {
		return err
	}
	res, err := c.Planner.AnalyzeDiabetes(context.Background(), id)
	if err != nil {
		return err
	}
	return c.print(res)
}

// TargetsCmd BMR、每日熱量與每餐目標
type TargetsCmd struct {
	User string `help:"User ID in the data file." short:"u"`
}

func (cmd *TargetsCmd) Run(c *Context) error {
	id, err := c.user(cmd.User)
	if err != nil {
		return err
	}
	res, err := c.Planner.NutritionTargets(context.Background(), id)
	if err != nil {
		return err
	}
	return c.print(res)
}

// FilterCmd 依使用者限制過濾目錄，--rank 時附上評分
type FilterCmd struct {
	User     string `help:"User ID in the data file." short:"u"`
	Category string `help:"Only keep this category."`
	Rank     bool   `help:"Score and rank the filtered ingredients."`
}

func (cmd *FilterCmd) Run(c *Context) error {
	id, err := c.user(cmd.User)
	if err != nil {
		return err
	}
	ctx := context.Background()
	profile, err := c.source.Profile(ctx, id)
	if err != nil {
		return err
	}
	catalog, err := c.source.Ingredients(ctx, planner.CatalogQuery{Category: cmd.Category})
	if err != nil {
		return err
	}

	analysis := diabetes.Analyze(profile.Lab)
	constraints := ingredient.Constraints{
		Allergies:      profile.Allergies,
		ReligiousDiets: profile.ReligiousDiets,
		Severity:       analysis.Severity,
	}
	available := ingredient.Filter(catalog, constraints)
	common.LogDebug("目錄過濾完成",
		zap.Int("catalog", len(catalog)),
		zap.Int("available", len(available)),
	)

	if !cmd.Rank {
		return c.print(map[string]any{
			"ingredients": available,
			"count":       len(available),
			"excluded":    len(catalog) - len(available),
		})
	}
	budget := planner.BudgetOf(profile.User)
	ranked := ingredient.Rank(ingredient.ScoreAll(available, analysis, budget, constraints))
	return c.print(map[string]any{
		"scored_ingredients": ranked,
		"count":              len(ranked),
	})
}

// ComposeCmd 組出單餐
type ComposeCmd struct {
	User          string   `help:"User ID in the data file." short:"u"`
	MealType      string   `help:"breakfast, lunch, dinner or snack." required:"" short:"m"`
	IngredientIDs []string `help:"Restrict the catalog to these ingredient IDs." name:"ingredient"`
}

func (cmd *ComposeCmd) Run(c *Context) error {
	id, err := c.user(cmd.User)
	if err != nil {
		return err
	}
	res, err := c.Planner.ComposeMeal(context.Background(), id, cmd.MealType, cmd.IngredientIDs)
	if err != nil {
		return err
	}
	return c.print(res)
}

// ValidateCmd 驗證並修復一份生成的一週菜單
type ValidateCmd struct {
	Plan       string  `arg:"" help:"Generated plan JSON file." type:"existingfile"`
	User       string  `help:"Check nutrition against this user's targets and restrictions." short:"u"`
	Lenient    bool    `help:"Accept numeric strings and skip meal-level type checks."`
	NoAmounts  bool    `help:"Do not require ingredient_amounts."`
	MaxInvalid int     `help:"Unknown ingredient names tolerated before rejecting." default:"10"`
	Budget     float64 `help:"Weekly budget for the advisory cost estimate."`
}

func (cmd *ValidateCmd) Run(c *Context) error {
	content, err := os.ReadFile(cmd.Plan)
	if err != nil {
		return fmt.Errorf("failed to read plan: %w", err)
	}

	ctx := context.Background()
	cfg := weekplan.Config{
		Rules: weekplan.FieldRules{
			Strict:                   !cmd.Lenient,
			RequireIngredientAmounts: !cmd.NoAmounts,
		},
		MaxInvalidIngredients: cmd.MaxInvalid,
		WeeklyBudget:          cmd.Budget,
	}

	// 沒有使用者資料時只排除缺貨食材
	if cmd.User == "" && len(c.Data.Profiles) == 0 {
		catalog, err := c.source.Ingredients(ctx, planner.CatalogQuery{})
		if err != nil {
			return err
		}
		cfg.Catalog = ingredient.Apply(catalog, ingredient.IsAvailable)
	} else {
		id, err := c.user(cmd.User)
		if err != nil {
			return err
		}
		in, err := c.Planner.PlanInputs(ctx, id)
		if err != nil {
			return err
		}
		cfg.Catalog = in.Available
		cfg.Targets = &in.Summary.Targets
		if cfg.WeeklyBudget <= 0 {
			cfg.WeeklyBudget = in.WeeklyBudget
		}
	}

	res, err := weekplan.Validate(string(content), cfg)
	if err != nil {
		return err
	}
	return c.print(res)
}

// CatalogCmd 目錄資料品質報告與各分類數量
type CatalogCmd struct {
	Budget string `help:"Only include ingredients within this budget level (low, medium, high)."`
}

func (cmd *CatalogCmd) Run(c *Context) error {
	items, err := c.source.Ingredients(context.Background(), planner.CatalogQuery{})
	if err != nil {
		return err
	}
	if cmd.Budget != "" {
		level, err := ingredient.ParseBudget(cmd.Budget)
		if err != nil {
			return err
		}
		items = ingredient.FilterByBudget(items, level)
	}

	groups := ingredient.GroupByCategory(items)
	counts := make(map[string]int, len(groups))
	for category, list := range groups {
		counts[category] = len(list)
	}
	return c.print(map[string]any{
		"count":      len(items),
		"categories": counts,
		"quality":    ingredient.ValidateCatalog(items),
	})
}

// SubstitutesCmd 替代食材建議
type SubstitutesCmd struct {
	Ingredient string `arg:"" help:"Ingredient ID or name."`
	User       string `help:"User ID in the data file." short:"u"`
}

func (cmd *SubstitutesCmd) Run(c *Context) error {
	id, err := c.user(cmd.User)
	if err != nil {
		return err
	}
	res, err := c.Planner.Substitutes(context.Background(), id, c.source.resolveIngredient(cmd.Ingredient))
	if err != nil {
		return err
	}
	return c.print(res)
}
