package planner

import (
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/weekplan"
	"meal-planner/internal/infrastructure/config"
)

// Options 流程變體設定
type Options struct {
	Model                     string
	MaxTokens                 int
	Temperature               float64
	TopP                      float64
	ActivityMultiplier        float64
	TargetsActivityMultiplier float64
	UseIngredientAmounts      bool
	StrictValidation          bool
	IncludeComposition        bool
	MaxInvalidIngredients     int
	ReuseThreshold            int
}

// DefaultOptions 預設值
func DefaultOptions() Options {
	return Options{
		MaxTokens:                 8192,
		Temperature:               0.3,
		TopP:                      0.9,
		ActivityMultiplier:        nutrition.DefaultActivityMultiplier,
		TargetsActivityMultiplier: nutrition.TargetsActivityMultiplier,
		UseIngredientAmounts:      true,
		StrictValidation:          true,
		MaxInvalidIngredients:     weekplan.DefaultMaxInvalidIngredients,
		ReuseThreshold:            weekplan.Days * len(weekplan.Slots()),
	}
}

// OptionsFromConfig 由設定檔組出流程設定
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Model:                     cfg.OpenRouter.Model,
		MaxTokens:                 cfg.OpenRouter.MaxTokens,
		Temperature:               cfg.OpenRouter.Temperature,
		TopP:                      cfg.OpenRouter.TopP,
		ActivityMultiplier:        cfg.Planner.ActivityMultiplier,
		TargetsActivityMultiplier: cfg.Planner.TargetsActivityMultiplier,
		UseIngredientAmounts:      cfg.Planner.UseIngredientAmounts,
		StrictValidation:          cfg.Planner.StrictValidation,
		IncludeComposition:        cfg.Planner.IncludeComposition,
		MaxInvalidIngredients:     cfg.Planner.MaxInvalidIngredients,
		ReuseThreshold:            cfg.Planner.ReuseThreshold,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	if o.ActivityMultiplier <= 0 {
		o.ActivityMultiplier = d.ActivityMultiplier
	}
	if o.TargetsActivityMultiplier <= 0 {
		o.TargetsActivityMultiplier = d.TargetsActivityMultiplier
	}
	if o.MaxInvalidIngredients <= 0 {
		o.MaxInvalidIngredients = d.MaxInvalidIngredients
	}
	if o.ReuseThreshold <= 0 {
		o.ReuseThreshold = d.ReuseThreshold
	}
	return o
}

func (o Options) fieldRules() weekplan.FieldRules {
	return weekplan.FieldRules{
		Strict:                   o.StrictValidation,
		RequireIngredientAmounts: o.UseIngredientAmounts,
	}
}
