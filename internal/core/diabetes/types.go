package diabetes

// Severity 糖尿病嚴重程度
type Severity string

const (
	SeverityNormal      Severity = "normal"
	SeverityPrediabetic Severity = "prediabetic"
	SeverityMild        Severity = "mild"
	SeverityModerate    Severity = "moderate"
	SeveritySevere      Severity = "severe"
)

// Valid 是否為已知的嚴重程度
func (s Severity) Valid() bool {
	switch s {
	case SeverityNormal, SeverityPrediabetic, SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// 風險因子
const (
	RiskHighHbA1c     = "high_hba1c"
	RiskModerateHbA1c = "moderate_hba1c"
	RiskVeryHighFBS   = "very_high_fbs"
	RiskHighFBS       = "high_fbs"
	RiskVeryHighPPBS  = "very_high_ppbs"
	RiskHighPPBS      = "high_ppbs"
)

// LabResult 檢驗結果，nil 欄位代表未檢測
type LabResult struct {
	HbA1c                  *float64 `json:"hba1c,omitempty"`
	FastingBloodSugar      *float64 `json:"fasting_blood_sugar,omitempty"`
	PostprandialBloodSugar *float64 `json:"postprandial_blood_sugar,omitempty"`
	GlucoseTolerance       *float64 `json:"glucose_tolerance,omitempty"`
}

// GlucoseThresholds 血糖監測門檻 (mg/dL)
type GlucoseThresholds struct {
	PreMeal  float64 `json:"pre_meal"`
	PostMeal float64 `json:"post_meal"`
	Bedtime  float64 `json:"bedtime"`
}

// Analysis 由檢驗值推導出的分析結果
type Analysis struct {
	Severity              Severity          `json:"severity"`
	CarbLimitGramsPerMeal float64           `json:"carb_limit_per_meal"`
	CalorieLimitPerMeal   float64           `json:"calorie_limit_per_meal"`
	RiskFactors           []string          `json:"risk_factors"`
	Recommendations       []string          `json:"recommendations"`
	GlucoseThresholds     GlucoseThresholds `json:"glucose_thresholds"`
}

// HasRisk 是否帶有指定風險因子
func (a Analysis) HasRisk(risk string) bool {
	for _, r := range a.RiskFactors {
		if r == risk {
			return true
		}
	}
	return false
}

// MealTiming 餐次安排建議
type MealTiming struct {
	MealsPerDay        int  `json:"meals_per_day"`
	SnacksAllowed      int  `json:"snacks_allowed"`
	MaxHoursBetween    int  `json:"max_hours_between_meals"`
	FastingWindowHours int  `json:"fasting_window_hours"`
	SplitLargeMeals    bool `json:"split_large_meals"`
}

// Range 數值區間
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GlucoseTargets 個人化血糖目標
type GlucoseTargets struct {
	Fasting  Range   `json:"fasting"`
	PostMeal Range   `json:"post_meal"`
	Bedtime  Range   `json:"bedtime"`
	HbA1c    float64 `json:"hba1c"`
}

// Portion 計算升糖負荷用的份量
type Portion struct {
	GlycemicIndex float64
	CarbsGrams    float64
	Multiplier    float64
}
