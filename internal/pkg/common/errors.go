package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`              // 錯誤代碼
	Error   string   `json:"error"`             // 錯誤信息
	Details []string `json:"details,omitempty"` // 詳細信息
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示請求驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	ErrUserNotFound       = NewError("USER_NOT_FOUND", "User not found", http.StatusNotFound, nil)
	ErrMealNotFound       = NewError("MEAL_NOT_FOUND", "Meal not found", http.StatusNotFound, nil)
	ErrIngredientNotFound = NewError("INGREDIENT_NOT_FOUND", "Ingredient not found", http.StatusNotFound, nil)
	ErrCacheFull          = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheMiss          = NewError("CACHE_MISS", "快取未命中", http.StatusNotFound, nil)
)

// PipelineKind 規劃流程錯誤分類
type PipelineKind string

const (
	KindPreconditionMissing PipelineKind = "PRECONDITION_MISSING"
	KindExternalFormat      PipelineKind = "EXTERNAL_FORMAT_ERROR"
	KindStructuralInvalid   PipelineKind = "STRUCTURAL_INVALID"
	KindNutritionInvalid    PipelineKind = "NUTRITION_INVALID"
	KindIngredientInvalid   PipelineKind = "INGREDIENT_INVALID"
)

// maxSampleDetails 錯誤訊息中最多列出的明細數
const maxSampleDetails = 10

// PipelineError 規劃流程中的致命錯誤，Details 為收集到的全部明細
type PipelineError struct {
	Kind    PipelineKind
	Message string
	Details []string
	Err     error
}

// NewPipelineError 創建流程錯誤
func NewPipelineError(kind PipelineKind, message string, details ...string) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Message: message,
		Details: details,
	}
}

// WrapPipelineError 以流程錯誤包裝原始錯誤
func WrapPipelineError(kind PipelineKind, message string, err error) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func (e *PipelineError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if len(e.Details) > 0 {
		sample := e.SampleDetails()
		sb.WriteString(": ")
		sb.WriteString(strings.Join(sample, "; "))
		if len(e.Details) > len(sample) {
			sb.WriteString(fmt.Sprintf(" (showing %d of %d errors)", len(sample), len(e.Details)))
		}
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Total 明細總數
func (e *PipelineError) Total() int {
	return len(e.Details)
}

// SampleDetails 取前 10 筆明細
func (e *PipelineError) SampleDetails() []string {
	if len(e.Details) <= maxSampleDetails {
		return e.Details
	}
	return e.Details[:maxSampleDetails]
}

// Status 對應 HTTP 狀態碼
func (e *PipelineError) Status() int {
	if e.Kind == KindPreconditionMissing {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// AsPipelineError 取出流程錯誤
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsPipelineKind 檢查錯誤是否為指定分類
func IsPipelineKind(err error, kind PipelineKind) bool {
	pe, ok := AsPipelineError(err)
	return ok && pe.Kind == kind
}
