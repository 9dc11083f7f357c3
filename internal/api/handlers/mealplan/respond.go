package mealplan

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/pkg/common"
)

// pipelineErrorBody 流程錯誤的回應，Details 最多 10 筆
type pipelineErrorBody struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
	Total   int      `json:"total_errors,omitempty"`
}

// respondError 依錯誤類型決定狀態碼與回應格式
func respondError(c *gin.Context, op string, err error) {
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}

	if pe, ok := common.AsPipelineError(err); ok {
		status := pe.Status()
		if status >= http.StatusInternalServerError {
			common.LogError("規劃流程失敗", append(fields, zap.String("kind", string(pe.Kind)), zap.Int("total_errors", pe.Total()))...)
		} else {
			common.LogWarn("規劃前置條件不足", append(fields, zap.Strings("missing", pe.Details))...)
		}
		c.JSON(status, pipelineErrorBody{
			Success: false,
			Code:    string(pe.Kind),
			Error:   pe.Message,
			Details: pe.SampleDetails(),
			Total:   pe.Total(),
		})
		return
	}

	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Success: false,
			Code:    common.ErrCodeInvalidRequest,
			Error:   err.Error(),
		})
		return
	}

	var ce *common.CustomError
	if errors.As(err, &ce) {
		if ce.Status >= http.StatusInternalServerError {
			common.LogError("請求處理失敗", fields...)
		}
		c.JSON(ce.Status, common.ErrorResponse{
			Success: false,
			Code:    ce.Code,
			Error:   ce.Message,
		})
		return
	}

	if errors.Is(err, queue.ErrQueueFull) {
		common.LogWarn("生成隊列已滿", fields...)
		c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{
			Success: false,
			Code:    common.ErrCodeServiceUnavailable,
			Error:   "Meal plan generation is busy, please retry later",
		})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		common.LogError("請求逾時", fields...)
		c.JSON(http.StatusGatewayTimeout, common.ErrorResponse{
			Success: false,
			Code:    common.ErrCodeGatewayTimeout,
			Error:   "Request timeout",
		})
		return
	}

	common.LogError("請求處理失敗", fields...)
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Success: false,
		Code:    common.ErrCodeInternalError,
		Error:   err.Error(),
	})
}

// badRequest 請求格式錯誤
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, common.ErrorResponse{
		Success: false,
		Code:    common.ErrCodeInvalidRequest,
		Error:   "Invalid request format",
		Details: []string{err.Error()},
	})
}
