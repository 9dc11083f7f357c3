package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Service AI 服務：快取 → 隊列 → 提供者
type Service struct {
	provider provider.Provider
	cache    cache.Store
	queue    *queue.Manager
}

// NewService 創建 AI 服務，cache 與 queue 可為 nil
func NewService(p provider.Provider, store cache.Store, q *queue.Manager) (*Service, error) {
	if p == nil {
		return nil, fmt.Errorf("AI provider is required")
	}
	return &Service{
		provider: p,
		cache:    store,
		queue:    q,
	}, nil
}

// cacheKey 模型、取樣參數與全部訊息都納入快取鍵
func (s *Service) cacheKey(req *provider.Request) string {
	model := req.Model
	if model == "" {
		model = s.provider.GetModel()
	}
	parts := []string{
		model,
		strconv.Itoa(req.MaxTokens),
		strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		strconv.FormatFloat(req.TopP, 'f', -1, 64),
		strconv.FormatBool(req.JSONMode),
	}
	for _, m := range req.Messages {
		parts = append(parts, m.Role, m.Content)
	}
	return cache.Key(parts...)
}

// Complete 統一對外方法，skipCache 時略過快取讀取。
// 回應不會自動寫入快取，呼叫端確認內容可用後再呼叫 Remember
func (s *Service) Complete(ctx context.Context, req *provider.Request, skipCache bool) (*provider.Response, error) {
	if s.cache != nil && !skipCache {
		val, err := s.cache.Get(ctx, s.cacheKey(req))
		switch {
		case err == nil:
			return &provider.Response{Content: val, Model: req.Model, CacheHit: true}, nil
		case !errors.Is(err, common.ErrCacheMiss):
			common.LogWarn("快取讀取失敗", zap.Error(err))
		}
	}

	start := time.Now()
	var (
		resp *provider.Response
		err  error
	)
	if s.queue != nil {
		resp, err = s.queue.Submit(ctx, req)
	} else {
		resp, err = s.provider.Generate(ctx, req)
	}

	model := req.Model
	if model == "" {
		model = s.provider.GetModel()
	}
	common.LogAICall(model, time.Since(start), err, common.RequestIDFrom(ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Remember 將已通過驗證的回應寫入快取，快取命中的回應不重寫
func (s *Service) Remember(ctx context.Context, req *provider.Request, resp *provider.Response) {
	if s.cache == nil || resp == nil || resp.CacheHit {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(req), resp.Content); err != nil {
		common.LogWarn("快取寫入失敗", zap.Error(err))
	}
}

// Model 預設模型名稱
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// QueueStatus 隊列狀態，未啟用隊列時為 nil
func (s *Service) QueueStatus() *queue.Status {
	if s.queue == nil {
		return nil
	}
	return s.queue.GetQueueStatus()
}

// Close 關閉隊列、快取與提供者
func (s *Service) Close() error {
	if s.queue != nil {
		s.queue.Close()
	}
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	errs = append(errs, s.provider.Close())
	return errors.Join(errs...)
}
