// Package queue 以固定數量的 worker 執行生成請求，限制同時對外呼叫數
package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 等待中的請求已達上限
	ErrQueueFull = errors.New("generation queue is full")
	// ErrQueueClosed 隊列已關閉
	ErrQueueClosed = errors.New("generation queue is closed")
)

// Request 隊列請求
type Request struct {
	Context context.Context
	Request *provider.Request
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Response *provider.Response
	Error    error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 隊列管理器
type Manager struct {
	provider  provider.Provider
	workers   int
	maxSize   int
	queue     chan *Request
	processed int64
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
}

// NewManager 創建隊列管理器並啟動 worker
func NewManager(p provider.Provider, workers, maxSize int) *Manager {
	if workers <= 0 {
		workers = 1
	}
	if maxSize <= 0 {
		maxSize = workers
	}
	m := &Manager{
		provider: p,
		workers:  workers,
		maxSize:  maxSize,
		queue:    make(chan *Request, maxSize),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.work()
	}
	return m
}

func (m *Manager) work() {
	defer m.wg.Done()
	for req := range m.queue {
		if err := req.Context.Err(); err != nil {
			req.Result <- Result{Error: err}
			continue
		}
		resp, err := m.provider.Generate(req.Context, req.Request)
		atomic.AddInt64(&m.processed, 1)
		req.Result <- Result{Response: resp, Error: err}
	}
}

// Submit 將請求加入隊列並等待結果，隊列已滿時立即失敗
func (m *Manager) Submit(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	queueReq := &Request{
		Context: ctx,
		Request: req,
		Result:  make(chan Result, 1),
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrQueueClosed
	}
	select {
	case m.queue <- queueReq:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
	default:
		m.mu.RUnlock()
		common.LogWarn("Generation queue full", zap.Int("max_queue_size", m.maxSize))
		return nil, ErrQueueFull
	}
	m.mu.RUnlock()

	select {
	case res := <-queueReq.Result:
		return res.Response, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止接收新請求，等待已排入的請求處理完畢
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
}
