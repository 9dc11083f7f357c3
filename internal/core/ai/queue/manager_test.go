package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meal-planner/internal/core/ai/provider"
)

type blockingProvider struct {
	release chan struct{}
	started chan struct{}
	mu      sync.Mutex
	calls   int
}

func (p *blockingProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.release != nil {
		<-p.release
	}
	return &provider.Response{Content: req.Messages[len(req.Messages)-1].Content}, nil
}

func (p *blockingProvider) GetModel() string          { return "fake" }
func (p *blockingProvider) GetTimeout() time.Duration { return time.Second }
func (p *blockingProvider) Close() error              { return nil }

func TestSubmitReturnsProviderResult(t *testing.T) {
	m := NewManager(&blockingProvider{}, 2, 4)
	defer m.Close()

	resp, err := m.Submit(context.Background(), provider.NewChat("s", "hello"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("content = %q", resp.Content)
	}
	if got := m.GetQueueStatus().ProcessedCount; got != 1 {
		t.Errorf("processed = %d, want 1", got)
	}
}

func TestSubmitFailsWhenFull(t *testing.T) {
	p := &blockingProvider{release: make(chan struct{}), started: make(chan struct{}, 1)}
	m := NewManager(p, 1, 1)

	done := make(chan error, 2)
	go func() {
		_, err := m.Submit(context.Background(), provider.NewChat("s", "first"))
		done <- err
	}()
	<-p.started

	go func() {
		_, err := m.Submit(context.Background(), provider.NewChat("s", "second"))
		done <- err
	}()
	deadline := time.After(time.Second)
	for len(m.queue) == 0 {
		select {
		case <-deadline:
			t.Fatal("second request never queued")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := m.Submit(context.Background(), provider.NewChat("s", "third")); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(p.release)
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Errorf("queued request failed: %v", err)
		}
	}
	m.Close()
}

func TestSubmitAfterClose(t *testing.T) {
	m := NewManager(&blockingProvider{}, 1, 1)
	m.Close()
	m.Close()

	if _, err := m.Submit(context.Background(), provider.NewChat("s", "u")); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
}

func TestSubmitCancelledContext(t *testing.T) {
	m := NewManager(&blockingProvider{}, 1, 1)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Submit(ctx, provider.NewChat("s", "u")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
