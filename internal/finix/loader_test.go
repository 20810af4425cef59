package finix

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// stubSDK is a minimal vendor handle for loader/auth tests.
type stubSDK struct {
	authFunc func(env, merchantID string, cb func(string)) (AuthClient, error)
	formFunc func(containerID string, opts FormOptions) (interface{}, error)
}

func (s *stubSDK) Auth(env, merchantID string, cb func(string)) (AuthClient, error) {
	if s.authFunc != nil {
		return s.authFunc(env, merchantID, cb)
	}
	return &stubAuthClient{}, nil
}

func (s *stubSDK) CardTokenForm(containerID string, opts FormOptions) (interface{}, error) {
	if s.formFunc != nil {
		return s.formFunc(containerID, opts)
	}
	return nil, errors.New("no form")
}

type stubAuthClient struct {
	mu  sync.Mutex
	key string
}

func (c *stubAuthClient) GetSessionKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

func (c *stubAuthClient) setKey(k string) {
	c.mu.Lock()
	c.key = k
	c.mu.Unlock()
}

func TestEnsureLoaded_EmptyURL(t *testing.T) {
	l := NewLoader(func(ctx context.Context, url string) (SDK, error) {
		t.Fatal("fetch should not be called for empty url")
		return nil, nil
	})
	ok, err := l.EnsureLoaded(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for empty url")
	}
}

func TestEnsureLoaded_ConcurrentCallsShareOneFetch(t *testing.T) {
	var fetches int32
	release := make(chan struct{})
	l := NewLoader(func(ctx context.Context, url string) (SDK, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return &stubSDK{}, nil
	})

	const n = 10
	var wg sync.WaitGroup
	results := make([]error, n)
	oks := make([]bool, n)
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			oks[i], results[i] = l.EnsureLoaded(context.Background(), "https://js.finix.com/v/1/finix.js")
		}(i)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("expected exactly 1 underlying fetch, got %d", got)
	}
	for i := 0; i < n; i++ {
		if results[i] != nil || !oks[i] {
			t.Fatalf("caller %d: ok=%v err=%v", i, oks[i], results[i])
		}
	}
}

func TestEnsureLoaded_FastPathAfterLoad(t *testing.T) {
	var fetches int32
	l := NewLoader(func(ctx context.Context, url string) (SDK, error) {
		atomic.AddInt32(&fetches, 1)
		return &stubSDK{}, nil
	})

	if ok, err := l.EnsureLoaded(context.Background(), "https://example.com/sdk.js"); err != nil || !ok {
		t.Fatalf("first load: ok=%v err=%v", ok, err)
	}
	// different url, but SDK already present: no second fetch
	if ok, err := l.EnsureLoaded(context.Background(), "https://example.com/other.js"); err != nil || !ok {
		t.Fatalf("second load: ok=%v err=%v", ok, err)
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}
	if l.Current() == nil {
		t.Fatalf("expected loaded SDK handle")
	}
}

func TestEnsureLoaded_FailureIsRememberedPerURL(t *testing.T) {
	var fetches int32
	l := NewLoader(func(ctx context.Context, url string) (SDK, error) {
		atomic.AddInt32(&fetches, 1)
		return nil, errors.New("connection refused")
	})

	_, err := l.EnsureLoaded(context.Background(), "https://bad.example.com/sdk.js")
	if !errors.Is(err, ErrScriptLoad) {
		t.Fatalf("expected ErrScriptLoad, got %v", err)
	}
	// second call observes the recorded failure without refetching
	_, err = l.EnsureLoaded(context.Background(), "https://bad.example.com/sdk.js")
	if !errors.Is(err, ErrScriptLoad) {
		t.Fatalf("expected ErrScriptLoad on replay, got %v", err)
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}
}
