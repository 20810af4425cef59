package finix

import (
	"context"
	"fmt"
	"sync"

	"github.com/boglepay/go-checkout-flow/pkg/logger"
)

// FetchFunc obtains and initializes the vendor SDK for a bundle URL. The
// production fetcher downloads the vendor bundle; tests inject stubs.
type FetchFunc func(ctx context.Context, url string) (SDK, error)

// loadState records the outcome of a single underlying fetch. All callers that
// arrive while the fetch is outstanding share it and settle together.
type loadState struct {
	done chan struct{}
	sdk  SDK
	err  error
}

// Loader guarantees at-most-one SDK fetch per URL for the process lifetime,
// the equivalent of inserting a single script tag per src. The loaded handle
// is retained as append-only shared state.
type Loader struct {
	mu      sync.Mutex
	fetch   FetchFunc
	current SDK
	loads   map[string]*loadState
}

// NewLoader returns a Loader using the given fetch function.
func NewLoader(fetch FetchFunc) *Loader {
	return &Loader{
		fetch: fetch,
		loads: map[string]*loadState{},
	}
}

// Current returns the loaded SDK handle, or nil if none is available yet.
func (l *Loader) Current() SDK {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// EnsureLoaded makes the SDK available for the given bundle URL.
//   - empty url resolves (false, nil) as a no-op
//   - an already-loaded SDK resolves (true, nil) with no network action
//   - concurrent calls for the same url attach to the one in-flight fetch
//   - a recorded failure for the url is returned without refetching
func (l *Loader) EnsureLoaded(ctx context.Context, url string) (bool, error) {
	if url == "" {
		return false, nil
	}

	l.mu.Lock()
	if l.current != nil {
		l.mu.Unlock()
		return true, nil
	}

	st, ok := l.loads[url]
	if !ok {
		st = &loadState{done: make(chan struct{})}
		l.loads[url] = st
		l.mu.Unlock()

		logger.Info("loading Finix SDK", map[string]interface{}{"url": url})
		sdk, err := l.fetch(ctx, url)

		l.mu.Lock()
		if err != nil {
			st.err = fmt.Errorf("%w: %v", ErrScriptLoad, err)
		} else {
			st.sdk = sdk
			l.current = sdk
		}
		close(st.done)
		l.mu.Unlock()

		if st.err != nil {
			return false, st.err
		}
		return true, nil
	}
	l.mu.Unlock()

	select {
	case <-st.done:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	if st.err != nil {
		return false, st.err
	}
	return true, nil
}
