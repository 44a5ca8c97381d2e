package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// ErrPoolClosed is returned by Get after Cleanup.
var ErrPoolClosed = errors.New("browser pool is closed")

// Pool hands out headless browsers for the rod renderer.
type Pool struct {
	launcher *launcher.Launcher
	browsers chan *rod.Browser
	mu       sync.Mutex
	closed   bool
}

// NewPool launches one Chrome process and connects size browsers to it.
func NewPool(size int, userAgent string) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("browser pool size must be positive, got %d", size)
	}

	l := NewLauncher(userAgent)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	pool := &Pool{
		launcher: l,
		browsers: make(chan *rod.Browser, size),
	}
	for i := 0; i < size; i++ {
		b := rod.New().ControlURL(controlURL)
		if err := b.Connect(); err != nil {
			pool.Cleanup()
			return nil, fmt.Errorf("connect browser %d: %w", i, err)
		}
		pool.browsers <- b
	}

	slog.Info("Browser pool initialized", "size", size)
	return pool, nil
}

// Get waits for a free browser or for ctx to end.
func (p *Pool) Get(ctx context.Context) (*rod.Browser, error) {
	select {
	case b, ok := <-p.browsers:
		if !ok {
			return nil, ErrPoolClosed
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Return gives a browser back to the pool.
func (p *Pool) Return(b *rod.Browser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = b.Close()
		return
	}
	p.browsers <- b
}

// Cleanup closes all idle browsers and the Chrome process.
func (p *Pool) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	close(p.browsers)
	for b := range p.browsers {
		if err := b.Close(); err != nil {
			slog.Warn("Failed to close browser", "error", err)
		}
	}
	p.launcher.Cleanup()
	slog.Info("Browser pool cleaned up")
}

// NewLauncher creates a headless launcher with the flags we run Chrome with.
func NewLauncher(userAgent string) *launcher.Launcher {
	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-extensions").
		Set("disable-background-networking")
	if userAgent != "" {
		l = l.Set("user-agent", userAgent)
	}
	return l
}
