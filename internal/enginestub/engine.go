// Package enginestub serves the engine's settings endpoint without an engine.
//
// Settings behave the way the engine treats them: vsync and full screen take
// effect at once, everything else is staged and only becomes current when the
// group's apply endpoint is hit. GET always returns current values.
package enginestub

import (
	"sync"

	"github.com/patrick-jessen/enginectl/internal/settings"
)

// State is the engine-side value of every setting.
type State struct {
	VSync      bool
	FullScreen bool
	Width      int
	Height     int
	Filter     int
	Aniso      int
	TextureRes int
	AA         int
	ShadowRes  int
}

// DefaultState mirrors the engine's start-up configuration.
func DefaultState() State {
	return State{
		VSync:      true,
		FullScreen: false,
		Width:      1920,
		Height:     1080,
		Filter:     settings.FilterTrilinearConst,
		Aniso:      16,
		TextureRes: 1,
		AA:         int(settings.MSAAx4),
		ShadowRes:  1024,
	}
}

// Request is one request received by the stub.
type Request struct {
	Method string
	Path   string
	Body   string
}

// Engine is an in-memory engine settings surface.
type Engine struct {
	mu         sync.Mutex
	current    State
	staged     State
	maxAniso   int
	maxSamples int
	failures   map[string]int
	requests   []Request
}

// Option configures an Engine.
type Option func(*Engine)

// WithState sets the initial state.
func WithState(s State) Option {
	return func(e *Engine) {
		e.current = s
		e.staged = s
	}
}

// WithMaxAnisotropy limits the anisotropy level like a GPU would.
func WithMaxAnisotropy(n int) Option {
	return func(e *Engine) {
		e.maxAniso = n
	}
}

// WithMaxSamples limits the MSAA sample count like a GPU would.
func WithMaxSamples(n int) Option {
	return func(e *Engine) {
		e.maxSamples = n
	}
}

// New creates an engine in its default state.
func New(opts ...Option) *Engine {
	e := &Engine{
		current:    DefaultState(),
		staged:     DefaultState(),
		maxAniso:   16,
		maxSamples: 16,
		failures:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current returns the live state.
func (e *Engine) Current() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Staged returns the state that the next apply calls would make current.
func (e *Engine) Staged() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.staged
}

// Fail makes the next n requests to path (e.g. "texture/filter") answer 500.
// A negative n fails every request until Recover is called.
func (e *Engine) Fail(path string, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[path] = n
}

// Recover clears all injected failures.
func (e *Engine) Recover() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = make(map[string]int)
}

// Requests returns every request received so far.
func (e *Engine) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Request, len(e.requests))
	copy(out, e.requests)
	return out
}

// Writes returns the bodies POSTed to path, in arrival order.
func (e *Engine) Writes(path string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var bodies []string
	for _, r := range e.requests {
		if r.Method == "POST" && r.Path == path {
			bodies = append(bodies, r.Body)
		}
	}
	return bodies
}

func (e *Engine) shouldFail(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.failures[path]
	if !ok || n == 0 {
		return false
	}
	if n > 0 {
		e.failures[path] = n - 1
	}
	return true
}

func (e *Engine) record(r Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, r)
}

// update runs fn with both states under the lock.
func (e *Engine) update(fn func(current, staged *State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.current, &e.staged)
}

func (e *Engine) clampAniso(n int) int {
	if n > e.maxAniso {
		return e.maxAniso
	}
	return n
}

// clampAA steps MSAA down until the sample count is supported, ending at FXAA.
func (e *Engine) clampAA(aa int) int {
	samples := map[int]int{
		int(settings.MSAAx2):  2,
		int(settings.MSAAx4):  4,
		int(settings.MSAAx8):  8,
		int(settings.MSAAx16): 16,
	}
	for aa >= int(settings.MSAAx2) && samples[aa] > e.maxSamples {
		aa--
	}
	return aa
}
