package settingsync

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patrick-jessen/enginectl/internal/enginestub"
	"github.com/patrick-jessen/enginectl/internal/remote"
	"github.com/patrick-jessen/enginectl/internal/settings"
	"github.com/patrick-jessen/enginectl/internal/testutil"
)

// newStubSession mounts group against a stand-in engine served over HTTP.
func newStubSession(t *testing.T, group settings.Group, engine *enginestub.Engine, opts ...SessionOption) (context.Context, *Session) {
	t.Helper()

	srv := httptest.NewServer(engine.Handler())
	t.Cleanup(srv.Close)

	client, err := remote.New(srv.URL)
	require.NoError(t, err)

	ctx, _ := testutil.NewTestContext(t)
	session := Mount(client, group, opts...)
	t.Cleanup(session.Unmount)
	return ctx, session
}

type call struct {
	method string
	path   string
	body   any
}

// fakeEndpoint is a scripted Endpoint. Reads of a gated path block until the
// gate is closed.
type fakeEndpoint struct {
	mu       sync.Mutex
	values   map[string]any
	failures map[string]error
	gates    map[string]chan struct{}
	entered  chan string
	calls    []call
}

func newFakeEndpoint(values map[string]any) *fakeEndpoint {
	return &fakeEndpoint{
		values:   values,
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
		entered:  make(chan string, 16),
	}
}

func (f *fakeEndpoint) gate(path string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[path] = ch
	return ch
}

func (f *fakeEndpoint) fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, path)
		return
	}
	f.failures[path] = err
}

func (f *fakeEndpoint) Get(_ context.Context, path string, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{method: "GET", path: path})
	gate := f.gates[path]
	err := f.failures[path]
	f.mu.Unlock()

	if gate != nil {
		f.entered <- path
		<-gate
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	data, marshalErr := json.Marshal(f.values[path])
	f.mu.Unlock()
	if marshalErr != nil {
		return marshalErr
	}
	return json.Unmarshal(data, out)
}

func (f *fakeEndpoint) Post(_ context.Context, path string, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "POST", path: path, body: body})
	if err := f.failures[path]; err != nil {
		return err
	}
	if body != nil {
		f.values[path] = body
	}
	return nil
}

func (f *fakeEndpoint) posts(path string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bodies []any
	for _, c := range f.calls {
		if c.method == "POST" && c.path == path {
			bodies = append(bodies, c.body)
		}
	}
	return bodies
}

func (f *fakeEndpoint) callLog() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []Record
}

func (m *memoryRecorder) Record(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memoryRecorder) all() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

func mustMember(t *testing.T, group settings.Group, key settings.Key) settings.Descriptor {
	t.Helper()
	d, ok := group.Member(key)
	require.True(t, ok, "missing member %s", key)
	return d
}

func stateOf(t *testing.T, s *Session, key settings.Key) State {
	t.Helper()
	st, ok := s.State(key)
	require.True(t, ok, "missing state %s", key)
	return st
}
