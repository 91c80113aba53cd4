package panel

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-jessen/enginectl/internal/enginestub"
	"github.com/patrick-jessen/enginectl/internal/remote"
	"github.com/patrick-jessen/enginectl/internal/settings"
	"github.com/patrick-jessen/enginectl/internal/settingsync"
	"github.com/patrick-jessen/enginectl/internal/testutil"
)

type scriptedPrompter struct {
	lines   []string
	history []string
}

func (s *scriptedPrompter) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedPrompter) AppendHistory(line string) {
	s.history = append(s.history, line)
}

func (*scriptedPrompter) Close() error {
	return nil
}

func newTestPanel(t *testing.T, engine *enginestub.Engine) (context.Context, *Panel, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(engine.Handler())
	t.Cleanup(srv.Close)

	client, err := remote.New(srv.URL)
	require.NoError(t, err)

	ctx, _ := testutil.NewTestContext(t)
	out := &bytes.Buffer{}
	p := New(client, out)
	t.Cleanup(p.Close)
	return ctx, p, out
}

func TestRunScript(t *testing.T) {
	t.Parallel()

	engine := enginestub.New()
	ctx, p, out := newTestPanel(t, engine)

	prompter := &scriptedPrompter{lines: []string{
		"set window.vsync Disabled",
		"set texture.filter 4x anisotropic",
		"apply texture",
		"quit",
		"set window.vsync Enabled",
	}}
	require.NoError(t, p.Run(ctx, prompter))

	current := engine.Current()
	assert.False(t, current.VSync)
	assert.Equal(t, settings.FilterBilinearConst, current.Filter)
	assert.Equal(t, 4, current.Aniso)

	text := out.String()
	assert.Contains(t, text, "Window")
	assert.Contains(t, text, "Texture")
	assert.Contains(t, text, "Renderer")
	assert.Contains(t, text, "Texture: applied 1 setting(s)")
	assert.Len(t, prompter.lines, 1, "commands after quit are not read")
	assert.Equal(t, []string{
		"set window.vsync Disabled",
		"set texture.filter 4x anisotropic",
		"apply texture",
		"quit",
	}, prompter.history)
}

func TestRunEndsAtEOF(t *testing.T) {
	t.Parallel()

	ctx, p, _ := newTestPanel(t, enginestub.New())
	assert.NoError(t, p.Run(ctx, &scriptedPrompter{}))
}

func TestExecErrors(t *testing.T) {
	t.Parallel()

	ctx, p, _ := newTestPanel(t, enginestub.New())
	p.reload(ctx, p.sessions)

	tests := []struct {
		target error
		name   string
		line   string
	}{
		{name: "unknown command", line: "frobnicate"},
		{name: "set without option", line: "set window.vsync", target: ErrUsage},
		{name: "unknown key", line: "set window.depth On", target: settings.ErrUnknownSetting},
		{name: "unknown option", line: "set renderer.aa 32x MSAA", target: settings.ErrOutOfDomain},
		{name: "unknown group", line: "show audio", target: settings.ErrUnknownSetting},
		{name: "disabled member", line: "set window.size 1366x768", target: settingsync.ErrDisabled},
	}

	for _, tt := range tests {
		quit, err := p.Exec(ctx, tt.line)
		assert.False(t, quit, tt.name)
		require.Error(t, err, tt.name)
		if tt.target != nil {
			assert.ErrorIs(t, err, tt.target, tt.name)
		}
	}
}

func TestWindowModeScenario(t *testing.T) {
	t.Parallel()

	engine := enginestub.New()
	ctx, p, out := newTestPanel(t, engine)
	p.reload(ctx, p.sessions)

	for _, line := range []string{
		"set window.fullScreen Full screen",
		"set window.size 1366x768",
		"apply window",
	} {
		_, err := p.Exec(ctx, line)
		require.NoError(t, err, line)
	}

	current := engine.Current()
	assert.True(t, current.FullScreen)
	assert.Equal(t, 1366, current.Width)
	assert.Equal(t, 768, current.Height)
	assert.Contains(t, out.String(), "Window: applied 1 setting(s)")
}

func TestApplyReportsPartialFailure(t *testing.T) {
	t.Parallel()

	engine := enginestub.New()
	ctx, p, out := newTestPanel(t, engine)
	p.reload(ctx, p.sessions)

	_, err := p.Exec(ctx, "set renderer.aa FXAA")
	require.NoError(t, err)
	_, err = p.Exec(ctx, "set renderer.shadowResolution 2048")
	require.NoError(t, err)

	engine.Fail("renderer/aa", 1)
	_, err = p.Exec(ctx, "apply")
	require.Error(t, err)
	assert.ErrorIs(t, err, settingsync.ErrPartialApply)
	assert.Contains(t, out.String(), "Renderer: applied 1 setting(s)")
	assert.Equal(t, 2048, engine.Current().ShadowRes)

	_, err = p.Exec(ctx, "apply renderer")
	require.NoError(t, err)
	assert.Equal(t, int(settings.FXAA), engine.Current().AA)
	assert.Equal(t, []string{`{"aa":1}`, `{"aa":1}`}, engine.Writes("renderer/aa"))
}

func TestRevertAndReload(t *testing.T) {
	t.Parallel()

	engine := enginestub.New()
	ctx, p, _ := newTestPanel(t, engine)
	p.reload(ctx, p.sessions)

	_, err := p.Exec(ctx, "set texture.resolution Low")
	require.NoError(t, err)
	require.Equal(t, []settings.Key{settings.TextureResolution}, p.session(settings.GroupTexture).Pending())

	_, err = p.Exec(ctx, "revert texture")
	require.NoError(t, err)
	assert.Empty(t, p.session(settings.GroupTexture).Pending())

	engine.Fail("renderer/aa", 1)
	_, err = p.Exec(ctx, "reload renderer")
	require.NoError(t, err)
	st, ok := p.session(settings.GroupRenderer).State(settings.RendererAntialiasing)
	require.True(t, ok)
	assert.True(t, st.Stale())
	assert.True(t, errors.Is(st.Err, remote.ErrTransport))
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	p := &Panel{}
	for _, g := range settings.Groups() {
		p.sessions = append(p.sessions, settingsync.Mount(nil, g))
	}

	tests := []struct {
		name   string
		fields []string
		want   []string
	}{
		{name: "commands", fields: nil, want: commands},
		{name: "groups", fields: []string{"apply"}, want: []string{"window", "texture", "renderer"}},
		{name: "keys", fields: []string{"set"}, want: []string{
			"window.fullScreen", "window.size", "window.vsync",
			"texture.filter", "texture.resolution",
			"renderer.aa", "renderer.shadowResolution",
		}},
		{name: "labels", fields: []string{"set", "texture.resolution"}, want: []string{"Low", "Medium", "High"}},
		{name: "unknown key", fields: []string{"set", "nope"}, want: nil},
		{name: "nothing after help", fields: []string{"help"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.Candidates(tt.fields))
		})
	}
}

func TestFormatState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		group settings.Group
		state settingsync.State
		want  []string
	}{
		{
			name:  "immediate synced",
			group: settings.Window,
			state: settingsync.State{
				Key: settings.WindowVSync, Label: "Vertical Sync", Policy: settings.Immediate,
				Status: settingsync.Synced, Value: settings.Enabled, Enabled: true,
			},
			want: []string{"Vertical Sync", "Enabled", "synced", "(immediate)"},
		},
		{
			name:  "stale",
			group: settings.Renderer,
			state: settingsync.State{
				Key: settings.RendererAntialiasing, Label: "Antialiasing", Policy: settings.Deferred,
				Status: settingsync.Unknown, Value: settings.Unrecognized, Err: errors.New("decode renderer/aa"),
				Enabled: true,
			},
			want: []string{"Unrecognized", "unknown!", "decode renderer/aa"},
		},
		{
			name:  "disabled",
			group: settings.Window,
			state: settingsync.State{
				Key: settings.WindowSize, Label: "Resolution", Policy: settings.Deferred,
				Status: settingsync.Synced, Value: settings.Res1920x1080,
			},
			want: []string{"disabled", "needs Display Mode: Full screen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			line := FormatState(tt.group, tt.state)
			for _, want := range tt.want {
				assert.Contains(t, line, want)
			}
		})
	}
}
