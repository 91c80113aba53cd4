package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-jessen/enginectl/internal/database"
	"github.com/patrick-jessen/enginectl/internal/enginestub"
	"github.com/patrick-jessen/enginectl/internal/settings"
	"github.com/patrick-jessen/enginectl/internal/settingsync"
)

const configPath = "/config/enginectl.yml"

func newTestApp(t *testing.T, engine *enginestub.Engine, history bool) (context.Context, *App, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(engine.Handler())
	t.Cleanup(srv.Close)

	fs := afero.NewMemMapFs()
	content := "engine:\n  url: " + srv.URL + "\n  timeout: 2s\n"
	if !history {
		content += "history:\n  enabled: false\n"
	}
	require.NoError(t, afero.WriteFile(fs, configPath, []byte(content), 0o600))

	out := &bytes.Buffer{}
	ctx, a, err := Open(context.Background(), Options{
		Fs:          fs,
		Out:         out,
		LogWriter:   io.Discard,
		ConfigPath:  configPath,
		DatabaseDSN: database.MemoryDSN,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return ctx, a, out
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, configPath, []byte("engine:\n  timeout: -1s\n"), 0o600))

	_, _, err := Open(context.Background(), Options{Fs: fs, LogWriter: io.Discard, ConfigPath: configPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.timeout must be positive")
}

func TestStatus(t *testing.T) {
	t.Parallel()

	ctx, a, out := newTestApp(t, enginestub.New(), false)
	require.NoError(t, a.Status(ctx, ""))

	text := out.String()
	for _, want := range []string{"Window", "Texture", "Renderer", "16x Anisotropic", "4x MSAA", "High"} {
		assert.Contains(t, text, want)
	}
}

func TestStatusReportsUnreadableSettings(t *testing.T) {
	t.Parallel()

	engine := enginestub.New()
	engine.Fail("renderer/aa", 1)
	ctx, a, out := newTestApp(t, engine, false)

	err := a.Status(ctx, "renderer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 setting(s) could not be read")
	assert.Contains(t, out.String(), "Shadow Resolution")
	assert.NotContains(t, out.String(), "Window")
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		state   enginestub.State
		want    string
		wantErr bool
	}{
		{name: "filter", key: "texture.filter", state: enginestub.DefaultState(), want: "texture.filter = 16x Anisotropic\n"},
		{name: "display mode", key: "window.fullScreen", state: enginestub.DefaultState(), want: "window.fullScreen = Windowed\n"},
		{name: "unknown key", key: "audio.volume", state: enginestub.DefaultState(), wantErr: true},
		{
			name: "unrecognized", key: "renderer.aa",
			state: func() enginestub.State { s := enginestub.DefaultState(); s.AA = 9; return s }(),
			want:  "renderer.aa = Unrecognized\n", wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, a, out := newTestApp(t, enginestub.New(enginestub.WithState(tt.state)), false)
			err := a.Get(ctx, tt.key)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestSetAppliesPerGroup(t *testing.T) {
	t.Parallel()

	engine := enginestub.New()
	ctx, a, out := newTestApp(t, engine, true)

	// size is listed first but needs full screen, which is set first.
	err := a.Set(ctx, []string{
		"window.size=1366x768",
		"window.fullScreen=full screen",
		"renderer.aa=FXAA",
		"window.vsync=Disabled",
	})
	require.NoError(t, err)

	current := engine.Current()
	assert.True(t, current.FullScreen)
	assert.False(t, current.VSync)
	assert.Equal(t, 1366, current.Width)
	assert.Equal(t, int(settings.FXAA), current.AA)

	assert.Len(t, engine.Writes("window/apply"), 1)
	assert.Len(t, engine.Writes("renderer/apply"), 1)
	assert.Empty(t, engine.Writes("texture/apply"))
	assert.Contains(t, out.String(), "window.size = 1366x768")

	out.Reset()
	require.NoError(t, a.History(ctx, 20))
	assert.Contains(t, out.String(), "window/apply")
	assert.Contains(t, out.String(), `renderer.aa {"aa":1}`)
}

func TestSetErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pairs []string
		want  string
	}{
		{name: "nothing", pairs: nil, want: "nothing to set"},
		{name: "no equals", pairs: []string{"window.vsync"}, want: "expected key=option"},
		{name: "unknown key", pairs: []string{"window.depth=on"}, want: "unknown setting"},
		{name: "bad option", pairs: []string{"renderer.aa=32x"}, want: "not in setting domain"},
		{name: "disabled", pairs: []string{"window.size=1366x768"}, want: "setting is disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, a, _ := newTestApp(t, enginestub.New(), false)
			err := a.Set(ctx, tt.pairs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSetReportsPartialApply(t *testing.T) {
	t.Parallel()

	engine := enginestub.New()
	engine.Fail("texture/filter", -1)
	ctx, a, _ := newTestApp(t, engine, false)

	err := a.Set(ctx, []string{"texture.filter=Bilinear", "texture.resolution=Low"})
	require.Error(t, err)
	assert.ErrorIs(t, err, settingsync.ErrPartialApply)
	assert.Equal(t, 4, engine.Current().TextureRes)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	_, a, out := newTestApp(t, enginestub.New(), false)
	require.NoError(t, a.Options("texture.resolution"))
	assert.Equal(t, "Resolution (texture.resolution, deferred)\n   Low\n * Medium\n   High\n", out.String())

	assert.Error(t, a.Options("nope"))
}

func TestHistory(t *testing.T) {
	t.Parallel()

	ctx, a, _ := newTestApp(t, enginestub.New(), false)
	assert.ErrorIs(t, a.History(ctx, 10), ErrHistoryDisabled)

	ctx, a, out := newTestApp(t, enginestub.New(), true)
	require.NoError(t, a.History(ctx, 10))
	assert.Equal(t, "no history\n", out.String())
}

func TestInitConfig(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, InitConfig(fs, "/home/user/.config/enginectl/enginectl.yml"))

	data, err := afero.ReadFile(fs, "/home/user/.config/enginectl/enginectl.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://localhost:8000/")

	err = InitConfig(fs, "/home/user/.config/enginectl/enginectl.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
