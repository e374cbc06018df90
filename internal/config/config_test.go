package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
root: ./src
components:
  zeta: "<Zeta/>"
  banner: "<Banner/>"
  alpha: "<Alpha/>"
includes: ["components/**/*.vue"]
watchFile: src/pages.json
insertPos:
  mode: GLOBAL
  exclude: [pages/login]
  handlePos:
    - page: /pages/home
      insert: [banner]
    - page: pages/empty
      insert: []
    - page: pages/default
dts: types/routes.d.ts
`))
	require.NoError(t, err)

	assert.Equal(t, "./src", cfg.Root)
	assert.Equal(t, DefaultManifestFile, cfg.Manifest)
	require.True(t, cfg.Components.Present())
	assert.Equal(t, []string{"zeta", "banner", "alpha"}, cfg.Components.Keys())
	markup, ok := cfg.Components.Lookup("banner")
	require.True(t, ok)
	assert.Equal(t, "<Banner/>", markup)

	assert.Equal(t, []string{"components/**/*.vue"}, cfg.Includes)
	assert.Equal(t, StringList{"src/pages.json"}, cfg.WatchFile)
	assert.Equal(t, ModeGlobal, cfg.InsertPos.Mode())
	assert.Equal(t, []string{"pages/login"}, cfg.InsertPos.Exclude)

	require.Len(t, cfg.InsertPos.HandlePos, 3)
	assert.Equal(t, []string{"banner"}, cfg.InsertPos.HandlePos[0].Insert)
	assert.NotNil(t, cfg.InsertPos.HandlePos[1].Insert)
	assert.Empty(t, cfg.InsertPos.HandlePos[1].Insert)
	assert.Nil(t, cfg.InsertPos.HandlePos[2].Insert)
	assert.Equal(t, "types/routes.d.ts", cfg.DTS)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParse_ComponentsAbsentVersusEmpty(t *testing.T) {
	absent, err := Parse([]byte("insertPos: {mode: GLOBAL}\n"))
	require.NoError(t, err)
	assert.False(t, absent.Components.Present())

	empty, err := Parse([]byte("components: {}\n"))
	require.NoError(t, err)
	assert.True(t, empty.Components.Present())
	assert.Equal(t, 0, empty.Components.Len())
}

func TestInsertPos_Mode(t *testing.T) {
	tests := []struct {
		raw  string
		want InsertMode
	}{
		{"", ModeGlobal},
		{"GLOBAL", ModeGlobal},
		{" GLOBAL ", ModeGlobal},
		{"global", ModeUnsupported},
		{"PAGE", ModeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, InsertPos{RawMode: tt.raw}.Mode())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("components: [a, b]\n"))
	require.Error(t, err)

	_, err = Parse([]byte("insertPos:\n  handlePos:\n    - insert: [a]\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("PAGEINJECT_TEST_ROOT", "/tmp/app/src")

	cfg, err := Parse([]byte("root: ${PAGEINJECT_TEST_ROOT}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/app/src", cfg.Root)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("PAGEINJECT_ENV_ROOT") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("PAGEINJECT_ENV_ROOT=/from/env/local\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("root: ${PAGEINJECT_ENV_ROOT}\n"), 0o600))

	cfg, err := Load(DefaultConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "/from/env/local", cfg.Root)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("root: src\n"), 0o600))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), paths.Root)
	assert.Equal(t, filepath.Join(dir, "src", "pages.json"), paths.Manifest)
	assert.Equal(t, filepath.Join(dir, "types", "r.d.ts"), cfg.ResolveOutput("types/r.d.ts"))
	assert.Equal(t, dir, cfg.BaseDir())
}

func TestResolvePaths_Environment(t *testing.T) {
	t.Run("input dir", func(t *testing.T) {
		t.Setenv(EnvInputDir, "/work/app/src")
		t.Setenv(EnvInitCwd, "/ignored")

		paths, err := (&Config{}).ResolvePaths()
		require.NoError(t, err)
		assert.Equal(t, "/work/app/src", paths.Root)
	})

	t.Run("init cwd", func(t *testing.T) {
		t.Setenv(EnvInputDir, "")
		t.Setenv(EnvInitCwd, "/work/app")

		paths, err := (&Config{}).ResolvePaths()
		require.NoError(t, err)
		assert.Equal(t, "/work/app/src", paths.Root)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv(EnvInputDir, "")
		t.Setenv(EnvInitCwd, "")

		_, err := (&Config{}).ResolvePaths()
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	})
}

func TestInit_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", DefaultConfigFile)
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"banner"}, cfg.Components.Keys())
	assert.Equal(t, ModeGlobal, cfg.InsertPos.Mode())
	require.Len(t, cfg.InsertPos.HandlePos, 1)
	assert.Equal(t, "pages/index/index", cfg.InsertPos.HandlePos[0].Page)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	Logging{Level: "warn", Format: " JSON "}.NewLogger(&buf, false).Info("hidden")
	Logging{Level: "warn", Format: " JSON "}.NewLogger(&buf, false).Warn("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)

	buf.Reset()
	Logging{Level: "error"}.NewLogger(&buf, true).Debug("verbose wins")
	assert.Contains(t, buf.String(), "level=DEBUG")

	require.NoError(t, Logging{Level: "warn+2", Format: "logfmt"}.Validate())
	err := Logging{Level: "verbose"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.Error(t, Logging{Format: "xml"}.Validate())

	_, err = Parse([]byte("logging:\n  format: xml\n"))
	require.Error(t, err)
}
