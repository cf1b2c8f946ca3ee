package confkit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekata-api/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("EKATA_CONF_DIR", "/srv/ekata")

	assert.Equal(t, "/abs/weather.yaml", confkit.ResolvePath("/etc", "/abs/weather.yaml"))
	assert.Equal(t, "/etc/llm.yaml", confkit.ResolvePath("/etc", "llm.yaml"))
	assert.Equal(t, "/srv/ekata/llm.yaml", confkit.ResolvePath("/etc", "${EKATA_CONF_DIR}/llm.yaml"))
	assert.Equal(t, filepath.Join("etc", "sub", "a.yaml"), confkit.ResolvePath("etc", "sub/a.yaml"))
}

func TestBaseDir(t *testing.T) {
	assert.Equal(t, "/etc/ekata", confkit.BaseDir("/etc/ekata/ekata.yaml"))
	assert.Equal(t, "/", confkit.BaseDir("/ekata.yaml"))
	assert.Equal(t, "etc", confkit.BaseDir("etc/ekata.yaml"))
}

func TestDecodeYAML(t *testing.T) {
	type weather struct {
		Default string `yaml:"default"`
		Timeout string `yaml:"timeout"`
	}

	t.Setenv("EKATA_WEATHER_TIMEOUT", "7s")
	cfg, err := confkit.DecodeYAML[weather]([]byte("default: open-meteo\ntimeout: ${EKATA_WEATHER_TIMEOUT}\n"))
	require.NoError(t, err)
	assert.Equal(t, "open-meteo", cfg.Default)
	assert.Equal(t, "7s", cfg.Timeout)

	_, err = confkit.DecodeYAML[weather]([]byte("defualt: typo\n"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	type main struct {
		Name string
		Port int `json:",default=8888"`
	}

	path := filepath.Join(t.TempDir(), "ekata.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Name: ekata-api\n"), 0o600))

	cfg, err := confkit.LoadFile[main](path, false)
	require.NoError(t, err)
	assert.Equal(t, "ekata-api", cfg.Name)
	assert.Equal(t, 8888, cfg.Port)

	_, err = confkit.LoadFile[main](filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.ErrorContains(t, err, "load config")
}

func TestSectionHydrate(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		section := &confkit.Section[string]{}
		assert.False(t, section.Enabled())
		err := section.Hydrate("/base", func(string) (*string, error) {
			t.Fatal("loader should not be called for an empty section")
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, section.Value)
	})

	t.Run("resolves and stores", func(t *testing.T) {
		section := &confkit.Section[string]{File: "llm.yaml"}
		want := "loaded"
		var seen string
		err := section.Hydrate("/etc/ekata", func(path string) (*string, error) {
			seen = path
			return &want, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "/etc/ekata/llm.yaml", seen)
		assert.Equal(t, "/etc/ekata/llm.yaml", section.File)
		require.NotNil(t, section.Value)
		assert.Equal(t, want, *section.Value)
	})

	t.Run("loader error", func(t *testing.T) {
		section := &confkit.Section[string]{File: "bad.yaml"}
		err := section.Hydrate("/etc", func(string) (*string, error) {
			return nil, os.ErrNotExist
		})
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, "bad.yaml", section.File)
	})
}

func TestProjectPath(t *testing.T) {
	p, err := confkit.ProjectPath("etc/ekata.yaml")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p) || p == filepath.Join(".", "etc/ekata.yaml"))
	assert.Equal(t, "ekata.yaml", filepath.Base(p))

	root, err := confkit.ProjectRoot()
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, statErr)
}
