package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/weisyn/absacc/pkg/types"
)

// TestBootstrap_GraphComplete 依赖图可以完整解析
func TestBootstrap_GraphComplete(t *testing.T) {
	for _, withAPI := range []bool{true, false} {
		opts := []Option{WithAppConfig(&types.AppConfig{})}
		if !withAPI {
			opts = append(opts, WithoutAPI())
		}
		b := NewBootstrap(newOptions(opts...))

		var all []fx.Option
		all = append(all, b.SetupInfrastructureLayer()...)
		all = append(all, b.SetupBusinessLayer()...)
		all = append(all, b.SetupApplicationLayer()...)
		assert.NoError(t, fx.ValidateApp(all...), "withAPI=%v", withAPI)
	}
}

func TestResolveAppConfig(t *testing.T) {
	explicit := &types.AppConfig{}
	cfg, err := resolveAppConfig(newOptions(WithAppConfig(explicit)))
	require.NoError(t, err)
	assert.Same(t, explicit, cfg)

	t.Setenv(EnvConfigPath, "")
	cfg, err = resolveAppConfig(newOptions())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	path := filepath.Join(t.TempDir(), "authd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"environment":"test","data_dir":"/tmp/absacc"}`), 0o600))
	cfg, err = resolveAppConfig(newOptions(WithConfigFile(path)))
	require.NoError(t, err)
	require.NotNil(t, cfg.Environment)
	assert.Equal(t, "test", *cfg.Environment)

	_, err = resolveAppConfig(newOptions(WithConfigFile(filepath.Join(t.TempDir(), "missing.json"))))
	assert.Error(t, err)
}

func TestCreateDataDirectories(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	logFile := filepath.Join(root, "logs", "authd.log")
	require.NoError(t, createDataDirectories(&types.AppConfig{
		DataDir: &dataDir,
		Log:     &types.UserLogConfig{FilePath: &logFile},
	}))
	assert.DirExists(t, dataDir)
	assert.DirExists(t, filepath.Dir(logFile))
}
