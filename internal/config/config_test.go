package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	cfg := Default("/repo")

	assert.Equal(t, filepath.Join("/repo", "html5lib-tests", "tokenizer"), cfg.TokenizerDir)
	assert.Equal(t, filepath.Join("/repo", "html5lib-tests", "tree-construction"), cfg.TreeDir)
	assert.Equal(t, filepath.Join("/repo", "html5lib-tests", "encoding"), cfg.EncodingDir)
	assert.Equal(t, filepath.Join("/repo", "data", "allowlists.json"), cfg.AllowlistPath)
	assert.Equal(t, filepath.Join("/repo", ".build", "engine"), cfg.EngineExe)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.JournalPath)
}

func TestLoadMissingDefaultFile(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, Default(root), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, filepath.Join(root, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
tokenizer_dir: fixtures/tok
allowlist: state/allow.json
engine_exe: /opt/engine
build_command: ["make", "engine"]
journal: state/runs.db
timeout: 2m
`)

	cfg, err := Load(root, "")
	require.NoError(t, err)

	// Relative paths resolve against the root; absolute ones stay put.
	assert.Equal(t, filepath.Join(root, "fixtures", "tok"), cfg.TokenizerDir)
	assert.Equal(t, filepath.Join(root, "state", "allow.json"), cfg.AllowlistPath)
	assert.Equal(t, "/opt/engine", cfg.EngineExe)
	assert.Equal(t, []string{"make", "engine"}, cfg.BuildCommand)
	assert.Equal(t, filepath.Join(root, "state", "runs.db"), cfg.JournalPath)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)

	// Untouched fields keep their defaults.
	assert.Equal(t, Default(root).TreeDir, cfg.TreeDir)
	assert.Equal(t, Default(root).EncodingDir, cfg.EncodingDir)
}

func TestLoadEmptyFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, Default(root), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "tokeniser_dir: typo\n")

	_, err := Load(root, "")
	assert.Error(t, err)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	for _, tc := range []string{"timeout: soon\n", "timeout: -3s\n", "timeout: 0s\n"} {
		root := t.TempDir()
		writeConfig(t, root, tc)

		_, err := Load(root, "")
		assert.Error(t, err, tc)
	}
}

func writeConfig(t *testing.T, root, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, "htmlconf.yaml"), []byte(body), 0644))
}
