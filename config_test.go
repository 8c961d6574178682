package subjectdl

import (
	"os"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	config, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(err)
	assert.Equal(DefaultSubjectsFile, config.SubjectsFile)
	assert.Equal(".", config.BaseDir)
	assert.Equal(DefaultLogFile, config.LogFile)
	assert.Equal(DefaultContainer, config.Container)
	assert.Equal(DefaultFormat, config.Format)
	assert.Equal(filepath.Join(".", "subjectdl.db"), config.HistoryFile)
}

func TestLoadConfigFile(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	path := filepath.Join(t.TempDir(), "subjectdl.yaml")
	require.NoError(os.WriteFile(path, []byte("subjects_file: classes.json\nbase_dir: /tmp/videos\ncontainer: mkv\n"), 0644))

	config, err := LoadConfig(path)
	require.NoError(err)
	assert.Equal("classes.json", config.SubjectsFile)
	assert.Equal("/tmp/videos", config.BaseDir)
	assert.Equal("mkv", config.Container)
	// Unset fields still get defaults.
	assert.Equal(DefaultFormat, config.Format)
	assert.Equal(filepath.Join("/tmp/videos", "subjectdl.db"), config.HistoryFile)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	t.Setenv("SUBJECTDL_CONTAINER", "webm")
	config, err := LoadConfig("")
	require.NoError(err)
	assert.Equal("webm", config.Container)
}

func TestLoadConfigMalformed(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	path := filepath.Join(t.TempDir(), "subjectdl.yaml")
	require.NoError(os.WriteFile(path, []byte("subjects_file: [oops\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(err)
}

func TestConfigValidateContainer(t *testing.T) {
	assert := assert_.New(t)

	config := Config{Container: "../evil"}
	config.ApplyDefaults()
	assert.Error(config.Validate())
}

func TestConfigTargetFilename(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	config := Config{}
	config.ApplyDefaults()
	require.NoError(config.Validate())

	name, err := config.TargetFilename(&MediaInfo{ID: "abc123", Title: "Calculus I: Limits"})
	require.NoError(err)
	assert.Equal("Calculus I_ Limits.mp4", name)

	// Missing title falls back to the placeholder.
	name, err = config.TargetFilename(&MediaInfo{ID: "abc123"})
	require.NoError(err)
	assert.Equal("unknown_title.mp4", name)

	name, err = config.TargetFilename(nil)
	require.NoError(err)
	assert.Equal("unknown_title.mp4", name)
}

func TestConfigTargetFilenameCustomNaming(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	config := Config{Naming: "{{.ID}} - {{.Title}}.{{.Ext}}"}
	config.ApplyDefaults()
	require.NoError(config.Validate())

	name, err := config.TargetFilename(&MediaInfo{ID: "abc123", Title: "Limits"})
	require.NoError(err)
	assert.Equal("abc123 - Limits.mp4", name)
}
