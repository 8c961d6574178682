package subjectdl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mjarret/subjectdl/util"
)

const (
	DefaultSubjectsFile = "subjects.json"
	DefaultLogFile      = "subjectdl.log"
	DefaultContainer    = "mp4"
	DefaultFormat       = "bestvideo+bestaudio/best"
	DefaultNaming       = "{{.Title}}.{{.Ext}}"

	historyFilename = "subjectdl.db"
)

type Config struct {
	SubjectsFile string `yaml:"subjects_file"`
	BaseDir      string `yaml:"base_dir"`
	LogFile      string `yaml:"log_file"`
	// Container is the fixed output extension; merged downloads are muxed into it.
	Container string `yaml:"container"`
	// Format is the selection expression handed to the yt-dlp backend.
	Format string `yaml:"format"`
	// HistoryFile is the completed-download store; empty disables it.
	HistoryFile string `yaml:"history_file"`
	Naming      string `yaml:"naming"`
	// Provider forces a single registered backend instead of priority matching.
	Provider string `yaml:"provider"`

	namingTemplate *template.Template
}

// LoadConfig is ReadConfig followed by ApplyDefaults and Validate, for callers with no overrides
// of their own to layer in between.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig reads the YAML config at path (missing file is fine, all fields have defaults), then applies
// SUBJECTDL_* environment overrides. A .env file is honoured if present. No defaults are filled in, so
// derived values like HistoryFile are not pinned before command-line overrides land.
func ReadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg.SubjectsFile, "SUBJECTDL_SUBJECTS_FILE")
	applyEnv(&cfg.BaseDir, "SUBJECTDL_BASE_DIR")
	applyEnv(&cfg.LogFile, "SUBJECTDL_LOG_FILE")
	applyEnv(&cfg.Container, "SUBJECTDL_CONTAINER")
	applyEnv(&cfg.Format, "SUBJECTDL_FORMAT")
	applyEnv(&cfg.HistoryFile, "SUBJECTDL_HISTORY_FILE")
	applyEnv(&cfg.Provider, "SUBJECTDL_PROVIDER")

	return &cfg, nil
}

func applyEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func (c *Config) ApplyDefaults() {
	if c.SubjectsFile == "" {
		c.SubjectsFile = DefaultSubjectsFile
	}
	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.Container == "" {
		c.Container = DefaultContainer
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(c.BaseDir, historyFilename)
	}
	if c.Naming == "" {
		c.Naming = DefaultNaming
	}
}

func (c *Config) Validate() error {
	if strings.ContainsAny(c.Container, "./\\") {
		return fmt.Errorf("container must be a bare extension, got %q", c.Container)
	}
	tmpl, err := template.New("target_file").Parse(c.Naming)
	if err != nil {
		return fmt.Errorf("invalid naming template %q: %w", c.Naming, err)
	}
	c.namingTemplate = tmpl
	return nil
}

type targetFilenameArgs struct {
	ID    string
	Title string
	Ext   string
}

// TargetFilename renders the expected output filename for a video, sanitised for the filesystem. This name is what
// the skip-if-exists check looks for and what every backend must produce.
func (c *Config) TargetFilename(info *MediaInfo) (string, error) {
	if c.namingTemplate == nil {
		if err := c.Validate(); err != nil {
			return "", err
		}
	}
	args := targetFilenameArgs{
		Ext: c.Container,
	}
	if info != nil {
		args.ID = info.ID
		args.Title = util.SanitizeFilename(info.Title)
	}
	if args.Title == "" {
		args.Title = util.PlaceholderTitle
	}
	builder := strings.Builder{}
	if err := c.namingTemplate.Execute(&builder, &args); err != nil {
		return "", err
	}
	return builder.String(), nil
}
